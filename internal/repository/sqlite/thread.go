package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hayato-dev/discussboard/internal/apperror"
	"github.com/hayato-dev/discussboard/internal/model"
	"github.com/hayato-dev/discussboard/internal/repository"
)

// compile-time check that *DB implements repository.ThreadRepository
var _ repository.ThreadRepository = (*DB)(nil)

// CreateThread inserts a new thread and populates ID and CreatedAt.
func (db *DB) CreateThread(ctx context.Context, thread *model.Thread) error {
	thread.CreatedAt = time.Now().Truncate(time.Second)

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO threads (title, category, created_by, created_at)
		 VALUES (?, ?, ?, ?)`,
		thread.Title,
		thread.Category,
		thread.CreatedBy,
		formatTime(thread.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting thread %q: %w", thread.Title, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new thread id: %w", err)
	}
	thread.ID = id

	return nil
}

// ListThreads returns threads matching the filter, newest first.
//
// Title matching uses instr() rather than LIKE: SQLite's LIKE is
// case-insensitive for ASCII, and the listing contract is a case-sensitive
// substring match. The day filter is a half-open range on the stored
// timestamp text, which compares correctly because the format is fixed-width
// local time.
func (db *DB) ListThreads(ctx context.Context, filter repository.ThreadFilter) ([]model.Thread, error) {
	query := `SELECT id, title, category, created_by, created_at FROM threads`
	var (
		conds []string
		args  []any
	)

	if filter.Title != "" {
		conds = append(conds, `instr(title, ?) > 0`)
		args = append(args, filter.Title)
	}
	if filter.Day != nil {
		dayStart := time.Date(filter.Day.Year(), filter.Day.Month(), filter.Day.Day(),
			0, 0, 0, 0, time.Local)
		conds = append(conds, `created_at >= ? AND created_at < ?`)
		args = append(args, formatTime(dayStart), formatTime(dayStart.AddDate(0, 0, 1)))
	}

	for i, cond := range conds {
		if i == 0 {
			query += ` WHERE ` + cond
		} else {
			query += ` AND ` + cond
		}
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing threads: %w", err)
	}
	defer rows.Close()

	threads := []model.Thread{}
	for rows.Next() {
		var (
			t         model.Thread
			createdAt string
		)
		if err := rows.Scan(&t.ID, &t.Title, &t.Category, &t.CreatedBy, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning thread: %w", err)
		}
		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		threads = append(threads, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating threads: %w", err)
	}

	return threads, nil
}

// GetThread returns the thread with the given id, or apperror.ErrNotFound.
func (db *DB) GetThread(ctx context.Context, id int64) (*model.Thread, error) {
	var (
		t         model.Thread
		createdAt string
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, title, category, created_by, created_at FROM threads WHERE id = ?`,
		id,
	).Scan(&t.ID, &t.Title, &t.Category, &t.CreatedBy, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("thread", id)
		}
		return nil, fmt.Errorf("sqlite: getting thread %d: %w", id, err)
	}

	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}

	return &t, nil
}

// CreateComment inserts a new comment and populates ID and CreatedAt.
// The parent comment id is stored as given; it is not validated against the
// thread.
func (db *DB) CreateComment(ctx context.Context, comment *model.Comment) error {
	comment.CreatedAt = time.Now().Truncate(time.Second)

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (thread_id, user_id, content, parent_comment_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		comment.ThreadID,
		comment.UserID,
		comment.Content,
		comment.ParentCommentID,
		formatTime(comment.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting comment on thread %d: %w", comment.ThreadID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new comment id: %w", err)
	}
	comment.ID = id

	return nil
}

// GetComment returns the comment with the given id, or apperror.ErrNotFound.
func (db *DB) GetComment(ctx context.Context, id int64) (*model.Comment, error) {
	var (
		c         model.Comment
		createdAt string
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, thread_id, user_id, content, parent_comment_id, created_at
		 FROM comments WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.ThreadID, &c.UserID, &c.Content, &c.ParentCommentID, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %d: %w", id, err)
	}

	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}

	return &c, nil
}

// ListComments returns a thread's comments ordered oldest first.
func (db *DB) ListComments(ctx context.Context, threadID int64) ([]model.Comment, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, thread_id, user_id, content, parent_comment_id, created_at
		 FROM comments WHERE thread_id = ?
		 ORDER BY created_at ASC, id ASC`,
		threadID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for thread %d: %w", threadID, err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var (
			c         model.Comment
			createdAt string
		)
		if err := rows.Scan(&c.ID, &c.ThreadID, &c.UserID, &c.Content, &c.ParentCommentID, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment: %w", err)
		}
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}

	return comments, nil
}

// ToggleReaction removes the (comment, user, kind) reaction row if present,
// otherwise inserts it. Returns true if the reaction exists after the call.
//
// Both steps run in one transaction, and the insert uses INSERT OR IGNORE
// against the UNIQUE(comment_id, user_id, reaction_type) index, so two
// concurrent toggles of the same triple cannot create duplicate rows.
func (db *DB) ToggleReaction(ctx context.Context, commentID, userID int64, reactionType string) (bool, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("sqlite: beginning toggle transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM reactions WHERE comment_id = ? AND user_id = ? AND reaction_type = ?`,
		commentID, userID, reactionType,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting reaction: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: reading deleted rows: %w", err)
	}

	exists := false
	if deleted == 0 {
		_, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO reactions (comment_id, user_id, reaction_type, created_at)
			 VALUES (?, ?, ?, ?)`,
			commentID, userID, reactionType, formatTime(time.Now()),
		)
		if err != nil {
			return false, fmt.Errorf("sqlite: inserting reaction: %w", err)
		}
		exists = true
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("sqlite: committing toggle: %w", err)
	}

	return exists, nil
}

// CountReactions returns the per-kind reaction counts for one comment.
// Kinds with no rows have no entry.
func (db *DB) CountReactions(ctx context.Context, commentID int64) (map[string]int, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT reaction_type, COUNT(*) FROM reactions
		 WHERE comment_id = ? GROUP BY reaction_type`,
		commentID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: counting reactions for comment %d: %w", commentID, err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var (
			kind  string
			count int
		)
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("sqlite: scanning reaction count: %w", err)
		}
		counts[kind] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating reaction counts: %w", err)
	}

	return counts, nil
}

// CountReactionsByThread returns per-kind counts for all comments of a thread
// in a single grouped query, keyed by comment id. Used by the thread listing
// to avoid one count query per comment.
func (db *DB) CountReactionsByThread(ctx context.Context, threadID int64) (map[int64]map[string]int, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT r.comment_id, r.reaction_type, COUNT(*)
		 FROM reactions r
		 JOIN comments c ON c.id = r.comment_id
		 WHERE c.thread_id = ?
		 GROUP BY r.comment_id, r.reaction_type`,
		threadID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: counting reactions for thread %d: %w", threadID, err)
	}
	defer rows.Close()

	counts := map[int64]map[string]int{}
	for rows.Next() {
		var (
			commentID int64
			kind      string
			count     int
		)
		if err := rows.Scan(&commentID, &kind, &count); err != nil {
			return nil, fmt.Errorf("sqlite: scanning thread reaction count: %w", err)
		}
		if counts[commentID] == nil {
			counts[commentID] = map[string]int{}
		}
		counts[commentID][kind] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating thread reaction counts: %w", err)
	}

	return counts, nil
}
