package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hayato-dev/discussboard/internal/apperror"
	"github.com/hayato-dev/discussboard/internal/model"
	"github.com/hayato-dev/discussboard/internal/repository"
)

// compile-time check that *DB implements repository.AccountRepository
var _ repository.AccountRepository = (*DB)(nil)

// Create inserts a new account and populates ID and CreatedAt.
//
// The UNIQUE constraint on username is the real duplicate guard: the service
// does a friendly existence check first, but if two registrations race past
// it, the second insert fails here and is reported as a conflict.
func (db *DB) Create(ctx context.Context, account *model.Account) error {
	account.CreatedAt = time.Now().Truncate(time.Second)

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO accounts (username, password_hash, display_name, avatar_url, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		account.Username,
		account.PasswordHash,
		account.DisplayName,
		account.AvatarURL,
		formatTime(account.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("account", fmt.Sprintf("username %q already exists", account.Username))
		}
		return fmt.Errorf("sqlite: inserting account %q: %w", account.Username, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new account id: %w", err)
	}
	account.ID = id

	return nil
}

// GetByID returns the account with the given id, or apperror.ErrNotFound.
func (db *DB) GetByID(ctx context.Context, id int64) (*model.Account, error) {
	return db.getAccount(ctx,
		`SELECT id, username, password_hash, display_name, avatar_url, created_at
		 FROM accounts WHERE id = ?`, id)
}

// GetByUsername returns the account with the exact username (case-sensitive),
// or apperror.ErrNotFound.
func (db *DB) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	return db.getAccount(ctx,
		`SELECT id, username, password_hash, display_name, avatar_url, created_at
		 FROM accounts WHERE username = ?`, username)
}

func (db *DB) getAccount(ctx context.Context, query string, arg any) (*model.Account, error) {
	var (
		a         model.Account
		createdAt string
	)

	err := db.conn.QueryRowContext(ctx, query, arg).Scan(
		&a.ID,
		&a.Username,
		&a.PasswordHash,
		&a.DisplayName,
		&a.AvatarURL,
		&createdAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &apperror.AppError{
				Err:     apperror.ErrNotFound,
				Message: "account not found",
			}
		}
		return nil, fmt.Errorf("sqlite: getting account: %w", err)
	}

	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}

	return &a, nil
}

// ExistsUsername reports whether an account with the exact username exists.
func (db *DB) ExistsUsername(ctx context.Context, username string) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts WHERE username = ?`, username,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking username %q: %w", username, err)
	}
	return count > 0, nil
}

// UpdateProfile overwrites display name and avatar URL for the account.
// Returns apperror.ErrNotFound when the id does not exist.
func (db *DB) UpdateProfile(ctx context.Context, id int64, displayName, avatarURL string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE accounts SET display_name = ?, avatar_url = ? WHERE id = ?`,
		displayName, avatarURL, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating account %d profile: %w", id, err)
	}
	return requireRow(res, "account", id)
}

// UpdatePasswordHash replaces the stored hash for the account.
func (db *DB) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE accounts SET password_hash = ? WHERE id = ?`,
		hash, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating account %d password: %w", id, err)
	}
	return requireRow(res, "account", id)
}

// requireRow converts a zero-row UPDATE into a not-found error.
func requireRow(res sql.Result, resource string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: reading rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}

// isUniqueViolation detects SQLite UNIQUE constraint failures. The modernc
// driver surfaces them as plain errors whose text includes the standard
// SQLite message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
