// Package repository defines the storage interfaces consumed by the service
// layer. The sqlite subpackage provides the implementation; services only see
// these interfaces so tests can substitute in-memory fakes.
package repository

import (
	"context"
	"time"

	"github.com/hayato-dev/discussboard/internal/model"
)

// ThreadFilter narrows the thread listing.
//
// Title matches as a case-sensitive substring. Day restricts results to
// threads created within that calendar day in server-local time, the
// half-open interval [day 00:00, next day 00:00).
type ThreadFilter struct {
	Title string
	Day   *time.Time
}

type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id int64) (*model.Account, error)
	// GetByUsername matches the username exactly (case-sensitive).
	// Returns apperror.ErrNotFound when no such account exists.
	GetByUsername(ctx context.Context, username string) (*model.Account, error)
	ExistsUsername(ctx context.Context, username string) (bool, error)
	UpdateProfile(ctx context.Context, id int64, displayName, avatarURL string) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}

type ThreadRepository interface {
	CreateThread(ctx context.Context, thread *model.Thread) error
	// ListThreads returns matching threads ordered by creation time descending.
	ListThreads(ctx context.Context, filter ThreadFilter) ([]model.Thread, error)
	GetThread(ctx context.Context, id int64) (*model.Thread, error)

	CreateComment(ctx context.Context, comment *model.Comment) error
	GetComment(ctx context.Context, id int64) (*model.Comment, error)
	// ListComments returns a thread's comments ordered by creation time ascending.
	ListComments(ctx context.Context, threadID int64) ([]model.Comment, error)

	// ToggleReaction atomically removes the (comment, user, kind) reaction row
	// if present, otherwise inserts it. Returns true if the reaction exists
	// after the call.
	ToggleReaction(ctx context.Context, commentID, userID int64, reactionType string) (bool, error)
	// CountReactions returns the per-kind reaction counts for one comment.
	CountReactions(ctx context.Context, commentID int64) (map[string]int, error)
	// CountReactionsByThread returns per-kind counts for every commented-on
	// comment of a thread, keyed by comment id. Comments without reactions
	// have no entry.
	CountReactionsByThread(ctx context.Context, threadID int64) (map[int64]map[string]int, error)
}
