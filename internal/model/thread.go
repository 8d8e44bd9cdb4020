package model

import "time"

// Thread is a discussion thread. CreatedBy is the account id of the creator;
// it is stored as a plain integer, not an enforced foreign key.
type Thread struct {
	ID        int64     `json:"id"        db:"id"`
	Title     string    `json:"title"     db:"title"`
	Category  string    `json:"category"  db:"category"`
	CreatedBy int64     `json:"createdBy" db:"created_by"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Comment is a single comment on a thread. ParentCommentID points at another
// comment in the same thread for nested replies; nil means a top-level comment.
// There is no enforced depth limit.
type Comment struct {
	ID              int64     `json:"id"              db:"id"`
	ThreadID        int64     `json:"threadId"        db:"thread_id"`
	UserID          int64     `json:"userId"          db:"user_id"`
	Content         string    `json:"content"         db:"content"`
	ParentCommentID *int64    `json:"parentCommentId" db:"parent_comment_id"`
	CreatedAt       time.Time `json:"createdAt"       db:"created_at"`
}

// Reaction is one emoji-style reaction by one user on one comment.
// At most one row exists per (comment, user, kind) triple; toggling the same
// triple again removes the row.
type Reaction struct {
	ID           int64     `json:"id"           db:"id"`
	CommentID    int64     `json:"commentId"    db:"comment_id"`
	UserID       int64     `json:"userId"       db:"user_id"`
	ReactionType string    `json:"reactionType" db:"reaction_type"`
	CreatedAt    time.Time `json:"createdAt"    db:"created_at"`
}

// ReactionCount is the per-kind aggregate returned by the reaction endpoint.
type ReactionCount struct {
	ReactionType string `json:"reactionType"`
	Count        int    `json:"count"`
}

// CommentView is a comment enriched with author info and reaction counts,
// as embedded in the thread listing.
type CommentView struct {
	ID              int64          `json:"id"`
	ThreadID        int64          `json:"threadId"`
	UserID          int64          `json:"userId"`
	UserName        string         `json:"userName"`
	AvatarURL       string         `json:"avatarUrl"`
	Content         string         `json:"content"`
	ParentCommentID *int64         `json:"parentCommentId"`
	CreatedAt       time.Time      `json:"createdAt"`
	Reactions       map[string]int `json:"reactions"`
}

// ThreadView is a thread enriched with the creator's display name and its
// comments, as returned by GET /api/threads.
type ThreadView struct {
	ID            int64         `json:"id"`
	Title         string        `json:"title"`
	Category      string        `json:"category"`
	CreatedBy     int64         `json:"createdBy"`
	CreatedByName string        `json:"createdByName"`
	CreatedAt     time.Time     `json:"createdAt"`
	Comments      []CommentView `json:"comments"`
}
