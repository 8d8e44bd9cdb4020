package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/hayato-dev/discussboard/internal/apperror"
	"github.com/hayato-dev/discussboard/internal/model"
	"github.com/hayato-dev/discussboard/internal/repository"
)

// unknownUserName is shown when a thread or comment references an account
// that cannot be resolved (deleted, or created by an import without a user).
const unknownUserName = "unknown user"

// dateFilterLayout is the accepted format for the thread list date filter.
const dateFilterLayout = "2006-01-02"

// ThreadService handles thread listing, comments and reactions.
type ThreadService struct {
	threads  repository.ThreadRepository
	accounts repository.AccountRepository
	logger   *slog.Logger
}

func NewThreadService(
	threads repository.ThreadRepository,
	accounts repository.AccountRepository,
	logger *slog.Logger,
) *ThreadService {
	return &ThreadService{
		threads:  threads,
		accounts: accounts,
		logger:   logger,
	}
}

// List returns threads newest first, each enriched with the creator's name
// and its comments (oldest first) with author info and reaction counts.
//
// titleFilter, when non-empty, is a case-sensitive substring match on the
// title. dateFilter, when non-empty, must be "YYYY-MM-DD" and restricts
// results to that calendar day in server-local time.
func (s *ThreadService) List(ctx context.Context, titleFilter, dateFilter string) ([]model.ThreadView, error) {
	filter := repository.ThreadFilter{Title: titleFilter}

	if dateFilter != "" {
		day, err := time.ParseInLocation(dateFilterLayout, dateFilter, time.Local)
		if err != nil {
			return nil, apperror.ValidationFailed("date",
				fmt.Sprintf("date must be in %s format", dateFilterLayout))
		}
		filter.Day = &day
	}

	threads, err := s.threads.ListThreads(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service/thread: listing threads: %w", err)
	}

	// Accounts are resolved once per distinct user across the whole listing.
	names := newAccountResolver(s.accounts)

	views := []model.ThreadView{}
	for _, thread := range threads {
		comments, err := s.threads.ListComments(ctx, thread.ID)
		if err != nil {
			return nil, fmt.Errorf("service/thread: listing comments for thread %d: %w", thread.ID, err)
		}

		reactionCounts, err := s.threads.CountReactionsByThread(ctx, thread.ID)
		if err != nil {
			return nil, fmt.Errorf("service/thread: counting reactions for thread %d: %w", thread.ID, err)
		}

		commentViews := []model.CommentView{}
		for _, c := range comments {
			author := names.resolve(ctx, c.UserID)
			reactions := reactionCounts[c.ID]
			if reactions == nil {
				reactions = map[string]int{}
			}
			commentViews = append(commentViews, model.CommentView{
				ID:              c.ID,
				ThreadID:        c.ThreadID,
				UserID:          c.UserID,
				UserName:        author.name,
				AvatarURL:       author.avatarURL,
				Content:         c.Content,
				ParentCommentID: c.ParentCommentID,
				CreatedAt:       c.CreatedAt,
				Reactions:       reactions,
			})
		}

		views = append(views, model.ThreadView{
			ID:            thread.ID,
			Title:         thread.Title,
			Category:      thread.Category,
			CreatedBy:     thread.CreatedBy,
			CreatedByName: names.resolve(ctx, thread.CreatedBy).name,
			CreatedAt:     thread.CreatedAt,
			Comments:      commentViews,
		})
	}

	return views, nil
}

// Create validates and stores a new thread. The category is free text; it is
// trimmed but never checked against a category list.
func (s *ThreadService) Create(ctx context.Context, title, category string, createdBy int64) (*model.Thread, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}

	thread := &model.Thread{
		Title:     title,
		Category:  strings.TrimSpace(category),
		CreatedBy: createdBy,
	}
	if err := s.threads.CreateThread(ctx, thread); err != nil {
		return nil, fmt.Errorf("service/thread: creating thread: %w", err)
	}

	s.logger.Info("thread created",
		slog.Int64("id", thread.ID),
		slog.String("title", thread.Title),
	)

	return thread, nil
}

// PostComment stores a new comment on a thread. The parent comment id is
// stored as given; it is not checked against the thread.
func (s *ThreadService) PostComment(ctx context.Context, threadID, userID int64, content string, parentCommentID *int64) (*model.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperror.ValidationFailed("content", "content is required")
	}

	comment := &model.Comment{
		ThreadID:        threadID,
		UserID:          userID,
		Content:         content,
		ParentCommentID: parentCommentID,
	}
	if err := s.threads.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("service/thread: posting comment: %w", err)
	}

	return comment, nil
}

// ToggleReaction adds the (comment, user, kind) reaction if absent, removes
// it if present, and returns the comment's per-kind counts computed after the
// mutation, sorted by kind for a stable response.
func (s *ThreadService) ToggleReaction(ctx context.Context, commentID, userID int64, reactionType string) ([]model.ReactionCount, error) {
	if reactionType == "" {
		return nil, apperror.ValidationFailed("reactionType", "reactionType is required")
	}

	if _, err := s.threads.GetComment(ctx, commentID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service/thread: loading comment %d: %w", commentID, err)
	}

	added, err := s.threads.ToggleReaction(ctx, commentID, userID, reactionType)
	if err != nil {
		return nil, fmt.Errorf("service/thread: toggling reaction: %w", err)
	}

	s.logger.Debug("reaction toggled",
		slog.Int64("commentID", commentID),
		slog.Int64("userID", userID),
		slog.String("reactionType", reactionType),
		slog.Bool("added", added),
	)

	counts, err := s.threads.CountReactions(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("service/thread: counting reactions: %w", err)
	}

	result := []model.ReactionCount{}
	for kind, count := range counts {
		result = append(result, model.ReactionCount{ReactionType: kind, Count: count})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ReactionType < result[j].ReactionType })

	return result, nil
}

// accountResolver memoizes account lookups during a single listing.
// A failed lookup is cached too, so a missing account costs one query.
type accountResolver struct {
	accounts repository.AccountRepository
	cache    map[int64]resolvedAccount
}

type resolvedAccount struct {
	name      string
	avatarURL string
}

func newAccountResolver(accounts repository.AccountRepository) *accountResolver {
	return &accountResolver{
		accounts: accounts,
		cache:    map[int64]resolvedAccount{},
	}
}

// resolve returns the display name (falling back to the username) and avatar
// for an account id, or the "unknown user" placeholder when the account
// cannot be loaded.
func (r *accountResolver) resolve(ctx context.Context, id int64) resolvedAccount {
	if cached, ok := r.cache[id]; ok {
		return cached
	}

	resolved := resolvedAccount{name: unknownUserName}
	if account, err := r.accounts.GetByID(ctx, id); err == nil {
		resolved.name = account.DisplayName
		if resolved.name == "" {
			resolved.name = account.Username
		}
		resolved.avatarURL = account.AvatarURL
	}

	r.cache[id] = resolved
	return resolved
}
