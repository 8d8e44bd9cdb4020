package handler

import (
	"log/slog"
	"net/http"

	"github.com/hayato-dev/discussboard/internal/service"
)

// ThreadHandler serves the /api/threads endpoints.
type ThreadHandler struct {
	threads     *service.ThreadService
	suggestions *service.SuggestionService
	logger      *slog.Logger
}

func NewThreadHandler(threads *service.ThreadService, suggestions *service.SuggestionService, logger *slog.Logger) *ThreadHandler {
	return &ThreadHandler{
		threads:     threads,
		suggestions: suggestions,
		logger:      logger,
	}
}

// HandleList returns all threads with their comments and reaction counts.
//
// HTTP: GET /api/threads?title=<substring>&date=<YYYY-MM-DD>
// Both query parameters are optional and combine with AND.
func (h *ThreadHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	views, err := h.threads.List(r.Context(), query.Get("title"), query.Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, views)
}

// HandleSuggestCategories returns category candidates for a draft title.
// The response is always 200 with a (possibly empty) string array.
//
// HTTP: GET /api/threads/category-suggestions?query=<draft title>
func (h *ThreadHandler) HandleSuggestCategories(w http.ResponseWriter, r *http.Request) {
	categories := h.suggestions.SuggestCategories(r.Context(), r.URL.Query().Get("query"))

	writeJSON(w, http.StatusOK, categories)
}

type createThreadRequest struct {
	Title     string `json:"title"`
	Category  string `json:"category"`
	CreatedBy int64  `json:"createdBy"`
}

// HandleCreate stores a new thread.
//
// HTTP: POST /api/threads
func (h *ThreadHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createThreadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	thread, err := h.threads.Create(r.Context(), req.Title, req.Category, req.CreatedBy)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, thread)
}

type postCommentRequest struct {
	ThreadID        int64  `json:"threadId"`
	UserID          int64  `json:"userId"`
	Content         string `json:"content"`
	ParentCommentID *int64 `json:"parentCommentId"`
}

// HandlePostComment stores a comment, optionally as a reply to another one.
//
// HTTP: POST /api/threads/comment
func (h *ThreadHandler) HandlePostComment(w http.ResponseWriter, r *http.Request) {
	var req postCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.threads.PostComment(r.Context(), req.ThreadID, req.UserID, req.Content, req.ParentCommentID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comment)
}

type toggleReactionRequest struct {
	CommentID    int64  `json:"commentId"`
	UserID       int64  `json:"userId"`
	ReactionType string `json:"reactionType"`
}

// HandleToggleReaction flips a reaction on or off and returns the comment's
// reaction counts after the change.
//
// HTTP: POST /api/threads/reaction
// Response: [{"reactionType": "👍", "count": 2}]
func (h *ThreadHandler) HandleToggleReaction(w http.ResponseWriter, r *http.Request) {
	var req toggleReactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	counts, err := h.threads.ToggleReaction(r.Context(), req.CommentID, req.UserID, req.ReactionType)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, counts)
}
