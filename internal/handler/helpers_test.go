package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hayato-dev/discussboard/internal/auth"
	"github.com/hayato-dev/discussboard/internal/handler"
	"github.com/hayato-dev/discussboard/internal/repository/sqlite"
	"github.com/hayato-dev/discussboard/internal/service"
)

// testEnv wires the real services over an in-memory database, so handler
// tests exercise the full stack below the router.
type testEnv struct {
	auth    *handler.AuthHandler
	threads *handler.ThreadHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	passwords := auth.NewPasswordServiceForTest(10)

	accounts := service.NewAccountService(db, passwords, logger)
	threads := service.NewThreadService(db, db, logger)
	suggestions := service.NewSuggestionService(nil, logger)

	return &testEnv{
		auth:    handler.NewAuthHandler(accounts, logger),
		threads: handler.NewThreadHandler(threads, suggestions, logger),
	}
}

// do runs a handler func with a JSON body (or none) and decodes the response.
func do(t *testing.T, h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rr.Body).Decode(dst))
}

// register creates an account through the handler and returns its id.
func (e *testEnv) register(t *testing.T, username, password string) int64 {
	t.Helper()

	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	require.NoError(t, err)

	rr := do(t, e.auth.HandleRegister, http.MethodPost, "/api/auth/register", string(body))
	require.Equal(t, http.StatusOK, rr.Code)

	var res struct {
		ID int64 `json:"id"`
	}
	decodeBody(t, rr, &res)
	return res.ID
}

// createThread creates a thread through the handler and returns its id.
func (e *testEnv) createThread(t *testing.T, title, category string, createdBy int64) int64 {
	t.Helper()

	body, err := json.Marshal(map[string]interface{}{
		"title":     title,
		"category":  category,
		"createdBy": createdBy,
	})
	require.NoError(t, err)

	rr := do(t, e.threads.HandleCreate, http.MethodPost, "/api/threads", string(body))
	require.Equal(t, http.StatusOK, rr.Code)

	var res struct {
		ID int64 `json:"id"`
	}
	decodeBody(t, rr, &res)
	return res.ID
}

// postComment posts a comment through the handler and returns its id.
func (e *testEnv) postComment(t *testing.T, threadID, userID int64, content string, parentID *int64) int64 {
	t.Helper()

	payload := map[string]interface{}{
		"threadId": threadID,
		"userId":   userID,
		"content":  content,
	}
	if parentID != nil {
		payload["parentCommentId"] = *parentID
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	rr := do(t, e.threads.HandlePostComment, http.MethodPost, "/api/threads/comment", string(body))
	require.Equal(t, http.StatusOK, rr.Code)

	var res struct {
		ID int64 `json:"id"`
	}
	decodeBody(t, rr, &res)
	return res.ID
}
