package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplete(t *testing.T) {
	var captured struct {
		path   string
		auth   string
		body   chatRequest
		called int
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.called++
		captured.path = r.URL.Path
		captured.auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured.body))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"[\"技術\"]"}}]}`))
	}))
	defer srv.Close()

	c := NewClient("sk-test", srv.URL)
	reply, err := c.Complete(context.Background(), "system prompt", "user text")
	require.NoError(t, err)

	assert.Equal(t, `["技術"]`, reply)
	assert.Equal(t, "/v1/chat/completions", captured.path)
	assert.Equal(t, "Bearer sk-test", captured.auth)
	assert.Equal(t, 1, captured.called)

	require.Len(t, captured.body.Messages, 2)
	assert.Equal(t, "system", captured.body.Messages[0].Role)
	assert.Equal(t, "system prompt", captured.body.Messages[0].Content)
	assert.Equal(t, "user", captured.body.Messages[1].Role)
	assert.Equal(t, "user text", captured.body.Messages[1].Content)
}

func TestComplete_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("sk-test", srv.URL)
	_, err := c.Complete(context.Background(), "s", "u")
	assert.Error(t, err)
}

func TestComplete_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all`))
	}))
	defer srv.Close()

	c := NewClient("sk-test", srv.URL)
	_, err := c.Complete(context.Background(), "s", "u")
	assert.Error(t, err)
}

func TestComplete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient("sk-test", srv.URL)
	_, err := c.Complete(context.Background(), "s", "u")
	assert.Error(t, err)
}

func TestComplete_ServerUnreachable(t *testing.T) {
	// Point at a server that is already closed.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient("sk-test", srv.URL)
	_, err := c.Complete(context.Background(), "s", "u")
	assert.Error(t, err)
}
