// Package llm is a minimal client for an OpenAI-style chat-completion API.
//
// The board uses it for a single purpose: asking for category suggestions.
// Callers treat every failure as non-fatal, so the client reports errors and
// leaves the fallback decision to the service layer.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// defaultModel is the completion model requested for suggestions.
const defaultModel = "gpt-4o-mini"

// Client calls the chat-completions endpoint of an OpenAI-compatible server.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient creates a Client for the given API key and base URL (without a
// trailing slash, e.g. "https://api.openai.com"). The base URL is
// configurable so tests can point the client at a local httptest server.
//
// The underlying http.Client keeps its default (unlimited) timeout; callers
// bound the request through ctx if they need to.
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the portion of the completion response we care about.
// The API returns a much larger object; only the message text is needed.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one chat completion request with a system instruction and a
// user message, and returns the assistant's reply text. One attempt, no
// retries.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: defaultModel,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("llm: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: calling completion API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused; the body is not useful.
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("llm: completion API returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("llm: decoding completion response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("llm: completion response contained no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}
