// Package transport implements the HTTP client for OpenAI-compatible
// chat-completions backends. One synchronous request per call, bearer-token
// auth, request timeout; every failure class surfaces as a distinct error
// message.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxErrorBody caps how much of an HTTP error body is echoed into error
// messages.
const maxErrorBody = 200

// Client calls a single chat-completions endpoint.
type Client struct {
	// Endpoint is the full chat-completions URL.
	Endpoint string

	// APIKey is the bearer token.
	APIKey string

	// SystemPrompt, when non-empty, is sent as a leading system message.
	SystemPrompt string

	// Temperature and MaxTokens are passed through to the backend.
	Temperature float64
	MaxTokens   int

	// HTTPClient carries the request timeout.
	HTTPClient *http.Client
}

// New creates a client with the given request timeout.
func New(endpoint, apiKey string, timeout time.Duration) *Client {
	return &Client{
		Endpoint:   endpoint,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error json.RawMessage `json:"error"`
}

// Call sends prompt to the given backend model and returns the raw
// response content. The error message distinguishes timeout, network,
// HTTP-status, API-level and malformed-body failures.
func (c *Client) Call(ctx context.Context, model, prompt string) (string, error) {
	var messages []chatMessage
	if c.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: c.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	payload, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return "", ErrTimeout
		}
		return "", fmt.Errorf("network error: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() //nolint:errcheck // read already completed
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		excerpt := body
		if len(excerpt) > maxErrorBody {
			excerpt = excerpt[:maxErrorBody]
		}
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, excerpt)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("malformed response body: %w", err)
	}

	if len(parsed.Choices) > 0 {
		return parsed.Choices[0].Message.Content, nil
	}
	if len(parsed.Error) > 0 {
		return "", fmt.Errorf("backend error: %s", parsed.Error)
	}
	return "", ErrUnexpectedFormat
}

// isTimeout reports whether an error chain contains a net timeout.
func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
