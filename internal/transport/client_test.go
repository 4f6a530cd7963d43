package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(url string) *Client {
	c := New(url, "test-key", 5*time.Second)
	c.Temperature = 0.7
	c.MaxTokens = 1024
	return c
}

func TestCallSuccess(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"the answer"}}]}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	content, err := c.Call(context.Background(), "openai/gpt-4o", "the question")
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if content != "the answer" {
		t.Errorf("content = %q", content)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotReq.Model != "openai/gpt-4o" {
		t.Errorf("model = %q", gotReq.Model)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Role != "user" || gotReq.Messages[0].Content != "the question" {
		t.Errorf("messages = %+v", gotReq.Messages)
	}
}

func TestCallSystemPrompt(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq) //nolint:errcheck // checked via assertions
		fmt.Fprint(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.SystemPrompt = "be brief"
	if _, err := c.Call(context.Background(), "m", "p"); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" || gotReq.Messages[0].Content != "be brief" {
		t.Errorf("messages = %+v", gotReq.Messages)
	}
}

func TestCallHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":"rate limited"}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Call(context.Background(), "m", "p")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "HTTP 429") {
		t.Errorf("error %q should name the HTTP status", err)
	}
}

func TestCallHTTPErrorBodyExcerptCapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, strings.Repeat("x", 1000))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Call(context.Background(), "m", "p")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(err.Error()) > maxErrorBody+50 {
		t.Errorf("error message too long (%d chars): body excerpt must be capped", len(err.Error()))
	}
}

func TestCallAPIErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"message":"model overloaded"}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Call(context.Background(), "m", "p")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "model overloaded") {
		t.Errorf("error %q should carry the backend message", err)
	}
}

func TestCallMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json at all`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Call(context.Background(), "m", "p")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "malformed response body") {
		t.Errorf("error = %q", err)
	}
}

func TestCallEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Call(context.Background(), "m", "p")
	if !errors.Is(err, ErrUnexpectedFormat) {
		t.Errorf("expected ErrUnexpectedFormat, got %v", err)
	}
}

func TestCallTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, `{"choices":[{"message":{"content":"late"}}]}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "k", 20*time.Millisecond)
	_, err := c.Call(context.Background(), "m", "p")
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
}

func TestCallNetworkError(t *testing.T) {
	// Connect to a closed server.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Call(context.Background(), "m", "p")
	if err == nil {
		t.Fatal("expected network error")
	}
	if !strings.Contains(err.Error(), "network error") {
		t.Errorf("error = %q, want network error message", err)
	}
}
