package caller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/boshu2/llmcouncil/internal/registry"
)

// fakeTransport records calls and answers from a canned table.
type fakeTransport struct {
	mu      sync.Mutex
	calls   map[string]string // model -> prompt
	answers map[string]string // model -> content
	fail    map[string]error  // model -> error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		calls:   make(map[string]string),
		answers: make(map[string]string),
		fail:    make(map[string]error),
	}
}

func (f *fakeTransport) Call(_ context.Context, model, prompt string) (string, error) {
	f.mu.Lock()
	f.calls[model] = prompt
	f.mu.Unlock()
	if err, ok := f.fail[model]; ok {
		return "", err
	}
	if content, ok := f.answers[model]; ok {
		return content, nil
	}
	return "default answer", nil
}

func testReg() *registry.Registry {
	return registry.New([]registry.Model{
		{Key: "gpt", ID: "openai/gpt-4o", Name: "GPT-4o"},
		{Key: "gemini", ID: "google/gemini-2.5-pro", Name: "Gemini 2.5 Pro"},
		{Key: "grok", ID: "x-ai/grok-3", Name: "Grok 3"},
	})
}

func TestCallOneSuccess(t *testing.T) {
	ft := newFakeTransport()
	ft.answers["openai/gpt-4o"] = "<think>hmm</think>\nthe answer"
	c := New(ft, testReg(), 4)

	r := c.CallOne(context.Background(), "gpt", "question")
	if !r.OK() {
		t.Fatalf("unexpected failure: %v", r.Err)
	}
	if r.Key != "gpt" || r.Name != "GPT-4o" {
		t.Errorf("result tags = %q/%q", r.Key, r.Name)
	}
	if r.Content != "the answer" {
		t.Errorf("think tags must be stripped, got %q", r.Content)
	}
	if ft.calls["openai/gpt-4o"] != "question" {
		t.Errorf("prompt sent = %q", ft.calls["openai/gpt-4o"])
	}
}

func TestCallOneFailureIsTotal(t *testing.T) {
	ft := newFakeTransport()
	ft.fail["openai/gpt-4o"] = errors.New("HTTP 500: boom")
	c := New(ft, testReg(), 4)

	r := c.CallOne(context.Background(), "gpt", "q")
	if r.OK() {
		t.Fatal("expected failure result")
	}
	if r.Key != "gpt" || r.Name != "GPT-4o" {
		t.Errorf("failure must keep key/name tags, got %q/%q", r.Key, r.Name)
	}
	if r.Content != "" {
		t.Errorf("failure result must carry no content, got %q", r.Content)
	}
}

func TestCallOneUnknownKeyPassesThrough(t *testing.T) {
	ft := newFakeTransport()
	ft.answers["llama"] = "hi"
	c := New(ft, testReg(), 4)

	r := c.CallOne(context.Background(), "llama", "q")
	if !r.OK() || r.Name != "llama" {
		t.Errorf("ad-hoc key should reach transport uninterpreted: %+v", r)
	}
}

func TestCallManyBroadcast(t *testing.T) {
	ft := newFakeTransport()
	c := New(ft, testReg(), 4)

	results := c.CallMany(context.Background(), c.Broadcast("same question"), Options{})
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	for _, key := range []string{"gpt", "gemini", "grok"} {
		r, ok := results[key]
		if !ok {
			t.Errorf("missing result for %s", key)
			continue
		}
		if !r.OK() || r.Content != "default answer" {
			t.Errorf("results[%s] = %+v", key, r)
		}
	}
	for _, model := range []string{"openai/gpt-4o", "google/gemini-2.5-pro", "x-ai/grok-3"} {
		if ft.calls[model] != "same question" {
			t.Errorf("broadcast should send the same prompt to %s, got %q", model, ft.calls[model])
		}
	}
}

func TestCallManyDistinctPrompts(t *testing.T) {
	ft := newFakeTransport()
	c := New(ft, testReg(), 2)

	prompts := map[string]string{
		"gpt":    "prompt for gpt",
		"gemini": "prompt for gemini",
	}
	results := c.CallMany(context.Background(), prompts, Options{})
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if _, ok := results["grok"]; ok {
		t.Error("keys not in the prompt map must not be called")
	}
	if ft.calls["openai/gpt-4o"] != "prompt for gpt" {
		t.Errorf("gpt prompt = %q", ft.calls["openai/gpt-4o"])
	}
	if ft.calls["google/gemini-2.5-pro"] != "prompt for gemini" {
		t.Errorf("gemini prompt = %q", ft.calls["google/gemini-2.5-pro"])
	}
}

func TestCallManyIsolatesFailures(t *testing.T) {
	ft := newFakeTransport()
	ft.fail["google/gemini-2.5-pro"] = errors.New("request timed out")
	c := New(ft, testReg(), 4)

	results := c.CallMany(context.Background(), c.Broadcast("q"), Options{})
	if len(results) != 3 {
		t.Fatalf("one failure must not drop sibling results: got %d", len(results))
	}
	if results["gemini"].OK() {
		t.Error("gemini should have failed")
	}
	if !results["gpt"].OK() || !results["grok"].OK() {
		t.Error("siblings of a failed call must still succeed")
	}
}

func TestCallManyConfidenceSuffix(t *testing.T) {
	ft := newFakeTransport()
	c := New(ft, testReg(), 4)

	c.CallMany(context.Background(), c.Broadcast("q"), Options{Confidence: true})
	for model, prompt := range ft.calls {
		if !strings.HasSuffix(prompt, ConfidenceSuffix) {
			t.Errorf("prompt for %s missing confidence suffix: %q", model, prompt)
		}
	}
}

func TestCallManyEmpty(t *testing.T) {
	c := New(newFakeTransport(), testReg(), 4)
	results := c.CallMany(context.Background(), nil, Options{})
	if len(results) != 0 {
		t.Errorf("expected empty result map, got %v", results)
	}
}
