// Package caller wraps backend transport calls in tagged results and fans
// them out to the council concurrently. One model's failure never cancels
// or affects another's in-flight call.
package caller

import (
	"context"

	"github.com/boshu2/llmcouncil/internal/registry"
	"github.com/boshu2/llmcouncil/internal/worker"
)

// ConfidenceSuffix is appended to every prompt when a confidence rating is
// requested.
const ConfidenceSuffix = "\n\n---\nAfter answering, rate your confidence (high/medium/low) for each claim."

// Transport is the single synchronous call capability to one backend.
type Transport interface {
	Call(ctx context.Context, model, prompt string) (string, error)
}

// Result is the tagged outcome of one backend call: exactly one of
// Content or Err is meaningful.
type Result struct {
	// Key is the model key the call was dispatched under.
	Key string

	// Name is the model's display name.
	Name string

	// Content is the post-processed response on success.
	Content string

	// Err is the failure on error.
	Err error
}

// OK reports whether the call succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Caller executes single and parallel backend calls.
type Caller struct {
	transport  Transport
	reg        *registry.Registry
	maxWorkers int

	// Logf receives progress lines when non-nil.
	Logf func(format string, args ...any)
}

// New creates a caller. maxWorkers bounds parallel dispatch; <= 0 lets the
// pool pick a default.
func New(t Transport, reg *registry.Registry, maxWorkers int) *Caller {
	return &Caller{transport: t, reg: reg, maxWorkers: maxWorkers}
}

// CallOne calls a single model. It is total: every transport failure is
// folded into the returned Result, tagged with the key and display name.
func (c *Caller) CallOne(ctx context.Context, key, prompt string) Result {
	name := c.reg.Name(key)
	c.logf("calling %s...", name)

	content, err := c.transport.Call(ctx, c.reg.Resolve(key), prompt)
	if err != nil {
		c.logf("%s: FAILED", name)
		return Result{Key: key, Name: name, Err: err}
	}

	c.logf("%s: OK", name)
	return Result{Key: key, Name: name, Content: StripThinkTags(content)}
}

// Options controls parallel dispatch.
type Options struct {
	// Confidence appends the confidence-rating suffix to every prompt.
	Confidence bool
}

// Broadcast builds a per-key prompt map sending the same prompt to every
// registered model.
func (c *Caller) Broadcast(prompt string) map[string]string {
	prompts := make(map[string]string, len(c.reg.Keys()))
	for _, key := range c.reg.Keys() {
		prompts[key] = prompt
	}
	return prompts
}

// CallMany dispatches one call per key concurrently, bounded by
// min(maxWorkers, len(prompts)). The returned map holds exactly one
// Result per requested key; individual failures are isolated.
func (c *Caller) CallMany(ctx context.Context, prompts map[string]string, opts Options) map[string]Result {
	if len(prompts) == 0 {
		return map[string]Result{}
	}

	keys := make([]string, 0, len(prompts))
	// Preserve registry order for keys it knows; ad-hoc keys follow.
	for _, key := range c.reg.Keys() {
		if _, ok := prompts[key]; ok {
			keys = append(keys, key)
		}
	}
	for key := range prompts {
		if !c.reg.Has(key) {
			keys = append(keys, key)
		}
	}

	pool := worker.NewPool[string, Result](c.maxWorkers)
	return pool.Collect(keys, func(key string) Result {
		prompt := prompts[key]
		if opts.Confidence {
			prompt += ConfidenceSuffix
		}
		return c.CallOne(ctx, key, prompt)
	})
}

func (c *Caller) logf(format string, args ...any) {
	if c.Logf != nil {
		c.Logf(format, args...)
	}
}
