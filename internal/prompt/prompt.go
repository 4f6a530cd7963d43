// Package prompt assembles probe and crossref prompts from persisted
// session steps. Builders only read step data, never mutate it.
package prompt

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/boshu2/llmcouncil/internal/registry"
	"github.com/boshu2/llmcouncil/internal/session"
)

// ProbeBudget is the per-response character budget in probe context.
const ProbeBudget = 800

// ellipsis marks a truncated response.
const ellipsis = "..."

// CrossrefSuffix is the fixed instruction appended to every crossref prompt.
const CrossrefSuffix = "---\nDo you agree or disagree with these answers? Point out insights the others missed and any errors you see."

// ErrNoDraft is returned when crossref is attempted on a step without a
// draft; crossref is anchored on the draft and cannot proceed without it.
var ErrNoDraft = errors.New("no draft in current step")

// Probe builds the prompt for a follow-up question to one model: every
// step's query and responses in ascending order, then the question.
func Probe(steps []session.StepData, reg *registry.Registry, question string) string {
	var b strings.Builder

	for _, step := range steps {
		var parts []string
		if query := step.Data["query"]; query != "" {
			parts = append(parts, "Question: "+query)
		}
		for _, key := range reg.Keys() {
			resp, ok := response(step.Data, key)
			if !ok {
				continue
			}
			parts = append(parts, reg.Name(key)+":\n"+truncate(resp, ProbeBudget))
		}
		if len(parts) == 0 {
			continue
		}

		fmt.Fprintf(&b, "=== Step %d ===\n", step.Step)
		b.WriteString(strings.Join(parts, "\n\n"))
		b.WriteString("\n\n")
	}

	b.WriteString("Follow-up question:\n")
	b.WriteString(question)
	return b.String()
}

// CrossrefAll builds one prompt per registry key from the current step's
// data. The draft anchors the comparison: its absence fails fast before
// any dispatch. For target k, k's own response appears only as "your
// previous answer", never among the others.
func CrossrefAll(stepData map[string]string, reg *registry.Registry) (map[string]string, error) {
	draft, ok := response(stepData, "draft")
	if !ok {
		return nil, ErrNoDraft
	}
	query := stepData["query"]

	prompts := make(map[string]string, len(reg.Keys()))
	for _, target := range reg.Keys() {
		var parts []string

		parts = append(parts, "Claude (draft answer):\n"+draft)

		for _, key := range reg.Keys() {
			if key == target {
				continue
			}
			resp, ok := response(stepData, key)
			if !ok {
				continue
			}
			parts = append(parts, reg.Name(key)+" said:\n"+resp)
		}

		if own, ok := response(stepData, target); ok {
			parts = append(parts, "Your previous answer:\n"+own)
		}

		if query != "" {
			parts = append(parts, "Original question:\n"+query)
		}

		parts = append(parts, CrossrefSuffix)
		prompts[target] = strings.Join(parts, "\n\n")
	}

	return prompts, nil
}

// response returns a step artifact as a usable response: present,
// non-empty, and not a persisted failure record.
func response(data map[string]string, name string) (string, bool) {
	content, ok := data[name]
	if !ok || content == "" || strings.HasPrefix(content, session.FailedPrefix) {
		return "", false
	}
	return content, true
}

// truncate cuts s to at most budget characters, appending an ellipsis
// marker when anything was cut. The budget counts runes, not bytes, so a
// multibyte response keeps its full allowance and the cut never splits a
// UTF-8 sequence.
func truncate(s string, budget int) string {
	if utf8.RuneCountInString(s) <= budget {
		return s
	}
	runes := []rune(s)
	return string(runes[:budget]) + ellipsis
}
