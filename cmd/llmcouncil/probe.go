package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boshu2/llmcouncil/internal/parse"
	"github.com/boshu2/llmcouncil/internal/prompt"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Follow-up question to one model, seeded with session context",
	Long: `Send a follow-up question to a single model. The prompt replays every
stored step (query plus truncated responses) before the new question.

The target comes from -M or an @key line in a ===PROBE=== section. The
answer is stored in a new step.

Examples:
  printf '===QUERY===\nWhy?\n===PROBE===\n@gpt\n' | llmcouncil probe
  echo "Why?" | llmcouncil probe -M grok`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	content, err := readInput()
	if err != nil {
		return err
	}

	app, err := newApp()
	if err != nil {
		return err
	}

	in := parse.Markers(content, app.reg.Keys())
	question := in.Query
	if question == "" && in == (parse.Input{}) {
		// Plain piped text without markers is the question itself.
		question = content
	}
	if question == "" {
		return errors.New("no probe question; use -f <file> or pipe stdin")
	}

	target := modelKey
	if target == "" {
		target = in.ProbeTarget
	}
	if target == "" {
		return errors.New("probe target required (-M <key> or @key in a ===PROBE=== section)")
	}
	if !app.reg.Has(target) {
		return fmt.Errorf("unknown probe target: %s", target)
	}

	id, err := resolveSession(app.store, sessionID)
	if err != nil {
		return err
	}
	steps, err := app.store.Context(id)
	if err != nil {
		return err
	}

	result := app.caller.CallOne(cmd.Context(), target, prompt.Probe(steps, app.reg, question))
	if !result.OK() {
		// Single-model operation: there is no fallback, the whole probe failed.
		return fmt.Errorf("%s: %w", result.Name, result.Err)
	}

	step, err := app.store.NextStep(id)
	if err != nil {
		return err
	}
	if err := app.store.SaveStep(id, step, map[string]string{
		"query": question,
		target:  result.Content,
	}); err != nil {
		return err
	}

	printResult(result, "Probe")
	printTrailer(id, step)
	return nil
}
