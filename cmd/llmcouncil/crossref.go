package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/boshu2/llmcouncil/internal/caller"
	"github.com/boshu2/llmcouncil/internal/prompt"
)

var crossrefCmd = &cobra.Command{
	Use:   "crossref",
	Short: "Have every model critique the draft and each other",
	Long: `Build one prompt per model from the current step: the assistant's
draft, the other models' answers, the model's own previous answer and
the original question, with an instruction to agree or disagree and
surface insights or errors.

Requires a draft in the current step (see 'llmcouncil draft'). Results
are written as <key>_crossref artifacts into a new step, leaving the
pre-crossref responses untouched.

Examples:
  llmcouncil crossref
  llmcouncil crossref -S s_20250107_153012_4242`,
	RunE: runCrossref,
}

func init() {
	rootCmd.AddCommand(crossrefCmd)
}

func runCrossref(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	id, err := resolveSession(app.store, sessionID)
	if err != nil {
		return err
	}
	step, err := app.store.CurrentStep(id)
	if err != nil {
		return err
	}
	data, err := app.store.LoadStep(id, step)
	if err != nil {
		return err
	}

	prompts, err := prompt.CrossrefAll(data, app.reg)
	if errors.Is(err, prompt.ErrNoDraft) {
		return errors.New("crossref needs a draft in the current step; run 'llmcouncil draft' first")
	}
	if err != nil {
		return err
	}

	results := app.caller.CallMany(cmd.Context(), prompts, caller.Options{})

	next, err := app.store.NextStep(id)
	if err != nil {
		return err
	}
	if err := app.store.SaveStep(id, next, resultArtifacts(results, "_crossref")); err != nil {
		return err
	}

	for _, key := range app.reg.Keys() {
		printResult(results[key], "Crossref")
	}
	printTrailer(id, next)
	return nil
}
