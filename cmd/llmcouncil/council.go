package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/boshu2/llmcouncil/internal/caller"
	"github.com/boshu2/llmcouncil/internal/parse"
	"github.com/boshu2/llmcouncil/internal/session"
)

var (
	councilNew        bool
	councilConfidence bool
)

var councilCmd = &cobra.Command{
	Use:   "council",
	Short: "Ask every configured model in parallel",
	Long: `Parse piped input for a ===QUERY=== (and optional ===DRAFT===), store
them as a session step, dispatch the query to every configured model
concurrently and persist each model's answer into the step.

Without a current session one is created; otherwise the session advances
to its next step. One model failing never aborts the others: failures are
recorded per model.

Examples:
  printf '===QUERY===\nIs P equal to NP?\n' | llmcouncil council
  llmcouncil council -f /tmp/query.txt --confidence
  llmcouncil council --new -f /tmp/query.txt`,
	RunE: runCouncil,
}

func init() {
	councilCmd.Flags().BoolVar(&councilNew, "new", false, "Start a new session even if one is current")
	councilCmd.Flags().BoolVarP(&councilConfidence, "confidence", "c", false, "Ask each model to rate its confidence")
	rootCmd.AddCommand(councilCmd)
}

func runCouncil(cmd *cobra.Command, args []string) error {
	content, err := readInput()
	if err != nil {
		return err
	}

	app, err := newApp()
	if err != nil {
		return err
	}

	in := parse.Markers(content, app.reg.Keys())
	if in.Query == "" {
		return errors.New("no query; pipe input with a ===QUERY=== section")
	}

	id, step, err := app.resolveCouncilTarget()
	if err != nil {
		return err
	}

	// Persist the inputs before dispatch so the step records the question
	// even if every call fails.
	if err := app.store.SaveStep(id, step, map[string]string{
		"query": in.Query,
		"draft": in.Draft,
	}); err != nil {
		return err
	}

	results := app.caller.CallMany(cmd.Context(), app.caller.Broadcast(in.Query),
		caller.Options{Confidence: councilConfidence})

	if err := app.store.SaveStep(id, step, resultArtifacts(results, "")); err != nil {
		return err
	}

	for _, key := range app.reg.Keys() {
		printResult(results[key], "")
	}
	printTrailer(id, step)
	return nil
}

// resolveCouncilTarget picks the session and step a council round writes
// to: a fresh session (step 1) when none is current or --new was given,
// otherwise the next step of the resolved session.
func (a *app) resolveCouncilTarget() (string, int, error) {
	if !councilNew {
		id, err := a.store.Resolve(sessionID)
		switch {
		case err == nil:
			step, err := a.store.NextStep(id)
			if err != nil {
				return "", 0, err
			}
			return id, step, nil
		case errors.Is(err, session.ErrNoSession):
			// Fall through to creating one.
		case errors.Is(err, session.ErrNotFound) && sessionID != "":
			// An explicit unknown id is the caller's mistake.
			return "", 0, err
		case errors.Is(err, session.ErrNotFound):
			// Stale current marker; start over.
		default:
			return "", 0, err
		}
	}

	id, err := a.store.New()
	if err != nil {
		return "", 0, err
	}
	return id, 1, nil
}
