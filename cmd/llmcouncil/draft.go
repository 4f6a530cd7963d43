package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boshu2/llmcouncil/internal/parse"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Store the assistant's draft in the current step",
	Long: `Store a draft answer in the current step of the session. Crossref
requires a stored draft as its anchor.

Input is either a ===DRAFT=== section or plain piped text.

Examples:
  printf '===DRAFT===\nMy answer...\n' | llmcouncil draft
  llmcouncil draft -f /tmp/draft.txt`,
	RunE: runDraft,
}

func init() {
	rootCmd.AddCommand(draftCmd)
}

func runDraft(cmd *cobra.Command, args []string) error {
	content, err := readInput()
	if err != nil {
		return err
	}
	if content == "" {
		return errors.New("no draft content; use -f <file> or pipe stdin")
	}

	app, err := newApp()
	if err != nil {
		return err
	}

	in := parse.Markers(content, app.reg.Keys())
	draft := in.Draft
	if draft == "" {
		if in != (parse.Input{}) {
			return errors.New("input has markers but no ===DRAFT=== section")
		}
		// Plain piped text without markers is the draft itself.
		draft = content
	}

	id, err := resolveSession(app.store, sessionID)
	if err != nil {
		return err
	}
	step, err := app.store.CurrentStep(id)
	if err != nil {
		return err
	}

	if err := app.store.SaveStep(id, step, map[string]string{"draft": draft}); err != nil {
		return err
	}

	fmt.Println("draft stored")
	printTrailer(id, step)
	return nil
}
