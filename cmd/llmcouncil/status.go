package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session state",
	Long: `Show the resolved session's id, path, current step and the artifacts
stored in each step.

Examples:
  llmcouncil status
  llmcouncil status -S s_20250107_153012_4242`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	id, err := resolveSession(app.store, sessionID)
	if err != nil {
		return err
	}
	current, err := app.store.CurrentStep(id)
	if err != nil {
		return err
	}
	steps, err := app.store.Context(id)
	if err != nil {
		return err
	}

	fmt.Printf("Session: %s\n", id)
	fmt.Printf("Path:    %s\n", app.store.Path(id))
	fmt.Printf("Step:    %d\n\n", current)

	for _, step := range steps {
		names := artifactOrder(step.Data, app.reg.Keys())
		if len(names) == 0 {
			fmt.Printf("step %d: (empty)\n", step.Step)
			continue
		}
		fmt.Printf("step %d: %s\n", step.Step, strings.Join(names, ", "))
	}
	return nil
}
