package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete a session",
	Long: `Irrecoverably delete the resolved session's stored data. When it was
the current session, the current marker is cleared too.

Examples:
  llmcouncil clear
  llmcouncil clear -S s_20250107_153012_4242`,
	RunE: runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	id, err := resolveSession(app.store, sessionID)
	if err != nil {
		return err
	}

	if err := app.store.Clear(id); err != nil {
		return err
	}

	fmt.Printf("cleared: %s\n", id)
	return nil
}
