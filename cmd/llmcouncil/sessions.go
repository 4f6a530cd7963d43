package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List stored sessions",
	RunE:  runSessions,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	infos, err := app.store.List()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("no stored sessions")
		return nil
	}

	current, err := app.store.Current()
	if err != nil {
		return err
	}

	for _, info := range infos {
		marker := " "
		if info.ID == current {
			marker = "*"
		}
		fmt.Printf("%s %s  step %d\n", marker, info.ID, info.CurrentStep)
	}
	return nil
}
