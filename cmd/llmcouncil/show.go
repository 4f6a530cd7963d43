package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored session context",
	Long: `Print every step of the session with its artifacts: query, draft,
model responses and crossref responses.

Examples:
  llmcouncil show
  llmcouncil show -S s_20250107_153012_4242`,
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	id, err := resolveSession(app.store, sessionID)
	if err != nil {
		return err
	}
	steps, err := app.store.Context(id)
	if err != nil {
		return err
	}

	headingColor.Printf("# Session %s\n\n", id)
	for _, step := range steps {
		headingColor.Printf("## Step %d\n\n", step.Step)
		for _, name := range artifactOrder(step.Data, app.reg.Keys()) {
			fmt.Printf("### %s\n%s\n\n", name, step.Data[name])
		}
	}
	return nil
}

// artifactOrder returns present artifact names in display order: query,
// draft, council responses in registry order, then crossref responses.
func artifactOrder(data map[string]string, keys []string) []string {
	var order []string
	appendPresent := func(name string) {
		if _, ok := data[name]; ok {
			order = append(order, name)
		}
	}

	appendPresent("query")
	appendPresent("draft")
	for _, key := range keys {
		appendPresent(key)
	}
	for _, key := range keys {
		appendPresent(key + "_crossref")
	}

	// Anything else (ad-hoc keys) follows, sorted for stable output.
	known := make(map[string]bool, len(order))
	for _, name := range order {
		known[name] = true
	}
	for name := range data {
		if !known[name] {
			order = append(order, name)
		}
	}
	sort.Strings(order[len(known):])
	return order
}
