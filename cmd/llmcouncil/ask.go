package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "One-off question to a single model",
	Long: `Send piped input to one model and print its answer. No session is
created or touched.

Examples:
  echo "What is a monad?" | llmcouncil ask -M gpt
  llmcouncil ask -M gemini -f /tmp/question.txt`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if modelKey == "" {
		return errors.New("model required (-M gpt|gemini|grok)")
	}

	content, err := readInput()
	if err != nil {
		return err
	}
	if content == "" {
		return errors.New("no input; use -f <file> or pipe stdin")
	}

	app, err := newApp()
	if err != nil {
		return err
	}

	result := app.caller.CallOne(cmd.Context(), modelKey, content)
	if !result.OK() {
		return fmt.Errorf("%s: %w", result.Name, result.Err)
	}

	fmt.Println(result.Content)
	return nil
}
