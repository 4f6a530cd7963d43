package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/boshu2/llmcouncil/internal/caller"
	"github.com/boshu2/llmcouncil/internal/config"
	"github.com/boshu2/llmcouncil/internal/registry"
	"github.com/boshu2/llmcouncil/internal/session"
	"github.com/boshu2/llmcouncil/internal/transport"
)

var (
	// Global flags
	sessionID string
	modelKey  string
	inputFile string
	verbose   bool
	cfgFile   string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "llmcouncil",
	Short: "External LLM orchestration for an assistant council",
	Long: `llmcouncil dispatches a question to several LLM backends in parallel,
persists the exchange as numbered session steps, and uses the stored
history for follow-up probes and cross-model critique.

Core Commands:
  council      Ask every configured model in parallel
  probe        Follow-up question to one model, seeded with session context
  crossref     Have every model critique the draft and each other
  ask          One-off question to a single model, no session

Session Commands:
  draft        Store the assistant's draft in the current step
  show         Print the stored session context
  status       Show session state
  sessions     List stored sessions
  clear        Delete a session

Input is piped text with optional section markers:
  ===QUERY===   the question
  ===DRAFT===   the assistant's own draft answer
  ===PROBE===   a probe target line such as "@gpt"`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		syncConfigFlagToEnv()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&sessionID, "session", "S", "", "Use a specific session id (default: current)")
	rootCmd.PersistentFlags().StringVarP(&modelKey, "model", "M", "", "Target model key (gpt, gemini, grok)")
	rootCmd.PersistentFlags().StringVarP(&inputFile, "file", "f", "", "Read input from a file instead of stdin")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable progress output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/.llmcouncil/config.yaml)")
}

// syncConfigFlagToEnv lets the config loader pick up an explicit --config.
func syncConfigFlagToEnv() {
	if cfgFile != "" {
		_ = os.Setenv("LLMCOUNCIL_CONFIG", cfgFile) //nolint:errcheck // Setenv cannot fail here
	}
}

// app wires the configured collaborators for one command invocation.
type app struct {
	cfg    *config.Config
	reg    *registry.Registry
	store  *session.Store
	caller *caller.Caller
}

// newApp loads configuration and builds the registry, transport, caller
// and session store.
func newApp() (*app, error) {
	overrides := &config.Config{}
	if rootCmd.PersistentFlags().Changed("verbose") {
		// Only an explicitly given flag overrides lower layers, so
		// --verbose=false can switch off a config-file true.
		overrides.Verbose = &verbose
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		return nil, err
	}

	reg := registry.New(cfg.RegistryModels())

	client := transport.New(cfg.Endpoint, cfg.APIKey, cfg.TimeoutDuration())
	client.Temperature = cfg.TemperatureValue()
	client.MaxTokens = cfg.MaxTokens

	c := caller.New(client, reg, cfg.MaxWorkers)
	if cfg.IsVerbose() {
		c.Logf = logf
	}

	return &app{
		cfg:    cfg,
		reg:    reg,
		store:  session.NewStore(cfg.SessionDir),
		caller: c,
	}, nil
}

// readInput returns piped or file input, trimmed of surrounding space.
func readInput() (string, error) {
	if inputFile != "" {
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return "", fmt.Errorf("read input file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	info, err := os.Stdin.Stat()
	if err != nil {
		return "", fmt.Errorf("stat stdin: %w", err)
	}
	if info.Mode()&os.ModeCharDevice != 0 {
		// Interactive terminal, nothing piped.
		return "", nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	failColor    = color.New(color.FgRed)
	dimColor     = color.New(color.Faint)
)

// logf prints a progress line to stderr.
func logf(format string, args ...any) {
	dimColor.Fprintf(os.Stderr, "[llmcouncil] "+format+"\n", args...)
}

// printResult prints one model's section: heading, then content or a
// failure line. mode is an optional suffix like "Probe" or "Crossref".
func printResult(r caller.Result, mode string) {
	suffix := ""
	if mode != "" {
		suffix = " (" + mode + ")"
	}
	headingColor.Printf("=== %s%s ===\n", r.Name, suffix)
	if r.OK() {
		fmt.Println(r.Content)
	} else {
		failColor.Printf("FAILED %s: %v\n", r.Key, r.Err)
	}
	fmt.Println()
}

// printTrailer reports the session and step a mutating command wrote to.
func printTrailer(id string, step int) {
	dimColor.Printf("[%s step %d]\n", id, step)
}

// resultArtifacts folds dispatch results into step artifacts, recording
// failures under the persisted failure convention. suffix distinguishes
// crossref artifacts from council responses.
func resultArtifacts(results map[string]caller.Result, suffix string) map[string]string {
	data := make(map[string]string, len(results))
	for key, r := range results {
		if r.OK() {
			data[key+suffix] = r.Content
		} else {
			data[key+suffix] = session.FailedPrefix + r.Err.Error()
		}
	}
	return data
}

// resolveSession maps store sentinel errors to single-line user errors.
func resolveSession(store *session.Store, id string) (string, error) {
	resolved, err := store.Resolve(id)
	if errors.Is(err, session.ErrNoSession) {
		return "", errors.New("no active session; run council first")
	}
	if err != nil {
		return "", err
	}
	return resolved, nil
}
