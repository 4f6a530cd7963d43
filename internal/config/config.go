// Package config provides configuration management for llmcouncil.
// Configuration is loaded from (highest to lowest priority):
// 1. Command-line flags
// 2. Environment variables (LLMCOUNCIL_*)
// 3. Project config (.llmcouncil/config.yaml in cwd)
// 4. Home config (~/.llmcouncil/config.yaml)
// 5. Defaults
//
// A .env file in the working directory is loaded before environment
// resolution so API keys never live in committed YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/boshu2/llmcouncil/internal/registry"
)

// ModelConfig describes one council backend in the config file.
type ModelConfig struct {
	// Key is the short identifier (gpt, gemini, grok).
	Key string `yaml:"key"`

	// ID is the backend model identifier passed to the transport.
	ID string `yaml:"id"`

	// Name is the display name.
	Name string `yaml:"name"`
}

// Config holds all llmcouncil configuration.
type Config struct {
	// Endpoint is the chat-completions URL.
	Endpoint string `yaml:"endpoint"`

	// APIKeyEnv names the environment variable holding the bearer token.
	APIKeyEnv string `yaml:"api_key_env"`

	// APIKey is the resolved bearer token. Never read from YAML.
	APIKey string `yaml:"-"`

	// Timeout is the per-request timeout as a duration string ("120s").
	Timeout string `yaml:"timeout"`

	// MaxWorkers bounds concurrent backend calls.
	MaxWorkers int `yaml:"max_workers"`

	// Temperature and MaxTokens are passed through to the backend.
	// Temperature is a pointer so an explicit 0 in a higher-priority
	// layer is distinguishable from "not set".
	Temperature *float64 `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`

	// SessionDir is the sessions root directory.
	SessionDir string `yaml:"session_dir"`

	// Verbose enables progress output. A pointer for the same reason as
	// Temperature: an explicit false must override a lower layer's true.
	Verbose *bool `yaml:"verbose"`

	// Models is the ordered council roster.
	Models []ModelConfig `yaml:"models"`
}

// Default config values (used in resolution and validation).
const (
	defaultEndpoint    = "https://openrouter.ai/api/v1/chat/completions"
	defaultAPIKeyEnv   = "LLMCOUNCIL_API_KEY"
	defaultTimeout     = "120s"
	defaultTemperature = 0.7
)

func float64Ptr(v float64) *float64 { return &v }

func boolPtr(v bool) *bool { return &v }

// Default returns the default configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Endpoint:    defaultEndpoint,
		APIKeyEnv:   defaultAPIKeyEnv,
		Timeout:     defaultTimeout,
		MaxWorkers:  4,
		Temperature: float64Ptr(defaultTemperature),
		MaxTokens:   4096,
		SessionDir:  filepath.Join(homeDir, ".llmcouncil", "sessions"),
		Models: []ModelConfig{
			{Key: "gpt", ID: "openai/gpt-4o", Name: "GPT-4o"},
			{Key: "gemini", ID: "google/gemini-2.5-pro", Name: "Gemini 2.5 Pro"},
			{Key: "grok", ID: "x-ai/grok-3", Name: "Grok 3"},
		},
	}
}

// Load loads configuration with proper precedence.
// Priority: flags > env > project > home > defaults
func Load(flagOverrides *Config) (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // a missing .env is the normal case

	cfg := Default()

	homeConfig, _ := loadFromPath(homeConfigPath())
	if homeConfig != nil {
		cfg = merge(cfg, homeConfig)
	}

	projectConfig, _ := loadFromPath(projectConfigPath())
	if projectConfig != nil {
		cfg = merge(cfg, projectConfig)
	}

	cfg = applyEnv(cfg)

	if flagOverrides != nil {
		cfg = merge(cfg, flagOverrides)
	}

	if cfg.APIKey == "" && cfg.APIKeyEnv != "" {
		cfg.APIKey = os.Getenv(cfg.APIKeyEnv)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the resolved configuration.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if c.MaxWorkers < 1 {
		return fmt.Errorf("max_workers must be >= 1, got %d", c.MaxWorkers)
	}
	if len(c.Models) == 0 {
		return fmt.Errorf("at least one model must be configured")
	}
	for _, m := range c.Models {
		if m.Key == "" {
			return fmt.Errorf("model key must not be empty")
		}
	}
	return nil
}

// TemperatureValue returns the configured temperature.
func (c *Config) TemperatureValue() float64 {
	if c.Temperature == nil {
		return defaultTemperature
	}
	return *c.Temperature
}

// IsVerbose reports whether progress output is enabled.
func (c *Config) IsVerbose() bool {
	return c.Verbose != nil && *c.Verbose
}

// TimeoutDuration returns the parsed request timeout.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		d, _ = time.ParseDuration(defaultTimeout)
	}
	return d
}

// RegistryModels converts the configured roster into registry entries.
func (c *Config) RegistryModels() []registry.Model {
	models := make([]registry.Model, len(c.Models))
	for i, m := range c.Models {
		models[i] = registry.Model{Key: m.Key, ID: m.ID, Name: m.Name}
	}
	return models
}

// homeConfigPath returns the home config path.
func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".llmcouncil", "config.yaml")
}

// projectConfigPath returns the project config path.
func projectConfigPath() string {
	if override := strings.TrimSpace(os.Getenv("LLMCOUNCIL_CONFIG")); override != "" {
		return override
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".llmcouncil", "config.yaml")
}

// loadFromPath loads config from a YAML file.
func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) *Config {
	if v := os.Getenv("LLMCOUNCIL_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("LLMCOUNCIL_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("LLMCOUNCIL_TIMEOUT"); v != "" {
		cfg.Timeout = v
	}
	if v := os.Getenv("LLMCOUNCIL_MAX_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxWorkers = n
		}
	}
	if v := os.Getenv("LLMCOUNCIL_SESSION_DIR"); v != "" {
		cfg.SessionDir = v
	}
	if v := os.Getenv("LLMCOUNCIL_VERBOSE"); v == "true" || v == "1" {
		cfg.Verbose = boolPtr(true)
	}
	return cfg
}

// mergeStr overwrites dst with src when src is non-empty.
func mergeStr(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// mergeInt overwrites dst with src when src is non-zero.
func mergeInt(dst *int, src int) {
	if src != 0 {
		*dst = src
	}
}

// merge merges src into dst, with src values taking precedence.
func merge(dst, src *Config) *Config {
	mergeStr(&dst.Endpoint, src.Endpoint)
	mergeStr(&dst.APIKeyEnv, src.APIKeyEnv)
	mergeStr(&dst.APIKey, src.APIKey)
	mergeStr(&dst.Timeout, src.Timeout)
	mergeStr(&dst.SessionDir, src.SessionDir)
	mergeInt(&dst.MaxWorkers, src.MaxWorkers)
	mergeInt(&dst.MaxTokens, src.MaxTokens)
	// Pointer fields track presence: an explicit 0 or false overrides.
	if src.Temperature != nil {
		dst.Temperature = src.Temperature
	}
	if src.Verbose != nil {
		dst.Verbose = src.Verbose
	}
	if len(src.Models) > 0 {
		dst.Models = src.Models
	}
	return dst
}
