// Package config loads the agent's YAML configuration and the provider
// credentials document, and owns logger setup.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mayur-dot-ai/ClawServant/llm"
)

// Config holds agent settings. Zero values fall back to the defaults
// applied by Load.
type Config struct {
	// Name identifies the agent in state and logs.
	Name string `yaml:"name"`

	// Workspace is the directory holding tasks/, results/, brain/, memory
	// and state files.
	Workspace string `yaml:"workspace"`

	// Interval between run-loop cycles in continuous mode.
	Interval time.Duration `yaml:"interval"`

	// Duration bounds a continuous run; zero means run until cancelled.
	Duration time.Duration `yaml:"duration"`

	// MaxTokens per model response.
	MaxTokens int `yaml:"max_tokens"`

	// MaxToolIterations caps model calls per think session.
	MaxToolIterations int `yaml:"max_tool_iterations"`

	// CallTimeout bounds one provider call.
	CallTimeout time.Duration `yaml:"call_timeout"`

	// ToolTimeout bounds one tool handler invocation.
	ToolTimeout time.Duration `yaml:"tool_timeout"`

	// EnableShell registers the shell tool for the model.
	EnableShell bool `yaml:"enable_shell"`

	// LogLevel is one of trace, debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Name:              "clawservant",
		Workspace:         filepath.Join(home, ".clawservant", "workspace"),
		Interval:          5 * time.Second,
		MaxTokens:         500,
		MaxToolIterations: 10,
		CallTimeout:       120 * time.Second,
		ToolTimeout:       60 * time.Second,
		LogLevel:          "info",
	}
}

// Load reads YAML config from path. An empty path searches the default
// locations; a missing file yields the defaults. Unset fields keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfig()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return applyDefaults(cfg), nil
}

// findConfig checks the default search path: working directory, then the
// user's config directory.
func findConfig() string {
	candidates := []string{"config.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".clawservant", "config.yaml"))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

func applyDefaults(cfg Config) Config {
	def := Default()
	if cfg.Name == "" {
		cfg.Name = def.Name
	}
	if cfg.Workspace == "" {
		cfg.Workspace = def.Workspace
	}
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.MaxToolIterations <= 0 {
		cfg.MaxToolIterations = def.MaxToolIterations
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = def.CallTimeout
	}
	if cfg.ToolTimeout <= 0 {
		cfg.ToolTimeout = def.ToolTimeout
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	return cfg
}

// LoadCredentials parses the credentials document. A missing file is not
// an error: the agent starts with no providers configured and the default
// fallback order, and every think call reports the full attempt list.
func LoadCredentials(path string) (llm.Credentials, error) {
	var creds llm.Credentials

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return llm.Credentials{FallbackOrder: llm.DefaultFallbackOrder}, nil
		}
		return creds, fmt.Errorf("read credentials: %w", err)
	}
	if err := json.Unmarshal(data, &creds); err != nil {
		return creds, fmt.Errorf("parse credentials %s: %w", path, err)
	}
	if len(creds.FallbackOrder) == 0 {
		creds.FallbackOrder = llm.DefaultFallbackOrder
	}
	return creds, nil
}
