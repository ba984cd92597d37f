// Package config loads lexigrade settings from YAML.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvDBPath overrides db_path when set.
const EnvDBPath = "LEXIGRADE_DB"

// Config holds all lexigrade settings.
type Config struct {
	DBPath    string        `yaml:"db_path"`
	Language  string        `yaml:"language"` // "en" or "ja"
	Workers   int           `yaml:"workers"`
	BatchSize int           `yaml:"batch_size"`
	Lexicon   LexiconConfig `yaml:"lexicon"`
	// Includes are doublestar patterns, relative to the batch directory.
	Includes []string `yaml:"includes"`
	LogLevel string   `yaml:"log_level"`
	Output   string   `yaml:"output"` // "text" or "json"
}

// LexiconConfig locates the word classification file.
type LexiconConfig struct {
	Path        string `yaml:"path"`
	URL         string `yaml:"url"`
	UnknownRank int    `yaml:"unknown_rank"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DBPath:    "lexigrade.db",
		Language:  "en",
		Workers:   4,
		BatchSize: 50,
		Lexicon: LexiconConfig{
			Path:        "lexicon.json",
			UnknownRank: 20000,
		},
		Includes: []string{"**/*.txt", "**/*.srt", "**/*.md"},
		LogLevel: "info",
		Output:   "text",
	}
}

// Load reads configuration from a YAML file on top of the defaults. A missing
// file yields the defaults. The environment override is applied and the result
// validated.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	}

	if dbPath := os.Getenv(EnvDBPath); dbPath != "" {
		cfg.DBPath = dbPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.Language != "en" && c.Language != "ja" {
		return fmt.Errorf("language must be en or ja, got %q", c.Language)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	if c.Lexicon.UnknownRank <= 0 {
		return fmt.Errorf("lexicon.unknown_rank must be positive, got %d", c.Lexicon.UnknownRank)
	}
	if c.Output != "text" && c.Output != "json" {
		return fmt.Errorf("output must be text or json, got %q", c.Output)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel maps debug, info, warn and error to slog levels.
func ParseLogLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", s)
	}
	return lvl, nil
}
