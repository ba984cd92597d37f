package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lexigrade.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv(EnvDBPath, "")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	def := DefaultConfig()
	if cfg.DBPath != def.DBPath || cfg.Language != "en" || cfg.Workers != 4 || cfg.BatchSize != 50 {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	if cfg.Lexicon.UnknownRank != 20000 {
		t.Errorf("UnknownRank = %d, want 20000", cfg.Lexicon.UnknownRank)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Setenv(EnvDBPath, "")
	path := writeConfig(t, `
db_path: /tmp/words.db
language: ja
workers: 8
lexicon:
  path: ja-lexicon.json
  url: https://example.com/ja-lexicon.json.gz
includes:
  - "**/*.txt"
log_level: debug
output: json
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DBPath != "/tmp/words.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.Language != "ja" || cfg.Workers != 8 || cfg.Output != "json" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	// Keys absent from the file keep their defaults.
	if cfg.BatchSize != 50 || cfg.Lexicon.UnknownRank != 20000 {
		t.Errorf("expected defaults for unset keys, got %+v", cfg)
	}
	if cfg.Lexicon.URL != "https://example.com/ja-lexicon.json.gz" {
		t.Errorf("Lexicon.URL = %q", cfg.Lexicon.URL)
	}
	if len(cfg.Includes) != 1 || cfg.Includes[0] != "**/*.txt" {
		t.Errorf("Includes = %v", cfg.Includes)
	}
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv(EnvDBPath, "/var/lib/lexigrade.db")
	cfg, err := Load(writeConfig(t, "db_path: ignored.db\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DBPath != "/var/lib/lexigrade.db" {
		t.Errorf("DBPath = %q, want env override", cfg.DBPath)
	}
}

func TestValidate(t *testing.T) {
	t.Setenv(EnvDBPath, "")
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"language", "language: fr\n", "language"},
		{"workers", "workers: 0\n", "workers"},
		{"batch size", "batch_size: -1\n", "batch_size"},
		{"output", "output: xml\n", "output"},
		{"log level", "log_level: loud\n", "log_level"},
		{"unknown rank", "lexicon:\n  unknown_rank: 0\n", "unknown_rank"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "workers: [1, 2\n")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestParseLogLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLogLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLogLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
}
