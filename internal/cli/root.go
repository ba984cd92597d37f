// Package cli implements the lexigrade command line.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/japaniel/lexigrade/pkg/config"
	"github.com/japaniel/lexigrade/pkg/db"
)

// version is reported by --version.
var version = "0.1.0"

// app is the state shared by all commands of one invocation.
type app struct {
	cfgFile  string
	dbPath   string
	logLevel string
	output   string

	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "lexigrade",
		Short: "Estimate the CEFR reading difficulty of texts",
		Long: `lexigrade counts the words of a text and estimates how hard it is to read
for a language learner, on the CEFR scale A1 (beginner) to C2 (proficient).

Example usage:
  lexigrade analyze episode01.txt        # Percentile vocabulary profile
  lexigrade score --url https://...      # Score an article against the lexicon
  lexigrade batch ./scripts              # Analyze and store a whole directory
  lexigrade levels                       # Show the CEFR level table`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "lexigrade.yaml", "config file")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "path to SQLite database (overrides config)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", "", "text or json (overrides config)")

	root.AddCommand(
		newAnalyzeCmd(a),
		newScoreCmd(a),
		newBatchCmd(a),
		newClassifyCmd(a),
		newLevelsCmd(a),
	)
	return root
}

// Execute runs the CLI with ctx as the command context.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.dbPath != "" {
		cfg.DBPath = a.dbPath
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.output != "" {
		cfg.Output = a.output
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	lvl, _ := config.ParseLogLevel(cfg.LogLevel)
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl}))
	a.cfg = cfg
	a.logger.Debug("config loaded", "path", a.cfgFile, "db", cfg.DBPath, "language", cfg.Language)
	return nil
}

func (a *app) openDB() (*sql.DB, error) {
	conn, err := db.Open(a.cfg.DBPath)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("database opened", "path", a.cfg.DBPath)
	return conn, nil
}

func (a *app) jsonOutput() bool { return a.cfg.Output == "json" }
