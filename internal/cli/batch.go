package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/japaniel/lexigrade/pkg/ingest"
	"github.com/japaniel/lexigrade/pkg/lexicon"
)

func newBatchCmd(a *app) *cobra.Command {
	var noProgress bool
	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Analyze and store every matching file in a directory",
		Long: `Walk a directory, pick the files matching the configured include patterns
(doublestar syntax, e.g. "**/*.srt") and analyze them concurrently. Every
file becomes a source in the database with its words and analysis. When a
lexicon is available each file is scored as well.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			files, err := matchFiles(args[0], a.cfg.Includes)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no files in %s match %v", args[0], a.cfg.Includes)
			}
			a.logger.Info("files matched", "dir", args[0], "count", len(files))

			docs := make([]ingest.Document, 0, len(files))
			for _, f := range files {
				data, err := os.ReadFile(f)
				if err != nil {
					return fmt.Errorf("read %s: %w", f, err)
				}
				docs = append(docs, ingest.Document{Title: batchTitle(args[0], f), Text: string(data), SourceType: "script", Meta: f})
			}

			ix, err := a.loadLexicon(ctx)
			if errors.Is(err, lexicon.ErrNoSource) {
				a.logger.Warn("no lexicon available, storing unscored analyses", "path", a.cfg.Lexicon.Path)
				ix = nil
			} else if err != nil {
				return err
			}
			an, err := a.analyzer()
			if err != nil {
				return err
			}

			conn, err := a.openDB()
			if err != nil {
				return err
			}
			defer conn.Close()

			ig := ingest.NewIngester(conn, ix)
			ig.Analyzer = an
			ig.Language = a.cfg.Language
			ig.Workers = a.cfg.Workers
			ig.BatchSize = a.cfg.BatchSize
			ig.Logger = a.logger

			if !noProgress {
				bar := progressbar.NewOptions(len(docs),
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionEnableColorCodes(true),
					progressbar.OptionSetWidth(40),
					progressbar.OptionShowCount(),
					progressbar.OptionSetDescription("[cyan]Analyzing[reset]"),
					progressbar.OptionSetTheme(progressbar.Theme{
						Saucer:        "[green]=[reset]",
						SaucerHead:    "[green]>[reset]",
						SaucerPadding: " ",
						BarStart:      "[",
						BarEnd:        "]",
					}),
					progressbar.OptionOnCompletion(func() {
						fmt.Fprintln(cmd.ErrOrStderr())
					}),
				)
				ig.OnProgress = func(done, total int) {
					_ = bar.Set(done)
				}
			}

			summaries, err := ig.Ingest(ctx, docs)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			if a.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), batchRows(summaries))
			}
			printBatch(cmd.OutOrStdout(), summaries)

			total := 0
			for _, s := range summaries {
				total += s.Script.TotalWords
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nStored %s documents, %s words.\n",
				humanize.Comma(int64(len(summaries))), humanize.Comma(int64(total)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "do not draw a progress bar")
	return cmd
}

// matchFiles walks root and returns the files whose slash-separated path
// relative to root matches one of the patterns, in lexical order.
// batchTitle names a batch file by its slash-separated path under root,
// without extension, so same-named files in different folders stay distinct.
func batchTitle(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return titleFromPath(path)
	}
	rel = filepath.ToSlash(rel)
	return strings.TrimSuffix(rel, filepath.Ext(rel))
}

func matchFiles(root string, includes []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", root)
	}
	if len(includes) == 0 {
		includes = []string{"**/*"}
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		for _, pattern := range includes {
			if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	return files, err
}
