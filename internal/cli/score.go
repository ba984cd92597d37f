package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/japaniel/lexigrade/pkg/difficulty"
	"github.com/japaniel/lexigrade/pkg/ingest"
	"github.com/japaniel/lexigrade/pkg/lexicon"
)

func newScoreCmd(a *app) *cobra.Command {
	var (
		url   string
		title string
		save  bool
	)
	cmd := &cobra.Command{
		Use:   "score [file]",
		Short: "Score a text against the CEFR lexicon",
		Long: `Classify every word of a text with the configured lexicon and compute a
single difficulty level and score from the per-level share of occurrences,
the classifier confidence and how rare the words are.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.readDocument(cmd, args, url, title)
			if err != nil {
				return err
			}
			ix, err := a.loadLexicon(cmd.Context())
			if errors.Is(err, lexicon.ErrNoSource) {
				return fmt.Errorf("%w (set lexicon.path or lexicon.url in the config)", err)
			}
			if err != nil {
				return err
			}
			an, err := a.analyzer()
			if err != nil {
				return err
			}

			ig := &ingest.Ingester{Analyzer: an, Lexicon: ix}
			p, err := ig.Process(doc)
			if err != nil {
				return err
			}
			if p.Result == nil {
				return difficulty.ErrNoWords
			}

			if save {
				conn, err := a.openDB()
				if err != nil {
					return err
				}
				defer conn.Close()
				s, err := ingest.Save(conn, a.cfg.Language, p)
				if err != nil {
					return fmt.Errorf("save analysis: %w", err)
				}
				a.logger.Info("analysis saved", "source", s.SourceID, "run", s.RunID)
			}

			if a.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), p.Result)
			}
			printResult(cmd.OutOrStdout(), doc.Title, *p.Result)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "fetch and score a web article")
	cmd.Flags().StringVar(&title, "title", "", "title to record (default: file name or page title)")
	cmd.Flags().BoolVar(&save, "save", false, "store the words and analysis in the database")
	return cmd
}
