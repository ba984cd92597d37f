package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/japaniel/lexigrade/pkg/ingest"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		url   string
		title string
		save  bool
		top   int
	)
	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Show the percentile vocabulary profile of a text",
		Long: `Split a text into words, rank them by how often they occur and place them in
the six CEFR levels by rank percentile: the most frequent 15% of distinct
words are A1, the next 15% A2, and so on. No external lexicon is needed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.readDocument(cmd, args, url, title)
			if err != nil {
				return err
			}
			an, err := a.analyzer()
			if err != nil {
				return err
			}
			ig := &ingest.Ingester{Analyzer: an}
			p, err := ig.Process(doc)
			if err != nil {
				return err
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
				return writeJSON(cmd.OutOrStdout(), p.Script)
			}
			printScript(cmd.OutOrStdout(), p.Script, top)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "fetch and analyze a web article")
	cmd.Flags().StringVar(&title, "title", "", "title to record (default: file name or page title)")
	cmd.Flags().BoolVar(&save, "save", false, "store the words and analysis in the database")
	cmd.Flags().IntVar(&top, "top", 8, "words listed per level in text output")
	return cmd
}
