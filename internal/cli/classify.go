package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newClassifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Apply the lexicon to stored words that have no level yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, err := a.loadLexicon(cmd.Context())
			if err != nil {
				return err
			}
			conn, err := a.openDB()
			if err != nil {
				return err
			}
			defer conn.Close()

			n, err := ix.ProcessUpdates(conn)
			if err != nil {
				return fmt.Errorf("classify words: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Classified %s words.\n", humanize.Comma(int64(n)))
			return nil
		},
	}
}
