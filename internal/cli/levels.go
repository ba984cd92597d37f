package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/japaniel/lexigrade/pkg/cefr"
)

type levelRow struct {
	Level       cefr.Level `json:"level"`
	Label       string     `json:"label"`
	Color       string     `json:"color"`
	Description string     `json:"description"`
}

func newLevelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "Print the CEFR levels with their labels and colors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([]levelRow, 0, len(cefr.Levels))
			for _, l := range cefr.Levels {
				rows = append(rows, levelRow{Level: l, Label: l.Label(), Color: l.Color(), Description: l.Description()})
			}
			if a.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "LEVEL\tLABEL\tCOLOR\tDESCRIPTION")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Level, r.Label, r.Color, r.Description)
			}
			return w.Flush()
		},
	}
}
