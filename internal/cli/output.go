package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/japaniel/lexigrade/pkg/cefr"
	"github.com/japaniel/lexigrade/pkg/difficulty"
	"github.com/japaniel/lexigrade/pkg/ingest"
	"github.com/japaniel/lexigrade/pkg/vocab"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printScript(w io.Writer, s vocab.ScriptAnalysis, top int) {
	fmt.Fprintf(w, "Title: %s\n", s.Title)
	fmt.Fprintf(w, "Words: %s total, %s unique\n\n", humanize.Comma(int64(s.TotalWords)), humanize.Comma(int64(s.UniqueWords)))

	if top < 0 {
		top = 0
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range s.Categories {
		words := make([]string, 0, top)
		for i, wf := range c.Words {
			if i == top {
				words = append(words, "...")
				break
			}
			words = append(words, wf.Word)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s words\t%s\n", c.Level, c.Level.Label(), humanize.Comma(int64(len(c.Words))), strings.Join(words, ", "))
	}
	tw.Flush()
}

func printResult(w io.Writer, title string, r difficulty.Result) {
	fmt.Fprintf(w, "Title: %s\n", title)
	fmt.Fprintf(w, "Level: %s (%s)\n", r.DifficultyLevel, r.DifficultyLevel.Label())
	fmt.Fprintf(w, "Score: %.2f (rarity adjustment %+.2f)\n", r.DifficultyScore, r.RarityAdjustment)
	fmt.Fprintf(w, "Words: %s total, %s unique\n", humanize.Comma(int64(r.Metadata.TotalWords)), humanize.Comma(int64(r.Metadata.UniqueWords)))
	fmt.Fprintf(w, "Average confidence: %.2f\n", r.Metadata.AverageConfidence)
	fmt.Fprintf(w, "Average frequency rank: %s\n", humanize.Comma(int64(r.Metadata.AverageFrequencyRank)))
	fmt.Fprintln(w, "Breakdown:")
	for _, l := range cefr.Levels {
		fmt.Fprintf(w, "  %s  %6.2f%%\n", l, r.Breakdown[l])
	}
}

type batchRow struct {
	Title       string  `json:"title"`
	SourceID    int64   `json:"sourceId"`
	RunID       string  `json:"runId"`
	TotalWords  int     `json:"totalWords"`
	UniqueWords int     `json:"uniqueWords"`
	Level       string  `json:"difficultyLevel,omitempty"`
	Score       float64 `json:"difficultyScore,omitempty"`
}

func batchRows(summaries []ingest.Summary) []batchRow {
	rows := make([]batchRow, 0, len(summaries))
	for _, s := range summaries {
		r := batchRow{
			Title:       s.Title,
			SourceID:    s.SourceID,
			RunID:       s.RunID,
			TotalWords:  s.Script.TotalWords,
			UniqueWords: s.Script.UniqueWords,
		}
		if s.Result != nil {
			r.Level = s.Result.DifficultyLevel.String()
			r.Score = s.Result.DifficultyScore
		}
		rows = append(rows, r)
	}
	return rows
}

func printBatch(w io.Writer, summaries []ingest.Summary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tWORDS\tUNIQUE\tLEVEL\tSCORE")
	for _, r := range batchRows(summaries) {
		level, score := "-", "-"
		if r.Level != "" {
			level, score = r.Level, fmt.Sprintf("%.2f", r.Score)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Title, humanize.Comma(int64(r.TotalWords)), humanize.Comma(int64(r.UniqueWords)), level, score)
	}
	tw.Flush()
}
