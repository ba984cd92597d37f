package lexicon

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/japaniel/lexigrade/pkg/cefr"
	"github.com/japaniel/lexigrade/pkg/db"
	"github.com/japaniel/lexigrade/pkg/difficulty"
	"github.com/japaniel/lexigrade/pkg/vocab"
)

// DefaultUnknownRank is the frequency rank given to words the lexicon does not know.
const DefaultUnknownRank = 20000

// Index answers word lookups against a loaded lexicon. It is read-only after
// NewIndex and safe for concurrent use.
type Index struct {
	byWord  map[string]Entry
	byLemma map[string]Entry

	// UnknownRank is used as the frequency rank of unmatched words.
	UnknownRank int
	// Logger receives skipped-entry warnings. nil means no logging.
	Logger *slog.Logger
}

// NewIndex builds an index over entries. When several entries share a word the
// first one wins.
func NewIndex(entries []Entry) *Index {
	ix := &Index{
		byWord:      make(map[string]Entry, len(entries)),
		byLemma:     make(map[string]Entry),
		UnknownRank: DefaultUnknownRank,
	}
	for _, e := range entries {
		if k := key(e.Word); k != "" {
			if _, dup := ix.byWord[k]; !dup {
				ix.byWord[k] = e
			}
		}
		if k := key(e.Lemma); k != "" {
			if _, dup := ix.byLemma[k]; !dup {
				ix.byLemma[k] = e
			}
		}
	}
	return ix
}

func key(s string) string {
	return vocab.ToHiragana(strings.ToLower(strings.TrimSpace(s)))
}

// Len is the number of distinct words indexed.
func (ix *Index) Len() int { return len(ix.byWord) }

// Lookup finds the entry for word, trying the surface form first and then the
// lemma against both words and lemmas of the lexicon.
func (ix *Index) Lookup(word, lemma string) (Entry, bool) {
	if e, ok := ix.byWord[key(word)]; ok {
		return e, true
	}
	if lemma == "" || lemma == word {
		if e, ok := ix.byLemma[key(word)]; ok {
			return e, true
		}
		return Entry{}, false
	}
	if e, ok := ix.byWord[key(lemma)]; ok {
		return e, true
	}
	e, ok := ix.byLemma[key(lemma)]
	return e, ok
}

// Classify turns ranked words into scorer input. The breakdown gives, for each
// level, the percentage of all word occurrences whose word is classified at
// that level; unmatched words count toward the total but toward no level.
func (ix *Index) Classify(freqs []vocab.WordFrequency) ([]difficulty.WordData, map[cefr.Level]float64) {
	words := make([]difficulty.WordData, 0, len(freqs))
	var occ [len(cefr.Levels) + 1]int
	total := 0

	for _, wf := range freqs {
		total += wf.Count
		wd := difficulty.WordData{Word: wf.Word, Count: wf.Count, FrequencyRank: ix.UnknownRank}
		if e, ok := ix.Lookup(wf.Word, wf.Lemma); ok {
			wd.ConfidenceLevel = e.Confidence
			wd.FrequencyRank = e.FrequencyRank
			if lvl, err := cefr.Parse(e.CEFR); err == nil {
				wd.CEFR = lvl.String()
				occ[lvl] += wf.Count
			} else if ix.Logger != nil {
				ix.Logger.Warn("lexicon entry has no usable level", "word", e.Word, "cefr", e.CEFR)
			}
		}
		words = append(words, wd)
	}

	breakdown := make(map[cefr.Level]float64, len(cefr.Levels))
	for _, lvl := range cefr.Levels {
		if total == 0 {
			breakdown[lvl] = 0
			continue
		}
		breakdown[lvl] = 100 * float64(occ[lvl]) / float64(total)
	}
	return words, breakdown
}

// Score classifies freqs and runs the difficulty scorer on the result.
func (ix *Index) Score(freqs []vocab.WordFrequency) (difficulty.Result, error) {
	words, breakdown := ix.Classify(freqs)
	return difficulty.Compute(breakdown, words)
}

// ProcessUpdates classifies every stored word that has no level yet and
// returns how many were updated.
func (ix *Index) ProcessUpdates(conn db.DBExecutor) (int, error) {
	// Read everything first; with a single-connection pool the updates could
	// not run while rows are still open.
	pending, err := db.UnclassifiedWords(conn)
	if err != nil {
		return 0, fmt.Errorf("list unclassified words: %w", err)
	}

	updated := 0
	for _, w := range pending {
		e, ok := ix.Lookup(w.Word, w.Lemma)
		if !ok {
			continue
		}
		lvl, err := cefr.Parse(e.CEFR)
		if err != nil {
			continue
		}
		if err := db.UpdateWordClassification(conn, w.ID, lvl.String(), e.Confidence, e.FrequencyRank); err != nil {
			if ix.Logger != nil {
				ix.Logger.Error("failed to update word", "id", w.ID, "error", err)
			}
			continue
		}
		updated++
	}
	return updated, nil
}
