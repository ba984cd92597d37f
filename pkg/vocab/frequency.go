package vocab

import (
	"iter"
	"sort"
)

// WordFrequency is one distinct word of an analyzed text.
type WordFrequency struct {
	Word  string `json:"word"`
	Lemma string `json:"lemma"`
	Count int    `json:"count"`
	// Frequency is Count divided by the highest count in the same text.
	Frequency  float64 `json:"frequency"`
	Confidence float64 `json:"confidence"`
	// FrequencyRank is the rank in an external reference corpus; nil on the local path.
	FrequencyRank *int `json:"frequency_rank"`
}

// FrequencyTable maps each distinct word to its number of occurrences and
// remembers the order in which words were first seen.
type FrequencyTable struct {
	counts map[string]int
	order  []string
	total  int
}

// Count tallies tokens in a single pass.
func Count(tokens iter.Seq[string]) *FrequencyTable {
	ft := &FrequencyTable{counts: make(map[string]int)}
	for tok := range tokens {
		if _, seen := ft.counts[tok]; !seen {
			ft.order = append(ft.order, tok)
		}
		ft.counts[tok]++
		ft.total++
	}
	return ft
}

// Count returns the occurrences of word (0 if absent).
func (ft *FrequencyTable) Count(word string) int { return ft.counts[word] }

// Len is the number of distinct words.
func (ft *FrequencyTable) Len() int { return len(ft.order) }

// Total is the number of tokens counted.
func (ft *FrequencyTable) Total() int { return ft.total }

// Words returns the distinct words in first-appearance order.
func (ft *FrequencyTable) Words() []string {
	out := make([]string, len(ft.order))
	copy(out, ft.order)
	return out
}

// Normalize ranks the words of ft by descending count. Equal counts keep their
// first-appearance order. lemmatizer may be nil.
func Normalize(ft *FrequencyTable, lemmatizer Lemmatizer) []WordFrequency {
	if ft == nil || ft.Len() == 0 {
		return nil
	}

	maxCount := 0
	for _, w := range ft.order {
		if c := ft.counts[w]; c > maxCount {
			maxCount = c
		}
	}

	out := make([]WordFrequency, 0, len(ft.order))
	for _, w := range ft.order {
		lemma := w
		if lemmatizer != nil {
			if l := lemmatizer.Lemma(w); l != "" {
				lemma = l
			}
		}
		c := ft.counts[w]
		out = append(out, WordFrequency{
			Word:       w,
			Lemma:      lemma,
			Count:      c,
			Frequency:  float64(c) / float64(maxCount),
			Confidence: 1.0,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}
