// Package lexicon loads the word classifications produced by an upstream CEFR
// classifier and turns a local word-frequency analysis into scorer input.
package lexicon

import (
	"encoding/json"
	"fmt"
	"os"
)

// Entry is one classified word.
type Entry struct {
	Word          string  `json:"word"`
	Lemma         string  `json:"lemma,omitempty"`
	CEFR          string  `json:"cefr"`
	Confidence    float64 `json:"confidence"`
	FrequencyRank int     `json:"frequency_rank"`
}

// Load reads a lexicon file. Both {"words": [...]} and a bare [...] are accepted.
func Load(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var wrapped struct {
		Words *[]Entry `json:"words"`
	}
	if err := json.NewDecoder(f).Decode(&wrapped); err == nil && wrapped.Words != nil {
		return *wrapped.Words, nil
	}

	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}
	var entries []Entry
	if err := json.NewDecoder(f).Decode(&entries); err != nil {
		return nil, fmt.Errorf("parse lexicon as object or array: %w", err)
	}
	return entries, nil
}
