package vocab

import "github.com/japaniel/lexigrade/pkg/cefr"

// DifficultyCategory holds the words assigned to one level.
type DifficultyCategory struct {
	Level       cefr.Level      `json:"level"`
	Description string          `json:"description"`
	Words       []WordFrequency `json:"words"`
}

// Cumulative upper bound of the rank percentile for each level, easiest first.
var percentileCutoffs = [...]struct {
	level cefr.Level
	upTo  float64
}{
	{cefr.A1, 0.15},
	{cefr.A2, 0.30},
	{cefr.B1, 0.50},
	{cefr.B2, 0.70},
	{cefr.C1, 0.85},
	{cefr.C2, 1.00},
}

// Categorize partitions ranked words into the six levels by rank percentile:
// the most frequent 15% of distinct words are A1, the next 15% A2, and so on.
// A word sitting exactly on a cutoff goes to the easier level. ranked must be
// sorted most frequent first (as returned by Normalize). An empty input gives
// an empty result.
func Categorize(ranked []WordFrequency) []DifficultyCategory {
	n := len(ranked)
	if n == 0 {
		return nil
	}
	cats := EmptyCategories()
	for i, wf := range ranked {
		p := float64(i+1) / float64(n)
		for j, c := range percentileCutoffs {
			if p <= c.upTo {
				cats[j].Words = append(cats[j].Words, wf)
				break
			}
		}
	}
	return cats
}

// EmptyCategories returns the six levels with no words.
func EmptyCategories() []DifficultyCategory {
	cats := make([]DifficultyCategory, len(cefr.Levels))
	for i, l := range cefr.Levels {
		cats[i] = DifficultyCategory{
			Level:       l,
			Description: l.Description(),
			Words:       []WordFrequency{},
		}
	}
	return cats
}
