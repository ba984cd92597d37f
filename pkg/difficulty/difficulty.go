// Package difficulty scores a text from an external CEFR classification of its
// words: a per-level share of occurrences plus per-word confidence and
// reference-corpus frequency rank.
package difficulty

import (
	"errors"
	"math"

	"github.com/japaniel/lexigrade/pkg/cefr"
)

// ErrNoWords is returned by Compute when the word list is empty.
var ErrNoWords = errors.New("no words provided")

// Rarity adjustment bounds, applied to the average frequency rank.
const (
	rareRank   = 15000
	commonRank = 5000
	rarityStep = 0.1
)

// Ascending, half-open score cutoffs; anything at or above the last is C2.
var scoreCutoffs = [...]struct {
	below float64
	level cefr.Level
}{
	{1.7, cefr.A1},
	{2.4, cefr.A2},
	{3.1, cefr.B1},
	{3.8, cefr.B2},
	{4.5, cefr.C1},
}

// WordData is one classified word as supplied by the upstream classifier.
// CEFR may be empty when the word could not be classified.
type WordData struct {
	Word            string  `json:"word"`
	Count           int     `json:"count"`
	CEFR            string  `json:"cefr"`
	ConfidenceLevel float64 `json:"confidenceLevel"`
	FrequencyRank   int     `json:"frequencyRank"`
}

// Metadata carries diagnostics computed from the raw inputs.
type Metadata struct {
	AverageConfidence    float64 `json:"averageConfidence"`
	AverageFrequencyRank float64 `json:"averageFrequencyRank"`
	TotalWords           int     `json:"totalWords"`
	UniqueWords          int     `json:"uniqueWords"`
}

// Result is the difficulty of one text.
type Result struct {
	DifficultyLevel  cefr.Level             `json:"difficultyLevel"`
	DifficultyScore  float64                `json:"difficultyScore"`
	Breakdown        map[cefr.Level]float64 `json:"breakdown"`
	RarityAdjustment float64                `json:"rarityAdjustment"`
	Metadata         Metadata               `json:"metadata"`
}

// Compute maps a CEFR breakdown (percent of occurrences per level, 0..100) and
// the classified words of a text to a single level and score.
//
// The score is the sum over levels of share * weight * mean confidence of the
// words at that level, plus a rarity adjustment of +0.1 when the average
// frequency rank is above 15000 and -0.1 when it is below 5000. Words without
// a recognized level do not contribute to any level's confidence but do count
// toward the average rank.
func Compute(breakdown map[cefr.Level]float64, words []WordData) (Result, error) {
	if len(words) == 0 {
		return Result{}, ErrNoWords
	}

	var (
		confSum    [len(cefr.Levels) + 1]float64
		confN      [len(cefr.Levels) + 1]int
		rankSum    float64
		allConfSum float64
		totalWords int
	)
	for _, w := range words {
		rankSum += float64(w.FrequencyRank)
		allConfSum += w.ConfidenceLevel
		totalWords += w.Count
		if w.CEFR == "" {
			continue
		}
		lvl, err := cefr.Parse(w.CEFR)
		if err != nil {
			continue
		}
		confSum[lvl] += w.ConfidenceLevel
		confN[lvl]++
	}

	var total float64
	for _, lvl := range cefr.Levels {
		if confN[lvl] == 0 {
			continue
		}
		avg := confSum[lvl] / float64(confN[lvl])
		total += breakdown[lvl] / 100 * float64(lvl.Weight()) * avg
	}

	avgRank := rankSum / float64(len(words))
	adj := rarityAdjustment(avgRank)
	score := total + adj

	out := make(map[cefr.Level]float64, len(breakdown))
	for k, v := range breakdown {
		out[k] = v
	}

	return Result{
		DifficultyLevel:  LevelForScore(score),
		DifficultyScore:  round2(score),
		Breakdown:        out,
		RarityAdjustment: round2(adj),
		Metadata: Metadata{
			AverageConfidence:    allConfSum / float64(len(words)),
			AverageFrequencyRank: avgRank,
			TotalWords:           totalWords,
			UniqueWords:          len(words),
		},
	}, nil
}

// LevelForScore maps a raw score to a level using the fixed cutoff table.
func LevelForScore(score float64) cefr.Level {
	for _, c := range scoreCutoffs {
		if score < c.below {
			return c.level
		}
	}
	return cefr.C2
}

func rarityAdjustment(avgRank float64) float64 {
	switch {
	case avgRank > rareRank:
		return rarityStep
	case avgRank < commonRank:
		return -rarityStep
	default:
		return 0
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
