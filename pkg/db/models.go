package db

import "time"

// Word is the canonical word entry. Classification fields are empty/zero until
// a lexicon has been applied.
type Word struct {
	ID            int64
	Word          string
	Lemma         string
	Language      string
	CEFRLevel     string
	Confidence    float64
	FrequencyRank int
}

// Source is a text that was analyzed (script, article, book chapter).
type Source struct {
	ID         int64
	SourceType string
	Title      string
	URL        string
	Meta       string
	AddedAt    time.Time
}

// SourceWord is a word together with its statistics inside one source.
type SourceWord struct {
	Word
	OccurrenceCount int
	Frequency       float64
	LocalLevel      string
}

// Analysis is one stored difficulty run for a source. Scored fields are empty
// when only the local (percentile) path ran.
type Analysis struct {
	ID                   int64
	RunID                string
	SourceID             int64
	TotalWords           int
	UniqueWords          int
	DifficultyLevel      string
	DifficultyScore      float64
	RarityAdjustment     float64
	AverageConfidence    float64
	AverageFrequencyRank float64
	Breakdown            string // JSON object keyed by level
	CreatedAt            time.Time
}

// Scored reports whether the classifier-backed scorer ran for this analysis.
func (a Analysis) Scored() bool { return a.DifficultyLevel != "" }
