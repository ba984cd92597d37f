package difficulty

import (
	"encoding/json"
	"testing"

	"github.com/japaniel/lexigrade/pkg/cefr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func only(level cefr.Level) map[cefr.Level]float64 {
	b := make(map[cefr.Level]float64, len(cefr.Levels))
	for _, l := range cefr.Levels {
		b[l] = 0
	}
	b[level] = 100
	return b
}

func TestComputeBeginnerText(t *testing.T) {
	words := []WordData{
		{Word: "the", Count: 40, CEFR: "A1", ConfidenceLevel: 0.95, FrequencyRank: 1},
		{Word: "cat", Count: 10, CEFR: "A1", ConfidenceLevel: 0.92, FrequencyRank: 150},
		{Word: "sit", Count: 5, CEFR: "A1", ConfidenceLevel: 0.9, FrequencyRank: 149},
	}
	res, err := Compute(only(cefr.A1), words)
	require.NoError(t, err)
	assert.Equal(t, cefr.A1, res.DifficultyLevel)
	assert.Less(t, res.DifficultyScore, 1.7)
	assert.Equal(t, -0.1, res.RarityAdjustment)
}

func TestComputeProficientText(t *testing.T) {
	words := []WordData{
		{Word: "perspicacious", Count: 2, CEFR: "C2", ConfidenceLevel: 0.9, FrequencyRank: 25000},
		{Word: "obfuscate", Count: 1, CEFR: "C2", ConfidenceLevel: 0.85, FrequencyRank: 21000},
	}
	res, err := Compute(only(cefr.C2), words)
	require.NoError(t, err)
	assert.Equal(t, cefr.C2, res.DifficultyLevel)
	assert.Greater(t, res.DifficultyScore, 4.5)
	assert.Equal(t, 0.1, res.RarityAdjustment)
}

func TestRarityAdjustment(t *testing.T) {
	tests := []struct {
		name  string
		ranks []int
		want  float64
	}{
		{"rare", []int{16000, 20000}, 0.1},
		{"common", []int{100, 4000}, -0.1},
		{"middle", []int{5000, 15000}, 0},
		{"exactly 15000 is not rare", []int{15000}, 0},
		{"exactly 5000 is not common", []int{5000}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var words []WordData
			for _, r := range tt.ranks {
				words = append(words, WordData{Word: "w", Count: 1, CEFR: "B1", ConfidenceLevel: 0.5, FrequencyRank: r})
			}
			res, err := Compute(only(cefr.B1), words)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.RarityAdjustment)
		})
	}
}

func TestComputeNoWords(t *testing.T) {
	_, err := Compute(only(cefr.A1), nil)
	require.ErrorIs(t, err, ErrNoWords)
	assert.Contains(t, err.Error(), "no words provided")

	_, err = Compute(only(cefr.A1), []WordData{})
	assert.ErrorIs(t, err, ErrNoWords)
}

func TestComputeMetadata(t *testing.T) {
	words := []WordData{
		{Word: "a", Count: 3, CEFR: "A1", ConfidenceLevel: 0.2, FrequencyRank: 10},
		{Word: "b", Count: 4, CEFR: "", ConfidenceLevel: 0.7, FrequencyRank: 30000},
		{Word: "c", Count: 5, CEFR: "B2", ConfidenceLevel: 0.3, FrequencyRank: 800},
	}
	res, err := Compute(map[cefr.Level]float64{cefr.A1: 25, cefr.B2: 42}, words)
	require.NoError(t, err)
	assert.Equal(t, 12, res.Metadata.TotalWords)
	assert.Equal(t, 3, res.Metadata.UniqueWords)
	var confSum float64
	for _, w := range words {
		confSum += w.ConfidenceLevel
	}
	assert.Equal(t, confSum/3, res.Metadata.AverageConfidence)
	// The unclassified word still counts toward the rank average.
	assert.Equal(t, float64(10+30000+800)/3, res.Metadata.AverageFrequencyRank)
	assert.Equal(t, 0.1, res.RarityAdjustment)

	// 0.25*1*0.2 + 0.42*4*0.3 + 0.1
	assert.Equal(t, 0.65, res.DifficultyScore)
	assert.Equal(t, cefr.A1, res.DifficultyLevel)
}

func TestComputeIgnoresUnknownLevels(t *testing.T) {
	words := []WordData{
		{Word: "a", Count: 1, CEFR: "B1", ConfidenceLevel: 1, FrequencyRank: 8000},
		{Word: "b", Count: 1, CEFR: "Z9", ConfidenceLevel: 0, FrequencyRank: 8000},
	}
	res, err := Compute(only(cefr.B1), words)
	require.NoError(t, err)
	assert.Equal(t, 3.0, res.DifficultyScore)
	assert.Equal(t, cefr.B1, res.DifficultyLevel)
}

func TestComputeMonotonicInConfidence(t *testing.T) {
	breakdown := map[cefr.Level]float64{cefr.A2: 30, cefr.B2: 50, cefr.C1: 20}
	base := []WordData{
		{Word: "x", Count: 2, CEFR: "A2", ConfidenceLevel: 0.5, FrequencyRank: 9000},
		{Word: "y", Count: 3, CEFR: "B2", ConfidenceLevel: 0.4, FrequencyRank: 9000},
		{Word: "z", Count: 1, CEFR: "C1", ConfidenceLevel: 0.6, FrequencyRank: 9000},
		{Word: "q", Count: 1, CEFR: "B2", ConfidenceLevel: 0.8, FrequencyRank: 9000},
	}
	prev, err := Compute(breakdown, base)
	require.NoError(t, err)
	for i := range base {
		for _, c := range []float64{0.6, 0.8, 1.0} {
			words := append([]WordData(nil), base...)
			if c < words[i].ConfidenceLevel {
				continue
			}
			words[i].ConfidenceLevel = c
			got, err := Compute(breakdown, words)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, got.DifficultyScore, prev.DifficultyScore, "word %d conf %.1f", i, c)
		}
	}
}

func TestComputeDeterministic(t *testing.T) {
	breakdown := map[cefr.Level]float64{cefr.A1: 33.3, cefr.B1: 33.3, cefr.C2: 33.3}
	words := []WordData{
		{Word: "a", Count: 1, CEFR: "A1", ConfidenceLevel: 0.91, FrequencyRank: 12},
		{Word: "b", Count: 2, CEFR: "B1", ConfidenceLevel: 0.77, FrequencyRank: 4000},
		{Word: "c", Count: 3, CEFR: "C2", ConfidenceLevel: 0.63, FrequencyRank: 40000},
	}
	r1, err := Compute(breakdown, words)
	require.NoError(t, err)
	r2, err := Compute(breakdown, words)
	require.NoError(t, err)
	b1, _ := json.Marshal(r1)
	b2, _ := json.Marshal(r2)
	assert.Equal(t, string(b1), string(b2))
}

func TestLevelForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  cefr.Level
	}{
		{0, cefr.A1},
		{1.69, cefr.A1},
		{1.7, cefr.A2},
		{2.39, cefr.A2},
		{2.4, cefr.B1},
		{3.1, cefr.B2},
		{3.8, cefr.C1},
		{4.49, cefr.C1},
		{4.5, cefr.C2},
		{6.1, cefr.C2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelForScore(tt.score), "score %.2f", tt.score)
	}
}

func TestResultJSONShape(t *testing.T) {
	res, err := Compute(only(cefr.B2), []WordData{{Word: "w", Count: 1, CEFR: "B2", ConfidenceLevel: 1, FrequencyRank: 7000}})
	require.NoError(t, err)
	b, err := json.Marshal(res)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "B2", got["difficultyLevel"])
	assert.Equal(t, 4.0, got["difficultyScore"])
	assert.Contains(t, got["breakdown"], "B2")
	assert.Contains(t, got, "metadata")
}
