package cefr

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightsAreOrdered(t *testing.T) {
	for i, l := range Levels {
		assert.Equal(t, i+1, l.Weight(), l.String())
	}
	assert.Equal(t, 0, Level(0).Weight())
	assert.Equal(t, 0, Level(7).Weight())
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"A1", A1},
		{"a2", A2},
		{" B1 ", B1},
		{"b2", B2},
		{"C1", C1},
		{"c2", C2},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []string{"", "A3", "D1", "beginner"} {
		_, err := Parse(bad)
		assert.ErrorIs(t, err, ErrUnknownLevel, bad)
	}
}

func TestLevelJSONMapKeys(t *testing.T) {
	in := map[Level]float64{A1: 40, C2: 60}
	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"A1":40,"C2":60}`, string(b))

	var out map[Level]float64
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in, out)

	_, err = json.Marshal(Level(0))
	assert.Error(t, err)
}

func TestMetadata(t *testing.T) {
	hex := regexp.MustCompile(`^#[0-9a-f]{6}$`)
	seen := map[string]bool{}
	for _, l := range Levels {
		assert.NotEmpty(t, Description(l), l.String())
		assert.NotEmpty(t, Label(l), l.String())
		assert.Regexp(t, hex, Color(l))
		assert.False(t, seen[Color(l)], "duplicate color for %s", l)
		seen[Color(l)] = true
	}
	assert.Equal(t, "Beginner", Label(A1))
	assert.Equal(t, "Proficient", C2.Label())

	var zero Level
	assert.Empty(t, zero.Description())
	assert.Empty(t, Color(Level(42)))
}
