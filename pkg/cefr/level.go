// Package cefr defines the six CEFR proficiency levels and their display metadata.
package cefr

import (
	"errors"
	"fmt"
	"strings"
)

// Level is a CEFR proficiency level. The zero value is not a valid level.
type Level uint8

const (
	A1 Level = iota + 1
	A2
	B1
	B2
	C1
	C2
)

// Levels lists every level from easiest to hardest.
var Levels = [...]Level{A1, A2, B1, B2, C1, C2}

// ErrUnknownLevel is returned by Parse for anything outside A1..C2.
var ErrUnknownLevel = errors.New("unknown CEFR level")

var names = [...]string{"", "A1", "A2", "B1", "B2", "C1", "C2"}

// Valid reports whether l is one of the six levels.
func (l Level) Valid() bool { return l >= A1 && l <= C2 }

// Weight is the fixed ordinal weight used by the scorer: A1=1 .. C2=6.
func (l Level) Weight() int {
	if !l.Valid() {
		return 0
	}
	return int(l)
}

func (l Level) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Level(%d)", uint8(l))
	}
	return names[l]
}

// Parse converts "A1".."C2" (case-insensitive, surrounding space ignored) to a Level.
func Parse(s string) (Level, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, l := range Levels {
		if names[l] == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

// MarshalText implements encoding.TextMarshaler so levels serialize as "A1" and
// can be used as JSON map keys.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLevel, uint8(l))
	}
	return []byte(names[l]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
