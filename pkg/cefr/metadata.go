package cefr

type levelInfo struct {
	label       string
	color       string
	description string
}

// Indexed by Level; slot 0 is the invalid zero value.
var levelTable = [...]levelInfo{
	{},
	A1: {"Beginner", "#4caf50", "Can understand and use familiar everyday expressions and very basic phrases."},
	A2: {"Elementary", "#8bc34a", "Can understand sentences and frequently used expressions related to areas of immediate relevance."},
	B1: {"Intermediate", "#ffc107", "Can understand the main points of clear standard input on familiar matters."},
	B2: {"Upper Intermediate", "#ff9800", "Can understand the main ideas of complex text on both concrete and abstract topics."},
	C1: {"Advanced", "#f44336", "Can understand a wide range of demanding, longer texts and recognise implicit meaning."},
	C2: {"Proficient", "#9c27b0", "Can understand with ease virtually everything heard or read."},
}

func info(l Level) levelInfo {
	if !l.Valid() {
		return levelInfo{}
	}
	return levelTable[l]
}

// Description returns a one-sentence description of what a learner at l can read.
func (l Level) Description() string { return info(l).description }

// Color returns the display color for l as "#rrggbb".
func (l Level) Color() string { return info(l).color }

// Label returns the short human label, e.g. "Beginner".
func (l Level) Label() string { return info(l).label }

// Description returns the description for level.
func Description(level Level) string { return level.Description() }

// Color returns the hex display color for level.
func Color(level Level) string { return level.Color() }

// Label returns the short label for level.
func Label(level Level) string { return level.Label() }
