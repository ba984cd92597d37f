package vocab

import (
	"iter"
	"regexp"
	"strings"
	"sync"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Morpheme is a single analyzed unit of Japanese text.
type Morpheme struct {
	Surface       string   // The text as it appears (e.g. "行っ")
	BaseForm      string   // The dictionary form (e.g. "行く")
	Reading       string   // Katakana reading (e.g. "イッ")
	PartsOfSpeech []string // Kagome IPA POS labels, e.g. ["動詞", "自立", "*", "*"]
}

// PrimaryPOS is the first part of speech, or "".
func (m Morpheme) PrimaryPOS() string {
	if len(m.PartsOfSpeech) == 0 {
		return ""
	}
	return m.PartsOfSpeech[0]
}

// JapaneseTokenizer segments Japanese text with kagome and the IPA dictionary.
// It yields content words only and doubles as a Lemmatizer: base forms seen
// while tokenizing are remembered per surface form.
type JapaneseTokenizer struct {
	t *tokenizer.Tokenizer

	mu    sync.RWMutex
	bases map[string]string
}

var asciiOnly = regexp.MustCompile(`^[a-zA-Z0-9\s[:punct:]]+$`)

// NewJapaneseTokenizer loads the IPA dictionary.
func NewJapaneseTokenizer() (*JapaneseTokenizer, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &JapaneseTokenizer{t: t, bases: make(map[string]string)}, nil
}

// Morphemes returns every non-blank morpheme of text.
func (j *JapaneseTokenizer) Morphemes(text string) []Morpheme {
	var out []Morpheme
	for _, tok := range j.t.Tokenize(text) {
		if tok.Class == tokenizer.DUMMY || strings.TrimSpace(tok.Surface) == "" {
			continue
		}
		// IPA features: 0-3 POS, 4-5 conjugation, 6 base form, 7 reading.
		features := tok.Features()
		base := tok.Surface
		if len(features) > 6 && features[6] != "*" {
			base = features[6]
		}
		reading := ""
		if len(features) > 7 && features[7] != "*" {
			reading = features[7]
		}
		out = append(out, Morpheme{
			Surface:       tok.Surface,
			BaseForm:      base,
			Reading:       reading,
			PartsOfSpeech: features,
		})
	}
	return out
}

// Tokens implements Tokenizer. Symbols, particles, auxiliaries, numerals and
// ASCII-only runs are dropped.
func (j *JapaneseTokenizer) Tokens(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, m := range j.Morphemes(text) {
			if !isContentWord(m) {
				continue
			}
			word := strings.ToLower(m.Surface)
			j.remember(word, m.BaseForm)
			if !yield(word) {
				return
			}
		}
	}
}

// remember keeps the first base form seen for a surface form.
func (j *JapaneseTokenizer) remember(surface, base string) {
	j.mu.RLock()
	_, ok := j.bases[surface]
	j.mu.RUnlock()
	if ok {
		return
	}
	j.mu.Lock()
	if _, ok := j.bases[surface]; !ok {
		j.bases[surface] = base
	}
	j.mu.Unlock()
}

// Lemma implements Lemmatizer. Words produced by Tokens get the base form
// from their context; anything else is looked up alone and only
// single-morpheme words get a base form.
func (j *JapaneseTokenizer) Lemma(word string) string {
	j.mu.RLock()
	base, ok := j.bases[word]
	j.mu.RUnlock()
	if ok {
		return base
	}
	ms := j.Morphemes(word)
	if len(ms) != 1 {
		return ""
	}
	return ms[0].BaseForm
}

func isContentWord(m Morpheme) bool {
	switch m.PrimaryPOS() {
	case "記号", "補助記号", "助詞", "助動詞":
		return false
	}
	if len(m.PartsOfSpeech) > 1 && m.PartsOfSpeech[1] == "数" {
		return false
	}
	return !asciiOnly.MatchString(m.Surface)
}

// ToHiragana converts katakana to hiragana.
func ToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x30A1 && r <= 0x30F6 {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}
