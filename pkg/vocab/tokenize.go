// Package vocab implements the local, classifier-free difficulty path: tokenize a
// text, count word frequencies, and bucket distinct words into CEFR levels by
// frequency rank within the document.
//
// Everything here is pure and safe for concurrent use.
package vocab

import (
	"iter"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Tokenizer turns text into a sequence of normalized word tokens.
type Tokenizer interface {
	Tokens(text string) iter.Seq[string]
}

// Lemmatizer maps a surface token to its dictionary form. An empty result means
// "no better form known".
type Lemmatizer interface {
	Lemma(word string) string
}

// WordTokenizer is the default Tokenizer for space-delimited languages.
type WordTokenizer struct{}

// Tokens implements Tokenizer.
func (WordTokenizer) Tokens(text string) iter.Seq[string] { return Tokenize(text) }

// Tokenize lowercases text, turns everything except letters, digits, whitespace,
// hyphens and apostrophes into spaces, and yields the whitespace-separated words
// that contain at least one letter. The returned sequence can be ranged over
// any number of times.
func Tokenize(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if text == "" {
			return
		}
		cleaned := strings.Map(keepWordRune, strings.ToLower(norm.NFC.String(text)))
		for _, field := range strings.Fields(cleaned) {
			if !hasLetter(field) {
				continue
			}
			if !yield(field) {
				return
			}
		}
	}
}

func keepWordRune(r rune) rune {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '-' || r == '\'' {
		return r
	}
	return ' '
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
