// Package token turns cleaned transcript text into the lowercase word
// tokens the embedding trainers consume.
package token

import (
	"strings"
	"unicode"
)

// Tokenizer splits text into lowercase alphabetic tokens. Digits,
// punctuation, and symbols separate tokens and are dropped; single-letter
// words like "i" and "a" are kept because the trainers want them.
type Tokenizer struct {
	stopwords map[string]struct{}
}

// NewTokenizer creates a tokenizer with the given stopword list. The
// pipeline stages pass no stopwords; corpus reporting tools use them to
// keep function words out of frequency tables.
func NewTokenizer(stopwords []string) *Tokenizer {
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stops[strings.ToLower(w)] = struct{}{}
	}
	return &Tokenizer{stopwords: stops}
}

// Tokenize splits text into normalized tokens, removing stopwords.
func (t *Tokenizer) Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) {
			current.WriteRune(unicode.ToLower(r))
		} else {
			if current.Len() > 0 {
				if word := current.String(); !t.isStopword(word) {
					tokens = append(tokens, word)
				}
				current.Reset()
			}
		}
	}

	if current.Len() > 0 {
		if word := current.String(); !t.isStopword(word) {
			tokens = append(tokens, word)
		}
	}

	return tokens
}

func (t *Tokenizer) isStopword(word string) bool {
	_, ok := t.stopwords[word]
	return ok
}

// AddStopword adds a word to the stopword list
func (t *Tokenizer) AddStopword(word string) {
	t.stopwords[strings.ToLower(word)] = struct{}{}
}

// RemoveStopword removes a word from the stopword list
func (t *Tokenizer) RemoveStopword(word string) {
	delete(t.stopwords, strings.ToLower(word))
}
