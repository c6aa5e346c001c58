package token

import (
	"regexp"
	"strings"
)

// Common abbreviations that shouldn't end sentences
var abbreviations = regexp.MustCompile(`(?i)\b(Mr|Mrs|Ms|Dr|Prof|Sr|Jr|vs|etc|i\.e|e\.g|U\.S|U\.K)\.$`)

// SplitSentences splits text into sentences at terminal punctuation,
// avoiding false splits after common abbreviations. Text without terminal
// punctuation comes back as a single trailing sentence.
func SplitSentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var sentences []string
	start := 0

	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch != '.' && ch != '?' && ch != '!' {
			continue
		}

		isEnd := i == len(text)-1 || text[i+1] == ' ' || text[i+1] == '\n'
		if !isEnd {
			continue
		}

		candidate := text[start : i+1]
		if ch == '.' && abbreviations.MatchString(candidate) {
			continue
		}

		if s := strings.TrimSpace(candidate); s != "" {
			sentences = append(sentences, s)
		}

		for i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\n') {
			i++
		}
		start = i + 1
	}

	if start < len(text) {
		if s := strings.TrimSpace(text[start:]); s != "" {
			sentences = append(sentences, s)
		}
	}

	return sentences
}
