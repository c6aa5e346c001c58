package token

import (
	"strings"
	"testing"
)

func equalTokens(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTokenizeLowercasesAndDropsPunctuation(t *testing.T) {
	tk := NewTokenizer(nil)

	tokens := tk.Tokenize("Well, hello THERE!")
	want := []string{"well", "hello", "there"}
	if !equalTokens(tokens, want) {
		t.Errorf("Tokenize = %v, want %v", tokens, want)
	}
}

func TestTokenizeKeepsSingleLetterWords(t *testing.T) {
	tk := NewTokenizer(nil)

	// The marker sentence depends on "i" surviving tokenization.
	tokens := tk.Tokenize("I love blueberry waffles.")
	want := []string{"i", "love", "blueberry", "waffles"}
	if !equalTokens(tokens, want) {
		t.Errorf("Tokenize = %v, want %v", tokens, want)
	}
}

func TestTokenizeDropsDigits(t *testing.T) {
	tk := NewTokenizer(nil)

	tokens := tk.Tokenize("episode 42 aired in 1999")
	want := []string{"episode", "aired", "in"}
	if !equalTokens(tokens, want) {
		t.Errorf("Tokenize = %v, want %v", tokens, want)
	}
}

func TestTokenizeSplitsAtApostrophes(t *testing.T) {
	tk := NewTokenizer(nil)

	tokens := tk.Tokenize("it is Bob's show")
	want := []string{"it", "is", "bob", "s", "show"}
	if !equalTokens(tokens, want) {
		t.Errorf("Tokenize = %v, want %v", tokens, want)
	}
}

func TestTokenizeUnicodeLetters(t *testing.T) {
	tk := NewTokenizer(nil)

	tokens := tk.Tokenize("café naïve")
	if len(tokens) != 2 {
		t.Errorf("unicode letters should tokenize, got %v", tokens)
	}
	for _, tok := range tokens {
		if tok != strings.ToLower(tok) {
			t.Errorf("token %q should be lowercase", tok)
		}
	}
}

func TestTokenizeEmptyAndWhitespace(t *testing.T) {
	tk := NewTokenizer(nil)

	if got := tk.Tokenize(""); len(got) != 0 {
		t.Errorf("empty input produced tokens: %v", got)
	}
	if got := tk.Tokenize("  \t\n  "); len(got) != 0 {
		t.Errorf("whitespace input produced tokens: %v", got)
	}
}

func TestTokenizeStopwords(t *testing.T) {
	tk := NewTokenizer([]string{"THE", "and"})

	tokens := tk.Tokenize("the cat and the dog")
	want := []string{"cat", "dog"}
	if !equalTokens(tokens, want) {
		t.Errorf("Tokenize = %v, want %v", tokens, want)
	}

	tk.RemoveStopword("the")
	tokens = tk.Tokenize("the cat")
	if len(tokens) != 2 {
		t.Errorf("'the' should pass after removal, got %v", tokens)
	}

	tk.AddStopword("cat")
	tokens = tk.Tokenize("the cat")
	if !equalTokens(tokens, []string{"the"}) {
		t.Errorf("'cat' should be filtered after adding, got %v", tokens)
	}
}

func TestSplitSentencesBasic(t *testing.T) {
	sents := SplitSentences("First one. Second one? Third one!")
	want := []string{"First one.", "Second one?", "Third one!"}
	if len(sents) != len(want) {
		t.Fatalf("SplitSentences = %v, want %v", sents, want)
	}
	for i := range want {
		if sents[i] != want[i] {
			t.Errorf("sentence %d = %q, want %q", i, sents[i], want[i])
		}
	}
}

func TestSplitSentencesAbbreviations(t *testing.T) {
	sents := SplitSentences("Dr. Smith hosts the show. It airs weekly.")
	if len(sents) != 2 {
		t.Fatalf("abbreviation caused a false split: %v", sents)
	}
	if sents[0] != "Dr. Smith hosts the show." {
		t.Errorf("first sentence = %q", sents[0])
	}
}

func TestSplitSentencesTrailingFragment(t *testing.T) {
	sents := SplitSentences("A full sentence. and a trailing fragment")
	if len(sents) != 2 {
		t.Fatalf("SplitSentences = %v, want 2 sentences", sents)
	}
	if sents[1] != "and a trailing fragment" {
		t.Errorf("trailing fragment = %q", sents[1])
	}
}

func TestSplitSentencesNoInternalSplit(t *testing.T) {
	// Periods not followed by a space do not end sentences.
	sents := SplitSentences("visit example.com for details.")
	if len(sents) != 1 {
		t.Errorf("SplitSentences = %v, want 1 sentence", sents)
	}
}

func TestSplitSentencesEmpty(t *testing.T) {
	if got := SplitSentences(""); got != nil {
		t.Errorf("empty input should split to nil, got %v", got)
	}
	if got := SplitSentences("   "); got != nil {
		t.Errorf("blank input should split to nil, got %v", got)
	}
}
