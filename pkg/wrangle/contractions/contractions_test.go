package contractions

import "testing"

func TestFixBasic(t *testing.T) {
	got := Fix("it's a show about nothing")
	want := "it is a show about nothing"
	if got != want {
		t.Errorf("Fix = %q, want %q", got, want)
	}
}

func TestFixPreservesCapitalization(t *testing.T) {
	got := Fix("It's TRUE. Don't panic.")
	want := "It is TRUE. Do not panic."
	if got != want {
		t.Errorf("Fix = %q, want %q", got, want)
	}
}

func TestFixLongestFormWins(t *testing.T) {
	got := Fix("she couldn't've known")
	want := "she could not have known"
	if got != want {
		t.Errorf("Fix = %q, want %q", got, want)
	}
}

func TestFixLeavesUnknownWordsAlone(t *testing.T) {
	in := "the quick brown fox o'brien"
	if got := Fix(in); got != in {
		t.Errorf("Fix changed text without contractions: %q", got)
	}
}

func TestFixDoesNotTouchSubstrings(t *testing.T) {
	// "its" is not a contraction and "wont" has no apostrophe.
	in := "its wont to cant"
	if got := Fix(in); got != in {
		t.Errorf("Fix = %q, want unchanged %q", got, in)
	}
}

func TestFixIsStableOnExpandedText(t *testing.T) {
	once := Fix("won't can't it's y'all")
	twice := Fix(once)
	if once != twice {
		t.Errorf("re-running Fix changed the text: %q vs %q", once, twice)
	}
}

func TestFixDeterministic(t *testing.T) {
	in := "I'm sure they'd've agreed that it's fine, isn't it?"
	first := Fix(in)
	for i := 0; i < 10; i++ {
		if got := Fix(in); got != first {
			t.Fatalf("Fix not deterministic: %q vs %q", got, first)
		}
	}
}

func TestKnown(t *testing.T) {
	if !Known("It's") {
		t.Error("Known should be case-insensitive")
	}
	if Known("waffles") {
		t.Error("Known should reject plain words")
	}
}
