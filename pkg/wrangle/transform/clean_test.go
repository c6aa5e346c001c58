package transform

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/podscript/wrangle/pkg/wrangle/internalerr"
)

func mustCleaner(t *testing.T, level int) *Cleaner {
	t.Helper()
	c, err := NewCleaner(CleanerConfig{ContractionLevel: level})
	if err != nil {
		t.Fatalf("NewCleaner: %v", err)
	}
	return c
}

func TestCleanerRemovesBracketedAnnotations(t *testing.T) {
	c := mustCleaner(t, ContractionsOff)

	got := c.CleanLine("[MUSIC] Welcome back (applause) everyone {cough} <laughs>")
	want := "Welcome back everyone"
	if got != want {
		t.Errorf("CleanLine = %q, want %q", got, want)
	}
}

func TestCleanerRemovesNestedBrackets(t *testing.T) {
	c := mustCleaner(t, ContractionsOff)

	got := c.CleanLine("[outer [inner] noise] stays")
	if got != "stays" {
		t.Errorf("CleanLine = %q, want %q", got, "stays")
	}
}

func TestCleanerLeavesUnmatchedBrackets(t *testing.T) {
	c := mustCleaner(t, ContractionsOff)

	cases := []string{
		"a [ b",
		"a ] b",
		"odd ( paren",
		"angle < alone",
		"] leading and trailing [",
	}
	for _, in := range cases {
		if got := c.CleanLine(in); got != in {
			t.Errorf("CleanLine(%q) = %q, stray brackets must survive", in, got)
		}
	}
}

func TestCleanerIdempotent(t *testing.T) {
	c := mustCleaner(t, ContractionsStatic)

	cases := []string{
		"[MUSIC] It's   a \\ test ~hmm~ line",
		"plain text already clean",
		"unmatched [ bracket with it's",
		"nested [a [b] c] and (x (y) z)",
		"*starred*  words /slash/ here",
	}
	for _, in := range cases {
		once := c.CleanLine(in)
		twice := c.CleanLine(once)
		if once != twice {
			t.Errorf("CleanLine not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestCleanerContractionLevelOff(t *testing.T) {
	c := mustCleaner(t, ContractionsOff)

	got := c.CleanLine("It's fine")
	if got != "It's fine" {
		t.Errorf("level 0 must leave contractions alone, got %q", got)
	}
}

func TestCleanerContractionLevelStatic(t *testing.T) {
	c := mustCleaner(t, ContractionsStatic)

	got := c.CleanLine("It's fine, don't worry")
	want := "It is fine, do not worry"
	if got != want {
		t.Errorf("CleanLine = %q, want %q", got, want)
	}
}

func TestCleanerNormalizesCurlyApostrophes(t *testing.T) {
	c := mustCleaner(t, ContractionsStatic)

	got := c.CleanLine("It’s here")
	if got != "It is here" {
		t.Errorf("CleanLine = %q, want %q", got, "It is here")
	}
}

func TestCleanerLevel2FailsLoudly(t *testing.T) {
	_, err := NewCleaner(CleanerConfig{ContractionLevel: ContractionsModel})
	if !errors.Is(err, internalerr.ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
	// The reserved level must be distinguishable from a plain bad value.
	if errors.Is(err, internalerr.ErrUnsupportedConfig) {
		t.Error("level 2 should not report ErrUnsupportedConfig")
	}
}

func TestCleanerRejectsUnknownLevel(t *testing.T) {
	for _, level := range []int{-1, 3, 42} {
		_, err := NewCleaner(CleanerConfig{ContractionLevel: level})
		if !errors.Is(err, internalerr.ErrUnsupportedConfig) {
			t.Errorf("level %d: expected ErrUnsupportedConfig, got %v", level, err)
		}
	}
}

func TestCleanerCollapsesWhitespace(t *testing.T) {
	c := mustCleaner(t, ContractionsOff)

	got := c.CleanLine("  too   many\t spaces  ")
	if got != "too many spaces" {
		t.Errorf("CleanLine = %q", got)
	}
}

func TestCleanerRemovesBackslashesAndTildes(t *testing.T) {
	c := mustCleaner(t, ContractionsOff)

	got := c.CleanLine(`path\to\nowhere ~crosstalk~ done`)
	if got != "pathtonowhere done" {
		t.Errorf("CleanLine = %q", got)
	}
}

func TestCleanerApplyDropsEmptyLines(t *testing.T) {
	in := writeInput(t, "in.txt", "[MUSIC]\nreal content here\n\n(applause)\nmore content\n")
	out := filepath.Join(t.TempDir(), "out.txt")

	c := mustCleaner(t, ContractionsOff)
	stats, err := c.Apply(context.Background(), in, out)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	lines := readLines(t, out)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %v", len(lines), lines)
	}
	if stats.Records != 2 {
		t.Errorf("Records = %d, want 2", stats.Records)
	}
	if lines[0] != "real content here" || lines[1] != "more content" {
		t.Errorf("unexpected lines: %v", lines)
	}
}

func TestCleanerConfigFailsBeforeAnyIO(t *testing.T) {
	// Construction is the validation point; no files are involved.
	if _, err := NewCleaner(CleanerConfig{ContractionLevel: 2}); err == nil {
		t.Fatal("expected construction to fail")
	}

	// Nothing has been written anywhere.
	dir := t.TempDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("no output should exist after failed construction, found %d entries", len(entries))
	}
}
