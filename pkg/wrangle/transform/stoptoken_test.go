package transform

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/podscript/wrangle/pkg/wrangle/internalerr"
)

func TestStopTokenAppenderDefaults(t *testing.T) {
	in := writeInput(t, "in.txt", "First line\nSecond line!\nThird line?\n")
	out := filepath.Join(t.TempDir(), "out.txt")

	a, err := NewStopTokenAppender(StopTokenConfig{})
	if err != nil {
		t.Fatalf("NewStopTokenAppender: %v", err)
	}

	stats, err := a.Apply(context.Background(), in, out)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if stats.Records != 3 {
		t.Errorf("Records = %d, want 3", stats.Records)
	}

	lines := readLines(t, out)
	want := []string{
		"First line. eopc",
		"Second line! eopc",
		"Third line? eopc",
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestStopTokenAppenderMultiWordMarker(t *testing.T) {
	in := writeInput(t, "in.txt", "Great episode\n")
	out := filepath.Join(t.TempDir(), "out.txt")

	a, err := NewStopTokenAppender(StopTokenConfig{Marker: "I love blueberry waffles"})
	if err != nil {
		t.Fatalf("NewStopTokenAppender: %v", err)
	}
	if _, err := a.Apply(context.Background(), in, out); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	lines := readLines(t, out)
	if lines[0] != "Great episode. I love blueberry waffles" {
		t.Errorf("line = %q", lines[0])
	}
}

func TestStopTokenAppenderSkipsEmptyLines(t *testing.T) {
	in := writeInput(t, "in.txt", "one\n\n   \ntwo\n")
	out := filepath.Join(t.TempDir(), "out.txt")

	a, err := NewStopTokenAppender(StopTokenConfig{})
	if err != nil {
		t.Fatalf("NewStopTokenAppender: %v", err)
	}
	stats, err := a.Apply(context.Background(), in, out)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if stats.Records != 2 {
		t.Errorf("Records = %d, want 2", stats.Records)
	}
	if lines := readLines(t, out); len(lines) != 2 {
		t.Errorf("got %d lines, want 2: %v", len(lines), lines)
	}
}

func TestStopTokenAppenderRejectsBlankMarker(t *testing.T) {
	_, err := NewStopTokenAppender(StopTokenConfig{Marker: "   "})
	if !errors.Is(err, internalerr.ErrUnsupportedConfig) {
		t.Errorf("expected ErrUnsupportedConfig, got %v", err)
	}
}
