package transform

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/podscript/wrangle/pkg/wrangle/internalerr"
)

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	trimmed := strings.TrimSuffix(string(data), "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

const rawTurns = `{"text":"Welcome to the show.","speaker":"Alice","url":"https://ex.com/ep1.mp3"}
{"text":"Glad to be here.","speaker":"Bob","url":"https://ex.com/ep1.mp3"}
`

func TestSimplifierKeepsOnlySelectedFields(t *testing.T) {
	in := writeInput(t, "raw.jsonl", rawTurns)
	out := filepath.Join(t.TempDir(), "out.jsonl")

	s, err := NewSimplifier(SimplifierConfig{Fields: []string{FieldText, FieldURL}})
	if err != nil {
		t.Fatalf("NewSimplifier: %v", err)
	}

	stats, err := s.Apply(context.Background(), in, out)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if stats.Records != 2 {
		t.Errorf("Records = %d, want 2", stats.Records)
	}

	for _, line := range readLines(t, out) {
		var m map[string]string
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("output line is not JSON: %v", err)
		}
		if _, ok := m["speaker"]; ok {
			t.Errorf("speaker field should have been dropped: %s", line)
		}
		if m["text"] == "" || m["url"] == "" {
			t.Errorf("kept fields missing: %s", line)
		}
	}
}

func TestSimplifierDefaultsToTextOnly(t *testing.T) {
	in := writeInput(t, "raw.jsonl", rawTurns)
	out := filepath.Join(t.TempDir(), "out.jsonl")

	s, err := NewSimplifier(SimplifierConfig{})
	if err != nil {
		t.Fatalf("NewSimplifier: %v", err)
	}
	if s.OutputExt() != ".jsonl" {
		t.Errorf("default OutputExt = %q, want .jsonl", s.OutputExt())
	}

	if _, err := s.Apply(context.Background(), in, out); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	var m map[string]string
	if err := json.Unmarshal([]byte(readLines(t, out)[0]), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(m) != 1 || m["text"] != "Welcome to the show." {
		t.Errorf("default output = %v, want text only", m)
	}
}

func TestSimplifierTextOutput(t *testing.T) {
	in := writeInput(t, "raw.jsonl", rawTurns)
	out := filepath.Join(t.TempDir(), "out.txt")

	s, err := NewSimplifier(SimplifierConfig{Fields: []string{FieldText}, OutputExt: ".txt"})
	if err != nil {
		t.Fatalf("NewSimplifier: %v", err)
	}
	if _, err := s.Apply(context.Background(), in, out); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	lines := readLines(t, out)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %v", len(lines), lines)
	}
	if lines[0] != "Welcome to the show." {
		t.Errorf("line 0 = %q", lines[0])
	}
}

func TestSimplifierTextOutputWithLabels(t *testing.T) {
	in := writeInput(t, "raw.jsonl", rawTurns)
	out := filepath.Join(t.TempDir(), "out.txt")

	s, err := NewSimplifier(SimplifierConfig{
		Fields:    []string{FieldSpeaker, FieldText},
		Labels:    true,
		OutputExt: ".txt",
	})
	if err != nil {
		t.Fatalf("NewSimplifier: %v", err)
	}
	if _, err := s.Apply(context.Background(), in, out); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	lines := readLines(t, out)
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4: %v", len(lines), lines)
	}
	if lines[0] != "speaker: Alice" {
		t.Errorf("line 0 = %q, want %q", lines[0], "speaker: Alice")
	}
	if lines[1] != "text: Welcome to the show." {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestSimplifierRejectsUnknownField(t *testing.T) {
	_, err := NewSimplifier(SimplifierConfig{Fields: []string{"timestamp"}})
	if !errors.Is(err, internalerr.ErrUnsupportedConfig) {
		t.Errorf("expected ErrUnsupportedConfig, got %v", err)
	}
}

func TestSimplifierRejectsBadOutputExtension(t *testing.T) {
	_, err := NewSimplifier(SimplifierConfig{OutputExt: ".csv"})
	if !errors.Is(err, internalerr.ErrBadExtension) {
		t.Errorf("expected ErrBadExtension, got %v", err)
	}
}

func TestSimplifierCountsMalformedLines(t *testing.T) {
	in := writeInput(t, "raw.jsonl",
		`{"text":"good"}
{broken json
{"text":"also good"}
`)
	out := filepath.Join(t.TempDir(), "out.jsonl")

	s, err := NewSimplifier(SimplifierConfig{})
	if err != nil {
		t.Fatalf("NewSimplifier: %v", err)
	}
	stats, err := s.Apply(context.Background(), in, out)
	if err != nil {
		t.Fatalf("Apply should not fail on malformed lines: %v", err)
	}
	if stats.Records != 2 {
		t.Errorf("Records = %d, want 2", stats.Records)
	}
	if stats.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", stats.Skipped)
	}
}

func TestSimplifierOverwritesOutput(t *testing.T) {
	in := writeInput(t, "raw.jsonl", rawTurns)
	out := filepath.Join(t.TempDir(), "out.jsonl")

	s, err := NewSimplifier(SimplifierConfig{})
	if err != nil {
		t.Fatalf("NewSimplifier: %v", err)
	}

	if _, err := s.Apply(context.Background(), in, out); err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	first, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if _, err := s.Apply(context.Background(), in, out); err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	second, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if string(first) != string(second) {
		t.Error("re-running the same transform should reproduce the output exactly")
	}
}
