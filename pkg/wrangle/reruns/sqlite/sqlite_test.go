package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/podscript/wrangle/pkg/wrangle/reruns"
)

// TestSQLiteStoreBasic tests indexing and scan order
func TestSQLiteStoreBasic(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "reruns.db")

	st, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	if err := st.AddFile(ctx, 0, "slc_a.json"); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	if err := st.AddFile(ctx, 1, "slc_b.json"); err != nil {
		t.Fatalf("AddFile: %v", err)
	}

	// Insert out of order; scans must come back sorted.
	sents := []reruns.Sentence{
		{FileNum: 1, LineNum: 0, SentNum: 0, Hash: 40},
		{FileNum: 0, LineNum: 1, SentNum: 0, Hash: 30},
		{FileNum: 0, LineNum: 0, SentNum: 1, Hash: 20},
		{FileNum: 0, LineNum: 0, SentNum: 0, Hash: 10},
	}
	if err := st.AddSentences(ctx, sents); err != nil {
		t.Fatalf("AddSentences: %v", err)
	}

	var hashes []uint64
	if err := st.ScanSentences(ctx, func(s reruns.Sentence) error {
		hashes = append(hashes, s.Hash)
		return nil
	}); err != nil {
		t.Fatalf("ScanSentences: %v", err)
	}

	want := []uint64{10, 20, 30, 40}
	if len(hashes) != len(want) {
		t.Fatalf("got %d sentences, want %d", len(hashes), len(want))
	}
	for i := range want {
		if hashes[i] != want[i] {
			t.Errorf("scan order wrong at %d: got %d, want %d", i, hashes[i], want[i])
		}
	}

	counts, err := st.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts.Files != 2 || counts.Sentences != 4 {
		t.Errorf("counts = %+v, want 2 files, 4 sentences", counts)
	}
}

// TestSQLiteStoreReindexClears tests that AddFile drops older rows
func TestSQLiteStoreReindexClears(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "reruns.db")

	st, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	if err := st.AddFile(ctx, 0, "slc_a.json"); err != nil {
		t.Fatal(err)
	}
	if err := st.AddSentences(ctx, []reruns.Sentence{
		{FileNum: 0, LineNum: 0, SentNum: 0, Hash: 1},
		{FileNum: 0, LineNum: 0, SentNum: 1, Hash: 2},
	}); err != nil {
		t.Fatal(err)
	}
	if err := st.ReplaceRuns(ctx, []reruns.Run{
		{FileNum: 0, LineNum: 0, StartSent: 0, Length: 2, Hash: 1},
	}); err != nil {
		t.Fatal(err)
	}

	// Second pass over the same file starts clean.
	if err := st.AddFile(ctx, 0, "slc_a.json"); err != nil {
		t.Fatal(err)
	}
	if err := st.AddSentences(ctx, []reruns.Sentence{
		{FileNum: 0, LineNum: 0, SentNum: 0, Hash: 9},
	}); err != nil {
		t.Fatal(err)
	}

	counts, err := st.Counts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts.Sentences != 1 {
		t.Errorf("Sentences = %d after re-index, want 1", counts.Sentences)
	}
	if counts.Runs != 0 {
		t.Errorf("Runs = %d after re-index, want 0", counts.Runs)
	}
	if counts.Files != 1 {
		t.Errorf("Files = %d, want 1", counts.Files)
	}
}

// TestSQLiteStoreRuns tests run storage and per-file retrieval
func TestSQLiteStoreRuns(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "reruns.db")

	st, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	runs := []reruns.Run{
		{FileNum: 1, LineNum: 0, StartSent: 3, Length: 5, Hash: 77},
		{FileNum: 0, LineNum: 2, StartSent: 0, Length: 3, Hash: 55},
		{FileNum: 0, LineNum: 1, StartSent: 4, Length: 4, Hash: 66},
	}
	if err := st.ReplaceRuns(ctx, runs); err != nil {
		t.Fatalf("ReplaceRuns: %v", err)
	}

	got, err := st.RunsForFile(ctx, 0)
	if err != nil {
		t.Fatalf("RunsForFile: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d runs for file 0, want 2", len(got))
	}
	if got[0].LineNum != 1 || got[1].LineNum != 2 {
		t.Errorf("runs out of order: %+v", got)
	}

	// Replacing again discards the previous set.
	if err := st.ReplaceRuns(ctx, nil); err != nil {
		t.Fatal(err)
	}
	got, err = st.RunsForFile(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("runs survived replacement: %+v", got)
	}
}

// TestSQLiteStoreHashRoundTrip tests that high-bit hashes survive storage
func TestSQLiteStoreHashRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "reruns.db")

	st, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	const big = uint64(0xDEADBEEFCAFEBABE) // high bit set, negative as int64

	if err := st.AddFile(ctx, 0, "slc_a.json"); err != nil {
		t.Fatal(err)
	}
	if err := st.AddSentences(ctx, []reruns.Sentence{
		{FileNum: 0, LineNum: 0, SentNum: 0, Hash: big},
	}); err != nil {
		t.Fatal(err)
	}

	var got uint64
	if err := st.ScanSentences(ctx, func(s reruns.Sentence) error {
		got = s.Hash
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if got != big {
		t.Errorf("hash round trip: got %x, want %x", got, big)
	}
}
