// Package reruns finds repeated-sentence runs in tokenized corpus files.
// Transcription glitches and templated segments leave the same sentence
// repeated many times in a row; left in, those runs distort co-occurrence
// counts. The index records every sentence position, detection finds the
// runs, and stripping rewrites files with each run collapsed to a single
// occurrence.
package reruns

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/podscript/wrangle/pkg/wrangle/internalerr"
	"github.com/podscript/wrangle/pkg/wrangle/record"
)

// DefaultMinRun is the shortest repetition treated as a run. Two
// identical sentences back to back are common in ordinary speech;
// three or more almost never are.
const DefaultMinRun = 3

// ErrStaleIndex reports that a file changed after it was indexed.
var ErrStaleIndex = errors.New("repetition index out of date")

// Sentence is one indexed sentence position. Lines are episodes,
// delimited in the source files by marker sentences; markers themselves
// are not indexed.
type Sentence struct {
	FileNum int
	LineNum int
	SentNum int
	Hash    uint64
}

// Run is a stretch of consecutive identical sentences within one line.
type Run struct {
	FileNum   int
	LineNum   int
	StartSent int
	Length    int
	Hash      uint64
}

// Counts summarizes the index contents.
type Counts struct {
	Files     int64
	Sentences int64
	Runs      int64
}

// Store persists the repetition index.
type Store interface {
	Close() error

	// AddFile registers a file and clears any rows from a previous pass
	// over it, so re-indexing a file is safe.
	AddFile(ctx context.Context, fileNum int, name string) error

	// AddSentences appends a batch of sentence positions.
	AddSentences(ctx context.Context, sents []Sentence) error

	// ScanSentences streams every sentence ordered by file, line and
	// sentence number. The callback's error aborts the scan.
	ScanSentences(ctx context.Context, fn func(Sentence) error) error

	// ReplaceRuns replaces the detected run set.
	ReplaceRuns(ctx context.Context, runs []Run) error

	RunsForFile(ctx context.Context, fileNum int) ([]Run, error)
	Counts(ctx context.Context) (Counts, error)
}

// HashSentence hashes a token sequence. FNV-1a over the tokens with a
// separator byte, so token boundaries matter.
func HashSentence(tokens []string) uint64 {
	h := fnv.New64a()
	for i, tok := range tokens {
		if i > 0 {
			h.Write([]byte{' '})
		}
		h.Write([]byte(tok))
	}
	return h.Sum64()
}

// flushEvery bounds indexer memory on very large shards.
const flushEvery = 8192

// Indexer records sentence positions from sentence-list files.
type Indexer struct {
	store  Store
	marker []string
	log    *slog.Logger
}

// NewIndexer creates an Indexer. markerTokens is the tokenized line
// marker; marker sentences advance the line counter instead of being
// indexed.
func NewIndexer(store Store, markerTokens []string) (*Indexer, error) {
	if len(markerTokens) == 0 {
		return nil, fmt.Errorf("%w: empty marker", internalerr.ErrUnsupportedConfig)
	}
	return &Indexer{store: store, marker: markerTokens, log: slog.Default()}, nil
}

// IndexFile reads one sentence-list file and records every content
// sentence under the given file number. Returns the number of sentences
// indexed.
func (ix *Indexer) IndexFile(ctx context.Context, path string, fileNum int) (int, error) {
	r, err := record.OpenSentences(path)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	if err := ix.store.AddFile(ctx, fileNum, filepath.Base(path)); err != nil {
		return 0, err
	}

	var (
		batch      []Sentence
		line, sent int
		total      int
	)
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		tokens, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return total, err
		}

		if equalTokens(tokens, ix.marker) {
			line++
			sent = 0
			continue
		}

		batch = append(batch, Sentence{
			FileNum: fileNum,
			LineNum: line,
			SentNum: sent,
			Hash:    HashSentence(tokens),
		})
		sent++
		total++

		if len(batch) >= flushEvery {
			if err := ix.store.AddSentences(ctx, batch); err != nil {
				return total, err
			}
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := ix.store.AddSentences(ctx, batch); err != nil {
			return total, err
		}
	}

	ix.log.Debug("indexed file", "file", path, "num", fileNum, "sentences", total, "lines", line)
	return total, nil
}

// Detector finds repeated-sentence runs in an index.
type Detector struct {
	minRun int
}

// NewDetector creates a Detector. minRun below 2 makes every sentence a
// run and is rejected.
func NewDetector(minRun int) (*Detector, error) {
	if minRun == 0 {
		minRun = DefaultMinRun
	}
	if minRun < 2 {
		return nil, fmt.Errorf("%w: min run %d", internalerr.ErrUnsupportedConfig, minRun)
	}
	return &Detector{minRun: minRun}, nil
}

// Detect scans the whole index and returns runs of at least minRun
// consecutive identical sentences. Runs never cross a line: a marker
// between two identical sentences breaks the run.
func (d *Detector) Detect(ctx context.Context, st Store) ([]Run, error) {
	var (
		runs []Run
		cur  Run
		prev Sentence
		have bool
	)

	flush := func() {
		if cur.Length >= d.minRun {
			runs = append(runs, cur)
		}
	}

	err := st.ScanSentences(ctx, func(s Sentence) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		extends := have &&
			s.FileNum == prev.FileNum &&
			s.LineNum == prev.LineNum &&
			s.SentNum == prev.SentNum+1 &&
			s.Hash == cur.Hash
		if extends {
			cur.Length++
		} else {
			flush()
			cur = Run{FileNum: s.FileNum, LineNum: s.LineNum, StartSent: s.SentNum, Length: 1, Hash: s.Hash}
		}
		prev = s
		have = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	flush()
	return runs, nil
}

// Stripper rewrites sentence-list files with detected runs collapsed.
type Stripper struct {
	marker []string
}

// NewStripper creates a Stripper for files using the given tokenized
// marker.
func NewStripper(markerTokens []string) (*Stripper, error) {
	if len(markerTokens) == 0 {
		return nil, fmt.Errorf("%w: empty marker", internalerr.ErrUnsupportedConfig)
	}
	return &Stripper{marker: markerTokens}, nil
}

// StripFile rewrites one file, keeping the first sentence of each run
// and dropping the rest. Marker sentences always survive. Every dropped
// position is hash-checked against the run that claimed it; a mismatch
// means the file changed since indexing and aborts with ErrStaleIndex.
// Returns the number of sentences dropped.
func (sp *Stripper) StripFile(ctx context.Context, inputPath, outputPath string, runs []Run) (int, error) {
	type pos struct{ line, sent int }
	drop := make(map[pos]uint64)
	for _, run := range runs {
		for i := 1; i < run.Length; i++ {
			drop[pos{run.LineNum, run.StartSent + i}] = run.Hash
		}
	}

	r, err := record.OpenSentences(inputPath)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	w, err := record.CreateSentences(outputPath)
	if err != nil {
		return 0, err
	}
	defer w.Close()

	var line, sent, dropped int
	for {
		if err := ctx.Err(); err != nil {
			return dropped, err
		}

		tokens, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return dropped, err
		}

		if equalTokens(tokens, sp.marker) {
			if err := w.Write(tokens); err != nil {
				return dropped, err
			}
			line++
			sent = 0
			continue
		}

		if want, ok := drop[pos{line, sent}]; ok {
			if HashSentence(tokens) != want {
				return dropped, fmt.Errorf("%w: %s line %d sentence %d", ErrStaleIndex, inputPath, line, sent)
			}
			dropped++
			sent++
			continue
		}

		if err := w.Write(tokens); err != nil {
			return dropped, err
		}
		sent++
	}

	if err := w.Close(); err != nil {
		return dropped, err
	}
	return dropped, nil
}

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
