package record

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/podscript/wrangle/pkg/wrangle/internalerr"
)

// SentenceReader streams tokenized sentences out of a JSON array-of-arrays
// file one sentence at a time. Shards run to tens of gigabytes, so the
// whole-file decode path is off the table; this walks the token stream
// instead.
type SentenceReader struct {
	path string
	file *os.File
	dec  *json.Decoder
	skip []string
}

// OpenSentences opens a sentence-list file and consumes the opening bracket.
func OpenSentences(path string) (*SentenceReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	dec := json.NewDecoder(bufio.NewReaderSize(f, initialLineBuf))
	tok, err := dec.Token()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		f.Close()
		return nil, fmt.Errorf("read %s: expected top-level array, got %v", path, tok)
	}

	return &SentenceReader{path: path, file: f, dec: dec}, nil
}

// SkipSentence suppresses every sentence equal to the given token sequence.
// Used to drop marker sentences when feeding trainers that do not want them.
func (r *SentenceReader) SkipSentence(tokens []string) {
	r.skip = tokens
}

// Next returns the next sentence, or io.EOF at the end of the array.
func (r *SentenceReader) Next() ([]string, error) {
	for {
		if !r.dec.More() {
			// Consume the closing bracket; repeated calls stay at EOF.
			if _, err := r.dec.Token(); err != nil && err != io.EOF {
				return nil, fmt.Errorf("read %s: %w", r.path, err)
			}
			return nil, io.EOF
		}

		var sent []string
		if err := r.dec.Decode(&sent); err != nil {
			return nil, fmt.Errorf("%w: sentence in %s: %v", internalerr.ErrMalformedRecord, r.path, err)
		}
		if r.skip != nil && equalTokens(sent, r.skip) {
			continue
		}
		return sent, nil
	}
}

// Close closes the underlying file.
func (r *SentenceReader) Close() error {
	return r.file.Close()
}

// SentenceWriter writes a sentence-list file incrementally so a shard never
// has to be held in memory.
type SentenceWriter struct {
	file   *os.File
	buf    *bufio.Writer
	n      int
	closed bool
}

// CreateSentences truncates or creates path and writes the opening bracket.
func CreateSentences(path string) (*SentenceWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	buf := bufio.NewWriter(f)
	if _, err := buf.WriteString("["); err != nil {
		f.Close()
		return nil, err
	}
	return &SentenceWriter{file: f, buf: buf}, nil
}

// Write appends one sentence to the array.
func (w *SentenceWriter) Write(sentence []string) error {
	data, err := json.Marshal(sentence)
	if err != nil {
		return err
	}
	if w.n > 0 {
		if _, err := w.buf.WriteString(",\n"); err != nil {
			return err
		}
	}
	if _, err := w.buf.Write(data); err != nil {
		return err
	}
	w.n++
	return nil
}

// Count returns the number of sentences written.
func (w *SentenceWriter) Count() int { return w.n }

// Close writes the closing bracket, flushes, and closes the file. Closing
// twice is a no-op.
func (w *SentenceWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if _, err := w.buf.WriteString("]\n"); err != nil {
		w.file.Close()
		return err
	}
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
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
