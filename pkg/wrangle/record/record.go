package record

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Document is one transcript record: a single speaker turn, or after the
// merge stage, the full text of one episode.
type Document struct {
	Text    string `json:"text"`
	Speaker string `json:"speaker,omitempty"`
	URL     string `json:"url,omitempty"`
}

// Scanner buffer sizing. Merged episodes put an entire transcript on one
// line, so the ceiling has to be generous.
const (
	initialLineBuf = 64 * 1024
	maxLineBuf     = 64 * 1024 * 1024
)

// Reader streams documents from a line-delimited JSON file without loading
// the file into memory. Malformed lines are skipped with a warning and
// counted, matching the loader policy used across the pipeline.
type Reader struct {
	path    string
	file    *os.File
	scanner *bufio.Scanner
	line    int
	skipped int
}

// Open opens a JSONL file for streaming reads.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, initialLineBuf), maxLineBuf)

	return &Reader{path: path, file: f, scanner: sc}, nil
}

// Next returns the next valid document, or io.EOF when the file is
// exhausted. Blank and malformed lines are skipped.
func (r *Reader) Next() (Document, error) {
	for r.scanner.Scan() {
		r.line++
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}

		var doc Document
		if err := json.Unmarshal([]byte(line), &doc); err != nil {
			r.skipped++
			slog.Warn("skipping malformed record", "path", r.path, "line", r.line, "err", err)
			continue
		}
		return doc, nil
	}

	if err := r.scanner.Err(); err != nil {
		return Document{}, fmt.Errorf("scan %s: %w", r.path, err)
	}
	return Document{}, io.EOF
}

// Line returns the number of lines consumed so far.
func (r *Reader) Line() int { return r.line }

// Skipped returns the number of malformed lines dropped so far.
func (r *Reader) Skipped() int { return r.skipped }

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

// Writer appends documents to a JSONL file.
type Writer struct {
	file   *os.File
	buf    *bufio.Writer
	enc    *json.Encoder
	n      int
	closed bool
}

// Create truncates or creates path and returns a document writer.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	buf := bufio.NewWriter(f)
	return &Writer{file: f, buf: buf, enc: json.NewEncoder(buf)}, nil
}

// Write appends one document as a single JSON line.
func (w *Writer) Write(doc Document) error {
	if err := w.enc.Encode(doc); err != nil {
		return err
	}
	w.n++
	return nil
}

// Count returns the number of documents written.
func (w *Writer) Count() int { return w.n }

// Close flushes and closes the file. Closing twice is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
