// Package merge reassembles episodes from turn-level records. Raw corpus
// shards hold one record per speaker turn; every turn of an episode shares
// the episode's audio URL, and turns arrive in order, so consecutive
// records with the same URL belong together.
package merge

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/podscript/wrangle/pkg/wrangle/record"
)

// Result summarizes one merge pass.
type Result struct {
	FilesWritten int
	Records      int // merged records written across all outputs
	Skipped      int // malformed input lines dropped
}

// Merger merges consecutive same-URL records, carrying an open episode
// across file boundaries so episodes split between shards come out whole.
type Merger struct {
	sep    string
	prefix string
}

// Option configures a Merger.
type Option func(*Merger)

// WithSeparator sets the string joining merged turn texts. Default " ".
func WithSeparator(sep string) Option {
	return func(m *Merger) { m.sep = sep }
}

// WithOutputPrefix sets the prefix prepended to derived output names.
// Default "mrg_".
func WithOutputPrefix(prefix string) Option {
	return func(m *Merger) { m.prefix = prefix }
}

// New creates a Merger.
func New(opts ...Option) *Merger {
	m := &Merger{sep: " ", prefix: "mrg_"}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// open is an episode accumulating turns until its URL changes.
type open struct {
	url     string
	texts   []string
	started bool
}

func (o *open) add(doc record.Document) {
	o.url = doc.URL
	o.texts = append(o.texts, doc.Text)
	o.started = true
}

func (o *open) flush(w *record.Writer, sep string) error {
	if !o.started {
		return nil
	}
	err := w.Write(record.Document{Text: strings.Join(o.texts, sep), URL: o.url})
	o.url = ""
	o.texts = o.texts[:0]
	o.started = false
	return err
}

// MergeFiles processes the input files in the given order, writing one
// output per input into destDir. An episode spanning a file boundary lands
// in the output where its last turn appeared; the episode still open after
// the final input is flushed to the last output.
//
// Inputs must cover consecutive shards of one corpus in order; sharding a
// merge run across tasks would split episodes at the task boundaries.
func (m *Merger) MergeFiles(ctx context.Context, inputs []string, destDir string) (Result, error) {
	var res Result
	if len(inputs) == 0 {
		return res, nil
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return res, fmt.Errorf("create dest dir: %w", err)
	}

	var episode open
	for i, input := range inputs {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		out := filepath.Join(destDir, m.prefix+filepath.Base(input))
		written, skipped, err := m.mergeOne(ctx, input, out, &episode, i == len(inputs)-1)
		if err != nil {
			return res, fmt.Errorf("merge %s: %w", input, err)
		}
		res.FilesWritten++
		res.Records += written
		res.Skipped += skipped
		slog.Info("merged shard", "input", input, "output", out, "records", written, "skipped", skipped)
	}

	return res, nil
}

func (m *Merger) mergeOne(ctx context.Context, input, output string, episode *open, last bool) (int, int, error) {
	r, err := record.Open(input)
	if err != nil {
		return 0, 0, err
	}
	defer r.Close()

	w, err := record.Create(output)
	if err != nil {
		return 0, 0, err
	}
	defer w.Close()

	for {
		if err := ctx.Err(); err != nil {
			return w.Count(), r.Skipped(), err
		}

		doc, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return w.Count(), r.Skipped(), err
		}

		if episode.started && doc.URL != episode.url {
			if err := episode.flush(w, m.sep); err != nil {
				return w.Count(), r.Skipped(), err
			}
		}
		episode.add(doc)
	}

	if last {
		if err := episode.flush(w, m.sep); err != nil {
			return w.Count(), r.Skipped(), err
		}
	}

	if err := w.Close(); err != nil {
		return w.Count(), r.Skipped(), err
	}
	return w.Count(), r.Skipped(), nil
}

// MergeAdjacent merges consecutive same-URL documents in memory. The
// result preserves input order; each output document joins the texts of
// one run of equal-URL inputs. Speaker fields are dropped, a merged
// episode spans turns from several speakers.
func MergeAdjacent(docs []record.Document, sep string) []record.Document {
	if len(docs) == 0 {
		return nil
	}

	var out []record.Document
	cur := record.Document{URL: docs[0].URL}
	texts := []string{docs[0].Text}

	for _, d := range docs[1:] {
		if d.URL == cur.URL {
			texts = append(texts, d.Text)
			continue
		}
		cur.Text = strings.Join(texts, sep)
		out = append(out, cur)
		cur = record.Document{URL: d.URL}
		texts = append(texts[:0], d.Text)
	}
	cur.Text = strings.Join(texts, sep)
	out = append(out, cur)
	return out
}

// GroupByURL partitions documents by URL. Groups appear in first-seen URL
// order and keep their documents in input order; every input document lands
// in exactly one group.
func GroupByURL(docs []record.Document) [][]record.Document {
	if len(docs) == 0 {
		return nil
	}

	index := make(map[string]int)
	var groups [][]record.Document
	for _, d := range docs {
		i, ok := index[d.URL]
		if !ok {
			i = len(groups)
			index[d.URL] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], d)
	}
	return groups
}
