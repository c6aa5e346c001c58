// Package runner drives a transform across a set of input files. Each
// file gets its own disposition; one bad shard never aborts the batch.
package runner

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/podscript/wrangle/pkg/wrangle/transform"
)

// Status is the per-file outcome of a run.
type Status int

const (
	StatusSuccess Status = iota
	StatusPartial        // output written, some records skipped
	StatusSkipped        // file not processed at all
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusPartial:
		return "partial"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// FileResult records what happened to a single input file.
type FileResult struct {
	Input  string
	Output string
	Status Status
	Stats  transform.Stats
	Err    error
}

// Report summarizes a whole run.
type Report struct {
	RunID     string
	Transform string
	Results   []FileResult
	Elapsed   time.Duration
}

// Count returns how many files finished with the given status.
func (r Report) Count(s Status) int {
	n := 0
	for _, fr := range r.Results {
		if fr.Status == s {
			n++
		}
	}
	return n
}

// Runner applies one transform to many files.
type Runner struct {
	t            transform.Transform
	log          *slog.Logger
	prefix       string
	skipExisting bool
	entropy      *ulid.MonotonicEntropy
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. Default slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// WithOutputPrefix sets the prefix prepended to derived output names,
// e.g. "tc_". Default is no prefix.
func WithOutputPrefix(prefix string) Option {
	return func(r *Runner) { r.prefix = prefix }
}

// WithSkipExisting makes the run skip inputs whose output already exists,
// so an interrupted batch can be resumed without redoing finished shards.
func WithSkipExisting() Option {
	return func(r *Runner) { r.skipExisting = true }
}

// New creates a Runner for the given transform.
func New(t transform.Transform, opts ...Option) *Runner {
	r := &Runner{
		t:       t,
		log:     slog.Default(),
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OutputName derives the output file name for an input path: the
// configured prefix, the input's stem, and the transform's output
// extension.
func (r *Runner) OutputName(input string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return r.prefix + stem + r.t.OutputExt()
}

// Run applies the transform to every input, writing outputs into destDir.
// Files failing mid-transform are reported and the run moves on; a failed
// file may leave a partial output behind, which the next run overwrites.
// Run itself errors only when the destination cannot be created or the
// context is cancelled.
func (r *Runner) Run(ctx context.Context, inputs []string, destDir string) (Report, error) {
	start := time.Now()
	rep := Report{
		RunID:     ulid.MustNew(ulid.Now(), r.entropy).String(),
		Transform: r.t.Name(),
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return rep, fmt.Errorf("create dest dir: %w", err)
	}

	log := r.log.With("run", rep.RunID, "transform", rep.Transform)
	log.Info("run started", "files", len(inputs), "dest", destDir)

	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			rep.Elapsed = time.Since(start)
			return rep, err
		}
		rep.Results = append(rep.Results, r.runOne(ctx, input, destDir, log))
	}

	rep.Elapsed = time.Since(start)
	log.Info("run finished",
		"success", rep.Count(StatusSuccess),
		"partial", rep.Count(StatusPartial),
		"skipped", rep.Count(StatusSkipped),
		"failed", rep.Count(StatusFailed),
		"elapsed", rep.Elapsed)
	return rep, nil
}

func (r *Runner) runOne(ctx context.Context, input, destDir string, log *slog.Logger) FileResult {
	res := FileResult{Input: input}

	if ext := filepath.Ext(input); ext != r.t.InputExt() {
		res.Status = StatusSkipped
		log.Warn("skipping input", "input", input, "ext", ext, "want", r.t.InputExt())
		return res
	}

	res.Output = filepath.Join(destDir, r.OutputName(input))
	if r.skipExisting {
		if _, err := os.Stat(res.Output); err == nil {
			res.Status = StatusSkipped
			log.Info("output exists, skipping", "input", input, "output", res.Output)
			return res
		}
	}

	stats, err := r.t.Apply(ctx, input, res.Output)
	res.Stats = stats
	if err != nil {
		res.Status = StatusFailed
		res.Err = err
		log.Error("transform failed", "input", input, "error", err)
		return res
	}

	if stats.Skipped > 0 {
		res.Status = StatusPartial
		log.Warn("transform finished with skips", "input", input, "records", stats.Records, "skipped", stats.Skipped)
		return res
	}

	res.Status = StatusSuccess
	log.Info("transform finished", "input", input, "output", res.Output, "records", stats.Records)
	return res
}
