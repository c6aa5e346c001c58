// Package wrangle turns raw podcast transcript shards into training
// input for word vector tools. The stages also run standalone through
// the commands under cmd; Pipeline chains them for the common case of
// one corpus directory in, one set of training shards out.
package wrangle

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/podscript/wrangle/pkg/wrangle/finder"
	"github.com/podscript/wrangle/pkg/wrangle/merge"
	"github.com/podscript/wrangle/pkg/wrangle/runner"
	"github.com/podscript/wrangle/pkg/wrangle/transform"
)

// Pipeline runs the whole preprocessing chain: pick fields from the raw
// records, merge episode turns by URL, flatten to text, clean, mark line
// ends, split into sentence lists and flatten to GloVe input.
type Pipeline struct {
	marker       string
	fields       []string
	contractions int
	log          *slog.Logger

	simplify *transform.Simplifier
	toText   *transform.Simplifier
	clean    *transform.Cleaner
	stop     *transform.StopTokenAppender
	sentence *transform.SentenceListBuilder
	glove    *transform.GloVeFormatter
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMarker sets the end-of-line marker. Default transform.DefaultMarker.
func WithMarker(marker string) Option {
	return func(p *Pipeline) { p.marker = marker }
}

// WithFields sets the record fields kept by the first stage. The URL
// field is always kept alongside; the merge stage needs it. Default
// "text".
func WithFields(fields []string) Option {
	return func(p *Pipeline) { p.fields = fields }
}

// WithContractions sets the contraction handling level of the clean
// stage. Default transform.ContractionsStatic.
func WithContractions(level int) Option {
	return func(p *Pipeline) { p.contractions = level }
}

// WithLogger sets the logger. Default slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// NewPipeline creates a Pipeline, validating every stage configuration
// before any file is touched.
func NewPipeline(opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		marker:       transform.DefaultMarker,
		fields:       []string{transform.FieldText},
		contractions: transform.ContractionsStatic,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	var err error
	if p.simplify, err = transform.NewSimplifier(transform.SimplifierConfig{
		Fields:    withURL(p.fields),
		OutputExt: ".jsonl",
	}); err != nil {
		return nil, fmt.Errorf("simplify stage: %w", err)
	}
	if p.toText, err = transform.NewSimplifier(transform.SimplifierConfig{
		Fields:    []string{transform.FieldText},
		OutputExt: ".txt",
	}); err != nil {
		return nil, fmt.Errorf("text stage: %w", err)
	}
	if p.clean, err = transform.NewCleaner(transform.CleanerConfig{
		ContractionLevel: p.contractions,
	}); err != nil {
		return nil, fmt.Errorf("clean stage: %w", err)
	}
	if p.stop, err = transform.NewStopTokenAppender(transform.StopTokenConfig{
		Marker: p.marker,
	}); err != nil {
		return nil, fmt.Errorf("stop token stage: %w", err)
	}
	if p.sentence, err = transform.NewSentenceListBuilder(transform.SentencesConfig{
		Marker: p.marker,
	}); err != nil {
		return nil, fmt.Errorf("sentence stage: %w", err)
	}
	if p.glove, err = transform.NewGloVeFormatter(transform.GloVeConfig{
		Marker: p.marker,
	}); err != nil {
		return nil, fmt.Errorf("glove stage: %w", err)
	}

	return p, nil
}

// withURL appends the URL field unless already requested.
func withURL(fields []string) []string {
	for _, f := range fields {
		if f == transform.FieldURL {
			return fields
		}
	}
	out := make([]string, 0, len(fields)+1)
	out = append(out, fields...)
	return append(out, transform.FieldURL)
}

// Summary collects the per-stage reports of one Process call.
type Summary struct {
	Stages  []runner.Report
	Outputs []string // final GloVe-format shards
}

// Process runs the whole chain over the .jsonl shards in srcDir, placing
// each stage's outputs in its own subdirectory of workDir. Shards that
// fail one stage are reported in the Summary and simply missing from the
// later ones.
func (p *Pipeline) Process(ctx context.Context, srcDir, workDir string) (Summary, error) {
	var sum Summary

	inputs, err := finder.Find(srcDir, finder.Criteria{Extension: ".jsonl"})
	if err != nil {
		return sum, err
	}
	if len(inputs) == 0 {
		return sum, fmt.Errorf("no .jsonl shards in %s", srcDir)
	}
	p.log.Info("pipeline started", "shards", len(inputs), "work", workDir)

	simplified, err := p.runStage(ctx, &sum, p.simplify, "sf_", inputs, filepath.Join(workDir, "simplified"))
	if err != nil {
		return sum, err
	}
	if len(simplified) == 0 {
		return sum, fmt.Errorf("no shard survived the simplify stage")
	}

	mergedDir := filepath.Join(workDir, "merged")
	res, err := merge.New().MergeFiles(ctx, simplified, mergedDir)
	if err != nil {
		return sum, fmt.Errorf("merge stage: %w", err)
	}
	p.log.Info("episodes merged", "files", res.FilesWritten, "episodes", res.Records, "skipped", res.Skipped)
	merged, err := finder.Find(mergedDir, finder.Criteria{Extension: ".jsonl"})
	if err != nil {
		return sum, err
	}

	text, err := p.runStage(ctx, &sum, p.toText, "txt_", merged, filepath.Join(workDir, "text"))
	if err != nil {
		return sum, err
	}
	cleaned, err := p.runStage(ctx, &sum, p.clean, "tc_", text, filepath.Join(workDir, "cleaned"))
	if err != nil {
		return sum, err
	}
	stopped, err := p.runStage(ctx, &sum, p.stop, "st_", cleaned, filepath.Join(workDir, "stopped"))
	if err != nil {
		return sum, err
	}
	sentences, err := p.runStage(ctx, &sum, p.sentence, "slc_", stopped, filepath.Join(workDir, "sentences"))
	if err != nil {
		return sum, err
	}
	outputs, err := p.runStage(ctx, &sum, p.glove, "glv_", sentences, filepath.Join(workDir, "glove"))
	if err != nil {
		return sum, err
	}

	sum.Outputs = outputs
	p.log.Info("pipeline finished", "shards", len(outputs))
	return sum, nil
}

func (p *Pipeline) runStage(ctx context.Context, sum *Summary, t transform.Transform, prefix string, inputs []string, destDir string) ([]string, error) {
	r := runner.New(t, runner.WithLogger(p.log), runner.WithOutputPrefix(prefix))
	rep, err := r.Run(ctx, inputs, destDir)
	sum.Stages = append(sum.Stages, rep)
	if err != nil {
		return nil, fmt.Errorf("%s stage: %w", t.Name(), err)
	}

	var outputs []string
	for _, fr := range rep.Results {
		if fr.Status == runner.StatusSuccess || fr.Status == runner.StatusPartial {
			outputs = append(outputs, fr.Output)
		}
	}
	return outputs, nil
}

// CombineCorpus concatenates GloVe-format shards into a single corpus
// file, in the given order.
func CombineCorpus(ctx context.Context, shards []string, outPath string) error {
	if len(shards) == 0 {
		return fmt.Errorf("no shards to combine")
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	for _, shard := range shards {
		if err := ctx.Err(); err != nil {
			return err
		}

		in, err := os.Open(shard)
		if err != nil {
			return err
		}
		if _, err := io.Copy(w, in); err != nil {
			in.Close()
			return fmt.Errorf("combine %s: %w", shard, err)
		}
		in.Close()
	}

	if err := w.Flush(); err != nil {
		return err
	}
	return out.Close()
}
