// Package glovecli drives the reference GloVe command line tools over a
// prepared corpus. The four stages run as separate processes wired
// through files, the same way the stock demo script chains them:
// vocab_count, cooccur, shuffle, glove.
package glovecli

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/podscript/wrangle/pkg/wrangle/internalerr"
)

const (
	vocabTool   = "vocab_count"
	cooccurTool = "cooccur"
	shuffleTool = "shuffle"
	trainTool   = "glove"
)

// Params holds tool settings. Zero-valued fields take the defaults of
// the stock demo script.
type Params struct {
	ToolDir    string // directory holding the built tools; empty means PATH
	VectorSize int
	Window     int
	MinCount   int
	Iterations int
	Memory     float64
	Threads    int
	XMax       int
}

// Artifacts names the files a full training job produces.
type Artifacts struct {
	Vocab    string
	Cooccur  string
	Shuffled string
	Vectors  string // save prefix; the tool writes <prefix>.txt and <prefix>.bin
}

// Driver runs the GloVe tools.
type Driver struct {
	p   Params
	log *slog.Logger
}

// New creates a Driver, filling zero params with defaults.
func New(p Params) *Driver {
	if p.VectorSize == 0 {
		p.VectorSize = 300
	}
	if p.Window == 0 {
		p.Window = 15
	}
	if p.MinCount == 0 {
		p.MinCount = 5
	}
	if p.Iterations == 0 {
		p.Iterations = 15
	}
	if p.Memory == 0 {
		p.Memory = 4.0
	}
	if p.Threads == 0 {
		p.Threads = 8
	}
	if p.XMax == 0 {
		p.XMax = 10
	}
	return &Driver{p: p, log: slog.Default()}
}

// lookTool resolves a tool name against ToolDir or the PATH.
func (d *Driver) lookTool(name string) (string, error) {
	if d.p.ToolDir != "" {
		path := filepath.Join(d.p.ToolDir, name)
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s", internalerr.ErrToolUnavailable, path)
		}
		return path, nil
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", internalerr.ErrToolUnavailable, name)
	}
	return path, nil
}

// Available reports whether all four tools can be found.
func (d *Driver) Available() bool {
	for _, name := range []string{vocabTool, cooccurTool, shuffleTool, trainTool} {
		if _, err := d.lookTool(name); err != nil {
			return false
		}
	}
	return true
}

// runPiped runs a tool with stdin and stdout redirected to files. The
// tools report progress on stderr; it is kept and attached to the error
// when the tool fails.
func (d *Driver) runPiped(ctx context.Context, name string, args []string, inPath, outPath string) error {
	tool, err := d.lookTool(name)
	if err != nil {
		return err
	}

	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, tool, args...)
	cmd.Stdin = in
	cmd.Stdout = out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w\n%s", name, err, stderr.String())
	}
	return out.Close()
}

// CountVocab builds the vocabulary file from a prepared corpus.
func (d *Driver) CountVocab(ctx context.Context, corpusPath, vocabPath string) error {
	d.log.Info("counting vocabulary", "corpus", filepath.Base(corpusPath))
	args := []string{
		"-min-count", strconv.Itoa(d.p.MinCount),
		"-verbose", "2",
	}
	return d.runPiped(ctx, vocabTool, args, corpusPath, vocabPath)
}

// Cooccur builds the co-occurrence file from the corpus and vocabulary.
func (d *Driver) Cooccur(ctx context.Context, corpusPath, vocabPath, outPath string) error {
	d.log.Info("counting co-occurrences", "corpus", filepath.Base(corpusPath), "window", d.p.Window)
	args := []string{
		"-memory", strconv.FormatFloat(d.p.Memory, 'f', 1, 64),
		"-vocab-file", vocabPath,
		"-verbose", "2",
		"-window-size", strconv.Itoa(d.p.Window),
	}
	return d.runPiped(ctx, cooccurTool, args, corpusPath, outPath)
}

// Shuffle shuffles the co-occurrence file.
func (d *Driver) Shuffle(ctx context.Context, inPath, outPath string) error {
	d.log.Info("shuffling co-occurrences", "input", filepath.Base(inPath))
	args := []string{
		"-memory", strconv.FormatFloat(d.p.Memory, 'f', 1, 64),
		"-verbose", "2",
	}
	return d.runPiped(ctx, shuffleTool, args, inPath, outPath)
}

// Train fits the vectors. savePrefix is extended by the tool itself.
func (d *Driver) Train(ctx context.Context, shuffledPath, vocabPath, savePrefix string) error {
	tool, err := d.lookTool(trainTool)
	if err != nil {
		return err
	}

	d.log.Info("training vectors",
		"input", filepath.Base(shuffledPath),
		"vector_size", d.p.VectorSize,
		"iterations", d.p.Iterations)

	cmd := exec.CommandContext(ctx, tool,
		"-save-file", savePrefix,
		"-threads", strconv.Itoa(d.p.Threads),
		"-input-file", shuffledPath,
		"-x-max", strconv.Itoa(d.p.XMax),
		"-iter", strconv.Itoa(d.p.Iterations),
		"-vector-size", strconv.Itoa(d.p.VectorSize),
		"-binary", "2",
		"-vocab-file", vocabPath,
		"-verbose", "2",
	)

	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("glove failed: %w\n%s", err, string(out))
	}
	return nil
}

// TrainAll runs the full four-stage job against one corpus file, placing
// intermediate files and vectors in workDir.
func (d *Driver) TrainAll(ctx context.Context, corpusPath, workDir string) (Artifacts, error) {
	a := Artifacts{
		Vocab:    filepath.Join(workDir, "vocab.txt"),
		Cooccur:  filepath.Join(workDir, "cooccurrence.bin"),
		Shuffled: filepath.Join(workDir, "cooccurrence.shuf.bin"),
		Vectors:  filepath.Join(workDir, "vectors"),
	}

	if err := os.MkdirAll(workDir, 0755); err != nil {
		return a, fmt.Errorf("create work dir: %w", err)
	}

	if err := d.CountVocab(ctx, corpusPath, a.Vocab); err != nil {
		return a, err
	}
	if err := d.Cooccur(ctx, corpusPath, a.Vocab, a.Cooccur); err != nil {
		return a, err
	}
	if err := d.Shuffle(ctx, a.Cooccur, a.Shuffled); err != nil {
		return a, err
	}
	if err := d.Train(ctx, a.Shuffled, a.Vocab, a.Vectors); err != nil {
		return a, err
	}

	d.log.Info("training finished", "vectors", a.Vectors)
	return a, nil
}
