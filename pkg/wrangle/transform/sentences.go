package transform

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/podscript/wrangle/pkg/wrangle/internalerr"
	"github.com/podscript/wrangle/pkg/wrangle/record"
	"github.com/podscript/wrangle/pkg/wrangle/token"
)

// SentencesConfig configures the sentence-list stage.
type SentencesConfig struct {
	// Marker is the end-of-line marker expected in the input and emitted
	// as its own sentence. Defaults to DefaultMarker.
	Marker string
}

// SentenceListBuilder converts marked transcript text into the nested
// sentence-list JSON the word2vec path trains on: every line becomes its
// tokenized sentences followed by one marker sentence.
type SentenceListBuilder struct {
	cfg       SentencesConfig
	tokenizer *token.Tokenizer
	marker    []string
}

// NewSentenceListBuilder validates the configuration and returns a builder.
func NewSentenceListBuilder(cfg SentencesConfig) (*SentenceListBuilder, error) {
	if cfg.Marker == "" {
		cfg.Marker = DefaultMarker
	}

	tk := token.NewTokenizer(nil)
	marker := tk.Tokenize(cfg.Marker)
	if len(marker) == 0 {
		return nil, fmt.Errorf("%w: marker %q has no word tokens", internalerr.ErrUnsupportedConfig, cfg.Marker)
	}

	return &SentenceListBuilder{cfg: cfg, tokenizer: tk, marker: marker}, nil
}

func (b *SentenceListBuilder) Name() string      { return "sentences" }
func (b *SentenceListBuilder) InputExt() string  { return ".txt" }
func (b *SentenceListBuilder) OutputExt() string { return ".json" }

// MarkerSentence returns the token form of the configured marker.
func (b *SentenceListBuilder) MarkerSentence() []string {
	out := make([]string, len(b.marker))
	copy(out, b.marker)
	return out
}

// Apply tokenizes inputPath line by line into a sentence-list file. Each
// non-empty line contributes its sentences plus a trailing marker
// sentence; a line already terminated by the marker stage contributes the
// marker sentence exactly once.
func (b *SentenceListBuilder) Apply(ctx context.Context, inputPath, outputPath string) (Stats, error) {
	var stats Stats

	in, err := os.Open(inputPath)
	if err != nil {
		return stats, fmt.Errorf("open %s: %w", inputPath, err)
	}
	defer in.Close()

	w, err := record.CreateSentences(outputPath)
	if err != nil {
		return stats, err
	}
	defer w.Close()

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		line := sc.Text()
		sents := token.SplitSentences(line)
		if len(sents) == 0 {
			continue
		}

		wroteMarkerLast := false
		wroteAny := false
		for _, sent := range sents {
			toks := b.tokenizer.Tokenize(sent)
			if len(toks) == 0 {
				continue
			}
			if err := w.Write(toks); err != nil {
				return stats, err
			}
			wroteAny = true
			wroteMarkerLast = equalTokens(toks, b.marker)
		}
		if !wroteAny {
			continue
		}

		if !wroteMarkerLast {
			if err := w.Write(b.marker); err != nil {
				return stats, err
			}
		}
		stats.Records++
	}
	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("scan %s: %w", inputPath, err)
	}

	if err := w.Close(); err != nil {
		return stats, fmt.Errorf("close %s: %w", outputPath, err)
	}
	return stats, nil
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
