package transform

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/podscript/wrangle/pkg/wrangle/internalerr"
	"github.com/podscript/wrangle/pkg/wrangle/record"
	"github.com/podscript/wrangle/pkg/wrangle/token"
)

// GloVeConfig configures the GloVe corpus formatter.
type GloVeConfig struct {
	// Marker identifies the sentence that closes a training unit.
	// Defaults to DefaultMarker.
	Marker string
}

// GloVeFormatter flattens sentence-list files into the one-training-unit-
// per-line text the GloVe toolchain reads: token sequences joined by
// spaces, with each marker sentence becoming a line break.
type GloVeFormatter struct {
	cfg    GloVeConfig
	marker []string
}

// NewGloVeFormatter validates the configuration and returns a formatter.
func NewGloVeFormatter(cfg GloVeConfig) (*GloVeFormatter, error) {
	if cfg.Marker == "" {
		cfg.Marker = DefaultMarker
	}
	marker := token.NewTokenizer(nil).Tokenize(cfg.Marker)
	if len(marker) == 0 {
		return nil, fmt.Errorf("%w: marker %q has no word tokens", internalerr.ErrUnsupportedConfig, cfg.Marker)
	}
	return &GloVeFormatter{cfg: cfg, marker: marker}, nil
}

func (g *GloVeFormatter) Name() string      { return "gloveformat" }
func (g *GloVeFormatter) InputExt() string  { return ".json" }
func (g *GloVeFormatter) OutputExt() string { return ".txt" }

// Apply streams sentences from inputPath into outputPath. Records counts
// the training units written, one per marker sentence.
func (g *GloVeFormatter) Apply(ctx context.Context, inputPath, outputPath string) (Stats, error) {
	var stats Stats

	r, err := record.OpenSentences(inputPath)
	if err != nil {
		return stats, err
	}
	defer r.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return stats, fmt.Errorf("create %s: %w", outputPath, err)
	}
	defer out.Close()
	buf := bufio.NewWriter(out)

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		sent, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, err
		}

		if equalTokens(sent, g.marker) {
			if err := buf.WriteByte('\n'); err != nil {
				return stats, err
			}
			stats.Records++
			continue
		}

		if _, err := buf.WriteString(strings.Join(sent, " ")); err != nil {
			return stats, err
		}
		if err := buf.WriteByte(' '); err != nil {
			return stats, err
		}
	}

	if err := buf.Flush(); err != nil {
		return stats, fmt.Errorf("flush %s: %w", outputPath, err)
	}
	return stats, nil
}
