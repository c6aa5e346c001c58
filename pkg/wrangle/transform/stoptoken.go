package transform

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/podscript/wrangle/pkg/wrangle/internalerr"
)

// StopTokenConfig configures the end-of-line marker stage.
type StopTokenConfig struct {
	// Marker is appended to every line. Defaults to DefaultMarker.
	// Multi-word markers are allowed.
	Marker string
}

// StopTokenAppender terminates every transcript line with the marker so
// later stages can recover line boundaries after sentence splitting.
type StopTokenAppender struct {
	cfg StopTokenConfig
}

// NewStopTokenAppender validates the configuration and returns an appender.
func NewStopTokenAppender(cfg StopTokenConfig) (*StopTokenAppender, error) {
	if cfg.Marker == "" {
		cfg.Marker = DefaultMarker
	}
	if strings.TrimSpace(cfg.Marker) == "" {
		return nil, fmt.Errorf("%w: blank marker", internalerr.ErrUnsupportedConfig)
	}
	return &StopTokenAppender{cfg: cfg}, nil
}

func (a *StopTokenAppender) Name() string      { return "stoptoken" }
func (a *StopTokenAppender) InputExt() string  { return ".txt" }
func (a *StopTokenAppender) OutputExt() string { return ".txt" }

// Apply appends the marker to every non-empty line of inputPath. A line
// without terminal punctuation gets a period first, so the marker always
// starts a fresh sentence.
func (a *StopTokenAppender) Apply(ctx context.Context, inputPath, outputPath string) (Stats, error) {
	var stats Stats

	in, err := os.Open(inputPath)
	if err != nil {
		return stats, fmt.Errorf("open %s: %w", inputPath, err)
	}
	defer in.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return stats, fmt.Errorf("create %s: %w", outputPath, err)
	}
	defer out.Close()
	buf := bufio.NewWriter(out)

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if !endsWithTerminal(line) {
			line += "."
		}
		line += " " + a.cfg.Marker

		if _, err := buf.WriteString(line); err != nil {
			return stats, err
		}
		if err := buf.WriteByte('\n'); err != nil {
			return stats, err
		}
		stats.Records++
	}
	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("scan %s: %w", inputPath, err)
	}

	if err := buf.Flush(); err != nil {
		return stats, fmt.Errorf("flush %s: %w", outputPath, err)
	}
	return stats, nil
}

func endsWithTerminal(line string) bool {
	switch line[len(line)-1] {
	case '.', '?', '!':
		return true
	}
	return false
}
