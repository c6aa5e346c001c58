package transform

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/podscript/wrangle/pkg/wrangle/internalerr"
	"github.com/podscript/wrangle/pkg/wrangle/record"
)

// Field names a Simplifier may keep.
const (
	FieldText    = "text"
	FieldSpeaker = "speaker"
	FieldURL     = "url"
)

// SimplifierConfig controls which record fields survive and how they are
// written out.
type SimplifierConfig struct {
	// Fields to keep, in output order. Defaults to just "text".
	Fields []string

	// Labels prefixes each value with its field name in .txt output.
	Labels bool

	// OutputExt selects the output shape: ".jsonl" keeps records as JSON
	// objects, ".txt" writes one field value per line.
	OutputExt string
}

// Simplifier strips raw transcript records down to the configured fields.
type Simplifier struct {
	cfg SimplifierConfig
}

// NewSimplifier validates the configuration and returns a Simplifier.
func NewSimplifier(cfg SimplifierConfig) (*Simplifier, error) {
	if len(cfg.Fields) == 0 {
		cfg.Fields = []string{FieldText}
	}
	for _, f := range cfg.Fields {
		switch f {
		case FieldText, FieldSpeaker, FieldURL:
		default:
			return nil, fmt.Errorf("%w: unknown field %q", internalerr.ErrUnsupportedConfig, f)
		}
	}

	if cfg.OutputExt == "" {
		cfg.OutputExt = ".jsonl"
	}
	if cfg.OutputExt != ".jsonl" && cfg.OutputExt != ".txt" {
		return nil, fmt.Errorf("%w: simplifier cannot write %q", internalerr.ErrBadExtension, cfg.OutputExt)
	}

	return &Simplifier{cfg: cfg}, nil
}

func (s *Simplifier) Name() string      { return "simplify" }
func (s *Simplifier) InputExt() string  { return ".jsonl" }
func (s *Simplifier) OutputExt() string { return s.cfg.OutputExt }

// Apply streams records from inputPath and writes the reduced form to
// outputPath. Malformed input lines are skipped and counted, not fatal.
func (s *Simplifier) Apply(ctx context.Context, inputPath, outputPath string) (Stats, error) {
	var stats Stats

	r, err := record.Open(inputPath)
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

		doc, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, err
		}

		if s.cfg.OutputExt == ".jsonl" {
			if err := s.writeJSON(buf, doc); err != nil {
				return stats, err
			}
		} else {
			if err := s.writeText(buf, doc); err != nil {
				return stats, err
			}
		}
		stats.Records++
	}

	stats.Skipped = r.Skipped()

	if err := buf.Flush(); err != nil {
		return stats, fmt.Errorf("flush %s: %w", outputPath, err)
	}
	return stats, nil
}

func (s *Simplifier) writeJSON(w *bufio.Writer, doc record.Document) error {
	kept := make(map[string]string, len(s.cfg.Fields))
	for _, f := range s.cfg.Fields {
		kept[f] = fieldValue(doc, f)
	}
	data, err := json.Marshal(kept)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	return w.WriteByte('\n')
}

func (s *Simplifier) writeText(w *bufio.Writer, doc record.Document) error {
	for _, f := range s.cfg.Fields {
		// Values stay on a single line so downstream stages can treat
		// each line as one unit.
		value := strings.ReplaceAll(fieldValue(doc, f), "\n", " ")
		if s.cfg.Labels {
			if _, err := w.WriteString(f + ": "); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(value); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return nil
}

func fieldValue(doc record.Document, field string) string {
	switch field {
	case FieldText:
		return doc.Text
	case FieldSpeaker:
		return doc.Speaker
	case FieldURL:
		return doc.URL
	}
	return ""
}
