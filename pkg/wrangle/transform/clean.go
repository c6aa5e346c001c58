package transform

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/podscript/wrangle/pkg/wrangle/contractions"
	"github.com/podscript/wrangle/pkg/wrangle/internalerr"
)

// Contraction handling levels.
const (
	ContractionsOff    = 0 // leave contractions as written
	ContractionsStatic = 1 // expand via the fixed mapping
	ContractionsModel  = 2 // reserved for a context-aware expander
)

// CleanerConfig controls transcript text cleanup.
type CleanerConfig struct {
	// ContractionLevel is one of the Contractions* constants.
	ContractionLevel int
}

// Cleaner removes transcription noise from plain-text transcripts:
// bracketed annotations like [MUSIC] or (laughs), markup remnants, and
// excess whitespace. Cleaning a line twice gives the same result as
// cleaning it once.
type Cleaner struct {
	cfg CleanerConfig
}

// NewCleaner validates the configuration and returns a Cleaner. Level 2 is
// reserved and fails loudly rather than silently falling back to the
// static mapping.
func NewCleaner(cfg CleanerConfig) (*Cleaner, error) {
	switch cfg.ContractionLevel {
	case ContractionsOff, ContractionsStatic:
	case ContractionsModel:
		return nil, fmt.Errorf("%w: contraction level 2", internalerr.ErrNotImplemented)
	default:
		return nil, fmt.Errorf("%w: contraction level %d", internalerr.ErrUnsupportedConfig, cfg.ContractionLevel)
	}
	return &Cleaner{cfg: cfg}, nil
}

func (c *Cleaner) Name() string      { return "clean" }
func (c *Cleaner) InputExt() string  { return ".txt" }
func (c *Cleaner) OutputExt() string { return ".txt" }

// Bracketed annotations are removed innermost pair first, repeating until
// nothing changes. Stray brackets without a partner never match, so they
// survive cleaning untouched.
var bracketPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\[[^\[\]]*\]`),
	regexp.MustCompile(`\([^()]*\)`),
	regexp.MustCompile(`\{[^{}]*\}`),
	regexp.MustCompile(`<[^<>]*>`),
}

var (
	starMarkup  = regexp.MustCompile(`\s\*[a-zA-Z\s]*\*\s`)
	slashMarkup = regexp.MustCompile(`\s/+\w+/+\s`)
	tildeMarkup = regexp.MustCompile(`~[^~]*~`)
	spaceRuns   = regexp.MustCompile(`\s+`)
)

// Apply cleans inputPath line by line into outputPath. Lines that clean
// down to nothing are dropped.
func (c *Cleaner) Apply(ctx context.Context, inputPath, outputPath string) (Stats, error) {
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

		line := c.CleanLine(sc.Text())
		if line == "" {
			continue
		}
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

// CleanLine applies the full cleanup to a single line of text.
func (c *Cleaner) CleanLine(line string) string {
	line = removeBracketPairs(line)

	// Typographic apostrophes would hide contractions from the mapping.
	line = strings.ReplaceAll(line, "’", "'")

	line = starMarkup.ReplaceAllString(line, " ")
	line = slashMarkup.ReplaceAllString(line, " ")
	line = tildeMarkup.ReplaceAllString(line, "")
	line = strings.ReplaceAll(line, `\`, "")

	if c.cfg.ContractionLevel == ContractionsStatic {
		line = contractions.Fix(line)
	}

	line = spaceRuns.ReplaceAllString(line, " ")
	return strings.TrimSpace(line)
}

func removeBracketPairs(s string) string {
	for {
		changed := false
		for _, re := range bracketPatterns {
			if next := re.ReplaceAllString(s, ""); next != s {
				s = next
				changed = true
			}
		}
		if !changed {
			return s
		}
	}
}
