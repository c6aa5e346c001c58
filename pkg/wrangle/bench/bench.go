// Package bench loads word-similarity and analogy evaluation sets and
// reports how much of them a trained vocabulary covers. Coverage is the
// usual sanity check after training: a corpus bug that drops words shows
// up here long before anyone inspects the vectors.
package bench

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/podscript/wrangle/pkg/wrangle/record"
)

// SimilarityPair is one human-scored word pair.
type SimilarityPair struct {
	A     string
	B     string
	Score float64
}

// LoadSimilarity reads a word-pair file: two words and a score per line,
// whitespace separated. Blank lines and '#' comments are skipped, and so
// are malformed lines, with a warning. Words are lowercased to match the
// corpus. Errors if no valid pair is found.
func LoadSimilarity(path string) ([]SimilarityPair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	defer f.Close()

	var (
		pairs   []SimilarityPair
		skipped int
		lineNum int
	)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 {
			slog.Warn("skipping malformed similarity line", "file", path, "line", lineNum)
			skipped++
			continue
		}
		score, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			slog.Warn("skipping similarity line with bad score", "file", path, "line", lineNum)
			skipped++
			continue
		}

		pairs = append(pairs, SimilarityPair{
			A:     strings.ToLower(fields[0]),
			B:     strings.ToLower(fields[1]),
			Score: score,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}

	if len(pairs) == 0 {
		return nil, fmt.Errorf("no valid pairs in %s (%d lines skipped)", path, skipped)
	}
	return pairs, nil
}

// Analogy is one four-word analogy question: A is to B as C is to D.
type Analogy struct {
	Section string
	A, B, C string
	D       string
}

// LoadAnalogies reads a Google-format analogy file: ": section" headers
// followed by four-word lines. Words are lowercased to match the corpus.
// Errors if no valid question is found.
func LoadAnalogies(path string) ([]Analogy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	defer f.Close()

	var (
		questions []Analogy
		section   string
		skipped   int
		lineNum   int
	)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ":") {
			section = strings.TrimSpace(strings.TrimPrefix(line, ":"))
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 4 {
			slog.Warn("skipping malformed analogy line", "file", path, "line", lineNum)
			skipped++
			continue
		}

		questions = append(questions, Analogy{
			Section: section,
			A:       strings.ToLower(fields[0]),
			B:       strings.ToLower(fields[1]),
			C:       strings.ToLower(fields[2]),
			D:       strings.ToLower(fields[3]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("no valid questions in %s (%d lines skipped)", path, skipped)
	}
	return questions, nil
}

// LoadVocab reads the first column of a vocab or vectors file, one token
// per line.
func LoadVocab(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	defer f.Close()

	vocab := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		vocab[fields[0]] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}

	if len(vocab) == 0 {
		return nil, fmt.Errorf("no tokens in %s", path)
	}
	return vocab, nil
}

// CorpusVocab accumulates token frequencies across sentence-list files.
// Marker sentences count like any other sentence; callers that want the
// marker out of the tallies delete its token from the result.
func CorpusVocab(ctx context.Context, paths []string) (map[string]int, error) {
	freq := make(map[string]int)
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r, err := record.OpenSentences(path)
		if err != nil {
			return nil, err
		}
		for {
			sent, err := r.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				r.Close()
				return nil, fmt.Errorf("read %s: %w", path, err)
			}
			for _, tok := range sent {
				freq[tok]++
			}
		}
		r.Close()
	}
	return freq, nil
}

// TokenCount is one row of a frequency table.
type TokenCount struct {
	Token string
	Count int
}

// TopTokens returns the n most frequent tokens, ties broken alphabetically.
func TopTokens(freq map[string]int, n int) []TokenCount {
	counts := make([]TokenCount, 0, len(freq))
	for tok, c := range freq {
		counts = append(counts, TokenCount{Token: tok, Count: c})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Token < counts[j].Token
	})
	if n > 0 && n < len(counts) {
		counts = counts[:n]
	}
	return counts
}

// Coverage counts how many evaluation items a vocabulary fully covers.
type Coverage struct {
	Total   int
	Covered int
}

// Fraction returns covered over total, 0 for an empty set.
func (c Coverage) Fraction() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Covered) / float64(c.Total)
}

// SimilarityCoverage counts pairs with both words in the vocabulary.
func SimilarityCoverage(pairs []SimilarityPair, vocab map[string]struct{}) Coverage {
	c := Coverage{Total: len(pairs)}
	for _, p := range pairs {
		if _, ok := vocab[p.A]; !ok {
			continue
		}
		if _, ok := vocab[p.B]; !ok {
			continue
		}
		c.Covered++
	}
	return c
}

// AnalogyCoverage counts questions with all four words in the vocabulary.
func AnalogyCoverage(questions []Analogy, vocab map[string]struct{}) Coverage {
	c := Coverage{Total: len(questions)}
	for _, q := range questions {
		ok := true
		for _, w := range []string{q.A, q.B, q.C, q.D} {
			if _, in := vocab[w]; !in {
				ok = false
				break
			}
		}
		if ok {
			c.Covered++
		}
	}
	return c
}
