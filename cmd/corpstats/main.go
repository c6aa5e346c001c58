package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/podscript/wrangle/internal/cli"
	"github.com/podscript/wrangle/pkg/wrangle/bench"
	"github.com/podscript/wrangle/pkg/wrangle/config"
	"github.com/podscript/wrangle/pkg/wrangle/finder"
	"github.com/podscript/wrangle/pkg/wrangle/token"
	"github.com/podscript/wrangle/pkg/wrangle/transform"
)

// corpstats reports corpus vocabulary statistics and how much of the
// external evaluation sets that vocabulary covers, before any GPU time is
// spent training on it.
func main() {
	var (
		corpusDir = flag.String("corpus", "", "Directory of sentence-list .json files")
		vocabPath = flag.String("vocab", "", "Vocab or vectors file, first column read as tokens")
		simPath   = flag.String("similarity", "", "Word-pair similarity file to check coverage against")
		anaPath   = flag.String("analogy", "", "Analogy question file to check coverage against")
		stoplist  = flag.String("stoplist", "", "YAML stoplist keeping function words out of the frequency table")
		top       = flag.Int("top", 20, "Rows in the frequency table, 0 to skip")
		marker    = flag.String("marker", transform.DefaultMarker, "Marker token kept out of the tallies")
		recursive = flag.Bool("recursive", false, "Descend into subdirectories of -corpus")
		verbose   = flag.Bool("v", false, "Verbose logging")
		quiet     = flag.Bool("q", false, "Errors only")
	)
	flag.Parse()
	cli.SetupLogging(*verbose, *quiet)

	if (*corpusDir == "") == (*vocabPath == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -corpus or -vocab is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()

	var vocab map[string]struct{}
	if *corpusDir != "" {
		files, err := finder.Find(*corpusDir, finder.Criteria{Extension: ".json", Recursive: *recursive})
		if err != nil {
			slog.Error("find corpus files", "corpus", *corpusDir, "error", err)
			os.Exit(1)
		}
		if len(files) == 0 {
			slog.Error("no .json files found", "corpus", *corpusDir)
			os.Exit(1)
		}

		freq, err := bench.CorpusVocab(ctx, files)
		if err != nil {
			slog.Error("read corpus", "error", err)
			os.Exit(1)
		}
		for _, tok := range token.NewTokenizer(nil).Tokenize(*marker) {
			delete(freq, tok)
		}

		var total int
		for _, c := range freq {
			total += c
		}
		fmt.Printf("corpus: %d files, %d distinct tokens, %d total\n", len(files), len(freq), total)

		// Coverage uses the full vocabulary; the benchmarks contain
		// function words too.
		vocab = make(map[string]struct{}, len(freq))
		for tok := range freq {
			vocab[tok] = struct{}{}
		}

		if *stoplist != "" {
			sl, err := config.LoadStoplist(*stoplist)
			if err != nil {
				slog.Error("load stoplist", "path", *stoplist, "error", err)
				os.Exit(1)
			}
			for _, term := range sl.Terms {
				delete(freq, strings.ToLower(term))
			}
		}

		if *top > 0 {
			fmt.Println("top tokens:")
			for _, tc := range bench.TopTokens(freq, *top) {
				fmt.Printf("  %s %d\n", tc.Token, tc.Count)
			}
		}
	} else {
		var err error
		if vocab, err = bench.LoadVocab(*vocabPath); err != nil {
			slog.Error("load vocab", "path", *vocabPath, "error", err)
			os.Exit(1)
		}
		fmt.Printf("vocab: %d tokens from %s\n", len(vocab), *vocabPath)
	}

	if *simPath != "" {
		pairs, err := bench.LoadSimilarity(*simPath)
		if err != nil {
			slog.Error("load similarity set", "path", *simPath, "error", err)
			os.Exit(1)
		}
		c := bench.SimilarityCoverage(pairs, vocab)
		fmt.Printf("similarity: %d/%d pairs covered (%.1f%%)\n", c.Covered, c.Total, 100*c.Fraction())
	}

	if *anaPath != "" {
		qs, err := bench.LoadAnalogies(*anaPath)
		if err != nil {
			slog.Error("load analogy set", "path", *anaPath, "error", err)
			os.Exit(1)
		}
		c := bench.AnalogyCoverage(qs, vocab)
		fmt.Printf("analogy: %d/%d questions covered (%.1f%%)\n", c.Covered, c.Total, 100*c.Fraction())
	}
}
