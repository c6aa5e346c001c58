package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/podscript/wrangle/internal/cli"
	"github.com/podscript/wrangle/pkg/wrangle"
	"github.com/podscript/wrangle/pkg/wrangle/config"
	"github.com/podscript/wrangle/pkg/wrangle/finder"
	"github.com/podscript/wrangle/pkg/wrangle/glovecli"
)

// glovejob concatenates the GloVe-format shards into one corpus file and
// runs the external GloVe tools over it. The math lives in the tools; this
// command only sequences them.
func main() {
	var (
		src        = flag.String("src", "", "Directory of GloVe-format .txt shards (required)")
		work       = flag.String("work", "", "Working directory for corpus and artifacts (required)")
		configPath = flag.String("config", "", "Pipeline config file")
		toolDir    = flag.String("tools", "", "Directory holding the built GloVe tools (default PATH)")
		vectorSize = flag.Int("vector-size", 300, "Embedding dimensions")
		window     = flag.Int("window", 15, "Co-occurrence window size")
		minCount   = flag.Int("min-count", 5, "Minimum token frequency")
		iterations = flag.Int("iter", 15, "Training iterations")
		memory     = flag.Float64("memory", 4.0, "Cooccur/shuffle memory limit in GB")
		threads    = flag.Int("threads", 8, "Training threads")
		xMax       = flag.Int("x-max", 10, "Weighting cutoff")
		recursive  = flag.Bool("recursive", false, "Descend into subdirectories of -src")
		verbose    = flag.Bool("v", false, "Verbose logging")
		quiet      = flag.Bool("q", false, "Errors only")
	)
	flag.Parse()
	cli.SetupLogging(*verbose, *quiet)

	if *src == "" || *work == "" {
		flag.Usage()
		os.Exit(2)
	}

	set := cli.Explicit(flag.CommandLine)
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			slog.Error("load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		if !set["tools"] {
			*toolDir = cfg.Train.ToolDir
		}
		if !set["vector-size"] {
			*vectorSize = cfg.Train.VectorSize
		}
		if !set["window"] {
			*window = cfg.Train.Window
		}
		if !set["min-count"] {
			*minCount = cfg.Train.MinCount
		}
		if !set["iter"] {
			*iterations = cfg.Train.Iterations
		}
		if !set["memory"] {
			*memory = cfg.Train.Memory
		}
		if !set["threads"] {
			*threads = cfg.Train.Threads
		}
		if !set["x-max"] {
			*xMax = cfg.Train.XMax
		}
	}

	ctx := context.Background()

	shards, err := finder.Find(*src, finder.Criteria{Extension: ".txt", Recursive: *recursive})
	if err != nil {
		slog.Error("find shards", "src", *src, "error", err)
		os.Exit(1)
	}
	if len(shards) == 0 {
		slog.Error("no .txt shards found", "src", *src)
		os.Exit(1)
	}

	if err := os.MkdirAll(*work, 0755); err != nil {
		slog.Error("create work dir", "error", err)
		os.Exit(1)
	}

	corpus := filepath.Join(*work, "corpus.txt")
	if err := wrangle.CombineCorpus(ctx, shards, corpus); err != nil {
		slog.Error("combine shards", "error", err)
		os.Exit(1)
	}
	slog.Info("corpus combined", "shards", len(shards), "corpus", corpus)

	d := glovecli.New(glovecli.Params{
		ToolDir:    *toolDir,
		VectorSize: *vectorSize,
		Window:     *window,
		MinCount:   *minCount,
		Iterations: *iterations,
		Memory:     *memory,
		Threads:    *threads,
		XMax:       *xMax,
	})
	if !d.Available() {
		slog.Error("GloVe tools not found", "tools", *toolDir)
		os.Exit(1)
	}

	art, err := d.TrainAll(ctx, corpus, *work)
	if err != nil {
		slog.Error("training failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("vocab:   %s\ncooccur: %s\nshuffle: %s\nvectors: %s.txt\n",
		art.Vocab, art.Cooccur, art.Shuffled, art.Vectors)
}
