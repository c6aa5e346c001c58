package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/podscript/wrangle/internal/cli"
	"github.com/podscript/wrangle/internal/fetch"
)

func main() {
	var (
		feed    = flag.String("feed", "", "Podcast RSS feed URL (required)")
		out     = flag.String("out", "raw.jsonl", "Output shard path")
		limit   = flag.Int("limit", 0, "Fetch at most this many episodes, 0 for all")
		delay   = flag.Duration("delay", 50*time.Millisecond, "Pause between transcript downloads")
		verbose = flag.Bool("v", false, "Verbose logging")
		quiet   = flag.Bool("q", false, "Errors only")
	)
	flag.Parse()
	cli.SetupLogging(*verbose, *quiet)

	if *feed == "" {
		flag.Usage()
		os.Exit(2)
	}

	f := fetch.New(fetch.WithDelay(*delay), fetch.WithLimit(*limit))
	n, err := f.FetchCorpus(context.Background(), *feed, *out)
	if err != nil {
		slog.Error("fetch failed", "feed", *feed, "error", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %d transcripts to %s\n", n, *out)
}
