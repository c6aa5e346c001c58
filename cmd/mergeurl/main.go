package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/podscript/wrangle/internal/cli"
	"github.com/podscript/wrangle/pkg/wrangle/finder"
	"github.com/podscript/wrangle/pkg/wrangle/merge"
)

// mergeurl runs over the whole corpus in one process. Episodes span shard
// boundaries, so splitting this stage across array tasks would cut them
// apart; everything else in the pipeline shards freely.
func main() {
	var (
		src       = flag.String("src", "", "Directory of simplified .jsonl shards (required)")
		dest      = flag.String("dest", "", "Output directory (required)")
		sep       = flag.String("sep", " ", "Separator joining merged turn texts")
		prefix    = flag.String("prefix", "mrg_", "Output name prefix")
		recursive = flag.Bool("recursive", false, "Descend into subdirectories of -src")
		verbose   = flag.Bool("v", false, "Verbose logging")
		quiet     = flag.Bool("q", false, "Errors only")
	)
	flag.Parse()
	cli.SetupLogging(*verbose, *quiet)

	if *src == "" || *dest == "" {
		flag.Usage()
		os.Exit(2)
	}

	files, err := finder.Find(*src, finder.Criteria{Extension: ".jsonl", Recursive: *recursive})
	if err != nil {
		slog.Error("find inputs", "src", *src, "error", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		slog.Error("no .jsonl shards found", "src", *src)
		os.Exit(1)
	}

	m := merge.New(merge.WithSeparator(*sep), merge.WithOutputPrefix(*prefix))
	res, err := m.MergeFiles(context.Background(), files, *dest)
	if err != nil {
		slog.Error("merge failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("merged %d shards: %d episodes, %d malformed lines skipped\n",
		res.FilesWritten, res.Records, res.Skipped)
}
