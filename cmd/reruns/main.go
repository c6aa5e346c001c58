package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/podscript/wrangle/internal/cli"
	"github.com/podscript/wrangle/pkg/wrangle/config"
	"github.com/podscript/wrangle/pkg/wrangle/finder"
	"github.com/podscript/wrangle/pkg/wrangle/reruns"
	"github.com/podscript/wrangle/pkg/wrangle/reruns/postgres"
	"github.com/podscript/wrangle/pkg/wrangle/reruns/sqlite"
	"github.com/podscript/wrangle/pkg/wrangle/shard"
	"github.com/podscript/wrangle/pkg/wrangle/token"
	"github.com/podscript/wrangle/pkg/wrangle/transform"
)

// reruns maintains the repeated-sentence index over sentence-list files
// and strips the detected runs.
//
// File numbers are positions in the sorted listing of -src, so the index,
// detect and strip phases must all see the same directory. Index and strip
// shard across array tasks by that global position; detect scans the whole
// index and runs as a single task.
func main() {
	var (
		mode       = flag.String("mode", "", "Phase: index, detect or strip (required)")
		src        = flag.String("src", "", "Directory of sentence-list .json files")
		dest       = flag.String("dest", "", "Output directory for stripped files (strip mode)")
		configPath = flag.String("config", "", "Pipeline config file")
		driver     = flag.String("driver", "sqlite", "Index store: sqlite or postgres")
		dbPath     = flag.String("db", "", "SQLite database path")
		dsn        = flag.String("dsn", "", "Postgres connection string")
		minRun     = flag.Int("min-run", reruns.DefaultMinRun, "Shortest repetition treated as a run")
		marker     = flag.String("marker", transform.DefaultMarker, "End-of-line marker token")
		prefix     = flag.String("prefix", "rr_", "Output name prefix (strip mode)")
		recursive  = flag.Bool("recursive", false, "Descend into subdirectories of -src")
		task       = flag.Int("task", 0, "Array task index (default from "+shard.TaskEnvVar+")")
		tasks      = flag.Int("tasks", 1, "Total array tasks")
		verbose    = flag.Bool("v", false, "Verbose logging")
		quiet      = flag.Bool("q", false, "Errors only")
	)
	flag.Parse()
	cli.SetupLogging(*verbose, *quiet)

	set := cli.Explicit(flag.CommandLine)
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			slog.Error("load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		if !set["driver"] {
			*driver = cfg.Index.Driver
		}
		if !set["db"] {
			*dbPath = cfg.Index.Path
		}
		if !set["dsn"] {
			*dsn = cfg.Index.DSN
		}
		if !set["min-run"] {
			*minRun = cfg.Index.MinRun
		}
		if !set["marker"] {
			*marker = cfg.Pipeline.Marker
		}
		if !set["tasks"] {
			*tasks = cfg.Pipeline.Tasks
		}
	}

	markerTokens := token.NewTokenizer(nil).Tokenize(*marker)
	ctx := context.Background()

	store, err := openStore(ctx, *driver, *dbPath, *dsn)
	if err != nil {
		slog.Error("open index store", "driver", *driver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	taskID := *task
	if !set["task"] {
		if taskID, err = shard.TaskID(); err != nil {
			slog.Error("read task index", "error", err)
			os.Exit(1)
		}
	}
	if taskID < 0 || taskID >= *tasks {
		slog.Error("task index out of range", "task", taskID, "tasks", *tasks)
		os.Exit(1)
	}

	switch *mode {
	case "index":
		err = runIndex(ctx, store, markerTokens, *src, *recursive, taskID, *tasks)
	case "detect":
		err = runDetect(ctx, store, *minRun)
	case "strip":
		err = runStrip(ctx, store, markerTokens, *src, *dest, *prefix, *recursive, taskID, *tasks)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		slog.Error("phase failed", "mode", *mode, "error", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, driver, dbPath, dsn string) (reruns.Store, error) {
	switch driver {
	case "sqlite":
		if dbPath == "" {
			return nil, fmt.Errorf("-db required for the sqlite store")
		}
		return sqlite.Open(ctx, dbPath)
	case "postgres":
		if dsn == "" {
			return nil, fmt.Errorf("-dsn required for the postgres store")
		}
		return postgres.Open(ctx, dsn)
	}
	return nil, fmt.Errorf("unknown driver %q", driver)
}

func listFiles(src string, recursive bool) ([]string, error) {
	if src == "" {
		return nil, fmt.Errorf("-src required")
	}
	files, err := finder.Find(src, finder.Criteria{Extension: ".json", Recursive: recursive})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .json files in %s", src)
	}
	return files, nil
}

func runIndex(ctx context.Context, store reruns.Store, markerTokens []string, src string, recursive bool, taskID, tasks int) error {
	files, err := listFiles(src, recursive)
	if err != nil {
		return err
	}

	ix, err := reruns.NewIndexer(store, markerTokens)
	if err != nil {
		return err
	}

	var total, failed int
	// File numbers are global positions, so stride over the full list
	// instead of shard.Select.
	for i := taskID; i < len(files); i += tasks {
		n, err := ix.IndexFile(ctx, files[i], i)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			slog.Error("index failed", "file", files[i], "error", err)
			failed++
			continue
		}
		total += n
	}

	fmt.Printf("indexed %d sentences, %d files failed\n", total, failed)
	return nil
}

func runDetect(ctx context.Context, store reruns.Store, minRun int) error {
	d, err := reruns.NewDetector(minRun)
	if err != nil {
		return err
	}

	runs, err := d.Detect(ctx, store)
	if err != nil {
		return err
	}
	if err := store.ReplaceRuns(ctx, runs); err != nil {
		return err
	}

	counts, err := store.Counts(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("detected %d runs across %d sentences in %d files\n",
		counts.Runs, counts.Sentences, counts.Files)
	return nil
}

func runStrip(ctx context.Context, store reruns.Store, markerTokens []string, src, dest, prefix string, recursive bool, taskID, tasks int) error {
	if dest == "" {
		return fmt.Errorf("-dest required for strip")
	}
	files, err := listFiles(src, recursive)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	sp, err := reruns.NewStripper(markerTokens)
	if err != nil {
		return err
	}

	var dropped, failed int
	for i := taskID; i < len(files); i += tasks {
		runs, err := store.RunsForFile(ctx, i)
		if err != nil {
			return err
		}

		out := filepath.Join(dest, prefix+filepath.Base(files[i]))
		n, err := sp.StripFile(ctx, files[i], out, runs)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			slog.Error("strip failed", "file", files[i], "error", err)
			failed++
			continue
		}
		dropped += n
	}

	fmt.Printf("dropped %d repeated sentences, %d files failed\n", dropped, failed)
	return nil
}
