package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/podscript/wrangle/internal/cli"
	"github.com/podscript/wrangle/pkg/wrangle/config"
	"github.com/podscript/wrangle/pkg/wrangle/finder"
	"github.com/podscript/wrangle/pkg/wrangle/runner"
	"github.com/podscript/wrangle/pkg/wrangle/shard"
	"github.com/podscript/wrangle/pkg/wrangle/transform"
)

func main() {
	var (
		src          = flag.String("src", "", "Directory of sentence-list .json files (required)")
		dest         = flag.String("dest", "", "Output directory (required)")
		configPath   = flag.String("config", "", "Pipeline config file")
		marker       = flag.String("marker", transform.DefaultMarker, "End-of-line marker token")
		prefix       = flag.String("prefix", "glv_", "Output name prefix")
		recursive    = flag.Bool("recursive", false, "Descend into subdirectories of -src")
		task         = flag.Int("task", 0, "Array task index (default from "+shard.TaskEnvVar+")")
		tasks        = flag.Int("tasks", 1, "Total array tasks")
		skipExisting = flag.Bool("skip-existing", false, "Skip inputs whose output already exists")
		verbose      = flag.Bool("v", false, "Verbose logging")
		quiet        = flag.Bool("q", false, "Errors only")
	)
	flag.Parse()
	cli.SetupLogging(*verbose, *quiet)

	if *src == "" || *dest == "" {
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
		if !set["marker"] {
			*marker = cfg.Pipeline.Marker
		}
		if !set["tasks"] {
			*tasks = cfg.Pipeline.Tasks
		}
	}

	t, err := transform.NewGloVeFormatter(transform.GloVeConfig{Marker: *marker})
	if err != nil {
		slog.Error("bad configuration", "error", err)
		os.Exit(1)
	}

	files, err := finder.Find(*src, finder.Criteria{Extension: ".json", Recursive: *recursive})
	if err != nil {
		slog.Error("find inputs", "src", *src, "error", err)
		os.Exit(1)
	}

	taskID := *task
	if !set["task"] {
		if taskID, err = shard.TaskID(); err != nil {
			slog.Error("read task index", "error", err)
			os.Exit(1)
		}
	}
	files, err = shard.Select(files, taskID, *tasks)
	if err != nil {
		slog.Error("select shard", "error", err)
		os.Exit(1)
	}

	opts := []runner.Option{runner.WithOutputPrefix(*prefix)}
	if *skipExisting {
		opts = append(opts, runner.WithSkipExisting())
	}
	rep, err := runner.New(t, opts...).Run(context.Background(), files, *dest)
	if err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
	cli.PrintReport(os.Stdout, rep)
}
