package cli

import (
	"errors"
	"flag"
	"strings"
	"testing"

	"github.com/podscript/wrangle/pkg/wrangle/runner"
	"github.com/podscript/wrangle/pkg/wrangle/transform"
)

func TestExplicitTracksOnlySetFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.String("marker", "eopc", "")
	fs.Int("tasks", 1, "")
	fs.Bool("recursive", false, "")

	if err := fs.Parse([]string{"-marker", "custom", "-recursive"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	set := Explicit(fs)
	if !set["marker"] {
		t.Error("marker was set but not reported")
	}
	if !set["recursive"] {
		t.Error("recursive was set but not reported")
	}
	if set["tasks"] {
		t.Error("tasks was not set but reported")
	}
}

func TestExplicitEmptyCommandLine(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.String("marker", "eopc", "")

	if err := fs.Parse(nil); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if set := Explicit(fs); len(set) != 0 {
		t.Errorf("expected no explicit flags, got %v", set)
	}
}

func TestPrintReport(t *testing.T) {
	rep := runner.Report{
		RunID:     "01TESTRUN",
		Transform: "clean",
		Results: []runner.FileResult{
			{Input: "a.txt", Output: "out/tc_a.txt", Status: runner.StatusSuccess, Stats: transform.Stats{Records: 12}},
			{Input: "b.txt", Status: runner.StatusFailed, Err: errors.New("boom")},
			{Input: "c.json", Status: runner.StatusSkipped},
			{Input: "d.txt", Output: "out/tc_d.txt", Status: runner.StatusPartial, Stats: transform.Stats{Records: 9, Skipped: 1}},
		},
	}

	var buf strings.Builder
	PrintReport(&buf, rep)
	out := buf.String()

	for _, want := range []string{
		"run 01TESTRUN (clean): 4 files",
		"success a.txt -> out/tc_a.txt (12 records)",
		"failed  b.txt: boom",
		"skipped c.json",
		"partial d.txt -> out/tc_d.txt (9 records, 1 skipped)",
		"success 1, partial 1, skipped 1, failed 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}
