package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/podscript/wrangle/pkg/wrangle/runner"
)

// PrintReport writes a run report in the form the batch logs are grepped
// for: one line per file, then the totals.
func PrintReport(w io.Writer, rep runner.Report) {
	fmt.Fprintf(w, "run %s (%s): %d files in %s\n",
		rep.RunID, rep.Transform, len(rep.Results), rep.Elapsed.Round(time.Millisecond))

	for _, fr := range rep.Results {
		switch fr.Status {
		case runner.StatusFailed:
			fmt.Fprintf(w, "  %-7s %s: %v\n", fr.Status, fr.Input, fr.Err)
		case runner.StatusSkipped:
			fmt.Fprintf(w, "  %-7s %s\n", fr.Status, fr.Input)
		case runner.StatusPartial:
			fmt.Fprintf(w, "  %-7s %s -> %s (%d records, %d skipped)\n",
				fr.Status, fr.Input, fr.Output, fr.Stats.Records, fr.Stats.Skipped)
		default:
			fmt.Fprintf(w, "  %-7s %s -> %s (%d records)\n",
				fr.Status, fr.Input, fr.Output, fr.Stats.Records)
		}
	}

	fmt.Fprintf(w, "success %d, partial %d, skipped %d, failed %d\n",
		rep.Count(runner.StatusSuccess), rep.Count(runner.StatusPartial),
		rep.Count(runner.StatusSkipped), rep.Count(runner.StatusFailed))
}
