package bench

import (
	"context"
	"fmt"
	"io"

	"github.com/wesleyorama2/bookbench/internal/bench/metrics"
)

// warmupLabel keeps warmup entity identities distinguishable from the
// measurement-phase identities, which are labelled per virtual user.
const warmupLabel = "Warmup"

// RunWarmup executes the workload the given number of times before the
// measurement window opens, to prime connection pools and caches in the
// target service.
//
// Warmup cycles feed a discard recorder, so they contribute zero samples
// and zero checks to the final report. Step failures are logged by the
// workload and never abort the run. A zero or negative count is a no-op.
func RunWarmup(ctx context.Context, w *Workload, iterations int, out io.Writer) {
	if iterations <= 0 {
		return
	}

	if out != nil {
		fmt.Fprintf(out, "warmup: running %d iterations\n", iterations)
	}

	for i := 0; i < iterations; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}
		w.Run(ctx, warmupLabel, int64(i+1), metrics.Discard{})
	}
}
