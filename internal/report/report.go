// Package report renders the outcome of a benchmark run: a human-readable
// console block and a CSV record for external analysis tooling.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/wesleyorama2/bookbench/internal/bench"
	"github.com/wesleyorama2/bookbench/internal/bench/metrics"
)

// ColorScheme defines the colors used for the console summary.
type ColorScheme struct {
	Header  *color.Color
	Success *color.Color
	Error   *color.Color
	Warn    *color.Color
}

// DefaultColorScheme returns the default color scheme.
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		Header:  color.New(color.FgCyan, color.Bold),
		Success: color.New(color.FgGreen, color.Bold),
		Error:   color.New(color.FgRed, color.Bold),
		Warn:    color.New(color.FgYellow),
	}
}

// NoColorScheme returns a scheme with all colors disabled.
func NoColorScheme() *ColorScheme {
	scheme := DefaultColorScheme()
	scheme.Header.DisableColor()
	scheme.Success.DisableColor()
	scheme.Error.DisableColor()
	scheme.Warn.DisableColor()
	return scheme
}

// Console writes the human-readable summary block.
type Console struct {
	out    io.Writer
	scheme *ColorScheme
}

// NewConsole creates a console writer. Colors are applied only when
// useColor is true.
func NewConsole(out io.Writer, useColor bool) *Console {
	scheme := DefaultColorScheme()
	if !useColor {
		scheme = NoColorScheme()
	}
	return &Console{out: out, scheme: scheme}
}

// IsTTY reports whether f is an interactive terminal, so callers can
// disable colors when output is redirected.
func IsTTY(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// PrintSummary renders the final report block for one run.
func (c *Console) PrintSummary(result *bench.Result) {
	line := strings.Repeat("=", 60)

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, line)
	c.scheme.Header.Fprintf(c.out, " Benchmark Results (%s)\n", result.BackendLabel)
	fmt.Fprintln(c.out, line)
	fmt.Fprintf(c.out, "Run ID:     %s\n", result.RunID)
	fmt.Fprintf(c.out, "Duration:   %s\n", result.Duration.Round(time.Millisecond))
	fmt.Fprintf(c.out, "Iterations: %d\n", result.Iterations)
	fmt.Fprintln(c.out)

	fmt.Fprintln(c.out, "--- Latency (ms) "+strings.Repeat("-", 43))
	for _, op := range metrics.Operations() {
		s := result.Snapshot.Operations[op]
		fmt.Fprintf(c.out, "  %-8s avg=%-10.2f p95=%-10.2f n=%d\n", string(op)+":", s.MeanMs, s.P95Ms, s.Count)
	}
	fmt.Fprintf(c.out, "  %-8s avg=%.2f\n", "overall:", result.OverallAvgMs)
	for _, op := range result.MissingOps {
		c.scheme.Warn.Fprintf(c.out, "  note: no %s samples recorded, using 0\n", op)
	}
	fmt.Fprintln(c.out)

	snap := result.Snapshot
	fmt.Fprintln(c.out, "--- Checks "+strings.Repeat("-", 49))
	fmt.Fprintf(c.out, "  Total:        %d\n", snap.ChecksTotal)
	fmt.Fprintf(c.out, "  Failed:       %d\n", snap.ChecksFailed)
	fmt.Fprintf(c.out, "  Failure Rate: %.2f%%\n", snap.FailureRate*100)
	fmt.Fprintln(c.out)

	fmt.Fprintln(c.out, "--- Thresholds "+strings.Repeat("-", 45))
	for _, t := range result.Thresholds {
		if t.Passed {
			c.scheme.Success.Fprintf(c.out, "  PASS")
		} else {
			c.scheme.Error.Fprintf(c.out, "  FAIL")
		}
		fmt.Fprintf(c.out, " %s: %s (actual: %s)\n", t.Metric, t.Expression, t.Value)
		if t.Message != "" && !t.Passed {
			fmt.Fprintf(c.out, "       %s\n", t.Message)
		}
	}
	fmt.Fprintln(c.out)

	if result.Passed {
		c.scheme.Success.Fprintln(c.out, "Status: PASSED")
	} else {
		c.scheme.Error.Fprintln(c.out, "Status: FAILED")
	}
	fmt.Fprintln(c.out, line)
}
