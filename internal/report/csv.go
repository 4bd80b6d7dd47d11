package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/wesleyorama2/bookbench/internal/bench"
	"github.com/wesleyorama2/bookbench/internal/bench/metrics"
)

const filePrefix = "benchmark"

// csvHeader is the column order expected by the downstream analysis
// tooling. Note that get comes first, before create.
var csvHeader = []string{
	"get_latency",
	"create_latency",
	"update_latency",
	"delete_latency",
	"overall_latency",
}

// FileName returns the report file name for a backend label and run time:
// benchmark_<label>_<epoch-millis>.csv.
func FileName(label string, ts time.Time) string {
	return fmt.Sprintf("%s_%s_%d.csv", filePrefix, label, ts.UnixMilli())
}

// WriteCSV writes the header and one data row of millisecond averages,
// formatted to two decimal places. An operation with zero samples appears
// as 0.00.
func WriteCSV(w io.Writer, result *bench.Result) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	ops := result.Snapshot.Operations
	row := []string{
		fmt.Sprintf("%.2f", ops[metrics.OpRead].MeanMs),
		fmt.Sprintf("%.2f", ops[metrics.OpCreate].MeanMs),
		fmt.Sprintf("%.2f", ops[metrics.OpUpdate].MeanMs),
		fmt.Sprintf("%.2f", ops[metrics.OpDelete].MeanMs),
		fmt.Sprintf("%.2f", result.OverallAvgMs),
	}
	if err := cw.Write(row); err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}

// Save writes the CSV report into dir and returns the full path.
func Save(dir string, result *bench.Result) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	path := filepath.Join(dir, FileName(result.BackendLabel, result.EndTime))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating report file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, result); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}
