package report_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wesleyorama2/bookbench/internal/bench"
	"github.com/wesleyorama2/bookbench/internal/bench/metrics"
	"github.com/wesleyorama2/bookbench/internal/report"
)

// fixedResult builds a result from known latencies: create=10ms, read=20ms,
// update=30ms, delete=40ms, repeated three times.
func fixedResult() *bench.Result {
	agg := metrics.NewAggregator()
	for i := 0; i < 3; i++ {
		agg.Record(metrics.OpCreate, 10*time.Millisecond)
		agg.Record(metrics.OpRead, 20*time.Millisecond)
		agg.Record(metrics.OpUpdate, 30*time.Millisecond)
		agg.Record(metrics.OpDelete, 40*time.Millisecond)
	}
	snap := agg.GetSnapshot()

	return &bench.Result{
		RunID:        "test-run",
		BackendLabel: "sqlite",
		EndTime:      time.UnixMilli(1700000000000),
		Duration:     30 * time.Second,
		Iterations:   3,
		Snapshot:     snap,
		OverallAvgMs: bench.OverallAverage(snap),
		Passed:       true,
		Thresholds: []bench.ThresholdResult{
			{Metric: "http_req_failed", Expression: "rate < 0.01", Value: "0.0000", Passed: true},
			{Metric: "http_req_duration", Expression: "p95 < 2000ms", Value: "40.00ms", Passed: true},
		},
	}
}

func TestWriteCSV_FixedLatencies(t *testing.T) {
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, fixedResult()); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("CSV lines = %d, want header + one row", len(lines))
	}
	if lines[0] != "get_latency,create_latency,update_latency,delete_latency,overall_latency" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "20.00,10.00,30.00,40.00,25.00" {
		t.Errorf("row = %q, want 20.00,10.00,30.00,40.00,25.00", lines[1])
	}
}

func TestWriteCSV_ZeroSampleKind(t *testing.T) {
	agg := metrics.NewAggregator()
	agg.Record(metrics.OpCreate, 10*time.Millisecond)
	agg.Record(metrics.OpRead, 20*time.Millisecond)
	agg.Record(metrics.OpDelete, 50*time.Millisecond)
	snap := agg.GetSnapshot()

	result := &bench.Result{
		BackendLabel: "sqlite",
		Snapshot:     snap,
		OverallAvgMs: bench.OverallAverage(snap),
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, result); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[1] != "20.00,10.00,0.00,50.00,20.00" {
		t.Errorf("row = %q, zero-sample update should appear as 0.00", lines[1])
	}
}

func TestFileName(t *testing.T) {
	got := report.FileName("sqlite", time.UnixMilli(1700000000000))
	want := "benchmark_sqlite_1700000000000.csv"
	if got != want {
		t.Errorf("FileName() = %q, want %q", got, want)
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()

	path, err := report.Save(dir, fixedResult())
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if filepath.Dir(path) != dir {
		t.Errorf("Save() path = %q, want it inside %q", path, dir)
	}
	if filepath.Base(path) != "benchmark_sqlite_1700000000000.csv" {
		t.Errorf("Save() file name = %q", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved report: %v", err)
	}
	if !strings.Contains(string(data), "20.00,10.00,30.00,40.00,25.00") {
		t.Errorf("saved report = %q", string(data))
	}
}

func TestSave_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports", "nested")

	if _, err := report.Save(dir, fixedResult()); err != nil {
		t.Fatalf("Save() into missing directory error = %v", err)
	}
}

func TestConsole_PrintSummary(t *testing.T) {
	var buf bytes.Buffer
	report.NewConsole(&buf, false).PrintSummary(fixedResult())

	out := buf.String()
	for _, want := range []string{
		"Benchmark Results (sqlite)",
		"Run ID:     test-run",
		"create:",
		"read:",
		"update:",
		"delete:",
		"avg=25.00",
		"http_req_failed",
		"http_req_duration",
		"Status: PASSED",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary output missing %q", want)
		}
	}
}

func TestConsole_PrintSummary_Failed(t *testing.T) {
	result := fixedResult()
	result.Passed = false
	result.Thresholds[0].Passed = false
	result.Thresholds[0].Message = "failure rate is 0.5000, threshold: < 0.01"

	var buf bytes.Buffer
	report.NewConsole(&buf, false).PrintSummary(result)

	out := buf.String()
	if !strings.Contains(out, "Status: FAILED") {
		t.Error("summary should report FAILED")
	}
	if !strings.Contains(out, "failure rate is 0.5000") {
		t.Error("summary should include the threshold message")
	}
}

func TestConsole_PrintSummary_MissingOperation(t *testing.T) {
	result := fixedResult()
	result.MissingOps = []metrics.Operation{metrics.OpUpdate}

	var buf bytes.Buffer
	report.NewConsole(&buf, false).PrintSummary(result)

	if !strings.Contains(buf.String(), "no update samples recorded") {
		t.Error("summary should include a diagnostic for the missing operation")
	}
}
