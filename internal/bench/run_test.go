package bench_test

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/bookbench/internal/bench"
	"github.com/wesleyorama2/bookbench/internal/bench/metrics"
	"github.com/wesleyorama2/bookbench/internal/config"
)

func testSettings(baseURL string) *config.Settings {
	return &config.Settings{
		ServiceName:      "bookcatalog-nd-app",
		BaseURL:          baseURL + "/api/books",
		VUs:              2,
		Duration:         300 * time.Millisecond,
		WarmupIterations: 2,
		DatabaseType:     "sqlite",
		OutputDir:        ".",
		StepPause:        0,
	}
}

func TestRunner_Run(t *testing.T) {
	srv, ts := newCRUDServer()
	defer ts.Close()

	runner := bench.NewRunner(testSettings(ts.URL))
	runner.ErrOut = io.Discard

	result, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "sqlite", result.BackendLabel)
	assert.True(t, result.Passed)
	assert.Empty(t, result.MissingOps)
	assert.Greater(t, result.Iterations, int64(0))
	assert.GreaterOrEqual(t, result.Duration, 300*time.Millisecond)

	require.NotNil(t, result.Snapshot)
	for _, op := range metrics.Operations() {
		assert.Greater(t, result.Snapshot.Operations[op].Count, int64(0), "operation %s", op)
	}

	require.Len(t, result.Thresholds, 2)
	for _, th := range result.Thresholds {
		assert.True(t, th.Passed, "threshold %s", th.Metric)
	}

	// Every request carries the service identifier header.
	for _, req := range srv.captured() {
		assert.Equal(t, "bookcatalog-nd-app", req.ServiceName)
	}
}

func TestRunner_WarmupExcludedFromReport(t *testing.T) {
	srv, ts := newCRUDServer()
	defer ts.Close()

	settings := testSettings(ts.URL)
	settings.WarmupIterations = 5

	runner := bench.NewRunner(settings)
	runner.ErrOut = io.Discard

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	creates := 0
	for _, req := range srv.captured() {
		if req.Method == http.MethodPost {
			creates++
		}
	}

	// The server saw warmup creates on top of measured ones, but the
	// aggregator only holds measurement-window samples.
	measured := result.Snapshot.Operations[metrics.OpCreate].Count
	assert.Equal(t, int64(creates-5), measured,
		"warmup creates must not feed the reported aggregator")
}

func TestRunner_FailingServiceFailsThresholds(t *testing.T) {
	srv, ts := newCRUDServer()
	defer ts.Close()
	srv.otherStatus = http.StatusInternalServerError

	runner := bench.NewRunner(testSettings(ts.URL))
	runner.ErrOut = io.Discard

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, result.Passed)
	assert.Greater(t, result.Snapshot.ChecksFailed, int64(0))

	var failedRate *bench.ThresholdResult
	for i := range result.Thresholds {
		if result.Thresholds[i].Metric == "http_req_failed" {
			failedRate = &result.Thresholds[i]
		}
	}
	require.NotNil(t, failedRate)
	assert.False(t, failedRate.Passed)
	assert.NotEmpty(t, failedRate.Message)
}

func TestRunner_MissingIDDoesNotCrash(t *testing.T) {
	srv, ts := newCRUDServer()
	defer ts.Close()
	srv.createBody = `{"title":"whoops"}`

	runner := bench.NewRunner(testSettings(ts.URL))
	runner.ErrOut = io.Discard

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	// Only create samples were recorded; the other kinds are reported
	// as missing and contribute 0 to the overall average.
	assert.Greater(t, result.Snapshot.Operations[metrics.OpCreate].Count, int64(0))
	assert.Len(t, result.MissingOps, 3)

	wantOverall := result.Snapshot.Operations[metrics.OpCreate].MeanMs / 4
	assert.InDelta(t, wantOverall, result.OverallAvgMs, 1e-9)
}

func TestOverallAverage_Unweighted(t *testing.T) {
	agg := metrics.NewAggregator()
	for i := 0; i < 3; i++ {
		agg.Record(metrics.OpCreate, 10*time.Millisecond)
		agg.Record(metrics.OpRead, 20*time.Millisecond)
		agg.Record(metrics.OpUpdate, 30*time.Millisecond)
		agg.Record(metrics.OpDelete, 40*time.Millisecond)
	}

	got := bench.OverallAverage(agg.GetSnapshot())
	assert.Equal(t, 25.0, got)
}

func TestOverallAverage_ZeroSampleKindContributesZero(t *testing.T) {
	agg := metrics.NewAggregator()
	agg.Record(metrics.OpCreate, 10*time.Millisecond)
	agg.Record(metrics.OpRead, 20*time.Millisecond)
	agg.Record(metrics.OpDelete, 50*time.Millisecond)

	got := bench.OverallAverage(agg.GetSnapshot())
	assert.Equal(t, 20.0, got)
}
