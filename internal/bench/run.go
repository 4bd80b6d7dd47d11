package bench

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/wesleyorama2/bookbench/internal/bench/metrics"
	"github.com/wesleyorama2/bookbench/internal/config"
	"github.com/wesleyorama2/bookbench/internal/httpclient"
)

// Pass/fail thresholds evaluated at run end. Violating either marks the
// run as failed without aborting it early.
const (
	maxFailureRate = 0.01
	maxP95Ms       = 2000.0
)

// ThresholdResult contains the outcome of one threshold evaluation.
type ThresholdResult struct {
	Metric     string `json:"metric"`
	Expression string `json:"expression"`
	Passed     bool   `json:"passed"`
	Value      string `json:"value"`
	Message    string `json:"message,omitempty"`
}

// Result is the complete outcome of one benchmark run.
type Result struct {
	RunID        string        `json:"runId"`
	BackendLabel string        `json:"backendLabel"`
	StartTime    time.Time     `json:"startTime"`
	EndTime      time.Time     `json:"endTime"`
	Duration     time.Duration `json:"duration"`
	Iterations   int64         `json:"iterations"`

	Snapshot *metrics.Snapshot `json:"metrics"`

	// OverallAvgMs is the unweighted mean of the four per-operation means.
	// An operation with zero samples contributes 0.
	OverallAvgMs float64 `json:"overallAvgMs"`

	// MissingOps lists operation kinds that recorded no samples.
	MissingOps []metrics.Operation `json:"missingOps,omitempty"`

	Passed     bool              `json:"passed"`
	Thresholds []ThresholdResult `json:"thresholds"`
}

// Runner orchestrates one benchmark run: warmup, measurement window,
// aggregation, and threshold evaluation.
type Runner struct {
	settings *config.Settings

	// ErrOut receives warmup and transport diagnostics. Defaults to stderr.
	ErrOut io.Writer
}

// NewRunner creates a runner for the given settings.
func NewRunner(settings *config.Settings) *Runner {
	return &Runner{
		settings: settings,
		ErrOut:   os.Stderr,
	}
}

// Run executes the full benchmark and returns its result. The aggregator
// is owned by this run: it is created after the warmup phase, fed by all
// workers during the measurement window, and reduced exactly once here.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	client := httpclient.NewClient(
		httpclient.WithHeader("Content-Type", "application/json"),
		httpclient.WithHeader("X-Service-Name", r.settings.ServiceName),
	)
	defer client.CloseIdleConnections()

	workload := NewWorkload(client, r.settings.BaseURL, r.settings.StepPause)
	workload.ErrOut = r.ErrOut

	RunWarmup(ctx, workload, r.settings.WarmupIterations, r.ErrOut)

	agg := metrics.NewAggregator()
	scheduler := NewScheduler(workload, r.settings.VUs, r.settings.Duration)

	start := time.Now()
	scheduler.Run(ctx, agg)
	end := time.Now()

	snap := agg.GetSnapshot()

	result := &Result{
		RunID:        uuid.NewString(),
		BackendLabel: r.settings.DatabaseType,
		StartTime:    start,
		EndTime:      end,
		Duration:     end.Sub(start),
		Iterations:   scheduler.Iterations(),
		Snapshot:     snap,
		OverallAvgMs: OverallAverage(snap),
		MissingOps:   missingOperations(snap),
		Thresholds:   evaluateThresholds(snap),
	}

	result.Passed = true
	for _, t := range result.Thresholds {
		if !t.Passed {
			result.Passed = false
			break
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("run interrupted: %w", err)
	}
	return result, nil
}

// OverallAverage reduces a snapshot to the unweighted mean of the four
// per-operation means. A kind with zero samples contributes 0, so the
// overall figure stays defined even for a partially-exercised run.
func OverallAverage(snap *metrics.Snapshot) float64 {
	ops := metrics.Operations()

	var sum float64
	for _, op := range ops {
		sum += snap.Operations[op].MeanMs
	}
	return sum / float64(len(ops))
}

func missingOperations(snap *metrics.Snapshot) []metrics.Operation {
	var missing []metrics.Operation
	for _, op := range metrics.Operations() {
		if snap.Operations[op].Count == 0 {
			missing = append(missing, op)
		}
	}
	return missing
}

// evaluateThresholds applies the run's pass/fail policy to the final
// snapshot: failure rate below 1% and overall p95 below 2000 ms.
func evaluateThresholds(snap *metrics.Snapshot) []ThresholdResult {
	failed := ThresholdResult{
		Metric:     "http_req_failed",
		Expression: fmt.Sprintf("rate < %.2f", maxFailureRate),
		Value:      fmt.Sprintf("%.4f", snap.FailureRate),
		Passed:     snap.FailureRate < maxFailureRate,
	}
	if !failed.Passed {
		failed.Message = fmt.Sprintf("failure rate is %.4f, threshold: < %.2f", snap.FailureRate, maxFailureRate)
	}

	duration := ThresholdResult{
		Metric:     "http_req_duration",
		Expression: fmt.Sprintf("p95 < %.0fms", maxP95Ms),
		Value:      fmt.Sprintf("%.2fms", snap.OverallP95Ms),
		Passed:     snap.OverallP95Ms < maxP95Ms,
	}
	if !duration.Passed {
		duration.Message = fmt.Sprintf("p95 is %.2fms, threshold: < %.0fms", snap.OverallP95Ms, maxP95Ms)
	}

	return []ThresholdResult{failed, duration}
}
