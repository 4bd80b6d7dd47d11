// Package metrics provides the latency aggregator for one benchmark run.
//
// One accumulator exists per operation kind. Workers feed timing samples
// concurrently; summaries are reduced at report time. The aggregator is
// append-and-reduce only: no windowing, no decay, valid for the lifetime
// of a single run.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Operation is the dimension along which latency is aggregated.
type Operation string

const (
	OpCreate Operation = "create"
	OpRead   Operation = "read"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Operations returns all operation kinds in workload order.
func Operations() []Operation {
	return []Operation{OpCreate, OpRead, OpUpdate, OpDelete}
}

// Recorder is the write side of the aggregator, the only interface the
// workload needs. Discard satisfies it for warmup executions.
type Recorder interface {
	// Record appends a latency sample under the given operation kind.
	Record(op Operation, d time.Duration)

	// AddCheck counts one validation outcome.
	AddCheck(passed bool)
}

// Discard is a Recorder that drops everything. The warmup phase uses it so
// that warmup samples never reach the reported aggregator.
type Discard struct{}

func (Discard) Record(Operation, time.Duration) {}
func (Discard) AddCheck(bool)                   {}

// Histogram range: 1 microsecond to 1 hour, 3 significant figures.
const (
	histMin     = 1
	histMax     = 3600000000
	histSigFigs = 3
)

// accumulator holds the samples for one operation kind. The exact
// arithmetic mean comes from count/sum; the histogram serves percentiles.
type accumulator struct {
	count     atomic.Int64
	sumMicros atomic.Int64

	hist   *hdrhistogram.Histogram
	histMu sync.Mutex
}

func newAccumulator() *accumulator {
	return &accumulator{
		hist: hdrhistogram.New(histMin, histMax, histSigFigs),
	}
}

func (a *accumulator) record(micros int64) {
	a.count.Add(1)
	a.sumMicros.Add(micros)

	a.histMu.Lock()
	a.hist.RecordValue(micros)
	a.histMu.Unlock()
}

// Aggregator collects latency samples and check outcomes from all workers.
//
// It is safe for concurrent use: counters are atomic and histograms are
// mutex-protected. Construct one per run and pass it to the scheduler;
// there is no global state.
type Aggregator struct {
	ops     map[Operation]*accumulator
	overall *accumulator

	checksTotal  atomic.Int64
	checksFailed atomic.Int64
}

// NewAggregator creates an empty aggregator for one run.
func NewAggregator() *Aggregator {
	ops := make(map[Operation]*accumulator, 4)
	for _, op := range Operations() {
		ops[op] = newAccumulator()
	}
	return &Aggregator{
		ops:     ops,
		overall: newAccumulator(),
	}
}

// Record appends a sample under the given operation kind. Samples with an
// unknown kind are counted in the overall statistics only.
func (a *Aggregator) Record(op Operation, d time.Duration) {
	micros := d.Microseconds()
	if micros < histMin {
		micros = histMin
	}
	if micros > histMax {
		micros = histMax
	}

	if acc, ok := a.ops[op]; ok {
		acc.record(micros)
	}
	a.overall.record(micros)
}

// AddCheck counts one validation outcome (status check, id extraction,
// schema check). Failed checks feed the run's failure-rate threshold.
func (a *Aggregator) AddCheck(passed bool) {
	a.checksTotal.Add(1)
	if !passed {
		a.checksFailed.Add(1)
	}
}

// Summary contains the reduced statistics for one operation kind.
// Latencies are in milliseconds.
type Summary struct {
	Operation Operation `json:"operation"`
	Count     int64     `json:"count"`
	MeanMs    float64   `json:"meanMs"`
	P95Ms     float64   `json:"p95Ms"`
}

// Summarize reduces the samples recorded for one operation kind.
// Zero recorded samples yields count 0 and a defined mean of 0, not an error.
func (a *Aggregator) Summarize(op Operation) Summary {
	acc, ok := a.ops[op]
	if !ok {
		return Summary{Operation: op}
	}
	return acc.summarize(op)
}

func (a *accumulator) summarize(op Operation) Summary {
	count := a.count.Load()
	if count == 0 {
		return Summary{Operation: op}
	}

	mean := float64(a.sumMicros.Load()) / float64(count) / 1000.0

	a.histMu.Lock()
	p95 := float64(a.hist.ValueAtQuantile(95)) / 1000.0
	a.histMu.Unlock()

	return Summary{
		Operation: op,
		Count:     count,
		MeanMs:    mean,
		P95Ms:     p95,
	}
}

// Snapshot is a point-in-time reduction of the whole aggregator.
type Snapshot struct {
	Operations   map[Operation]Summary `json:"operations"`
	TotalSamples int64                 `json:"totalSamples"`
	OverallP95Ms float64               `json:"overallP95Ms"`
	ChecksTotal  int64                 `json:"checksTotal"`
	ChecksFailed int64                 `json:"checksFailed"`
	FailureRate  float64               `json:"failureRate"`
}

// GetSnapshot reduces all operations plus the combined statistics.
func (a *Aggregator) GetSnapshot() *Snapshot {
	snap := &Snapshot{
		Operations: make(map[Operation]Summary, 4),
	}

	for _, op := range Operations() {
		snap.Operations[op] = a.Summarize(op)
	}

	overall := a.overall.summarize("")
	snap.TotalSamples = overall.Count
	snap.OverallP95Ms = overall.P95Ms

	snap.ChecksTotal = a.checksTotal.Load()
	snap.ChecksFailed = a.checksFailed.Load()
	if snap.ChecksTotal > 0 {
		snap.FailureRate = float64(snap.ChecksFailed) / float64(snap.ChecksTotal)
	}

	return snap
}

// Ensure both recorder implementations satisfy the interface.
var (
	_ Recorder = (*Aggregator)(nil)
	_ Recorder = Discard{}
)
