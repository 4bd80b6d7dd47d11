package bench

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wesleyorama2/bookbench/internal/bench/metrics"
)

// Scheduler runs a fixed pool of virtual users for the measurement window.
//
// Each worker is internally sequential: it loops workload cycles until the
// shared wall-clock deadline is reached. The deadline is cooperative and
// checked between cycles only, so an in-flight cycle always finishes its
// step sequence; no request is cancelled mid-flight when the window closes.
//
// Workers share no mutable state except the recorder, which must be safe
// for concurrent use.
type Scheduler struct {
	workload *Workload
	vus      int
	duration time.Duration

	activeVUs  atomic.Int32
	iterations atomic.Int64
	startTime  time.Time
}

// NewScheduler creates a scheduler for vus concurrent workers running for
// the given duration.
func NewScheduler(workload *Workload, vus int, duration time.Duration) *Scheduler {
	return &Scheduler{
		workload: workload,
		vus:      vus,
		duration: duration,
	}
}

// Run starts all workers and blocks until the deadline has passed and
// every in-flight cycle has finished.
//
// The deadline applies only to starting new cycles: cycles execute against
// the parent context, so cancelling ctx still aborts the run early.
func (s *Scheduler) Run(ctx context.Context, rec metrics.Recorder) {
	s.startTime = time.Now()

	deadlineCtx, cancel := context.WithTimeout(ctx, s.duration)
	defer cancel()

	var wg sync.WaitGroup
	for i := 1; i <= s.vus; i++ {
		wg.Add(1)
		go s.runVU(deadlineCtx, ctx, i, rec, &wg)
	}
	wg.Wait()
}

// runVU is one worker loop. The worker's index and its monotonically
// increasing iteration counter seed the entity generator, so identities
// are pairwise distinct across all workers for the life of the run.
func (s *Scheduler) runVU(deadlineCtx, unitCtx context.Context, id int, rec metrics.Recorder, wg *sync.WaitGroup) {
	defer wg.Done()

	s.activeVUs.Add(1)
	defer s.activeVUs.Add(-1)

	label := fmt.Sprintf("VU%d", id)

	for iteration := int64(1); ; iteration++ {
		select {
		case <-deadlineCtx.Done():
			return
		default:
		}

		s.workload.Run(unitCtx, label, iteration, rec)
		s.iterations.Add(1)
	}
}

// Iterations returns the number of completed workload cycles.
func (s *Scheduler) Iterations() int64 {
	return s.iterations.Load()
}

// ActiveVUs returns the number of workers currently running.
func (s *Scheduler) ActiveVUs() int {
	return int(s.activeVUs.Load())
}

// TargetVUs returns the configured worker count.
func (s *Scheduler) TargetVUs() int {
	return s.vus
}
