// internal/bench/harness.go
package bench

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Barrier blocks every arriving goroutine until size of them have arrived,
// then releases all of them at once. Each barrier is single-use; the harness
// creates a fresh start and end pair per run.
type Barrier struct {
	mu      sync.Mutex
	size    int
	arrived int
	release chan struct{}
}

// NewBarrier creates a barrier for size participants.
func NewBarrier(size int) *Barrier {
	return &Barrier{size: size, release: make(chan struct{})}
}

// Wait blocks until every participant has arrived. The last arrival releases
// the group.
func (b *Barrier) Wait() {
	b.mu.Lock()
	b.arrived++
	if b.arrived == b.size {
		close(b.release)
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()
	<-b.release
}

// ThreadContext is one worker's slice of a concurrency-harness run.
type ThreadContext struct {
	ID         int
	Iterations int
	Result     RunResult
	// ThroughputOpsSec is this worker's own loop throughput, retained for
	// sweep analysis and load-balance reporting.
	ThroughputOpsSec float64
	// SetupErr records a buffer-allocation failure during the ALLOCATE
	// phase. A worker that failed setup runs zero iterations.
	SetupErr error
}

// ParallelResult aggregates a harness run. Total operations and errors are
// the sums over all workers; Duration is the outer wall-clock span from just
// before worker launch to after the last join, so the aggregate throughput
// reflects real elapsed time rather than an average of per-worker rates.
type ParallelResult struct {
	RunResult
	Threads []ThreadContext
}

// RunParallel partitions the configured iterations across cfg.Threads
// workers, each assigned floor(N/T) iterations; remainder iterations are
// dropped, a documented rounding loss. Every worker allocates its own
// buffers, lines up at the start barrier, runs its measured loop, and holds
// at the end barrier until all workers finish. A setup failure on any worker
// aborts the measured phase for the whole pool: already-running workers are
// still joined and their buffers freed before the error is reported.
func RunParallel(ctx *Context, workload Workload) (ParallelResult, error) {
	threads := ctx.Cfg.Threads
	perWorker := ctx.Cfg.Iterations / threads

	res := ParallelResult{Threads: make([]ThreadContext, threads)}

	startBarrier := NewBarrier(threads)
	endBarrier := NewBarrier(threads)

	var aborted atomic.Bool
	var progressDone atomic.Int64
	totalAssigned := perWorker * threads

	var wg sync.WaitGroup
	outerStart := time.Now()
	for t := 0; t < threads; t++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			tc := &res.Threads[id]
			tc.ID = id
			tc.Iterations = perWorker

			// ALLOCATE
			unit, cleanup, err := workload(ctx, id)
			if err != nil {
				tc.SetupErr = err
				aborted.Store(true)
			}

			// WAIT_START: all workers line up so the measured loops begin at
			// approximately the same instant.
			startBarrier.Wait()

			// RUN_ITERATIONS, unless any worker failed to allocate.
			if !aborted.Load() {
				var progress ProgressFunc
				if ctx.Progress != nil {
					last := 0
					progress = func(done, _ int) {
						total := progressDone.Add(int64(done - last))
						last = done
						ctx.Progress(int(total), totalAssigned)
					}
				}
				tc.Result = RunIterations(ctx, perWorker, ctx.Cfg.Warmup, unit, progress)
				tc.ThroughputOpsSec = tc.Result.ThroughputOpsSec()
			}

			// WAIT_END: the harness reads ThreadContexts only after every
			// worker has finished.
			endBarrier.Wait()

			// FREE
			if cleanup != nil {
				cleanup()
			}
		}(t)
	}
	wg.Wait()
	res.Duration = time.Since(outerStart)

	for i := range res.Threads {
		tc := &res.Threads[i]
		if tc.SetupErr != nil {
			return res, fmt.Errorf("worker %d setup: %w", tc.ID, tc.SetupErr)
		}
		res.Operations += tc.Result.Operations
		res.BytesMoved += tc.Result.BytesMoved
		res.Errors += tc.Result.Errors
		res.Samples = append(res.Samples, tc.Result.Samples...)
	}
	return res, nil
}
