// internal/bench/engine.go
package bench

import (
	"time"
)

// UnitFunc performs one unit of device work and reports its operation weight
// (e.g. 2*M*N*K multiply-adds for a matrix multiply) plus any bytes moved
// between host and device. A returned error marks the iteration as failed.
type UnitFunc func() (ops uint64, bytes uint64, err error)

// Workload prepares one worker's private data buffers against the context's
// device and returns the unit function plus a cleanup that frees them. The
// execution engine calls it with worker 0; the concurrency harness calls it
// once per worker so each thread owns its buffers.
type Workload func(ctx *Context, worker int) (unit UnitFunc, cleanup func(), err error)

// RunResult is the raw outcome of one measured iteration loop: cumulative
// counters plus the per-iteration latency samples in milliseconds. Failed
// iterations contribute a 0.0 sample and an error count, never an operation
// count.
type RunResult struct {
	Operations uint64
	BytesMoved uint64
	Errors     int
	// Duration is the wall-clock span of the whole measured loop, not the
	// sum of per-iteration latencies.
	Duration time.Duration
	Samples  []float64
}

// ThroughputOpsSec derives operations per second from the loop's wall-clock
// span.
func (r RunResult) ThroughputOpsSec() float64 {
	secs := r.Duration.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(r.Operations) / secs
}

// RunIterations drives the unit function through warmup calls with all
// measurement discarded, then through iterations measured calls: each is
// timestamped with the monotonic clock, a failure increments the error
// counter and records a zero latency sample, and a success adds the unit's
// operation weight. The stop flag is checked between iterations; progress,
// when non-nil, fires roughly every 10% of the iteration count.
func RunIterations(ctx *Context, iterations, warmup int, unit UnitFunc, progress ProgressFunc) RunResult {
	for i := 0; i < warmup; i++ {
		if ctx.Stop.Requested() {
			break
		}
		_, _, _ = unit()
	}

	res := RunResult{Samples: make([]float64, 0, iterations)}

	step := iterations / 10
	if step < 1 {
		step = 1
	}

	loopStart := time.Now()
	for i := 0; i < iterations; i++ {
		if ctx.Stop.Requested() {
			break
		}

		start := time.Now()
		ops, bytes, err := unit()
		elapsed := time.Since(start)

		if err != nil {
			res.Errors++
			res.Samples = append(res.Samples, 0)
		} else {
			res.Operations += ops
			res.BytesMoved += bytes
			res.Samples = append(res.Samples, float64(elapsed.Nanoseconds())/1e6)
		}

		if progress != nil && ((i+1)%step == 0 || i+1 == iterations) {
			progress(i+1, iterations)
		}
	}
	res.Duration = time.Since(loopStart)

	return res
}
