// internal/sweep/threads.go
// Package sweep searches small discrete configuration spaces (worker counts,
// DVFS operating points) for throughput or efficiency optima.
package sweep

import (
	"github.com/mwiater/metron/internal/bench"
	"github.com/mwiater/metron/internal/device"
	"github.com/mwiater/metron/internal/logging"
)

// DefaultThreadCounts is the candidate list used when the caller supplies
// none.
var DefaultThreadCounts = []int{1, 2, 4, 8, 16}

// ThreadPoint is one candidate thread count's outcome. A failed candidate
// keeps OK=false and is excluded from the best comparison while successful
// candidates are still reported.
type ThreadPoint struct {
	Threads          int     `json:"threads"`
	ThroughputOpsSec float64 `json:"throughput_ops_sec"`
	// ScalingEfficiency is throughput(T) / (T * throughput(1)): observed
	// multi-thread throughput against the ideal linear projection from the
	// single-thread baseline. This is a scaling ratio, not power efficiency.
	ScalingEfficiency float64 `json:"scaling_efficiency"`
	Errors            int     `json:"errors"`
	OK                bool    `json:"ok"`
	Err               string  `json:"error,omitempty"`
}

// ThreadSweepResult is the optimizer's report over all candidates.
type ThreadSweepResult struct {
	Points []ThreadPoint `json:"points"`
	// BestThreads is the candidate with maximum absolute throughput. Only
	// meaningful when OK is true.
	BestThreads int  `json:"best_threads"`
	OK          bool `json:"ok"`
}

// Threads runs the concurrency harness once per candidate thread count and
// selects the count with the highest absolute throughput. A candidate that
// fails to run is recorded and skipped; the sweep is inconclusive only when
// every candidate fails.
func Threads(dev device.Device, base bench.Config, workload bench.Workload, candidates []int) ThreadSweepResult {
	if len(candidates) == 0 {
		candidates = DefaultThreadCounts
	}

	points := make([]ThreadPoint, 0, len(candidates))
	for _, threads := range candidates {
		point := ThreadPoint{Threads: threads}

		cfg := base
		cfg.Threads = threads
		ctx, err := bench.NewContext(cfg, dev)
		if err != nil {
			point.Err = err.Error()
			points = append(points, point)
			logging.LogEvent("thread sweep: %d workers failed: %v", threads, err)
			continue
		}

		m, err := bench.Run(ctx, workload)
		closeErr := ctx.Close()
		if err == nil {
			err = closeErr
		}
		if err != nil {
			point.Err = err.Error()
			points = append(points, point)
			logging.LogEvent("thread sweep: %d workers failed: %v", threads, err)
			continue
		}

		point.OK = true
		point.ThroughputOpsSec = m.ThroughputOpsSec
		point.Errors = m.Errors
		points = append(points, point)
		logging.LogEvent("thread sweep: %d workers -> %.3e ops/s (%d errors)",
			threads, m.ThroughputOpsSec, m.Errors)
	}

	return FinalizeThreadSweep(points)
}

// FinalizeThreadSweep derives scaling efficiency against the single-thread
// baseline and picks the best candidate by absolute throughput.
func FinalizeThreadSweep(points []ThreadPoint) ThreadSweepResult {
	res := ThreadSweepResult{Points: points}

	var baseline float64
	for _, p := range points {
		if p.OK && p.Threads == 1 {
			baseline = p.ThroughputOpsSec
			break
		}
	}

	var best float64
	for i := range res.Points {
		p := &res.Points[i]
		if !p.OK {
			continue
		}
		if baseline > 0 && p.Threads > 0 {
			p.ScalingEfficiency = p.ThroughputOpsSec / (float64(p.Threads) * baseline)
		}
		if !res.OK || p.ThroughputOpsSec > best {
			best = p.ThroughputOpsSec
			res.BestThreads = p.Threads
			res.OK = true
		}
	}
	return res
}
