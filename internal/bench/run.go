// internal/bench/run.go
package bench

import (
	"fmt"

	"github.com/mwiater/metron/internal/metrics"
)

// Run executes one benchmark against the context: the power monitor is
// started when configured, the workload runs single-threaded or through the
// concurrency harness depending on cfg.Threads, and the finalized metrics
// carry throughput, latency statistics, and power aggregates. The returned
// error covers fatal conditions only (allocation or monitor failures);
// per-iteration device failures are reported through the Errors counter.
func Run(ctx *Context, workload Workload) (metrics.PerformanceMetrics, error) {
	var m metrics.PerformanceMetrics

	if ctx.Monitor != nil {
		if err := ctx.Monitor.Start(ctx.Dev, ctx.Cfg.PowerInterval); err != nil {
			return m, fmt.Errorf("starting power monitor: %w", err)
		}
	}

	var run RunResult
	if ctx.Cfg.Threads > 1 {
		par, err := RunParallel(ctx, workload)
		if err != nil {
			if ctx.Monitor != nil {
				ctx.Monitor.Stop()
			}
			return m, err
		}
		run = par.RunResult
	} else {
		unit, cleanup, err := workload(ctx, 0)
		if err != nil {
			if ctx.Monitor != nil {
				ctx.Monitor.Stop()
			}
			return m, fmt.Errorf("workload setup: %w", err)
		}
		run = RunIterations(ctx, ctx.Cfg.Iterations, ctx.Cfg.Warmup, unit, ctx.Progress)
		if cleanup != nil {
			cleanup()
		}
	}

	if ctx.Monitor != nil {
		ctx.Monitor.Stop()
	}

	m.Operations = run.Operations
	m.BytesMoved = run.BytesMoved
	m.Errors = run.Errors
	m.SetDuration(run.Duration)
	m.Finalize(run.Samples)

	if ctx.Monitor != nil {
		agg := ctx.Monitor.Aggregate(m.ThroughputOpsSec)
		m.ApplyPower(agg.AvgPowerW, agg.PeakPowerW, agg.PeakTemperatureC)
	}
	return m, nil
}
