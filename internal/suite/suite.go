// internal/suite/suite.go
// Package suite drives a selected set of catalog benchmarks through the
// engine and accounts pass/fail/skip outcomes.
package suite

import (
	"fmt"
	"time"

	"github.com/mwiater/metron/internal/bench"
	"github.com/mwiater/metron/internal/catalog"
	"github.com/mwiater/metron/internal/device"
	"github.com/mwiater/metron/internal/logging"
	"github.com/mwiater/metron/internal/metrics"
)

// Overrides are the caller-supplied knobs applied on top of each catalog
// entry's defaults. Zero values leave the default in place.
type Overrides struct {
	Size       bench.Size
	Iterations int
	Warmup     int
	Threads    int

	EnablePower   bool
	EnableThermal bool

	// PowerInterval and PowerCapacity tune the monitor; zero keeps its
	// defaults.
	PowerInterval time.Duration
	PowerCapacity int

	// Progress, when non-nil, receives per-benchmark iteration progress.
	Progress func(name string, done, total int)
}

// Status is one benchmark's suite-level outcome.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Outcome pairs a benchmark's report record with its suite accounting.
type Outcome struct {
	Result metrics.Result
	Status Status
	// Reason explains a skip or failure.
	Reason string
}

// Summary is the whole suite's outcome. Failed counts executed benchmarks
// that did not pass; skipped entries never fail the suite.
type Summary struct {
	Outcomes []Outcome
	Passed   int
	Failed   int
	Skipped  int
}

// OK reports whether every executed benchmark passed.
func (s Summary) OK() bool { return s.Failed == 0 }

// BuildConfig merges one catalog entry's defaults with the overrides.
func BuildConfig(def catalog.Definition, ov Overrides) bench.Config {
	cfg := bench.Config{
		Name:          def.Name,
		Kind:          def.Kind,
		Size:          def.DefaultSize,
		Iterations:    def.DefaultIterations,
		Warmup:        def.DefaultWarmup,
		Threads:       1,
		EnablePower:   ov.EnablePower,
		EnableThermal: ov.EnableThermal,
		PowerInterval: ov.PowerInterval,
		PowerCapacity: ov.PowerCapacity,
	}
	if ov.Size != "" {
		cfg.Size = ov.Size
	}
	if ov.Iterations > 0 {
		cfg.Iterations = ov.Iterations
	}
	if ov.Warmup > 0 {
		cfg.Warmup = ov.Warmup
	}
	if ov.Threads > 0 {
		cfg.Threads = ov.Threads
	}
	return cfg
}

// Run executes the selected benchmarks in order against one shared device
// handle. Each entry gets a fresh context torn down before the next starts.
// Power-required entries run with monitoring disabled are skipped with a
// notice, never failed. Pass means zero device errors, except power-category
// benchmarks which pass whenever they produced a usable efficiency number.
func Run(dev device.Device, selected []catalog.Definition, ov Overrides) Summary {
	var sum Summary
	for _, def := range selected {
		outcome := runOne(dev, def, ov)
		sum.Outcomes = append(sum.Outcomes, outcome)
		switch outcome.Status {
		case StatusPassed:
			sum.Passed++
		case StatusFailed:
			sum.Failed++
		case StatusSkipped:
			sum.Skipped++
		}
	}
	return sum
}

func runOne(dev device.Device, def catalog.Definition, ov Overrides) Outcome {
	if def.NeedsPower && !ov.EnablePower {
		logging.LogRun("skip", def.Name, "", "requires power monitoring, not enabled")
		return Outcome{
			Result: metrics.Result{BenchmarkName: def.Name},
			Status: StatusSkipped,
			Reason: "requires power monitoring",
		}
	}

	cfg := BuildConfig(def, ov)
	outcome := Outcome{Result: metrics.Result{BenchmarkName: def.Name}}
	outcome.Result.Configuration = metrics.Configuration{
		Kind:       string(cfg.Kind),
		Size:       string(cfg.Size),
		Iterations: cfg.Iterations,
		Warmup:     cfg.Warmup,
		Threads:    cfg.Threads,
		Power:      cfg.EnablePower || cfg.EnableThermal,
	}

	ctx, err := bench.NewContext(cfg, dev)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Reason = err.Error()
		logging.LogRun("fail", def.Name, string(cfg.Size), err.Error())
		return outcome
	}
	if ov.Progress != nil {
		ctx.Progress = func(done, total int) { ov.Progress(def.Name, done, total) }
	}

	logging.LogRun("start", def.Name, string(cfg.Size), map[string]int{
		"iterations": cfg.Iterations,
		"warmup":     cfg.Warmup,
		"threads":    cfg.Threads,
	})

	m, runErr := bench.Run(ctx, def.Workload)
	closeErr := ctx.Close()
	if runErr == nil {
		runErr = closeErr
	}
	if runErr != nil {
		outcome.Status = StatusFailed
		outcome.Reason = runErr.Error()
		logging.LogRun("fail", def.Name, string(cfg.Size), runErr.Error())
		return outcome
	}

	outcome.Result = metrics.NewResult(def.Name, outcome.Result.Configuration, m)
	if passed(def, m) {
		outcome.Status = StatusPassed
	} else {
		outcome.Status = StatusFailed
		outcome.Reason = fmt.Sprintf("%d device errors", m.Errors)
	}
	logging.LogRun(string(outcome.Status), def.Name, string(cfg.Size), m)
	return outcome
}

// passed applies the per-category pass rule: zero errors everywhere except
// power benchmarks, where partial data with a usable efficiency number still
// counts.
func passed(def catalog.Definition, m metrics.PerformanceMetrics) bool {
	if m.Errors == 0 {
		return true
	}
	return def.Kind == bench.KindPower && m.EfficiencyGOPSW > 0
}
