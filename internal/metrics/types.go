// internal/metrics/types.go
package metrics

// Configuration is the report-facing snapshot of the parameters one benchmark
// ran with.
type Configuration struct {
	Kind       string `json:"kind"`
	Size       string `json:"size"`
	Iterations int    `json:"iterations"`
	Warmup     int    `json:"warmup"`
	Threads    int    `json:"threads"`
	Power      bool   `json:"power_monitoring"`
}

// Statistics is the report-facing latency summary block.
type Statistics struct {
	MinLatencyMs float64 `json:"min_latency_ms"`
	MaxLatencyMs float64 `json:"max_latency_ms"`
	P95LatencyMs float64 `json:"p95_latency_ms"`
	P99LatencyMs float64 `json:"p99_latency_ms"`
}

// Result is one benchmark's full report record.
type Result struct {
	BenchmarkName string             `json:"benchmark_name"`
	Configuration Configuration      `json:"configuration"`
	Metrics       PerformanceMetrics `json:"metrics"`
	Statistics    Statistics         `json:"statistics"`
}

// NewResult assembles a report record, lifting the statistics block out of
// the finalized metrics.
func NewResult(name string, cfg Configuration, m PerformanceMetrics) Result {
	return Result{
		BenchmarkName: name,
		Configuration: cfg,
		Metrics:       m,
		Statistics: Statistics{
			MinLatencyMs: m.LatencyMinMs,
			MaxLatencyMs: m.LatencyMaxMs,
			P95LatencyMs: m.LatencyP95Ms,
			P99LatencyMs: m.LatencyP99Ms,
		},
	}
}
