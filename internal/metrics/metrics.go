// internal/metrics/metrics.go
// Package metrics defines the shared performance-result record every engine
// component writes into, and the derivation of its computed fields.
package metrics

import (
	"time"

	"github.com/mwiater/metron/internal/stats"
)

// PerformanceMetrics is the result record of one benchmark run. Raw counters
// (operations, errors, bytes, duration) are accumulated by the execution
// engine and the concurrency harness; every derived field is filled in by
// Finalize from those counters plus the latency-sample array, never mutated
// directly.
type PerformanceMetrics struct {
	Operations uint64 `json:"operations"`
	Errors     int    `json:"errors"`
	// BytesMoved counts host<->device transfer volume for bandwidth-style
	// workloads; zero for pure compute benchmarks.
	BytesMoved      uint64  `json:"bytes_moved,omitempty"`
	DurationSeconds float64 `json:"duration_seconds"`

	ThroughputOpsSec float64 `json:"throughput_ops_sec"`
	ThroughputGOPS   float64 `json:"throughput_gops"`

	LatencyMeanMs   float64 `json:"latency_mean_ms"`
	LatencyMinMs    float64 `json:"latency_min_ms"`
	LatencyMaxMs    float64 `json:"latency_max_ms"`
	LatencyStdDevMs float64 `json:"latency_stddev_ms"`
	LatencyP95Ms    float64 `json:"latency_p95_ms"`
	LatencyP99Ms    float64 `json:"latency_p99_ms"`

	BandwidthBytesSec float64 `json:"bandwidth_bytes_sec,omitempty"`
	BandwidthGBps     float64 `json:"bandwidth_gbps,omitempty"`

	AvgPowerW        float64 `json:"avg_power_w,omitempty"`
	PeakPowerW       float64 `json:"peak_power_w,omitempty"`
	PeakTemperatureC float64 `json:"peak_temperature_c,omitempty"`
	// EfficiencyGOPSW is throughput per watt of mean power; zero when no
	// power data was captured.
	EfficiencyGOPSW float64 `json:"efficiency_gops_w,omitempty"`
}

// Finalize derives throughput, bandwidth, and the latency summary from the
// raw counters and the recorded per-iteration samples (milliseconds). The
// sample slice is sorted in place.
func (m *PerformanceMetrics) Finalize(samples []float64) {
	if m.DurationSeconds > 0 {
		m.ThroughputOpsSec = float64(m.Operations) / m.DurationSeconds
		m.ThroughputGOPS = m.ThroughputOpsSec / 1e9
		if m.BytesMoved > 0 {
			m.BandwidthBytesSec = float64(m.BytesMoved) / m.DurationSeconds
			m.BandwidthGBps = m.BandwidthBytesSec / 1e9
		}
	}

	ls := stats.Compute(samples)
	m.LatencyMeanMs = ls.Mean
	m.LatencyMinMs = ls.Min
	m.LatencyMaxMs = ls.Max
	m.LatencyStdDevMs = ls.StdDev
	m.LatencyP95Ms = ls.P95
	m.LatencyP99Ms = ls.P99
}

// SetDuration records the measured wall-clock span.
func (m *PerformanceMetrics) SetDuration(d time.Duration) {
	m.DurationSeconds = d.Seconds()
}

// ApplyPower folds aggregated power-monitor data into the record. Efficiency
// stays zero when mean power is zero or unavailable.
func (m *PerformanceMetrics) ApplyPower(avgW, peakW, peakTempC float64) {
	m.AvgPowerW = avgW
	m.PeakPowerW = peakW
	m.PeakTemperatureC = peakTempC
	if avgW > 0 {
		m.EfficiencyGOPSW = m.ThroughputGOPS / avgW
	}
}
