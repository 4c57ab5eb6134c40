// internal/stats/stats.go
// Package stats computes order statistics over latency-sample arrays.
package stats

import (
	"math"
	"sort"
)

// LatencyStats summarizes the latency samples of one benchmark run. Values
// are unit-agnostic; the execution engine records milliseconds.
type LatencyStats struct {
	Mean   float64
	Min    float64
	Max    float64
	StdDev float64
	P95    float64
	P99    float64
	// Samples is the total sample count, including failed iterations.
	Samples int
	// Valid is the number of samples from successful iterations.
	Valid int
}

// Compute sorts samples ascending in place and summarizes them. Failed
// iterations are recorded as 0.0 samples: they are excluded from
// mean/min/max/stddev but kept in the array for percentile lookup.
func Compute(samples []float64) LatencyStats {
	s := LatencyStats{Samples: len(samples)}
	if len(samples) == 0 {
		return s
	}

	sort.Float64s(samples)

	var sum float64
	for _, v := range samples {
		if v == 0 {
			continue
		}
		if s.Valid == 0 || v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		sum += v
		s.Valid++
	}

	if s.Valid > 0 {
		s.Mean = sum / float64(s.Valid)

		var sq float64
		for _, v := range samples {
			if v == 0 {
				continue
			}
			d := v - s.Mean
			sq += d * d
		}
		// Population variance: divide by the valid count, not count-1.
		s.StdDev = math.Sqrt(sq / float64(s.Valid))
	}

	s.P95 = samples[PercentileIndex(len(samples), 0.95)]
	s.P99 = samples[PercentileIndex(len(samples), 0.99)]
	return s
}

// PercentileIndex returns the raw index floor(count*q) into a sorted sample
// array, clamped to [0, count-1]. No interpolation is applied.
func PercentileIndex(count int, q float64) int {
	idx := int(float64(count) * q)
	if idx >= count {
		idx = count - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}
