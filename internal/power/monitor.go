// internal/power/monitor.go
// Package power provides the background power/thermal sampler that runs
// alongside measured workloads.
package power

import (
	"errors"
	"sync"
	"time"

	"github.com/mwiater/metron/internal/device"
)

const (
	// DefaultInterval between samples when the caller passes zero.
	DefaultInterval = 10 * time.Millisecond
	// DefaultCapacity of the sample buffer when the caller passes zero.
	DefaultCapacity = 10000
)

// ErrRunning is returned by Start when the monitor is already sampling.
var ErrRunning = errors.New("power: monitor already running")

// Sample is one power/thermal reading with its capture time.
type Sample struct {
	Voltage     float64   `json:"voltage_v"`
	Current     float64   `json:"current_a"`
	Power       float64   `json:"power_w"`
	Temperature float64   `json:"temperature_c"`
	Timestamp   time.Time `json:"timestamp"`
}

// Aggregate summarizes one run's samples.
type Aggregate struct {
	AvgPowerW        float64
	PeakPowerW       float64
	PeakTemperatureC float64
	// EfficiencyOpsW is throughput per watt of mean power. Zero when mean
	// power is zero or no samples were captured.
	EfficiencyOpsW float64
	Samples        int
}

// Monitor owns exactly one sampling goroutine per run. It is created per
// benchmark context, started before the measured loop, and stopped after;
// Start clears the previous run's samples so the monitor can be reused.
//
// The sample buffer has its own mutex so appending never contends with
// whatever device-handle locking the workload may be doing.
type Monitor struct {
	stateMu sync.Mutex
	running bool
	stopC   chan struct{}
	wg      sync.WaitGroup

	mu       sync.Mutex
	samples  []Sample
	capacity int
}

// NewMonitor creates a monitor whose buffer holds at most capacity samples.
// Once full, further samples are silently dropped; size the capacity for the
// expected run duration and sampling interval.
func NewMonitor(capacity int) *Monitor {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Monitor{
		capacity: capacity,
		samples:  make([]Sample, 0, capacity),
	}
}

// Start spawns the sampling goroutine. It fails if the monitor is already
// running. Samples from any previous run are cleared first.
func (m *Monitor) Start(dev device.Device, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}

	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	if m.running {
		return ErrRunning
	}

	m.mu.Lock()
	m.samples = m.samples[:0]
	m.mu.Unlock()

	m.stopC = make(chan struct{})
	m.running = true
	m.wg.Add(1)
	go m.sample(dev, interval)
	return nil
}

// Stop signals the sampling goroutine and blocks until it has exited. It is
// a no-op when the monitor is not running. Stop must not be called from the
// sampling goroutine itself.
func (m *Monitor) Stop() {
	m.stateMu.Lock()
	if !m.running {
		m.stateMu.Unlock()
		return
	}
	m.running = false
	close(m.stopC)
	m.stateMu.Unlock()

	m.wg.Wait()
}

// Running reports whether the sampling goroutine is active.
func (m *Monitor) Running() bool {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	return m.running
}

func (m *Monitor) sample(dev device.Device, interval time.Duration) {
	defer m.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if info, err := dev.PowerInfo(); err == nil {
			m.append(Sample{
				Voltage:     info.Voltage,
				Current:     info.Current,
				Power:       info.Power,
				Temperature: info.Temperature,
				Timestamp:   time.Now(),
			})
		}

		select {
		case <-m.stopC:
			return
		case <-ticker.C:
		}
	}
}

func (m *Monitor) append(s Sample) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.samples) >= m.capacity {
		// Buffer full: drop silently, no resize.
		return
	}
	m.samples = append(m.samples, s)
}

// Samples returns a copy of the captured samples.
func (m *Monitor) Samples() []Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Sample, len(m.samples))
	copy(out, m.samples)
	return out
}

// Aggregate computes mean power, peak power, and peak temperature over the
// captured samples, and derives efficiency from the supplied throughput
// (operations per second). An empty buffer or zero mean power leaves
// efficiency at zero.
func (m *Monitor) Aggregate(throughputOps float64) Aggregate {
	m.mu.Lock()
	defer m.mu.Unlock()

	agg := Aggregate{Samples: len(m.samples)}
	if len(m.samples) == 0 {
		return agg
	}

	var sum float64
	for _, s := range m.samples {
		sum += s.Power
		if s.Power > agg.PeakPowerW {
			agg.PeakPowerW = s.Power
		}
		if s.Temperature > agg.PeakTemperatureC {
			agg.PeakTemperatureC = s.Temperature
		}
	}
	agg.AvgPowerW = sum / float64(len(m.samples))
	if agg.AvgPowerW > 0 {
		agg.EfficiencyOpsW = throughputOps / agg.AvgPowerW
	}
	return agg
}
