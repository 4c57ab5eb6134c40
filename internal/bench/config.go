// internal/bench/config.go
package bench

import (
	"fmt"
	"time"
)

// Kind categorizes what a benchmark measures.
type Kind string

const (
	KindThroughput  Kind = "throughput"
	KindLatency     Kind = "latency"
	KindScalability Kind = "scalability"
	KindPower       Kind = "power"
)

// Kinds returns the known benchmark categories.
func Kinds() []Kind {
	return []Kind{KindThroughput, KindLatency, KindScalability, KindPower}
}

// Valid reports whether the kind is one of the known categories.
func (k Kind) Valid() bool {
	switch k {
	case KindThroughput, KindLatency, KindScalability, KindPower:
		return true
	}
	return false
}

// Config is the full parameter set for one benchmark run. Treat it as
// read-only once a run starts; the engine never mutates it.
type Config struct {
	Name       string `json:"name"`
	Kind       Kind   `json:"kind"`
	Size       Size   `json:"size"`
	Iterations int    `json:"iterations"`
	Warmup     int    `json:"warmup"`
	Threads    int    `json:"threads"`

	EnablePower   bool `json:"enable_power"`
	EnableThermal bool `json:"enable_thermal"`

	// PowerInterval is the sampling period for the power monitor. Zero means
	// the monitor default.
	PowerInterval time.Duration `json:"power_interval,omitempty"`

	// PowerCapacity caps the monitor's sample buffer. Zero means the monitor
	// default.
	PowerCapacity int `json:"power_capacity,omitempty"`

	// TargetDuration is carried for reporting; the engine always runs the
	// configured iteration count and never cuts a run short on time.
	TargetDuration time.Duration `json:"target_duration,omitempty"`
}

// Validate checks the config for values the engine cannot run with.
func (c Config) Validate() error {
	if !c.Kind.Valid() {
		return fmt.Errorf("config %q: unknown kind %q", c.Name, c.Kind)
	}
	if !c.Size.Valid() {
		return fmt.Errorf("config %q: unknown size %q", c.Name, c.Size)
	}
	if c.Iterations <= 0 {
		return fmt.Errorf("config %q: iterations must be positive, got %d", c.Name, c.Iterations)
	}
	if c.Warmup < 0 {
		return fmt.Errorf("config %q: warmup must not be negative, got %d", c.Name, c.Warmup)
	}
	if c.Threads < 1 {
		return fmt.Errorf("config %q: threads must be at least 1, got %d", c.Name, c.Threads)
	}
	return nil
}
