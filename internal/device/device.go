// internal/device/device.go
// Package device defines the accelerator API the benchmark engine drives,
// plus a pure-Go simulated implementation used for local runs and tests.
package device

import "errors"

// Buffer is an opaque handle to device-side memory. The zero value is
// invalid.
type Buffer struct {
	id   uint64
	size int
}

// Size returns the buffer capacity in bytes.
func (b Buffer) Size() int { return b.size }

// Valid reports whether the handle refers to an allocation.
func (b Buffer) Valid() bool { return b.id != 0 }

// Elems returns the buffer capacity in float32 elements.
func (b Buffer) Elems() int { return b.size / 4 }

// PowerInfo is one instantaneous power/thermal reading.
type PowerInfo struct {
	Voltage     float64 `json:"voltage_v"`
	Current     float64 `json:"current_a"`
	Power       float64 `json:"power_w"`
	Temperature float64 `json:"temperature_c"`
	Throttling  bool    `json:"throttling"`
}

// PerfCounters is a snapshot of the device's cumulative hardware counters.
type PerfCounters struct {
	Cycles     uint64 `json:"cycles"`
	Operations uint64 `json:"operations"`
}

// DVFSConfig is one dynamic voltage/frequency operating point.
type DVFSConfig struct {
	FrequencyMHz int `json:"frequency_mhz" yaml:"frequency_mhz"`
	VoltageMV    int `json:"voltage_mv" yaml:"voltage_mv"`
}

// Device is the accelerator surface the engine depends on. Every call blocks
// the calling goroutine for the duration of the device work.
//
// Concurrency contract: the engine does NOT serialize device calls; benchmark
// workers intentionally race against one shared handle to measure aggregate
// throughput under contention. Implementations must therefore tolerate
// concurrent calls, at minimum when the calls touch distinct buffers.
type Device interface {
	// Alloc reserves device memory and returns its handle.
	Alloc(bytes int) (Buffer, error)
	// Free releases a buffer. Freeing an invalid handle is an error.
	Free(buf Buffer) error

	CopyToDevice(dst Buffer, src []float32) error
	CopyToHost(dst []float32, src Buffer) error

	// MatMul computes c = a x b for row-major a (m x k) and b (k x n).
	MatMul(a, b, c Buffer, m, n, k int) error
	// Conv2D computes a same-padded single-channel 2D convolution of an
	// h x w input with a kh x kw kernel.
	Conv2D(input, kernel, output Buffer, h, w, kh, kw int) error
	ElementwiseAdd(a, b, out Buffer, n int) error
	ElementwiseMul(a, b, out Buffer, n int) error
	ReLU(in, out Buffer, n int) error
	Sigmoid(in, out Buffer, n int) error

	PowerInfo() (PowerInfo, error)
	PerformanceCounters() (PerfCounters, error)
	ResetPerformanceCounters() error
	SetDVFS(cfg DVFSConfig) error

	// Close releases the handle and any outstanding buffers. All later
	// calls fail with ErrClosed.
	Close() error
}

var (
	// ErrClosed is returned by every call on a closed device.
	ErrClosed = errors.New("device: closed")
	// ErrInvalidBuffer is returned when a handle does not refer to a live
	// allocation.
	ErrInvalidBuffer = errors.New("device: invalid buffer")
	// ErrBufferTooSmall is returned when an operation's shape exceeds a
	// buffer's capacity.
	ErrBufferTooSmall = errors.New("device: buffer too small")
	// ErrDVFSRejected is returned when an operating point is not supported
	// by the device.
	ErrDVFSRejected = errors.New("device: dvfs config rejected")
	// ErrInjectedFault is returned by the simulator's failure injection.
	ErrInjectedFault = errors.New("device: injected fault")
)
