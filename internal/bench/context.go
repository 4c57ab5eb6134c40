// internal/bench/context.go
package bench

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/mwiater/metron/internal/device"
	"github.com/mwiater/metron/internal/power"
)

// ProgressFunc receives coarse progress from the measured loop, roughly every
// 10% of the configured iterations. Observability only; the engine ignores
// its cost.
type ProgressFunc func(done, total int)

// StopFlag is the cooperative cancellation signal shared by every worker of a
// run. Workers check it between iterations; there is no mid-iteration kill.
type StopFlag struct {
	v atomic.Bool
}

// Request asks the run to stop after the current iteration.
func (s *StopFlag) Request() { s.v.Store(true) }

// Requested reports whether a stop has been asked for.
func (s *StopFlag) Requested() bool { return s.v.Load() }

// Context owns the resources of one benchmark run: the device handle (shared,
// not exclusive), the configuration, every device buffer allocated through it,
// and the optional power monitor. Close releases buffers before the handle
// and closes the handle only when the context created it.
type Context struct {
	Cfg Config
	Dev device.Device

	// OwnsDevice makes Close also close Dev. Leave false when the handle is
	// shared across benchmarks, as the suite runner does.
	OwnsDevice bool

	// Monitor is non-nil when the config enables power or thermal
	// monitoring. The run starts it before the measured loop and stops it
	// after.
	Monitor *power.Monitor

	// Progress, when non-nil, receives coarse completion updates.
	Progress ProgressFunc

	// Stop is shared with every worker of the run.
	Stop *StopFlag

	mu   sync.Mutex
	bufs []device.Buffer
}

// NewContext validates the config and prepares a run context against dev.
// The context borrows dev; set OwnsDevice afterwards if the caller wants
// Close to take the handle down too.
func NewContext(cfg Config, dev device.Device) (*Context, error) {
	if dev == nil {
		return nil, errors.New("bench: nil device")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Context{
		Cfg:  cfg,
		Dev:  dev,
		Stop: &StopFlag{},
	}
	if cfg.EnablePower || cfg.EnableThermal {
		c.Monitor = power.NewMonitor(cfg.PowerCapacity)
	}
	return c, nil
}

// AllocFloats allocates a tracked device buffer holding n float32 values and,
// when data is non-nil, uploads it. Allocation failure is fatal to the
// benchmark that hit it; callers propagate the error instead of counting it.
func (c *Context) AllocFloats(n int, data []float32) (device.Buffer, error) {
	buf, err := c.Dev.Alloc(n * 4)
	if err != nil {
		return device.Buffer{}, fmt.Errorf("allocating %d floats: %w", n, err)
	}
	c.mu.Lock()
	c.bufs = append(c.bufs, buf)
	c.mu.Unlock()

	if data != nil {
		if err := c.Dev.CopyToDevice(buf, data); err != nil {
			c.Release(buf)
			return device.Buffer{}, fmt.Errorf("uploading %d floats: %w", n, err)
		}
	}
	return buf, nil
}

// Release frees the given buffers now and removes them from the context's
// cleanup list. Workers use it to free per-thread buffers without waiting for
// Close.
func (c *Context) Release(bufs ...device.Buffer) error {
	var first error
	for _, buf := range bufs {
		c.untrack(buf)
		if err := c.Dev.Free(buf); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (c *Context) untrack(buf device.Buffer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, b := range c.bufs {
		if b == buf {
			c.bufs = append(c.bufs[:i], c.bufs[i+1:]...)
			return
		}
	}
}

// Close frees every tracked buffer in reverse allocation order, then closes
// the device handle if this context owns it. The first error wins but cleanup
// keeps going.
func (c *Context) Close() error {
	c.mu.Lock()
	bufs := c.bufs
	c.bufs = nil
	c.mu.Unlock()

	var first error
	for i := len(bufs) - 1; i >= 0; i-- {
		if err := c.Dev.Free(bufs[i]); err != nil && first == nil {
			first = err
		}
	}
	if c.OwnsDevice {
		if err := c.Dev.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
