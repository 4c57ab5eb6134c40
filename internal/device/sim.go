// internal/device/sim.go
package device

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// Sim is a pure-Go accelerator standing in for real hardware. Compute
// operations perform the actual arithmetic so latency scales with problem
// size, and the power/thermal readings follow a load- and DVFS-dependent
// model. Safe for concurrent use on distinct buffers.
type Sim struct {
	profile Profile
	start   time.Time

	mu      sync.RWMutex
	buffers map[uint64][]float32
	nextID  uint64
	closed  bool

	current atomic.Pointer[DVFSConfig]

	inflight atomic.Int64
	calls    atomic.Uint64
	cycles   atomic.Uint64
	ops      atomic.Uint64

	failEvery  atomic.Int64
	failAllocs atomic.Bool
	rejectDVFS atomic.Bool
}

// NewSim creates a simulated device running at the profile's nominal
// operating point.
func NewSim(profile Profile) *Sim {
	d := &Sim{
		profile: profile,
		start:   time.Now(),
		buffers: make(map[uint64][]float32),
	}
	nominal := profile.Nominal()
	d.current.Store(&nominal)
	return d
}

// Profile returns the device model this simulator was built from.
func (d *Sim) Profile() Profile { return d.profile }

// CurrentDVFS returns the active operating point.
func (d *Sim) CurrentDVFS() DVFSConfig { return *d.current.Load() }

// FailComputeEvery makes every nth compute call fail with ErrInjectedFault.
// n <= 0 disables injection.
func (d *Sim) FailComputeEvery(n int) {
	d.failEvery.Store(int64(n))
	d.calls.Store(0)
}

// FailAllocs makes every Alloc call fail while set.
func (d *Sim) FailAllocs(fail bool) { d.failAllocs.Store(fail) }

// RejectDVFS makes every SetDVFS call fail while set.
func (d *Sim) RejectDVFS(reject bool) { d.rejectDVFS.Store(reject) }

func (d *Sim) checkOpen() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	return nil
}

// Alloc reserves bytes of device memory, rounded up to whole float32 slots.
func (d *Sim) Alloc(bytes int) (Buffer, error) {
	if bytes <= 0 {
		return Buffer{}, fmt.Errorf("alloc %d bytes: %w", bytes, ErrBufferTooSmall)
	}
	if d.failAllocs.Load() {
		return Buffer{}, fmt.Errorf("alloc %d bytes: %w", bytes, ErrInjectedFault)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return Buffer{}, ErrClosed
	}
	d.nextID++
	id := d.nextID
	d.buffers[id] = make([]float32, (bytes+3)/4)
	return Buffer{id: id, size: bytes}, nil
}

// Free releases a buffer.
func (d *Sim) Free(buf Buffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if _, ok := d.buffers[buf.id]; !ok {
		return ErrInvalidBuffer
	}
	delete(d.buffers, buf.id)
	return nil
}

func (d *Sim) slice(buf Buffer, elems int) ([]float32, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, ErrClosed
	}
	data, ok := d.buffers[buf.id]
	if !ok {
		return nil, ErrInvalidBuffer
	}
	if len(data) < elems {
		return nil, fmt.Errorf("need %d elems, buffer holds %d: %w", elems, len(data), ErrBufferTooSmall)
	}
	return data[:elems], nil
}

// CopyToDevice transfers host data into a device buffer.
func (d *Sim) CopyToDevice(dst Buffer, src []float32) error {
	data, err := d.slice(dst, len(src))
	if err != nil {
		return err
	}
	start := time.Now()
	copy(data, src)
	d.accountCycles(start, 0)
	return nil
}

// CopyToHost transfers a device buffer back into host memory.
func (d *Sim) CopyToHost(dst []float32, src Buffer) error {
	data, err := d.slice(src, len(dst))
	if err != nil {
		return err
	}
	start := time.Now()
	copy(dst, data)
	d.accountCycles(start, 0)
	return nil
}

// compute wraps one device operation with failure injection, load tracking,
// frequency-scaled settle time, and counter accounting.
func (d *Sim) compute(weight uint64, fn func() error) error {
	if err := d.checkOpen(); err != nil {
		return err
	}
	d.inflight.Add(1)
	defer d.inflight.Add(-1)

	if every := d.failEvery.Load(); every > 0 && d.calls.Add(1)%uint64(every) == 0 {
		return ErrInjectedFault
	}

	start := time.Now()
	if err := fn(); err != nil {
		return err
	}
	d.settle(start)
	d.accountCycles(start, weight)
	return nil
}

// settle applies the profile's per-call overhead, stretched when the device
// runs below nominal frequency.
func (d *Sim) settle(start time.Time) {
	if d.profile.BaseLatencyUs <= 0 {
		return
	}
	scale := 1.0
	if cur := d.current.Load(); cur.FrequencyMHz > 0 {
		scale = float64(d.profile.NominalFrequencyMHz) / float64(cur.FrequencyMHz)
	}
	delay := time.Duration(d.profile.BaseLatencyUs*scale) * time.Microsecond
	if elapsed := time.Since(start); elapsed < delay {
		time.Sleep(delay - elapsed)
	}
}

func (d *Sim) accountCycles(start time.Time, weight uint64) {
	freq := float64(d.current.Load().FrequencyMHz)
	elapsed := time.Since(start).Seconds()
	d.cycles.Add(uint64(elapsed * freq * 1e6))
	if weight > 0 {
		d.ops.Add(weight)
	}
}

// MatMul computes c = a x b for row-major a (m x k) and b (k x n).
func (d *Sim) MatMul(a, b, c Buffer, m, n, k int) error {
	return d.compute(uint64(2*m)*uint64(n)*uint64(k), func() error {
		as, err := d.slice(a, m*k)
		if err != nil {
			return err
		}
		bs, err := d.slice(b, k*n)
		if err != nil {
			return err
		}
		cs, err := d.slice(c, m*n)
		if err != nil {
			return err
		}

		for i := range cs {
			cs[i] = 0
		}
		for i := 0; i < m; i++ {
			for p := 0; p < k; p++ {
				av := as[i*k+p]
				row := bs[p*n : p*n+n]
				out := cs[i*n : i*n+n]
				for j := range row {
					out[j] += av * row[j]
				}
			}
		}
		return nil
	})
}

// Conv2D computes a same-padded single-channel convolution.
func (d *Sim) Conv2D(input, kernel, output Buffer, h, w, kh, kw int) error {
	return d.compute(uint64(2*h)*uint64(w)*uint64(kh)*uint64(kw), func() error {
		in, err := d.slice(input, h*w)
		if err != nil {
			return err
		}
		kern, err := d.slice(kernel, kh*kw)
		if err != nil {
			return err
		}
		out, err := d.slice(output, h*w)
		if err != nil {
			return err
		}

		padH, padW := kh/2, kw/2
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				var acc float32
				for ky := 0; ky < kh; ky++ {
					iy := y + ky - padH
					if iy < 0 || iy >= h {
						continue
					}
					for kx := 0; kx < kw; kx++ {
						ix := x + kx - padW
						if ix < 0 || ix >= w {
							continue
						}
						acc += in[iy*w+ix] * kern[ky*kw+kx]
					}
				}
				out[y*w+x] = acc
			}
		}
		return nil
	})
}

// ElementwiseAdd computes out[i] = a[i] + b[i].
func (d *Sim) ElementwiseAdd(a, b, out Buffer, n int) error {
	return d.compute(uint64(n), func() error {
		as, bs, os, err := d.ternary(a, b, out, n)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			os[i] = as[i] + bs[i]
		}
		return nil
	})
}

// ElementwiseMul computes out[i] = a[i] * b[i].
func (d *Sim) ElementwiseMul(a, b, out Buffer, n int) error {
	return d.compute(uint64(n), func() error {
		as, bs, os, err := d.ternary(a, b, out, n)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			os[i] = as[i] * bs[i]
		}
		return nil
	})
}

// ReLU computes out[i] = max(0, in[i]).
func (d *Sim) ReLU(in, out Buffer, n int) error {
	return d.compute(uint64(n), func() error {
		is, err := d.slice(in, n)
		if err != nil {
			return err
		}
		os, err := d.slice(out, n)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if is[i] > 0 {
				os[i] = is[i]
			} else {
				os[i] = 0
			}
		}
		return nil
	})
}

// Sigmoid computes out[i] = 1 / (1 + exp(-in[i])). Weighted at four
// operations per element for the exp/add/div chain.
func (d *Sim) Sigmoid(in, out Buffer, n int) error {
	return d.compute(uint64(4*n), func() error {
		is, err := d.slice(in, n)
		if err != nil {
			return err
		}
		os, err := d.slice(out, n)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			os[i] = float32(1.0 / (1.0 + math.Exp(-float64(is[i]))))
		}
		return nil
	})
}

func (d *Sim) ternary(a, b, out Buffer, n int) ([]float32, []float32, []float32, error) {
	as, err := d.slice(a, n)
	if err != nil {
		return nil, nil, nil, err
	}
	bs, err := d.slice(b, n)
	if err != nil {
		return nil, nil, nil, err
	}
	os, err := d.slice(out, n)
	if err != nil {
		return nil, nil, nil, err
	}
	return as, bs, os, nil
}

// PowerInfo reads the modeled power/thermal state: idle draw plus a
// load-dependent share scaled by the active operating point, with a small
// periodic ripple so repeated samples are not constant.
func (d *Sim) PowerInfo() (PowerInfo, error) {
	if err := d.checkOpen(); err != nil {
		return PowerInfo{}, err
	}

	cur := d.current.Load()
	fScale := float64(cur.FrequencyMHz) / float64(d.profile.NominalFrequencyMHz)
	vScale := float64(cur.VoltageMV) / float64(d.profile.NominalVoltageMV)

	load := float64(d.inflight.Load()) / 4.0
	if load > 1 {
		load = 1
	}

	elapsed := time.Since(d.start).Seconds()
	power := d.profile.IdlePowerW + load*(d.profile.LoadPowerW-d.profile.IdlePowerW)*fScale*vScale*vScale
	power += math.Cos(elapsed*2.1) * 0.5 * load

	temp := d.profile.AmbientTempC + load*(d.profile.MaxTempC-d.profile.AmbientTempC)*0.8*fScale
	temp += math.Sin(elapsed*0.7) * 1.5
	if temp > d.profile.MaxTempC {
		temp = d.profile.MaxTempC
	}

	voltage := float64(cur.VoltageMV) / 1000.0
	var current float64
	if voltage > 0 {
		current = power / voltage
	}

	return PowerInfo{
		Voltage:     voltage,
		Current:     current,
		Power:       power,
		Temperature: temp,
		Throttling:  temp >= d.profile.ThrottleTempC,
	}, nil
}

// PerformanceCounters returns the cumulative cycle and operation counters.
func (d *Sim) PerformanceCounters() (PerfCounters, error) {
	if err := d.checkOpen(); err != nil {
		return PerfCounters{}, err
	}
	return PerfCounters{Cycles: d.cycles.Load(), Operations: d.ops.Load()}, nil
}

// ResetPerformanceCounters zeroes the cumulative counters.
func (d *Sim) ResetPerformanceCounters() error {
	if err := d.checkOpen(); err != nil {
		return err
	}
	d.cycles.Store(0)
	d.ops.Store(0)
	return nil
}

// SetDVFS switches the active operating point. Points outside the profile's
// table are rejected.
func (d *Sim) SetDVFS(cfg DVFSConfig) error {
	if err := d.checkOpen(); err != nil {
		return err
	}
	if d.rejectDVFS.Load() {
		return fmt.Errorf("set dvfs %d MHz/%d mV: %w", cfg.FrequencyMHz, cfg.VoltageMV, ErrInjectedFault)
	}
	if !d.profile.Supports(cfg) {
		return fmt.Errorf("set dvfs %d MHz/%d mV: %w", cfg.FrequencyMHz, cfg.VoltageMV, ErrDVFSRejected)
	}
	d.current.Store(&cfg)
	return nil
}

// Close releases all buffers and marks the device unusable.
func (d *Sim) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	d.closed = true
	d.buffers = nil
	return nil
}
