// internal/device/sim_test.go
package device

import (
	"errors"
	"math"
	"testing"
)

func newTestSim(t *testing.T) *Sim {
	t.Helper()
	d := NewSim(DefaultProfile())
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func allocFilled(t *testing.T, d *Sim, values []float32) Buffer {
	t.Helper()
	buf, err := d.Alloc(len(values) * 4)
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	if err := d.CopyToDevice(buf, values); err != nil {
		t.Fatalf("copy to device: %v", err)
	}
	return buf
}

func TestSimMatMul(t *testing.T) {
	d := newTestSim(t)

	a := allocFilled(t, d, []float32{1, 2, 3, 4})        // 2x2
	b := allocFilled(t, d, []float32{5, 6, 7, 8})        // 2x2
	c := allocFilled(t, d, make([]float32, 4))

	if err := d.MatMul(a, b, c, 2, 2, 2); err != nil {
		t.Fatalf("matmul: %v", err)
	}

	got := make([]float32, 4)
	if err := d.CopyToHost(got, c); err != nil {
		t.Fatalf("copy to host: %v", err)
	}
	want := []float32{19, 22, 43, 50}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("c[%d] = %v, want %v (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestSimMatMulRejectsUndersizedBuffer(t *testing.T) {
	d := newTestSim(t)

	small := allocFilled(t, d, []float32{1, 2})
	b := allocFilled(t, d, make([]float32, 4))
	c := allocFilled(t, d, make([]float32, 4))

	err := d.MatMul(small, b, c, 2, 2, 2)
	if !errors.Is(err, ErrBufferTooSmall) {
		t.Fatalf("expected ErrBufferTooSmall, got %v", err)
	}
}

func TestSimConv2DIdentityKernel(t *testing.T) {
	d := newTestSim(t)

	input := allocFilled(t, d, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9})
	kernel := allocFilled(t, d, []float32{1})
	output := allocFilled(t, d, make([]float32, 9))

	if err := d.Conv2D(input, kernel, output, 3, 3, 1, 1); err != nil {
		t.Fatalf("conv2d: %v", err)
	}

	got := make([]float32, 9)
	if err := d.CopyToHost(got, output); err != nil {
		t.Fatalf("copy to host: %v", err)
	}
	for i := 0; i < 9; i++ {
		if got[i] != float32(i+1) {
			t.Fatalf("identity conv changed element %d: got %v", i, got[i])
		}
	}
}

func TestSimElementwiseOps(t *testing.T) {
	d := newTestSim(t)

	a := allocFilled(t, d, []float32{1, -2, 3})
	b := allocFilled(t, d, []float32{10, 20, 30})
	out := allocFilled(t, d, make([]float32, 3))
	got := make([]float32, 3)

	if err := d.ElementwiseAdd(a, b, out, 3); err != nil {
		t.Fatalf("add: %v", err)
	}
	_ = d.CopyToHost(got, out)
	if got[0] != 11 || got[1] != 18 || got[2] != 33 {
		t.Fatalf("add result = %v", got)
	}

	if err := d.ElementwiseMul(a, b, out, 3); err != nil {
		t.Fatalf("mul: %v", err)
	}
	_ = d.CopyToHost(got, out)
	if got[0] != 10 || got[1] != -40 || got[2] != 90 {
		t.Fatalf("mul result = %v", got)
	}

	if err := d.ReLU(a, out, 3); err != nil {
		t.Fatalf("relu: %v", err)
	}
	_ = d.CopyToHost(got, out)
	if got[0] != 1 || got[1] != 0 || got[2] != 3 {
		t.Fatalf("relu result = %v", got)
	}

	if err := d.Sigmoid(a, out, 3); err != nil {
		t.Fatalf("sigmoid: %v", err)
	}
	_ = d.CopyToHost(got, out)
	if math.Abs(float64(got[0])-0.7310586) > 1e-4 {
		t.Fatalf("sigmoid(1) = %v, want ~0.731", got[0])
	}
}

func TestSimFreeValidation(t *testing.T) {
	d := newTestSim(t)

	buf, err := d.Alloc(16)
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	if err := d.Free(buf); err != nil {
		t.Fatalf("free: %v", err)
	}
	if err := d.Free(buf); !errors.Is(err, ErrInvalidBuffer) {
		t.Fatalf("double free: expected ErrInvalidBuffer, got %v", err)
	}
	if err := d.Free(Buffer{}); !errors.Is(err, ErrInvalidBuffer) {
		t.Fatalf("zero handle free: expected ErrInvalidBuffer, got %v", err)
	}
}

func TestSimFailureInjectionIsDeterministic(t *testing.T) {
	d := newTestSim(t)
	d.FailComputeEvery(2)

	a := allocFilled(t, d, []float32{1, 2})
	b := allocFilled(t, d, []float32{3, 4})
	out := allocFilled(t, d, make([]float32, 2))

	failures := 0
	for i := 0; i < 10; i++ {
		if err := d.ElementwiseAdd(a, b, out, 2); err != nil {
			if !errors.Is(err, ErrInjectedFault) {
				t.Fatalf("unexpected error kind: %v", err)
			}
			failures++
		}
	}
	if failures != 5 {
		t.Fatalf("failures = %d, want exactly 5 of 10", failures)
	}
}

func TestSimAllocInjection(t *testing.T) {
	d := newTestSim(t)
	d.FailAllocs(true)
	if _, err := d.Alloc(64); !errors.Is(err, ErrInjectedFault) {
		t.Fatalf("expected injected alloc failure, got %v", err)
	}
	d.FailAllocs(false)
	if _, err := d.Alloc(64); err != nil {
		t.Fatalf("alloc after clearing injection: %v", err)
	}
}

func TestSimPerfCounters(t *testing.T) {
	d := newTestSim(t)

	a := allocFilled(t, d, make([]float32, 16))
	b := allocFilled(t, d, make([]float32, 16))
	c := allocFilled(t, d, make([]float32, 16))

	if err := d.ResetPerformanceCounters(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := d.MatMul(a, b, c, 4, 4, 4); err != nil {
		t.Fatalf("matmul: %v", err)
	}

	pc, err := d.PerformanceCounters()
	if err != nil {
		t.Fatalf("counters: %v", err)
	}
	if pc.Operations != 2*4*4*4 {
		t.Fatalf("ops counter = %d, want %d", pc.Operations, 2*4*4*4)
	}

	if err := d.ResetPerformanceCounters(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	pc, _ = d.PerformanceCounters()
	if pc.Operations != 0 || pc.Cycles != 0 {
		t.Fatalf("counters after reset = %+v, want zeros", pc)
	}
}

func TestSimSetDVFS(t *testing.T) {
	d := newTestSim(t)

	point := DVFSConfig{FrequencyMHz: 800, VoltageMV: 750}
	if err := d.SetDVFS(point); err != nil {
		t.Fatalf("set supported point: %v", err)
	}
	if got := d.CurrentDVFS(); got != point {
		t.Fatalf("current dvfs = %+v, want %+v", got, point)
	}

	bogus := DVFSConfig{FrequencyMHz: 9999, VoltageMV: 1}
	if err := d.SetDVFS(bogus); !errors.Is(err, ErrDVFSRejected) {
		t.Fatalf("expected ErrDVFSRejected, got %v", err)
	}
	if got := d.CurrentDVFS(); got != point {
		t.Fatalf("rejected point must not change state, got %+v", got)
	}

	d.RejectDVFS(true)
	if err := d.SetDVFS(point); !errors.Is(err, ErrInjectedFault) {
		t.Fatalf("expected injected dvfs failure, got %v", err)
	}
}

func TestSimPowerInfoIdle(t *testing.T) {
	profile := DefaultProfile()
	d := NewSim(profile)
	defer d.Close()

	info, err := d.PowerInfo()
	if err != nil {
		t.Fatalf("power info: %v", err)
	}
	if info.Power != profile.IdlePowerW {
		t.Fatalf("idle power = %v, want %v", info.Power, profile.IdlePowerW)
	}
	if info.Temperature < profile.AmbientTempC-2 || info.Temperature > profile.AmbientTempC+2 {
		t.Fatalf("idle temperature = %v, want near ambient %v", info.Temperature, profile.AmbientTempC)
	}
	if info.Throttling {
		t.Fatal("idle device must not throttle")
	}
	if info.Voltage <= 0 || info.Current <= 0 {
		t.Fatalf("voltage/current = %v/%v, want positive", info.Voltage, info.Current)
	}
}

func TestSimClose(t *testing.T) {
	d := NewSim(DefaultProfile())
	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := d.Alloc(16); !errors.Is(err, ErrClosed) {
		t.Fatalf("alloc after close: expected ErrClosed, got %v", err)
	}
	if _, err := d.PowerInfo(); !errors.Is(err, ErrClosed) {
		t.Fatalf("power info after close: expected ErrClosed, got %v", err)
	}
	if err := d.Close(); !errors.Is(err, ErrClosed) {
		t.Fatalf("double close: expected ErrClosed, got %v", err)
	}
}
