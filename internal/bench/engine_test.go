// internal/bench/engine_test.go
package bench

import (
	"errors"
	"testing"

	"github.com/mwiater/metron/internal/device"
)

func testContext(t *testing.T, cfg Config) *Context {
	t.Helper()
	dev := device.NewSim(device.DefaultProfile())
	ctx, err := NewContext(cfg, dev)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	ctx.OwnsDevice = true
	t.Cleanup(func() { _ = ctx.Close() })
	return ctx
}

func TestRunIterationsCountsOperations(t *testing.T) {
	ctx := testContext(t, Config{
		Name: "unit", Kind: KindThroughput, Size: SizeSmall,
		Iterations: 10, Warmup: 2, Threads: 1,
	})

	const weight = 8388608 // 2 * 128^3
	calls := 0
	unit := func() (uint64, uint64, error) {
		calls++
		return weight, 0, nil
	}

	res := RunIterations(ctx, 10, 2, unit, nil)

	if calls != 12 {
		t.Fatalf("unit called %d times, want 12 (2 warmup + 10 measured)", calls)
	}
	if res.Operations != 10*weight {
		t.Fatalf("operations = %d, want %d", res.Operations, 10*weight)
	}
	if res.Errors != 0 {
		t.Fatalf("errors = %d, want 0", res.Errors)
	}
	if len(res.Samples) != 10 {
		t.Fatalf("samples = %d, want 10 (warmup must not record)", len(res.Samples))
	}
	if res.Duration <= 0 {
		t.Fatalf("duration = %v, want positive", res.Duration)
	}
}

func TestRunIterationsRecordsFailures(t *testing.T) {
	ctx := testContext(t, Config{
		Name: "unit", Kind: KindLatency, Size: SizeSmall,
		Iterations: 100, Warmup: 0, Threads: 1,
	})

	// Fail 5 of 100 measured iterations.
	call := 0
	unit := func() (uint64, uint64, error) {
		call++
		if call%20 == 0 {
			return 0, 0, errors.New("device fault")
		}
		return 1, 0, nil
	}

	res := RunIterations(ctx, 100, 0, unit, nil)

	if res.Errors != 5 {
		t.Fatalf("errors = %d, want 5", res.Errors)
	}
	if res.Operations != 95 {
		t.Fatalf("operations = %d, want 95 (failures add no weight)", res.Operations)
	}
	if len(res.Samples) != 100 {
		t.Fatalf("samples = %d, want 100 (failures record zero samples)", len(res.Samples))
	}
	zeros := 0
	for _, s := range res.Samples {
		if s == 0 {
			zeros++
		}
	}
	if zeros != 5 {
		t.Fatalf("zero samples = %d, want 5", zeros)
	}
}

func TestRunIterationsProgressCadence(t *testing.T) {
	ctx := testContext(t, Config{
		Name: "unit", Kind: KindThroughput, Size: SizeSmall,
		Iterations: 100, Warmup: 0, Threads: 1,
	})

	var reports []int
	unit := func() (uint64, uint64, error) { return 1, 0, nil }
	RunIterations(ctx, 100, 0, unit, func(done, total int) {
		if total != 100 {
			t.Fatalf("progress total = %d, want 100", total)
		}
		reports = append(reports, done)
	})

	if len(reports) != 10 {
		t.Fatalf("progress fired %d times for 100 iterations, want 10", len(reports))
	}
	if reports[len(reports)-1] != 100 {
		t.Fatalf("last progress report = %d, want 100", reports[len(reports)-1])
	}
}

func TestRunIterationsStopFlag(t *testing.T) {
	ctx := testContext(t, Config{
		Name: "unit", Kind: KindThroughput, Size: SizeSmall,
		Iterations: 1000, Warmup: 0, Threads: 1,
	})

	call := 0
	unit := func() (uint64, uint64, error) {
		call++
		if call == 10 {
			ctx.Stop.Request()
		}
		return 1, 0, nil
	}

	res := RunIterations(ctx, 1000, 0, unit, nil)
	if call != 10 {
		t.Fatalf("unit ran %d times after stop at 10", call)
	}
	if res.Operations != 10 {
		t.Fatalf("operations = %d, want 10", res.Operations)
	}
}

func TestRunResultThroughput(t *testing.T) {
	r := RunResult{}
	if got := r.ThroughputOpsSec(); got != 0 {
		t.Fatalf("throughput of zero-duration result = %v, want 0", got)
	}
}
