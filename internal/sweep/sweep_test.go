// internal/sweep/sweep_test.go
package sweep

import (
	"math"
	"testing"
	"time"

	"github.com/mwiater/metron/internal/bench"
	"github.com/mwiater/metron/internal/device"
)

func TestFinalizeThreadSweepPerfectScaling(t *testing.T) {
	// A 4-thread run at exactly 4x the single-thread baseline scores a
	// scaling efficiency of 1.00.
	points := []ThreadPoint{
		{Threads: 1, ThroughputOpsSec: 1000, OK: true},
		{Threads: 2, ThroughputOpsSec: 1800, OK: true},
		{Threads: 4, ThroughputOpsSec: 4000, OK: true},
	}

	res := FinalizeThreadSweep(points)
	if !res.OK {
		t.Fatal("sweep with successful candidates reported not OK")
	}
	if res.BestThreads != 4 {
		t.Fatalf("best threads = %d, want 4 (max absolute throughput)", res.BestThreads)
	}

	got := map[int]float64{}
	for _, p := range res.Points {
		got[p.Threads] = p.ScalingEfficiency
	}
	if math.Abs(got[4]-1.00) > 1e-12 {
		t.Fatalf("efficiency at 4 threads = %v, want exactly 1.00", got[4])
	}
	if math.Abs(got[2]-0.9) > 1e-12 {
		t.Fatalf("efficiency at 2 threads = %v, want 0.9", got[2])
	}
	if math.Abs(got[1]-1.0) > 1e-12 {
		t.Fatalf("efficiency at 1 thread = %v, want 1.0", got[1])
	}
}

func TestFinalizeThreadSweepExcludesFailures(t *testing.T) {
	points := []ThreadPoint{
		{Threads: 1, ThroughputOpsSec: 1000, OK: true},
		{Threads: 2, Err: "worker setup: allocation failed"},
		{Threads: 4, ThroughputOpsSec: 3000, OK: true},
	}

	res := FinalizeThreadSweep(points)
	if !res.OK || res.BestThreads != 4 {
		t.Fatalf("best threads = %d (ok=%v), want 4 with OK", res.BestThreads, res.OK)
	}
	for _, p := range res.Points {
		if p.Threads == 2 && p.ScalingEfficiency != 0 {
			t.Fatalf("failed candidate scored efficiency %v, want 0", p.ScalingEfficiency)
		}
	}
}

func TestFinalizeThreadSweepAllFailed(t *testing.T) {
	points := []ThreadPoint{
		{Threads: 1, Err: "boom"},
		{Threads: 2, Err: "boom"},
	}
	res := FinalizeThreadSweep(points)
	if res.OK {
		t.Fatal("all-failure sweep reported OK")
	}
	if res.BestThreads != 0 {
		t.Fatalf("all-failure sweep picked best threads %d", res.BestThreads)
	}
}

func TestFinalizeThreadSweepNoBaseline(t *testing.T) {
	// Without a successful single-thread run there is no baseline; best is
	// still picked but efficiencies stay zero.
	points := []ThreadPoint{
		{Threads: 2, ThroughputOpsSec: 1800, OK: true},
		{Threads: 4, ThroughputOpsSec: 2400, OK: true},
	}
	res := FinalizeThreadSweep(points)
	if res.BestThreads != 4 {
		t.Fatalf("best threads = %d, want 4", res.BestThreads)
	}
	for _, p := range res.Points {
		if p.ScalingEfficiency != 0 {
			t.Fatalf("efficiency without baseline = %v, want 0", p.ScalingEfficiency)
		}
	}
}

func quickWorkload(_ *bench.Context, _ int) (bench.UnitFunc, func(), error) {
	return func() (uint64, uint64, error) { return 100, 0, nil }, nil, nil
}

func TestThreadsRunsCandidates(t *testing.T) {
	dev := device.NewSim(device.DefaultProfile())
	defer dev.Close()

	base := bench.Config{
		Name: "sweep", Kind: bench.KindScalability, Size: bench.SizeSmall,
		Iterations: 8, Warmup: 0, Threads: 1,
	}

	res := Threads(dev, base, quickWorkload, []int{1, 2})
	if !res.OK {
		t.Fatal("sweep not OK")
	}
	if len(res.Points) != 2 {
		t.Fatalf("got %d points, want 2", len(res.Points))
	}
	for _, p := range res.Points {
		if !p.OK {
			t.Fatalf("candidate %d failed: %s", p.Threads, p.Err)
		}
		if p.ThroughputOpsSec <= 0 {
			t.Fatalf("candidate %d throughput = %v", p.Threads, p.ThroughputOpsSec)
		}
	}
}

func TestDVFSAllApplyFailuresInconclusive(t *testing.T) {
	dev := device.NewSim(device.DefaultProfile())
	defer dev.Close()
	dev.RejectDVFS(true)

	base := bench.Config{
		Name: "sweep", Kind: bench.KindPower, Size: bench.SizeSmall,
		Iterations: 4, Warmup: 0, Threads: 1,
	}

	res := DVFS(dev, base, quickWorkload, device.DefaultProfile().OperatingPoints, time.Millisecond)
	if res.OK {
		t.Fatal("sweep with every apply failing reported OK")
	}
	if res.Best.OK {
		t.Fatal("inconclusive sweep still produced a best point")
	}
	for _, p := range res.Points {
		if p.OK {
			t.Fatalf("candidate %+v succeeded despite rejected DVFS", p.Config)
		}
		if p.Err == "" {
			t.Fatalf("failed candidate %+v has no recorded error", p.Config)
		}
	}
}

func TestDVFSSelectsBestEfficiency(t *testing.T) {
	dev := device.NewSim(device.DefaultProfile())
	defer dev.Close()

	base := bench.Config{
		Name: "sweep", Kind: bench.KindPower, Size: bench.SizeSmall,
		Iterations: 4, Warmup: 0, Threads: 1,
	}

	points := []device.DVFSConfig{
		{FrequencyMHz: 600, VoltageMV: 700},
		{FrequencyMHz: 1200, VoltageMV: 850},
	}
	res := DVFS(dev, base, quickWorkload, points, time.Millisecond)
	if !res.OK {
		t.Fatal("sweep not OK")
	}
	if !res.Best.OK {
		t.Fatal("best point not marked OK")
	}
	var maxEff float64
	for _, p := range res.Points {
		if p.OK && p.EfficiencyGOPSW > maxEff {
			maxEff = p.EfficiencyGOPSW
		}
	}
	if res.Best.EfficiencyGOPSW != maxEff {
		t.Fatalf("best efficiency = %v, max among candidates = %v",
			res.Best.EfficiencyGOPSW, maxEff)
	}
}

func TestDVFSSkipsUnsupportedPoint(t *testing.T) {
	dev := device.NewSim(device.DefaultProfile())
	defer dev.Close()

	base := bench.Config{
		Name: "sweep", Kind: bench.KindPower, Size: bench.SizeSmall,
		Iterations: 4, Warmup: 0, Threads: 1,
	}

	points := []device.DVFSConfig{
		{FrequencyMHz: 9999, VoltageMV: 9999}, // not in the profile table
		{FrequencyMHz: 800, VoltageMV: 750},
	}
	res := DVFS(dev, base, quickWorkload, points, time.Millisecond)
	if !res.OK {
		t.Fatal("sweep not OK despite one valid candidate")
	}
	if res.Points[0].OK {
		t.Fatal("unsupported operating point reported OK")
	}
	if !res.Points[1].OK {
		t.Fatalf("valid operating point failed: %s", res.Points[1].Err)
	}
	if res.Best.Config != points[1] {
		t.Fatalf("best config = %+v, want %+v", res.Best.Config, points[1])
	}
}
