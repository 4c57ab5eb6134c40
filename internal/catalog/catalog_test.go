// internal/catalog/catalog_test.go
package catalog

import (
	"math"
	"testing"

	"github.com/mwiater/metron/internal/bench"
	"github.com/mwiater/metron/internal/device"
)

func TestSelectByKind(t *testing.T) {
	tests := map[string]struct {
		criteria Criteria
		want     int
	}{
		"all":             {Criteria{All: true}, len(table)},
		"empty criteria":  {Criteria{}, len(table)},
		"throughput kind": {Criteria{Kind: bench.KindThroughput}, 7},
		"latency kind":    {Criteria{Kind: bench.KindLatency}, 2},
		"scalability":     {Criteria{Kind: bench.KindScalability}, 2},
		"power kind":      {Criteria{Kind: bench.KindPower}, 2},
		"explicit name":   {Criteria{Name: "matrix_multiply"}, 1},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := Select(tc.criteria)
			if err != nil {
				t.Fatalf("Select: %v", err)
			}
			if len(got) != tc.want {
				t.Fatalf("selected %d entries, want %d", len(got), tc.want)
			}
		})
	}
}

func TestSelectUnknownName(t *testing.T) {
	if _, err := Select(Criteria{Name: "warp_drive"}); err == nil {
		t.Fatal("Select with unknown name returned nil error")
	}
}

func TestNameWinsOverKind(t *testing.T) {
	got, err := Select(Criteria{Kind: bench.KindPower, Name: "relu"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(got) != 1 || got[0].Name != "relu" {
		t.Fatalf("selected %v, want the single relu entry", got)
	}
}

func TestTableIntegrity(t *testing.T) {
	seen := map[string]bool{}
	for _, def := range table {
		if def.Name == "" || def.Workload == nil {
			t.Fatalf("entry %+v missing name or workload", def)
		}
		if seen[def.Name] {
			t.Fatalf("duplicate catalog entry %q", def.Name)
		}
		seen[def.Name] = true
		if !def.Kind.Valid() {
			t.Fatalf("entry %q has invalid kind %q", def.Name, def.Kind)
		}
		if !def.DefaultSize.Valid() {
			t.Fatalf("entry %q has invalid default size %q", def.Name, def.DefaultSize)
		}
		if def.DefaultIterations <= 0 || def.DefaultWarmup < 0 {
			t.Fatalf("entry %q has bad defaults iters=%d warmup=%d",
				def.Name, def.DefaultIterations, def.DefaultWarmup)
		}
		if def.NeedsPower && def.Kind != bench.KindPower {
			t.Fatalf("entry %q requires power outside the power category", def.Name)
		}
	}
}

// A small matrix multiply must report exactly iterations x 2*dim^3
// operations when no iteration fails.
func TestMatrixMultiplyOperationCount(t *testing.T) {
	def, ok := Lookup("matrix_multiply")
	if !ok {
		t.Fatal("matrix_multiply missing from catalog")
	}

	dev := device.NewSim(device.DefaultProfile())
	ctx, err := bench.NewContext(bench.Config{
		Name: def.Name, Kind: def.Kind, Size: bench.SizeSmall,
		Iterations: 10, Warmup: 2, Threads: 1,
	}, dev)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	ctx.OwnsDevice = true
	defer ctx.Close()

	m, err := bench.Run(ctx, def.Workload)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	const want = 10 * 2 * 128 * 128 * 128 // 41,943,040
	if m.Operations != want {
		t.Fatalf("operations = %d, want %d", m.Operations, want)
	}
	if m.Errors != 0 {
		t.Fatalf("errors = %d, want 0", m.Errors)
	}
	wantGOPS := float64(m.Operations) / m.DurationSeconds / 1e9
	if math.Abs(m.ThroughputGOPS-wantGOPS) > 1e-12 {
		t.Fatalf("throughput = %v GOPS, want %v", m.ThroughputGOPS, wantGOPS)
	}
}

// Injected device faults surface as error counts with zero-latency samples,
// never as run failures.
func TestWorkloadFaultsAreCounted(t *testing.T) {
	def, _ := Lookup("elementwise_add")

	dev := device.NewSim(device.DefaultProfile())
	dev.FailComputeEvery(4)
	ctx, err := bench.NewContext(bench.Config{
		Name: def.Name, Kind: bench.KindLatency, Size: bench.SizeSmall,
		Iterations: 20, Warmup: 0, Threads: 1,
	}, dev)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	ctx.OwnsDevice = true
	defer ctx.Close()

	m, err := bench.Run(ctx, def.Workload)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.Errors != 5 {
		t.Fatalf("errors = %d, want 5 (every 4th of 20 calls faults)", m.Errors)
	}
}

func TestMemoryBandwidthReportsBytes(t *testing.T) {
	def, _ := Lookup("memory_bandwidth")

	dev := device.NewSim(device.DefaultProfile())
	ctx, err := bench.NewContext(bench.Config{
		Name: def.Name, Kind: def.Kind, Size: bench.SizeSmall,
		Iterations: 5, Warmup: 0, Threads: 1,
	}, dev)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	ctx.OwnsDevice = true
	defer ctx.Close()

	m, err := bench.Run(ctx, def.Workload)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	elems := bench.SizeSmall.Elems()
	want := uint64(5) * 2 * uint64(elems) * 4
	if m.BytesMoved != want {
		t.Fatalf("bytes moved = %d, want %d", m.BytesMoved, want)
	}
	if m.BandwidthGBps <= 0 {
		t.Fatalf("bandwidth = %v GB/s, want positive", m.BandwidthGBps)
	}
}
