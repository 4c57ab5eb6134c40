// internal/catalog/catalog.go
// Package catalog is the static registry of named benchmarks: each entry
// binds a benchmark kind and default configuration to the workload that
// implements it.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mwiater/metron/internal/bench"
	"github.com/mwiater/metron/internal/device"
)

// Definition is one catalog entry. Entries are registered in the package
// table at init and read-only thereafter.
type Definition struct {
	Name        string
	Description string
	Kind        bench.Kind
	DefaultSize bench.Size
	// DefaultIterations and DefaultWarmup seed the run config; callers may
	// override both.
	DefaultIterations int
	DefaultWarmup     int
	// NeedsPower marks benchmarks that are meaningless without the power
	// monitor; the suite runner skips them when monitoring is disabled.
	NeedsPower bool
	Workload   bench.Workload
}

var table = []Definition{
	{
		Name:              "matrix_multiply",
		Description:       "Dense square matrix multiply (GEMM)",
		Kind:              bench.KindThroughput,
		DefaultSize:       bench.SizeMedium,
		DefaultIterations: 50,
		DefaultWarmup:     5,
		Workload:          matMulWorkload,
	},
	{
		Name:              "conv2d",
		Description:       "3x3 same-padded 2D convolution",
		Kind:              bench.KindThroughput,
		DefaultSize:       bench.SizeMedium,
		DefaultIterations: 50,
		DefaultWarmup:     5,
		Workload:          conv2dWorkload,
	},
	{
		Name:              "elementwise_add",
		Description:       "Elementwise vector addition",
		Kind:              bench.KindThroughput,
		DefaultSize:       bench.SizeLarge,
		DefaultIterations: 100,
		DefaultWarmup:     10,
		Workload:          binaryOp(device.Device.ElementwiseAdd, 1),
	},
	{
		Name:              "elementwise_mul",
		Description:       "Elementwise vector multiplication",
		Kind:              bench.KindThroughput,
		DefaultSize:       bench.SizeLarge,
		DefaultIterations: 100,
		DefaultWarmup:     10,
		Workload:          binaryOp(device.Device.ElementwiseMul, 1),
	},
	{
		Name:              "relu",
		Description:       "ReLU activation over a vector",
		Kind:              bench.KindThroughput,
		DefaultSize:       bench.SizeLarge,
		DefaultIterations: 100,
		DefaultWarmup:     10,
		Workload:          unaryOp(device.Device.ReLU, 1),
	},
	{
		Name:              "sigmoid",
		Description:       "Sigmoid activation over a vector",
		Kind:              bench.KindThroughput,
		DefaultSize:       bench.SizeLarge,
		DefaultIterations: 100,
		DefaultWarmup:     10,
		Workload:          unaryOp(device.Device.Sigmoid, 4),
	},
	{
		Name:              "memory_bandwidth",
		Description:       "Host-to-device and device-to-host copy bandwidth",
		Kind:              bench.KindThroughput,
		DefaultSize:       bench.SizeXLarge,
		DefaultIterations: 100,
		DefaultWarmup:     10,
		Workload:          memCopyWorkload,
	},
	{
		Name:              "matmul_latency",
		Description:       "Single matrix-multiply call latency distribution",
		Kind:              bench.KindLatency,
		DefaultSize:       bench.SizeSmall,
		DefaultIterations: 200,
		DefaultWarmup:     20,
		Workload:          matMulWorkload,
	},
	{
		Name:              "memcpy_latency",
		Description:       "Round-trip memory copy latency distribution",
		Kind:              bench.KindLatency,
		DefaultSize:       bench.SizeSmall,
		DefaultIterations: 200,
		DefaultWarmup:     20,
		Workload:          memCopyWorkload,
	},
	{
		Name:              "matmul_scaling",
		Description:       "Matrix multiply across the worker pool",
		Kind:              bench.KindScalability,
		DefaultSize:       bench.SizeSmall,
		DefaultIterations: 100,
		DefaultWarmup:     4,
		Workload:          matMulWorkload,
	},
	{
		Name:              "elementwise_scaling",
		Description:       "Elementwise addition across the worker pool",
		Kind:              bench.KindScalability,
		DefaultSize:       bench.SizeMedium,
		DefaultIterations: 200,
		DefaultWarmup:     8,
		Workload:          binaryOp(device.Device.ElementwiseAdd, 1),
	},
	{
		Name:              "power_matmul",
		Description:       "Matrix multiply under power/thermal monitoring",
		Kind:              bench.KindPower,
		DefaultSize:       bench.SizeMedium,
		DefaultIterations: 50,
		DefaultWarmup:     5,
		NeedsPower:        true,
		Workload:          matMulWorkload,
	},
	{
		Name:              "power_conv2d",
		Description:       "2D convolution under power/thermal monitoring",
		Kind:              bench.KindPower,
		DefaultSize:       bench.SizeMedium,
		DefaultIterations: 50,
		DefaultWarmup:     5,
		NeedsPower:        true,
		Workload:          conv2dWorkload,
	},
}

// All returns every catalog entry in registration order.
func All() []Definition {
	out := make([]Definition, len(table))
	copy(out, table)
	return out
}

// Lookup finds a catalog entry by exact name.
func Lookup(name string) (Definition, bool) {
	for _, def := range table {
		if def.Name == name {
			return def, true
		}
	}
	return Definition{}, false
}

// Names returns every benchmark name, sorted.
func Names() []string {
	names := make([]string, 0, len(table))
	for _, def := range table {
		names = append(names, def.Name)
	}
	sort.Strings(names)
	return names
}

// Criteria selects a subset of the catalog. Name wins over Kind; an empty
// criteria (or All) selects everything.
type Criteria struct {
	All  bool
	Kind bench.Kind
	Name string
}

// Select filters the catalog. An explicit name that matches no entry is an
// error; an empty filtered set for a kind is not.
func Select(c Criteria) ([]Definition, error) {
	if name := strings.TrimSpace(c.Name); name != "" {
		def, ok := Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown benchmark %q (known: %s)", name, strings.Join(Names(), ", "))
		}
		return []Definition{def}, nil
	}
	if c.All || c.Kind == "" {
		return All(), nil
	}
	if !c.Kind.Valid() {
		return nil, fmt.Errorf("unknown benchmark category %q", c.Kind)
	}
	var out []Definition
	for _, def := range table {
		if def.Kind == c.Kind {
			out = append(out, def)
		}
	}
	return out, nil
}
