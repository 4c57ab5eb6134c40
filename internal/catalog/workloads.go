// internal/catalog/workloads.go
package catalog

import (
	"github.com/mwiater/metron/internal/bench"
	"github.com/mwiater/metron/internal/device"
)

// testPattern fills a deterministic input vector so repeated runs exercise
// identical data.
func testPattern(n int) []float32 {
	data := make([]float32, n)
	for i := range data {
		data[i] = float32(i%17)*0.25 - 2.0
	}
	return data
}

// matMulWorkload allocates per-worker square matrices and returns a unit
// that multiplies them on the device. Operation weight is 2*M*N*K
// multiply-adds.
func matMulWorkload(ctx *bench.Context, _ int) (bench.UnitFunc, func(), error) {
	dim := ctx.Cfg.Size.Dim()
	elems := dim * dim

	a, err := ctx.AllocFloats(elems, testPattern(elems))
	if err != nil {
		return nil, nil, err
	}
	b, err := ctx.AllocFloats(elems, testPattern(elems))
	if err != nil {
		ctx.Release(a)
		return nil, nil, err
	}
	c, err := ctx.AllocFloats(elems, nil)
	if err != nil {
		ctx.Release(a, b)
		return nil, nil, err
	}

	weight := uint64(2*dim) * uint64(dim) * uint64(dim)
	unit := func() (uint64, uint64, error) {
		if err := ctx.Dev.MatMul(a, b, c, dim, dim, dim); err != nil {
			return 0, 0, err
		}
		return weight, 0, nil
	}
	cleanup := func() { _ = ctx.Release(a, b, c) }
	return unit, cleanup, nil
}

// conv2dWorkload runs a 3x3 same-padded convolution over a Dim x Dim input.
// Operation weight is 2*H*W*KH*KW.
func conv2dWorkload(ctx *bench.Context, _ int) (bench.UnitFunc, func(), error) {
	dim := ctx.Cfg.Size.Dim()
	const kdim = 3

	input, err := ctx.AllocFloats(dim*dim, testPattern(dim*dim))
	if err != nil {
		return nil, nil, err
	}
	kernel, err := ctx.AllocFloats(kdim*kdim, testPattern(kdim*kdim))
	if err != nil {
		ctx.Release(input)
		return nil, nil, err
	}
	output, err := ctx.AllocFloats(dim*dim, nil)
	if err != nil {
		ctx.Release(input, kernel)
		return nil, nil, err
	}

	weight := uint64(2*dim) * uint64(dim) * uint64(kdim) * uint64(kdim)
	unit := func() (uint64, uint64, error) {
		if err := ctx.Dev.Conv2D(input, kernel, output, dim, dim, kdim, kdim); err != nil {
			return 0, 0, err
		}
		return weight, 0, nil
	}
	cleanup := func() { _ = ctx.Release(input, kernel, output) }
	return unit, cleanup, nil
}

// binaryOp is the shared shape of the two-input elementwise workloads.
func binaryOp(op func(d device.Device, a, b, out device.Buffer, n int) error, perElem uint64) bench.Workload {
	return func(ctx *bench.Context, _ int) (bench.UnitFunc, func(), error) {
		n := ctx.Cfg.Size.Elems()

		a, err := ctx.AllocFloats(n, testPattern(n))
		if err != nil {
			return nil, nil, err
		}
		b, err := ctx.AllocFloats(n, testPattern(n))
		if err != nil {
			ctx.Release(a)
			return nil, nil, err
		}
		out, err := ctx.AllocFloats(n, nil)
		if err != nil {
			ctx.Release(a, b)
			return nil, nil, err
		}

		weight := perElem * uint64(n)
		unit := func() (uint64, uint64, error) {
			if err := op(ctx.Dev, a, b, out, n); err != nil {
				return 0, 0, err
			}
			return weight, 0, nil
		}
		cleanup := func() { _ = ctx.Release(a, b, out) }
		return unit, cleanup, nil
	}
}

// unaryOp is the shared shape of the activation workloads.
func unaryOp(op func(d device.Device, in, out device.Buffer, n int) error, perElem uint64) bench.Workload {
	return func(ctx *bench.Context, _ int) (bench.UnitFunc, func(), error) {
		n := ctx.Cfg.Size.Elems()

		in, err := ctx.AllocFloats(n, testPattern(n))
		if err != nil {
			return nil, nil, err
		}
		out, err := ctx.AllocFloats(n, nil)
		if err != nil {
			ctx.Release(in)
			return nil, nil, err
		}

		weight := perElem * uint64(n)
		unit := func() (uint64, uint64, error) {
			if err := op(ctx.Dev, in, out, n); err != nil {
				return 0, 0, err
			}
			return weight, 0, nil
		}
		cleanup := func() { _ = ctx.Release(in, out) }
		return unit, cleanup, nil
	}
}

// memCopyWorkload measures host-to-device plus device-to-host transfer of a
// Dim x Dim float32 buffer. Each unit moves the buffer both ways; bandwidth
// is derived from the byte volume.
func memCopyWorkload(ctx *bench.Context, _ int) (bench.UnitFunc, func(), error) {
	n := ctx.Cfg.Size.Elems()
	src := testPattern(n)
	dst := make([]float32, n)

	buf, err := ctx.AllocFloats(n, nil)
	if err != nil {
		return nil, nil, err
	}

	bytes := uint64(2) * uint64(n) * 4
	unit := func() (uint64, uint64, error) {
		if err := ctx.Dev.CopyToDevice(buf, src); err != nil {
			return 0, 0, err
		}
		if err := ctx.Dev.CopyToHost(dst, buf); err != nil {
			return 0, 0, err
		}
		return uint64(n), bytes, nil
	}
	cleanup := func() { _ = ctx.Release(buf) }
	return unit, cleanup, nil
}
