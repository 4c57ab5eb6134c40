// internal/bench/sizes.go
// Package bench holds the benchmark configuration, the execution engine that
// drives a device through measured iterations, and the concurrency harness
// that runs the engine across a fixed worker pool.
package bench

import (
	"fmt"
	"strings"
)

// Size selects the problem dimensions for a workload.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
	SizeXLarge Size = "xlarge"
)

// sizeDims maps each size class to its square edge length. Matrix workloads
// run Dim x Dim x Dim, elementwise workloads run over Dim*Dim elements.
var sizeDims = map[Size]int{
	SizeSmall:  128,
	SizeMedium: 512,
	SizeLarge:  1024,
	SizeXLarge: 2048,
}

// Sizes returns the known size classes in ascending order.
func Sizes() []Size {
	return []Size{SizeSmall, SizeMedium, SizeLarge, SizeXLarge}
}

// ParseSize normalizes and validates a size-class name.
func ParseSize(s string) (Size, error) {
	size := Size(strings.ToLower(strings.TrimSpace(s)))
	if !size.Valid() {
		return "", fmt.Errorf("unknown size %q (expected small, medium, large, or xlarge)", s)
	}
	return size, nil
}

// Valid reports whether the size class is one of the known table entries.
func (s Size) Valid() bool {
	_, ok := sizeDims[s]
	return ok
}

// Dim returns the edge length for this size class, or 0 for an unknown size.
func (s Size) Dim() int {
	return sizeDims[s]
}

// Elems returns the element count for vector workloads (Dim squared).
func (s Size) Elems() int {
	d := sizeDims[s]
	return d * d
}
