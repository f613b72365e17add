// Package simdops exposes the SIMD kernels used on planar float64 channel
// data by the effect adapters and the response analysis.
package simdops

import (
	"github.com/tphakala/simd/c128"
	"github.com/tphakala/simd/f64"
)

// Ops bundles the vector kernels behind function pointers.
type Ops struct {
	// DotProductUnsafe computes the dot product without bounds checking.
	// Both slices must have equal length.
	DotProductUnsafe func(a, b []float64) float64

	// Sum returns the sum of all elements.
	Sum func(a []float64) float64

	// Scale multiplies each element by s: dst[i] = a[i] * s.
	Scale func(dst, a []float64, s float64)

	// ConvolveValid computes dst[i] = sum(signal[i+k] * kernel[k]) for
	// every i where the kernel fits inside signal.
	ConvolveValid func(dst, signal, kernel []float64)

	// MulComplex multiplies spectra element-wise: dst[i] = a[i] * b[i].
	MulComplex func(dst, a, b []complex128)
}

var ops64 = Ops{
	DotProductUnsafe: f64.DotProductUnsafe,
	Sum:              f64.Sum,
	Scale:            f64.Scale,
	ConvolveValid:    f64.ConvolveValid,
	MulComplex:       c128.Mul,
}

// Float64Ops returns the float64 SIMD operations.
func Float64Ops() *Ops {
	return &ops64
}

// Gain multiplies x by g in place. A unity gain leaves x untouched.
func Gain(x []float64, g float64) {
	if g == 1 || len(x) == 0 {
		return
	}
	ops64.Scale(x, x, g)
}

// Energy returns the sum of squares of x.
func Energy(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return ops64.DotProductUnsafe(x, x)
}
