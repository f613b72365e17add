// Package testutil provides reusable test helper functions for biquad filter tests.
package testutil

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	biquad "github.com/tphakala/go-audio-biquad"
)

// Default tolerances for various test scenarios.
const (
	DefaultTolerance = 1e-6
	PCM16Tolerance   = 1.0 / 32767
	DecayThreshold   = 1e-4
)

// noiseSeed keeps generated test signals reproducible.
const noiseSeed = 0x5eed

// AssertSamplesEqual verifies that two sample slices are identical element
// for element. Used where bit-exact equality is required.
func AssertSamplesEqual(t *testing.T, expected, actual []biquad.Sample, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Len(t, actual, len(expected), msgAndArgs...) {
		return false
	}
	for i := range expected {
		if expected[i] != actual[i] {
			return assert.Fail(t, "samples differ",
				"sample %d: expected %+v, got %+v", i, expected[i], actual[i])
		}
	}
	return true
}

// AssertSamplesInDelta verifies that two sample slices agree within tolerance
// on both channels.
func AssertSamplesInDelta(t *testing.T, expected, actual []biquad.Sample, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Len(t, actual, len(expected), msgAndArgs...) {
		return false
	}
	for i := range expected {
		if !assert.InDelta(t, expected[i].L, actual[i].L, tolerance, "sample %d left channel", i) {
			return false
		}
		if !assert.InDelta(t, expected[i].R, actual[i].R, tolerance, "sample %d right channel", i) {
			return false
		}
	}
	return true
}

// AssertNoNaNOrInf verifies that no channel value in the slice is NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []biquad.Sample, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		for _, x := range [2]float32{v.L, v.R} {
			if math.IsNaN(float64(x)) {
				return assert.Fail(t, "found NaN", "s[%d] = %+v", i, v)
			}
			if math.IsInf(float64(x), 0) {
				return assert.Fail(t, "found Inf", "s[%d] = %+v", i, v)
			}
		}
	}
	return true
}

// AssertAllZero verifies that every sample is silence.
func AssertAllZero(t *testing.T, s []biquad.Sample, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if v.L != 0 || v.R != 0 {
			return assert.Fail(t, "non-zero sample", "s[%d] = %+v", i, v)
		}
	}
	return true
}

// AssertCoefficientsFinite verifies that all five coefficients are finite.
func AssertCoefficientsFinite(t *testing.T, c biquad.Coefficients, msgAndArgs ...any) bool {
	t.Helper()
	for _, v := range [5]float32{c.B0, c.B1, c.B2, c.A1, c.A2} {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return assert.Fail(t, "non-finite coefficient", "coefficients %+v", c)
		}
	}
	return true
}

// AssertDecays verifies that the tail of an impulse response has fallen
// below threshold. Only the last tailLen values are inspected.
func AssertDecays(t *testing.T, ir []float64, tailLen int, threshold float64, msgAndArgs ...any) bool {
	t.Helper()
	start := max(0, len(ir)-tailLen)
	for i := start; i < len(ir); i++ {
		if math.Abs(ir[i]) > threshold {
			return assert.Fail(t, "impulse response did not decay",
				"|ir[%d]| = %g exceeds %g", i, math.Abs(ir[i]), threshold)
		}
	}
	return true
}

// AssertRelativeError verifies that the relative error between actual and expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}

// AssertInRange verifies that a value is within [min, max].
func AssertInRange(t *testing.T, value, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	if value < minVal || value > maxVal {
		return assert.Fail(t, "value out of range",
			"value %f is outside range [%f, %f]", value, minVal, maxVal)
	}
	return true
}

// Sine generates n stereo samples of a sine wave at freq Hz. The right
// channel is shifted by a quarter period so the channels differ.
func Sine(n, rate int, freq, amplitude float64) []biquad.Sample {
	out := make([]biquad.Sample, n)
	omega := 2 * math.Pi * freq / float64(rate)
	for i := range out {
		out[i] = biquad.Sample{
			L: float32(amplitude * math.Sin(omega*float64(i))),
			R: float32(amplitude * math.Cos(omega*float64(i))),
		}
	}
	return out
}

// Noise generates n stereo samples of reproducible uniform noise in
// [-amplitude, amplitude].
func Noise(n int, amplitude float64) []biquad.Sample {
	rng := rand.New(rand.NewPCG(noiseSeed, noiseSeed))
	out := make([]biquad.Sample, n)
	for i := range out {
		out[i] = biquad.Sample{
			L: float32(amplitude * (2*rng.Float64() - 1)),
			R: float32(amplitude * (2*rng.Float64() - 1)),
		}
	}
	return out
}

// Impulse generates n samples with a unit impulse at index 0 on both channels.
func Impulse(n int) []biquad.Sample {
	out := make([]biquad.Sample, n)
	if n > 0 {
		out[0] = biquad.Sample{L: 1, R: 1}
	}
	return out
}

// RandomPartition splits n into contiguous chunk lengths that sum to n, using
// a reproducible generator seeded with seed. Most chunks hold between 1 and 64
// samples; zero-length chunks are mixed in occasionally to exercise empty calls.
func RandomPartition(n int, seed uint64) []int {
	rng := rand.New(rand.NewPCG(seed, noiseSeed))
	var parts []int
	for remaining := n; remaining > 0; {
		if rng.IntN(8) == 0 {
			parts = append(parts, 0)
		}
		size := 1 + rng.IntN(min(remaining, 64))
		parts = append(parts, size)
		remaining -= size
	}
	return parts
}
