// Package analysis inspects biquad coefficient sets: impulse responses,
// pole locations, closed-form and FFT-measured magnitude responses.
package analysis

import (
	"math"
	"math/cmplx"

	dspbiquad "github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"gonum.org/v1/gonum/dsp/fourier"

	biquad "github.com/tphakala/go-audio-biquad"
	"github.com/tphakala/go-audio-biquad/internal/simdops"
)

const (
	// minMagnitude floors linear magnitudes before conversion to dB so
	// that exact zeros map to a finite value.
	minMagnitude = 1e-12

	dbPerDecade = 20

	// hermitianDivisor gives the number of unique bins of a real FFT:
	// n/hermitianDivisor + 1.
	hermitianDivisor = 2
)

// Bin is one point of a magnitude response.
type Bin struct {
	Frequency   float64
	MagnitudeDB float64
}

// ImpulseResponse returns the first n output samples of a fresh filter
// driven by a unit impulse.
func ImpulseResponse(c biquad.Coefficients, n int) []float64 {
	if n <= 0 {
		return nil
	}

	in := make([]biquad.Sample, n)
	in[0] = biquad.Sample{L: 1}
	// ProcessInto cannot fail when dst and src have the same length.
	_ = biquad.NewFilterState(c).ProcessInto(in, in)

	ir := make([]float64, n)
	for i, s := range in {
		ir[i] = float64(s.L)
	}
	return ir
}

func toDSP(c biquad.Coefficients) dspbiquad.Coefficients {
	return dspbiquad.Coefficients{
		B0: float64(c.B0),
		B1: float64(c.B1),
		B2: float64(c.B2),
		A1: float64(c.A1),
		A2: float64(c.A2),
	}
}

// Poles returns the roots of z² + a1·z + a2.
func Poles(c biquad.Coefficients) [2]complex128 {
	d := toDSP(c)
	return d.Poles()
}

// Zeros returns the roots of b0·z² + b1·z + b2.
func Zeros(c biquad.Coefficients) [2]complex128 {
	d := toDSP(c)
	return d.Zeros()
}

// IsStable reports whether both poles lie strictly inside the unit circle.
func IsStable(c biquad.Coefficients) bool {
	for _, p := range Poles(c) {
		if r := cmplx.Abs(p); !(r < 1) {
			return false
		}
	}
	return true
}

// MagnitudeDB evaluates the closed-form magnitude response at freq.
func MagnitudeDB(c biquad.Coefficients, freq, rate float64) float64 {
	d := toDSP(c)
	return d.MagnitudeDB(freq, rate)
}

// Phase evaluates the closed-form phase response at freq, in radians.
func Phase(c biquad.Coefficients, freq, rate float64) float64 {
	d := toDSP(c)
	return d.Phase(freq, rate)
}

// FrequencyResponse measures the magnitude response from the FFT of an
// n-sample impulse response. It returns n/2+1 bins from DC to Nyquist.
func FrequencyResponse(c biquad.Coefficients, rate float64, n int) []Bin {
	if n < hermitianDivisor {
		return nil
	}

	ir := ImpulseResponse(c, n)
	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, ir)

	bins := make([]Bin, n/hermitianDivisor+1)
	for k := range bins {
		bins[k] = Bin{
			Frequency:   fft.Freq(k) * rate,
			MagnitudeDB: ToDB(cmplx.Abs(coeffs[k])),
		}
	}
	return bins
}

// ToDB converts a linear magnitude to decibels.
func ToDB(mag float64) float64 {
	return dbPerDecade * math.Log10(max(mag, minMagnitude))
}

// Energy returns the sum of squares of x.
func Energy(x []float64) float64 {
	return simdops.Energy(x)
}

// DCGain estimates the gain at 0 Hz as the sum of the impulse response.
func DCGain(ir []float64) float64 {
	if len(ir) == 0 {
		return 0
	}
	return simdops.Float64Ops().Sum(ir)
}

// DecayLength returns the index after which every |ir[i]| stays below
// threshold, or len(ir) if the response never settles.
func DecayLength(ir []float64, threshold float64) int {
	for i := len(ir) - 1; i >= 0; i-- {
		if math.Abs(ir[i]) >= threshold {
			return i + 1
		}
	}
	return 0
}
