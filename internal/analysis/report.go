package analysis

import (
	"math"
	"math/cmplx"

	biquad "github.com/tphakala/go-audio-biquad"
)

// DefaultDecayThreshold is the level below which an impulse response is
// considered to have died out (-80 dB).
const DefaultDecayThreshold = 1e-4

// Report summarizes a coefficient set.
type Report struct {
	Coefficients biquad.Coefficients
	Poles        [2]complex128
	Zeros        [2]complex128
	PoleRadius   float64
	Stable       bool

	DCGainDB       float64
	NyquistGainDB  float64
	Energy         float64
	DecaySamples   int
	ResponseLength int
}

// Analyze builds a report from an n-sample impulse response at rate.
func Analyze(c biquad.Coefficients, rate float64, n int) Report {
	ir := ImpulseResponse(c, n)
	poles := Poles(c)

	return Report{
		Coefficients:   c,
		Poles:          poles,
		Zeros:          Zeros(c),
		PoleRadius:     max(cmplx.Abs(poles[0]), cmplx.Abs(poles[1])),
		Stable:         IsStable(c),
		DCGainDB:       MagnitudeDB(c, 0, rate),
		NyquistGainDB:  MagnitudeDB(c, rate/2, rate),
		Energy:         Energy(ir),
		DecaySamples:   DecayLength(ir, DefaultDecayThreshold),
		ResponseLength: n,
	}
}

// LogSpacedFrequencies returns n frequencies spaced evenly on a log scale
// between lo and hi inclusive.
func LogSpacedFrequencies(lo, hi float64, n int) []float64 {
	if n <= 0 || lo <= 0 || hi < lo {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}

	freqs := make([]float64, n)
	ratio := hi / lo
	for i := range freqs {
		freqs[i] = lo * math.Pow(ratio, float64(i)/float64(n-1))
	}
	return freqs
}
