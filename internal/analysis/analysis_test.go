package analysis

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	biquad "github.com/tphakala/go-audio-biquad"
	"github.com/tphakala/go-audio-biquad/internal/testutil"
)

const rate = biquad.RateDAT

func TestImpulseResponse(t *testing.T) {
	assert.Equal(t, []float64{1, 0, 0, 0}, ImpulseResponse(biquad.Passthrough(), 4))
	assert.Nil(t, ImpulseResponse(biquad.Passthrough(), 0))

	fir := biquad.Coefficients{B0: 0.5, B1: 0.25, B2: -0.125}
	assert.Equal(t, []float64{0.5, 0.25, -0.125, 0, 0}, ImpulseResponse(fir, 5))

	// One pole at 0.5: h[n] = 0.5^n.
	onePole := biquad.Coefficients{B0: 1, A1: -0.5}
	ir := ImpulseResponse(onePole, 6)
	for n, v := range ir {
		assert.InDelta(t, math.Pow(0.5, float64(n)), v, 1e-7)
	}
}

func TestPolesAndStability(t *testing.T) {
	lp := biquad.Lowpass(rate, 1000, 0)
	poles := Poles(lp)
	for _, p := range poles {
		assert.Less(t, cmplx.Abs(p), 1.0)
	}
	assert.True(t, IsStable(lp))
	// A resonant lowpass has a complex conjugate pole pair.
	assert.InDelta(t, real(poles[0]), real(poles[1]), 1e-9)
	assert.InDelta(t, imag(poles[0]), -imag(poles[1]), 1e-9)

	assert.True(t, IsStable(biquad.Passthrough()))
	assert.False(t, IsStable(biquad.Coefficients{B0: 1, A2: 1}), "poles on the unit circle")
	assert.False(t, IsStable(biquad.Coefficients{B0: 1, A1: -2.5, A2: 1}))

	notch := biquad.Notch(rate, 1000, 2)
	for _, z := range Zeros(notch) {
		assert.InDelta(t, 1.0, cmplx.Abs(z), 1e-5, "notch zeros sit on the unit circle")
	}
}

func TestMagnitudeDB(t *testing.T) {
	assert.InDelta(t, 0.0, MagnitudeDB(biquad.Passthrough(), 1000, rate), 1e-9)

	lp := biquad.Lowpass(rate, 2000, 0)
	assert.InDelta(t, 0.0, MagnitudeDB(lp, 0, rate), 1e-4)
	assert.Less(t, MagnitudeDB(lp, 20000, rate), -30.0)

	pk := biquad.Peaking(rate, 3000, 1, 6)
	assert.InDelta(t, 6.0, MagnitudeDB(pk, 3000, rate), 1e-3)

	ap := biquad.Allpass(rate, 3000, 0.7)
	for _, f := range []float64{100, 3000, 15000} {
		assert.InDelta(t, 0.0, MagnitudeDB(ap, f, rate), 1e-4)
	}
	assert.InDelta(t, math.Pi, math.Abs(Phase(ap, 3000, rate)), 1e-3)
}

func TestFrequencyResponseMatchesClosedForm(t *testing.T) {
	designs := map[string]biquad.Coefficients{
		"lowpass":   biquad.Lowpass(rate, 1200, 3),
		"highpass":  biquad.Highpass(rate, 500, 0),
		"bandpass":  biquad.Bandpass(rate, 4000, 2),
		"peaking":   biquad.Peaking(rate, 8000, 1.5, -9),
		"highshelf": biquad.Highshelf(rate, 6000, 0.7, 4),
	}

	const n = 4096
	for name, c := range designs {
		t.Run(name, func(t *testing.T) {
			bins := FrequencyResponse(c, rate, n)
			require.Len(t, bins, n/2+1)
			assert.Zero(t, bins[0].Frequency)
			assert.InDelta(t, rate/2.0, bins[n/2].Frequency, 1e-9)

			for k := 1; k < len(bins)-1; k += 37 {
				want := MagnitudeDB(c, bins[k].Frequency, rate)
				if want < -60 {
					continue
				}
				assert.InDelta(t, want, bins[k].MagnitudeDB, 0.05, "bin %d (%.1f Hz)", k, bins[k].Frequency)
			}
		})
	}

	assert.Nil(t, FrequencyResponse(biquad.Passthrough(), rate, 1))
}

func TestToDB(t *testing.T) {
	assert.InDelta(t, 0.0, ToDB(1), 1e-12)
	assert.InDelta(t, -20.0, ToDB(0.1), 1e-12)
	assert.InDelta(t, -240.0, ToDB(0), 1e-9)
}

func TestEnergyAndDCGain(t *testing.T) {
	lp := biquad.Lowpass(rate, 3000, 0)
	ir := ImpulseResponse(lp, 8192)

	assert.InDelta(t, 1.0, DCGain(ir), 1e-4)
	assert.Zero(t, DCGain(nil))

	var want float64
	for _, v := range ir {
		want += v * v
	}
	assert.InDelta(t, want, Energy(ir), 1e-9)
}

func TestDecayLength(t *testing.T) {
	assert.Equal(t, 0, DecayLength(nil, 1e-4))
	assert.Equal(t, 3, DecayLength([]float64{1, 0.5, -0.01, 1e-6, 0}, 1e-4))
	assert.Equal(t, 2, DecayLength([]float64{1, -1}, 1e-4))

	ir := ImpulseResponse(biquad.Lowpass(rate, 1000, 0), 48000)
	d := DecayLength(ir, DefaultDecayThreshold)
	assert.Positive(t, d)
	assert.Less(t, d, 2000)
	testutil.AssertDecays(t, ir, len(ir)-d, DefaultDecayThreshold)
}

func TestAnalyze(t *testing.T) {
	c := biquad.Lowshelf(rate, 200, 0.7, 6)
	r := Analyze(c, rate, 4800)

	assert.Equal(t, c, r.Coefficients)
	assert.True(t, r.Stable)
	assert.Less(t, r.PoleRadius, 1.0)
	assert.InDelta(t, 6.0, r.DCGainDB, 1e-3)
	assert.InDelta(t, 0.0, r.NyquistGainDB, 1e-3)
	assert.Positive(t, r.Energy)
	assert.Equal(t, 4800, r.ResponseLength)
	assert.Equal(t, Poles(c), r.Poles)
}

func TestLogSpacedFrequencies(t *testing.T) {
	f := LogSpacedFrequencies(20, 20000, 4)
	require.Len(t, f, 4)
	assert.InDeltaSlice(t, []float64{20, 200, 2000, 20000}, f, 1e-6)

	assert.Equal(t, []float64{100}, LogSpacedFrequencies(100, 200, 1))
	assert.Nil(t, LogSpacedFrequencies(0, 100, 5))
	assert.Nil(t, LogSpacedFrequencies(200, 100, 5))
	assert.Nil(t, LogSpacedFrequencies(20, 100, 0))
}
