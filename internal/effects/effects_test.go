package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	biquad "github.com/tphakala/go-audio-biquad"
	"github.com/tphakala/go-audio-biquad/internal/testutil"
)

func TestFillPlanar(t *testing.T) {
	samples := []biquad.Sample{{L: 1, R: -1}, {L: 0.5, R: -0.5}, {L: 0.25, R: -0.25}}
	l := []float64{9, 9, 9, 9}
	r := []float64{9, 9, 9, 9}

	fillPlanar(l, r, samples, 1)
	assert.Equal(t, []float64{0.5, 0.25, 0, 0}, l)
	assert.Equal(t, []float64{-0.5, -0.25, 0, 0}, r)

	// Entirely past the input.
	fillPlanar(l, r, samples, 10)
	assert.Equal(t, []float64{0, 0, 0, 0}, l)
	assert.Equal(t, []float64{0, 0, 0, 0}, r)
}

func TestStereoRunnerKeepsChannelsApart(t *testing.T) {
	negate := func(block []float64) {
		for i := range block {
			block[i] = -block[i]
		}
	}
	double := func(block []float64) {
		for i := range block {
			block[i] *= 2
		}
	}

	in := biquad.WrapSamples(testutil.Noise(blockFrames+123, 0.4), biquad.RateDAT)
	for _, parallel := range []bool{false, true} {
		s := stereoRunner{left: negate, right: double, opts: options{parallel: parallel}}

		out, err := s.run(in, in.Len()+10)
		require.NoError(t, err)
		require.Equal(t, in.Len()+10, out.Len())
		assert.Equal(t, biquad.RateDAT, out.Rate)

		for i, v := range in.Samples {
			require.Equal(t, -v.L, out.Samples[i].L, "parallel=%v frame %d", parallel, i)
			require.Equal(t, 2*v.R, out.Samples[i].R, "parallel=%v frame %d", parallel, i)
		}
		testutil.AssertAllZero(t, out.Samples[in.Len():])
	}
}

func TestStereoRunnerErrors(t *testing.T) {
	noop := func([]float64) {}

	released := biquad.WrapSamples(testutil.Noise(16, 0.1), biquad.RateCD)
	released.Release()
	s := stereoRunner{left: noop, right: noop}
	_, err := s.run(released, 16)
	require.ErrorIs(t, err, biquad.ErrReleased)

	limited := stereoRunner{left: noop, right: noop, opts: options{alloc: biquad.NewLimitedAllocator(8)}}
	_, err = limited.run(biquad.WrapSamples(testutil.Noise(16, 0.1), biquad.RateCD), 16)
	assert.ErrorIs(t, err, biquad.ErrAllocation)
}

func TestApplyOptions(t *testing.T) {
	alloc := biquad.NewPooledAllocator()
	o := applyOptions([]Option{WithAllocator(alloc), Parallel(true)})
	assert.Same(t, alloc, o.alloc)
	assert.True(t, o.parallel)

	assert.Equal(t, options{}, applyOptions(nil))
}
