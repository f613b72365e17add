package biquad_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	biquad "github.com/tphakala/go-audio-biquad"
	"github.com/tphakala/go-audio-biquad/internal/testutil"
)

func TestApplyMatchesStreaming(t *testing.T) {
	c := biquad.Highshelf(testRate, 6000, 0.9, 5)
	in := biquad.WrapSamples(testutil.Sine(2048, testRate, 9000, 0.7), testRate)

	oneShot, err := biquad.Apply(c, in)
	require.NoError(t, err)

	streamed, err := biquad.NewFilterState(c).Process(in)
	require.NoError(t, err)

	testutil.AssertSamplesEqual(t, streamed.Samples, oneShot.Samples)
}

func TestApplyConfig(t *testing.T) {
	in := biquad.WrapSamples(testutil.Noise(64, 1), testRate)
	cfg := &biquad.Config{Type: biquad.TypeBandpass, Rate: testRate, Frequency: 1000, Q: 1}

	got, err := biquad.ApplyConfig(cfg, in)
	require.NoError(t, err)

	want, err := biquad.Apply(biquad.Bandpass(testRate, 1000, 1), in)
	require.NoError(t, err)
	testutil.AssertSamplesEqual(t, want.Samples, got.Samples)

	_, err = biquad.ApplyConfig(&biquad.Config{Type: biquad.FilterType(12), Rate: testRate}, in)
	assert.ErrorIs(t, err, biquad.ErrInvalidConfig)
}

func TestApplyChunked(t *testing.T) {
	c := biquad.Lowpass(testRate, 3000, 9)
	in := biquad.WrapSamples(testutil.Noise(1000, 1), testRate)

	want, err := biquad.Apply(c, in)
	require.NoError(t, err)

	for _, size := range []int{1, 7, 64, 999, 1000, 5000} {
		got, err := biquad.ApplyChunked(c, in, size)
		require.NoError(t, err)
		testutil.AssertSamplesEqual(t, want.Samples, got.Samples, "chunk size %d", size)
	}

	_, err = biquad.ApplyChunked(c, in, 0)
	assert.ErrorIs(t, err, biquad.ErrInvalidConfig)
}

func TestApplyReleasedInput(t *testing.T) {
	in, err := biquad.NewSoundBuffer(nil, 64, testRate, true)
	require.NoError(t, err)
	in.Release()

	_, err = biquad.Apply(biquad.Passthrough(), in)
	require.ErrorIs(t, err, biquad.ErrReleased)

	out, err := biquad.ApplyChunked(biquad.Passthrough(), in, 16)
	require.ErrorIs(t, err, biquad.ErrReleased)
	assert.Nil(t, out)
}

func TestApplyWithAllocator(t *testing.T) {
	alloc := biquad.NewLimitedAllocator(100)
	in := biquad.WrapSamples(testutil.Noise(80, 1), testRate)

	out, err := biquad.Apply(biquad.Passthrough(), in, biquad.WithAllocator(alloc))
	require.NoError(t, err)
	assert.Equal(t, 80, alloc.InUse())

	_, err = biquad.ApplyChunked(biquad.Passthrough(), in, 16, biquad.WithAllocator(alloc))
	require.ErrorIs(t, err, biquad.ErrAllocation)

	out.Release()
	assert.Equal(t, 0, alloc.InUse())
}

func TestSplitJoinChannels(t *testing.T) {
	samples := []biquad.Sample{{L: 0.5, R: -0.5}, {L: 0.25, R: 1}, {L: -1, R: 0}}

	left, right := biquad.SplitChannels(samples)
	assert.Equal(t, []float64{0.5, 0.25, -1}, left)
	assert.Equal(t, []float64{-0.5, 1, 0}, right)

	dst := make([]biquad.Sample, 3)
	n := biquad.JoinChannels(dst, left, right)
	assert.Equal(t, 3, n)
	assert.Equal(t, samples, dst)

	assert.Equal(t, 2, biquad.JoinChannels(dst, left[:2], right))
}
