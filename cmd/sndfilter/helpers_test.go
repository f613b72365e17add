package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	biquad "github.com/tphakala/go-audio-biquad"
	"github.com/tphakala/go-audio-biquad/internal/testutil"
)

func TestNewAllocator(t *testing.T) {
	assert.IsType(t, &biquad.LimitedAllocator{}, newAllocator(10, true))
	assert.IsType(t, &biquad.LimitedAllocator{}, newAllocator(10, false))
	assert.IsType(t, &biquad.PooledAllocator{}, newAllocator(0, true))
	assert.Equal(t, biquad.DefaultAllocator, newAllocator(0, false))
}

func TestIsWAV(t *testing.T) {
	assert.True(t, isWAV("a/b/c.wav"))
	assert.True(t, isWAV("LOUD.WAV"))
	assert.True(t, isWAV("x.wave"))
	assert.False(t, isWAV("x.mp3"))
	assert.False(t, isWAV("wav"))
}

func TestProcessChunks(t *testing.T) {
	in := biquad.WrapSamples(testutil.Noise(1001, 0.5), biquad.RateCD)
	c := biquad.Peaking(biquad.RateCD, 2500, 2, 9)

	want, err := biquad.Apply(c, in)
	require.NoError(t, err)

	for _, chunk := range []int{1, 10, 1000, 5000} {
		got, err := processChunks(biquad.NewFilterState(c), in, chunk, nil)
		require.NoError(t, err)
		testutil.AssertSamplesEqual(t, want.Samples, got.Samples, "chunk %d", chunk)
	}
}

func TestProcessChunksAllocationFailure(t *testing.T) {
	in := biquad.WrapSamples(testutil.Noise(100, 0.5), biquad.RateCD)
	alloc := biquad.NewLimitedAllocator(150)

	// The output fits but the first chunk result does not.
	_, err := processChunks(biquad.NewFilterState(biquad.Passthrough(), biquad.WithAllocator(alloc)), in, 60, alloc)
	require.ErrorIs(t, err, biquad.ErrAllocation)
	assert.Zero(t, alloc.InUse(), "output must be released on failure")
}

func TestProgressTracker(t *testing.T) {
	p := newProgressTracker(1000, true)
	assert.False(t, p.reportIfNeeded(50))
	assert.True(t, p.reportIfNeeded(100))
	assert.False(t, p.reportIfNeeded(150))
	assert.True(t, p.reportIfNeeded(350))
	assert.Equal(t, 35, p.lastProgress)

	quiet := newProgressTracker(1000, false)
	assert.False(t, quiet.reportIfNeeded(1000))

	unknown := newProgressTracker(0, true)
	assert.False(t, unknown.reportIfNeeded(1000))
}
