package biquad

import (
	"fmt"
	"time"
)

// Sample is one stereo frame. Channels are independent.
type Sample struct {
	L float32 // left channel
	R float32 // right channel
}

// Scale returns the sample multiplied by g on both channels.
func (s Sample) Scale(g float32) Sample {
	return Sample{L: s.L * g, R: s.R * g}
}

// SoundBuffer is a fixed-length sequence of stereo samples at a sample rate.
//
// A buffer has exactly one owner. Copies are never implicit: use Clone to
// duplicate, and Release to hand the storage back to the allocator it came
// from once the owner is done with it.
type SoundBuffer struct {
	// Samples holds the audio. Its length is fixed for the buffer's lifetime.
	Samples []Sample

	// Rate is the sample rate in samples per second.
	Rate int

	alloc    Allocator
	released bool
}

// NewSoundBuffer allocates a buffer of size samples at rate through alloc.
// A nil alloc uses DefaultAllocator. When clear is false the contents are
// whatever the allocator returned.
//
// Allocation failures are reported wrapped in ErrAllocation and no buffer is
// returned.
func NewSoundBuffer(alloc Allocator, size, rate int, clear bool) (*SoundBuffer, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: buffer size must be non-negative, got %d", ErrInvalidConfig, size)
	}
	if rate < minRate {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidConfig, rate)
	}

	alloc = allocatorOrDefault(alloc)
	samples, err := alloc.Alloc(size)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate %d samples: %w", size, err)
	}
	if len(samples) != size {
		alloc.Free(samples)
		return nil, fmt.Errorf("%w: allocator returned %d samples, want %d", ErrAllocation, len(samples), size)
	}

	if clear {
		zeroSamples(samples)
	}

	return &SoundBuffer{
		Samples: samples,
		Rate:    rate,
		alloc:   alloc,
	}, nil
}

// WrapSamples adopts samples as a buffer without going through an allocator.
// Release on the result only detaches the slice.
func WrapSamples(samples []Sample, rate int) *SoundBuffer {
	return &SoundBuffer{Samples: samples, Rate: rate}
}

// Len returns the number of samples. A released buffer has length 0.
func (b *SoundBuffer) Len() int {
	if b == nil || b.released {
		return 0
	}
	return len(b.Samples)
}

// Duration returns the playing time of the buffer.
func (b *SoundBuffer) Duration() time.Duration {
	if b == nil || b.Rate <= 0 {
		return 0
	}
	return time.Duration(b.Len()) * time.Second / time.Duration(b.Rate)
}

// Released reports whether Release has been called.
func (b *SoundBuffer) Released() bool {
	return b.released
}

// Release returns the sample storage to the allocator that produced it.
// Releasing twice is a no-op.
func (b *SoundBuffer) Release() {
	if b == nil || b.released {
		return
	}
	if b.alloc != nil {
		b.alloc.Free(b.Samples)
	}
	b.Samples = nil
	b.released = true
}

// Clone returns an independent copy of the buffer allocated through alloc.
func (b *SoundBuffer) Clone(alloc Allocator) (*SoundBuffer, error) {
	if b.released {
		return nil, ErrReleased
	}
	out, err := NewSoundBuffer(alloc, len(b.Samples), b.Rate, false)
	if err != nil {
		return nil, err
	}
	copy(out.Samples, b.Samples)
	return out, nil
}

// Slice returns a borrowed view of samples [start, end). The view shares
// storage with b and must not outlive it; releasing the view does not free
// anything.
func (b *SoundBuffer) Slice(start, end int) *SoundBuffer {
	return WrapSamples(b.Samples[start:end], b.Rate)
}

func zeroSamples(s []Sample) {
	clear(s)
}
