package biquad

import "fmt"

// Common sample rates.
const (
	// RateCD is the CD quality sample rate (Red Book standard).
	RateCD = 44100

	// RateDAT is the DAT/DVD sample rate.
	RateDAT = 48000

	// RateHiRes96 is the high-resolution 2x DAT sample rate.
	RateHiRes96 = 96000

	// RateTelephony is the telephony (PSTN narrowband) sample rate.
	RateTelephony = 8000

	// RateVoIP is the VoIP wideband sample rate.
	RateVoIP = 16000
)

// Apply is a convenience function for one-shot filtering.
// It creates a fresh filter state, processes the whole buffer once and
// discards the state. It is equivalent to a single streaming chunk spanning
// the entire buffer.
func Apply(c Coefficients, in *SoundBuffer, opts ...Option) (*SoundBuffer, error) {
	return NewFilterState(c, opts...).Process(in)
}

// ApplyConfig is like Apply but synthesizes the coefficients from config.
func ApplyConfig(config *Config, in *SoundBuffer, opts ...Option) (*SoundBuffer, error) {
	f, err := New(config, opts...)
	if err != nil {
		return nil, err
	}
	return f.Process(in)
}

// ApplyChunked filters in through a fresh state in chunks of chunkSize
// samples, writing into a single output buffer. The result is identical to
// Apply; it exists for callers that want bounded working sets.
func ApplyChunked(c Coefficients, in *SoundBuffer, chunkSize int, opts ...Option) (*SoundBuffer, error) {
	if chunkSize < 1 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, chunkSize)
	}
	if in.Released() {
		return nil, ErrReleased
	}

	o := applyOptions(opts)
	out, err := NewSoundBuffer(o.alloc, in.Len(), in.Rate, false)
	if err != nil {
		return nil, err
	}

	f := NewFilterState(c, opts...)
	for start := 0; start < len(in.Samples); start += chunkSize {
		end := min(start+chunkSize, len(in.Samples))
		// dst is sized to match, so this cannot fail.
		_ = f.ProcessInto(out.Samples[start:end], in.Samples[start:end])
	}

	return out, nil
}

// SplitChannels converts stereo samples to two planar float64 channels.
func SplitChannels(samples []Sample) (left, right []float64) {
	left = make([]float64, len(samples))
	right = make([]float64, len(samples))
	for i, s := range samples {
		left[i] = float64(s.L)
		right[i] = float64(s.R)
	}
	return left, right
}

// JoinChannels writes two planar channels back into stereo samples.
// Only min(len(dst), len(left), len(right)) samples are written.
func JoinChannels(dst []Sample, left, right []float64) int {
	n := min(len(dst), len(left), len(right))
	for i := range n {
		dst[i] = Sample{L: float32(left[i]), R: float32(right[i])}
	}
	return n
}
