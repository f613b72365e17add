package effects

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/effects/dynamics"

	biquad "github.com/tphakala/go-audio-biquad"
	"github.com/tphakala/go-audio-biquad/internal/simdops"
)

const (
	msPerSecond = 1000

	// maxKneeDB is the widest soft knee the dynamics compressor accepts.
	// Wider knees (up to 40 dB on the command line) are narrowed to it.
	maxKneeDB = 24
)

// CompressorParams holds the command line parameters of the compressor.
// Gains are in dB, times in seconds.
type CompressorParams struct {
	Pregain   float64
	Threshold float64
	Knee      float64
	Ratio     float64
	Attack    float64
	Release   float64
}

// Compressor is a stereo soft-knee dynamics compressor with auto makeup
// gain. State carries over between calls to Process.
type Compressor struct {
	params  CompressorParams
	pregain float64
	left    *dynamics.Compressor
	right   *dynamics.Compressor
	runner  stereoRunner
}

// NewCompressor builds a compressor for audio at rate.
func NewCompressor(rate int, params CompressorParams, opts ...Option) (*Compressor, error) {
	if rate < 1 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidParams, rate)
	}

	left, err := newChannelCompressor(rate, params)
	if err != nil {
		return nil, err
	}
	right, err := newChannelCompressor(rate, params)
	if err != nil {
		return nil, err
	}

	c := &Compressor{
		params:  params,
		pregain: core.DBToLinear(params.Pregain),
		left:    left,
		right:   right,
	}
	c.runner = stereoRunner{
		left:  c.channel(left),
		right: c.channel(right),
		opts:  applyOptions(opts),
	}
	return c, nil
}

func newChannelCompressor(rate int, p CompressorParams) (*dynamics.Compressor, error) {
	c, err := dynamics.NewCompressor(float64(rate))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	setters := []struct {
		name string
		set  func() error
	}{
		{"threshold", func() error { return c.SetThreshold(p.Threshold) }},
		{"knee", func() error { return c.SetKnee(min(p.Knee, maxKneeDB)) }},
		{"ratio", func() error { return c.SetRatio(p.Ratio) }},
		{"attack", func() error { return c.SetAttack(p.Attack * msPerSecond) }},
		{"release", func() error { return c.SetRelease(p.Release * msPerSecond) }},
	}
	for _, s := range setters {
		if err := s.set(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidParams, s.name, err)
		}
	}
	return c, nil
}

func (c *Compressor) channel(dc *dynamics.Compressor) channelFunc {
	return func(block []float64) {
		simdops.Gain(block, c.pregain)
		dc.ProcessInPlace(block)
	}
}

// Params returns the parameters the compressor was built with.
func (c *Compressor) Params() CompressorParams { return c.params }

// Process compresses in into a new buffer of the same length.
func (c *Compressor) Process(in *biquad.SoundBuffer) (*biquad.SoundBuffer, error) {
	return c.runner.run(in, in.Len())
}

// Reset clears the envelope followers.
func (c *Compressor) Reset() {
	c.left.Reset()
	c.right.Reset()
}
