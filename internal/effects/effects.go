// Package effects adapts the dynamics compressor and the feedback delay
// network reverb from algo-dsp to stereo sound buffers.
//
// Both effects run on planar float64 channels. Each channel owns its own
// processor state, so the left and right channels may be processed
// concurrently.
package effects

import (
	"errors"
	"sync"

	biquad "github.com/tphakala/go-audio-biquad"
)

// blockFrames bounds the planar scratch space used per run. It matches the
// block size the tail renderer feeds silence in.
const blockFrames = 48000

var (
	// ErrInvalidParams indicates an effect parameter outside its accepted range.
	ErrInvalidParams = errors.New("invalid effect parameters")

	// ErrUnknownPreset indicates a reverb preset name that is not defined.
	ErrUnknownPreset = errors.New("unknown reverb preset")
)

// Processor transforms a sound buffer into a new buffer. The input is never
// modified.
type Processor interface {
	Process(in *biquad.SoundBuffer) (*biquad.SoundBuffer, error)
}

// Option configures an effect.
type Option func(*options)

type options struct {
	alloc    biquad.Allocator
	parallel bool
}

// WithAllocator sets the allocator for output buffers.
func WithAllocator(a biquad.Allocator) Option {
	return func(o *options) { o.alloc = a }
}

// Parallel processes the two channels on separate goroutines.
func Parallel(enabled bool) Option {
	return func(o *options) { o.parallel = enabled }
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// channelFunc processes one planar block in place.
type channelFunc func(block []float64)

// stereoRunner drives one channelFunc per channel across a sound buffer.
type stereoRunner struct {
	left, right channelFunc
	opts        options
}

// run allocates an output of outLen frames and fills it block by block.
// Frames past the end of in are fed to the processors as silence.
func (s *stereoRunner) run(in *biquad.SoundBuffer, outLen int) (*biquad.SoundBuffer, error) {
	if in.Released() {
		return nil, biquad.ErrReleased
	}

	out, err := biquad.NewSoundBuffer(s.opts.alloc, outLen, in.Rate, false)
	if err != nil {
		return nil, err
	}

	size := min(outLen, blockFrames)
	left := make([]float64, size)
	right := make([]float64, size)

	for start := 0; start < outLen; start += blockFrames {
		n := min(blockFrames, outLen-start)
		l, r := left[:n], right[:n]
		fillPlanar(l, r, in.Samples, start)

		s.processBlock(l, r)
		biquad.JoinChannels(out.Samples[start:start+n], l, r)
	}

	return out, nil
}

func (s *stereoRunner) processBlock(l, r []float64) {
	if !s.opts.parallel {
		s.left(l)
		s.right(r)
		return
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.left(l)
	}()
	go func() {
		defer wg.Done()
		s.right(r)
	}()
	wg.Wait()
}

// fillPlanar copies samples[start:] into l and r, zero filling whatever
// lies past the end of samples.
func fillPlanar(l, r []float64, samples []biquad.Sample, start int) {
	avail := 0
	if start < len(samples) {
		avail = min(len(l), len(samples)-start)
		for i, v := range samples[start : start+avail] {
			l[i] = float64(v.L)
			r[i] = float64(v.R)
		}
	}
	clear(l[avail:])
	clear(r[avail:])
}
