package biquad

import "fmt"

// History holds the samples carried across chunk boundaries.
type History struct {
	Xn1, Xn2 Sample // last two raw inputs
	Yn1, Yn2 Sample // last two filtered outputs
}

// FilterState is a biquad filter bound to one continuous stream.
//
// The recurrence history persists across calls to Process, so feeding the
// chunks of a stream in order produces exactly the same output as feeding the
// whole stream at once. A FilterState is not safe for concurrent use; distinct
// states share nothing and may run in parallel.
type FilterState struct {
	coeffs  Coefficients
	history History
	alloc   Allocator
}

// Option configures a FilterState or a one-shot helper.
type Option func(*options)

type options struct {
	alloc Allocator
}

// WithAllocator sets the allocator used for output buffers.
// The default is DefaultAllocator.
func WithAllocator(a Allocator) Option {
	return func(o *options) { o.alloc = a }
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	o.alloc = allocatorOrDefault(o.alloc)
	return o
}

// NewFilterState returns a state with the given coefficients and zero history.
func NewFilterState(c Coefficients, opts ...Option) *FilterState {
	o := applyOptions(opts)
	return &FilterState{
		coeffs: c,
		alloc:  o.alloc,
	}
}

// NewLowpass returns a fresh lowpass filter state. See Lowpass.
func NewLowpass(rate int, cutoff, resonance float32, opts ...Option) *FilterState {
	return NewFilterState(Lowpass(rate, cutoff, resonance), opts...)
}

// NewHighpass returns a fresh highpass filter state. See Highpass.
func NewHighpass(rate int, cutoff, resonance float32, opts ...Option) *FilterState {
	return NewFilterState(Highpass(rate, cutoff, resonance), opts...)
}

// NewBandpass returns a fresh bandpass filter state. See Bandpass.
func NewBandpass(rate int, freq, q float32, opts ...Option) *FilterState {
	return NewFilterState(Bandpass(rate, freq, q), opts...)
}

// NewNotch returns a fresh notch filter state. See Notch.
func NewNotch(rate int, freq, q float32, opts ...Option) *FilterState {
	return NewFilterState(Notch(rate, freq, q), opts...)
}

// NewPeaking returns a fresh peaking filter state. See Peaking.
func NewPeaking(rate int, freq, q, gain float32, opts ...Option) *FilterState {
	return NewFilterState(Peaking(rate, freq, q, gain), opts...)
}

// NewAllpass returns a fresh allpass filter state. See Allpass.
func NewAllpass(rate int, freq, q float32, opts ...Option) *FilterState {
	return NewFilterState(Allpass(rate, freq, q), opts...)
}

// NewLowshelf returns a fresh lowshelf filter state. See Lowshelf.
func NewLowshelf(rate int, freq, q, gain float32, opts ...Option) *FilterState {
	return NewFilterState(Lowshelf(rate, freq, q, gain), opts...)
}

// NewHighshelf returns a fresh highshelf filter state. See Highshelf.
func NewHighshelf(rate int, freq, q, gain float32, opts ...Option) *FilterState {
	return NewFilterState(Highshelf(rate, freq, q, gain), opts...)
}

// Coefficients returns the coefficients the state was built with.
func (f *FilterState) Coefficients() Coefficients {
	return f.coeffs
}

// History returns a snapshot of the carried-over samples.
func (f *FilterState) History() History {
	return f.history
}

// Reset clears the history so the state can start a new, unrelated stream.
// Coefficients are kept.
func (f *FilterState) Reset() {
	f.history = History{}
}

// Process filters one chunk of the stream into a newly allocated buffer of
// the same length and rate.
//
// The output is allocated before any history is touched, so an allocation
// failure leaves the state exactly as it was.
func (f *FilterState) Process(in *SoundBuffer) (*SoundBuffer, error) {
	if in.Released() {
		return nil, ErrReleased
	}

	out, err := NewSoundBuffer(f.alloc, len(in.Samples), in.Rate, false)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate filter output: %w", err)
	}

	f.run(out.Samples, in.Samples)
	return out, nil
}

// ProcessInto filters src into dst without allocating. dst must hold at least
// len(src) samples; only the first len(src) are written. dst and src may be
// the same slice, starting at the same element. Any other overlap, such as
// dst = src[1:], overwrites input before it is read.
func (f *FilterState) ProcessInto(dst, src []Sample) error {
	if len(dst) < len(src) {
		return fmt.Errorf("%w: need %d samples, have %d", ErrBufferTooSmall, len(src), len(dst))
	}

	f.run(dst, src)
	return nil
}

// run applies the recurrence sample by sample. History is pulled into locals
// and written back once after the loop.
func (f *FilterState) run(dst, src []Sample) {
	b0, b1, b2 := f.coeffs.B0, f.coeffs.B1, f.coeffs.B2
	a1, a2 := f.coeffs.A1, f.coeffs.A2
	xn1, xn2 := f.history.Xn1, f.history.Xn2
	yn1, yn2 := f.history.Yn1, f.history.Yn2

	for n, xn0 := range src {
		y := Sample{
			L: b0*xn0.L + b1*xn1.L + b2*xn2.L - a1*yn1.L - a2*yn2.L,
			R: b0*xn0.R + b1*xn1.R + b2*xn2.R - a1*yn1.R - a2*yn2.R,
		}
		dst[n] = y

		xn2 = xn1
		xn1 = xn0
		yn2 = yn1
		yn1 = y
	}

	f.history = History{Xn1: xn1, Xn2: xn2, Yn1: yn1, Yn2: yn2}
}
