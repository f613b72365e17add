package effects

import (
	"fmt"
	"slices"

	"github.com/cwbudde/algo-dsp/dsp/effects/reverb"

	biquad "github.com/tphakala/go-audio-biquad"
)

// ReverbPreset describes one room for the feedback delay network.
// Times are in seconds.
type ReverbPreset struct {
	Wet      float64
	Dry      float64
	RT60     float64
	Damp     float64
	PreDelay float64
	ModDepth float64
	ModRate  float64
}

var reverbPresets = map[string]ReverbPreset{
	"default":     {Wet: 0.25, Dry: 1.0, RT60: 1.8, Damp: 0.3, PreDelay: 0.010, ModDepth: 0.002, ModRate: 0.10},
	"smallhall1":  {Wet: 0.30, Dry: 0.9, RT60: 1.3, Damp: 0.35, PreDelay: 0.012, ModDepth: 0.0015, ModRate: 0.15},
	"smallhall2":  {Wet: 0.35, Dry: 0.9, RT60: 1.5, Damp: 0.25, PreDelay: 0.015, ModDepth: 0.002, ModRate: 0.20},
	"mediumhall1": {Wet: 0.30, Dry: 0.9, RT60: 2.0, Damp: 0.35, PreDelay: 0.020, ModDepth: 0.002, ModRate: 0.12},
	"mediumhall2": {Wet: 0.35, Dry: 0.9, RT60: 2.3, Damp: 0.25, PreDelay: 0.022, ModDepth: 0.0025, ModRate: 0.18},
	"largehall1":  {Wet: 0.35, Dry: 0.85, RT60: 2.8, Damp: 0.4, PreDelay: 0.030, ModDepth: 0.0025, ModRate: 0.10},
	"largehall2":  {Wet: 0.40, Dry: 0.85, RT60: 3.2, Damp: 0.3, PreDelay: 0.035, ModDepth: 0.003, ModRate: 0.15},
	"smallroom1":  {Wet: 0.20, Dry: 1.0, RT60: 0.4, Damp: 0.5, PreDelay: 0.002, ModDepth: 0.0005, ModRate: 0.30},
	"smallroom2":  {Wet: 0.25, Dry: 1.0, RT60: 0.5, Damp: 0.4, PreDelay: 0.004, ModDepth: 0.0008, ModRate: 0.35},
	"mediumroom1": {Wet: 0.22, Dry: 1.0, RT60: 0.7, Damp: 0.45, PreDelay: 0.006, ModDepth: 0.001, ModRate: 0.25},
	"mediumroom2": {Wet: 0.28, Dry: 1.0, RT60: 0.9, Damp: 0.35, PreDelay: 0.008, ModDepth: 0.001, ModRate: 0.30},
	"largeroom1":  {Wet: 0.25, Dry: 0.95, RT60: 1.1, Damp: 0.4, PreDelay: 0.010, ModDepth: 0.0012, ModRate: 0.20},
	"largeroom2":  {Wet: 0.30, Dry: 0.95, RT60: 1.3, Damp: 0.3, PreDelay: 0.012, ModDepth: 0.0015, ModRate: 0.25},
	"mediumer1":   {Wet: 0.45, Dry: 0.8, RT60: 0.8, Damp: 0.2, PreDelay: 0.001, ModDepth: 0.0005, ModRate: 0.50},
	"mediumer2":   {Wet: 0.55, Dry: 0.75, RT60: 1.0, Damp: 0.15, PreDelay: 0.001, ModDepth: 0.0007, ModRate: 0.60},
	"platehigh":   {Wet: 0.35, Dry: 0.9, RT60: 1.6, Damp: 0.05, PreDelay: 0, ModDepth: 0.0003, ModRate: 0.80},
	"platelow":    {Wet: 0.35, Dry: 0.9, RT60: 2.0, Damp: 0.6, PreDelay: 0, ModDepth: 0.0003, ModRate: 0.60},
	"longreverb1": {Wet: 0.45, Dry: 0.8, RT60: 6.0, Damp: 0.35, PreDelay: 0.040, ModDepth: 0.003, ModRate: 0.08},
	"longreverb2": {Wet: 0.50, Dry: 0.75, RT60: 9.0, Damp: 0.25, PreDelay: 0.060, ModDepth: 0.004, ModRate: 0.05},
}

// ReverbPresets returns the preset names in sorted order.
func ReverbPresets() []string {
	names := make([]string, 0, len(reverbPresets))
	for name := range reverbPresets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LookupReverbPreset returns the preset with the given name.
func LookupReverbPreset(name string) (ReverbPreset, error) {
	p, ok := reverbPresets[name]
	if !ok {
		return ReverbPreset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return p, nil
}

// Reverb is a stereo feedback delay network reverb that appends a decay
// tail to its input.
type Reverb struct {
	preset     ReverbPreset
	tailFrames int
	left       *reverb.FDNReverb
	right      *reverb.FDNReverb
	runner     stereoRunner
}

// NewReverb builds a reverb for audio at rate using the named preset. Each
// call to Process appends tail seconds of decay after the input.
func NewReverb(rate int, preset string, tail float64, opts ...Option) (*Reverb, error) {
	p, err := LookupReverbPreset(preset)
	if err != nil {
		return nil, err
	}
	return NewReverbWithPreset(rate, p, tail, opts...)
}

// NewReverbWithPreset builds a reverb from explicit room parameters.
func NewReverbWithPreset(rate int, p ReverbPreset, tail float64, opts ...Option) (*Reverb, error) {
	if rate < 1 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidParams, rate)
	}

	// Negative or NaN tails render nothing, like a truncating conversion to a count.
	tailFrames := 0
	if tail > 0 {
		tailFrames = int(tail * float64(rate))
	}

	left, err := newChannelReverb(rate, p)
	if err != nil {
		return nil, err
	}
	right, err := newChannelReverb(rate, p)
	if err != nil {
		return nil, err
	}

	return &Reverb{
		preset:     p,
		tailFrames: tailFrames,
		left:       left,
		right:      right,
		runner: stereoRunner{
			left:  left.ProcessInPlace,
			right: right.ProcessInPlace,
			opts:  applyOptions(opts),
		},
	}, nil
}

func newChannelReverb(rate int, p ReverbPreset) (*reverb.FDNReverb, error) {
	r, err := reverb.NewFDNReverb(float64(rate))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	setters := []struct {
		name string
		set  func() error
	}{
		{"wet", func() error { return r.SetWet(p.Wet) }},
		{"dry", func() error { return r.SetDry(p.Dry) }},
		{"rt60", func() error { return r.SetRT60(p.RT60) }},
		{"damp", func() error { return r.SetDamp(p.Damp) }},
		{"pre-delay", func() error { return r.SetPreDelay(p.PreDelay) }},
		{"mod depth", func() error { return r.SetModDepth(p.ModDepth) }},
		{"mod rate", func() error { return r.SetModRate(p.ModRate) }},
	}
	for _, s := range setters {
		if err := s.set(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidParams, s.name, err)
		}
	}
	return r, nil
}

// Preset returns the room parameters in use.
func (r *Reverb) Preset() ReverbPreset { return r.preset }

// TailFrames returns the number of frames appended by each Process call.
func (r *Reverb) TailFrames() int { return r.tailFrames }

// Process returns in followed by the decay tail, in.Len()+TailFrames()
// frames in total.
func (r *Reverb) Process(in *biquad.SoundBuffer) (*biquad.SoundBuffer, error) {
	return r.runner.run(in, in.Len()+r.tailFrames)
}

// Reset clears the delay lines.
func (r *Reverb) Reset() {
	r.left.Reset()
	r.right.Reset()
}
