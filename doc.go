// Package biquad provides second-order IIR (biquad) audio filters in pure Go.
//
// Coefficient formulas follow the WebAudio BiquadFilterNode definitions
// (themselves derived from Robert Bristow-Johnson's Audio EQ Cookbook) and are
// computed in float32, so results agree with C cookbook implementations to
// within float32 rounding of the trigonometric terms.
//
// # Features
//
//   - Eight filter families: lowpass, highpass, bandpass, notch, peaking,
//     allpass, lowshelf and highshelf
//   - Streaming API with history carried across chunk boundaries
//   - One-shot helpers for whole-buffer processing
//   - Explicit allocator parameter for output buffers
//   - Stereo float32 samples, channels filtered independently
//
// # Quick Start
//
// For simple one-shot filtering:
//
//	out, err := biquad.Apply(biquad.Lowpass(48000, 1000, 0), in)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer out.Release()
//
// For streaming with a reusable filter state:
//
//	f := biquad.NewLowpass(48000, 1000, 0)
//	for chunk := range audioChunks {
//	    out, err := f.Process(chunk)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    writeOutput(out)
//	}
//
// The choice of chunk size is arbitrary from the filter's point of view:
// any partition of a stream into contiguous chunks, fed in order to one
// FilterState, produces the same output as processing the stream in one call.
// The cold-start transient of a fresh state is part of that output.
//
// # Degenerate Parameters
//
// Frequencies outside (0, Nyquist) and non-positive Q values are not errors.
// Each family defines a fallback instead: passthrough (output equals input),
// mute (output is silence), a flat gain, or inversion for allpass. These
// branches keep the recurrence free of NaN and Inf; see each synthesis
// function for its policy.
//
// The shelving filters do not clamp Q. Inputs with Q < 0 or Q > 1 produce
// whatever the shelf slope formula yields, and are left unspecified.
//
// # Memory
//
// Buffers are allocated through an Allocator passed explicitly via
// WithAllocator or NewSoundBuffer; nil selects DefaultAllocator. The engine
// allocates only the output buffer it is asked to fill and never keeps a
// reference to caller buffers after a call returns. Allocation failures are
// reported as ErrAllocation and leave the filter history untouched.
//
// # Thread Safety
//
// A FilterState represents one ordered stream and must not be used from
// multiple goroutines at once. Distinct states share no mutable data and may
// be processed in parallel.
package biquad
