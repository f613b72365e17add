package biquad

// Frequency normalization
const (
	nyquistFactor = 0.5 // Nyquist = rate * nyquistFactor
	angularFactor = 2.0 // w0 = angularFactor * pi * f
)

// Decibel conversion factors
const (
	// resonanceDBFactor converts resonance in dB to a linear Q (10^(dB/20)).
	resonanceDBFactor = 0.05

	// shelfGainDBFactor converts gain in dB to the square root of the linear
	// gain (10^(dB/40)).
	shelfGainDBFactor = 0.025

	decibelBase = 10.0
)

// Degenerate coefficient scales
const (
	unityScale  = 1.0
	muteScale   = 0.0
	invertScale = -1.0
)

// Shelving slope constants
const (
	shelfAlphaFactor = 0.5 // alpha = 0.5 * sin(w0) * sqrt(...)
	shelfSlopeOffset = 2.0 // (A + 1/A)(1/Q - 1) + 2
)

// Buffer limits
const (
	// DefaultChunkSize is a reasonable streaming chunk length in samples.
	DefaultChunkSize = 4096

	// minRate is the smallest accepted sample rate in Hz.
	minRate = 1
)
