package main

const (
	// Positional arguments: input, output, filter.
	minRequiredArgs = 3
	inputArg        = 0
	outputArg       = 1
	filterArg       = 2
	firstParamArg   = 3

	// Effect parameter counts.
	compressorParams = 6
	reverbParams     = 2

	// float32 precision for filter parameters.
	paramBitSize = 32

	// Reporting.
	progressInterval = 10 // Print progress every N%
	percentScale     = 100

	// CLI defaults.
	defaultChunkSize = 0 // one-shot
	defaultMaxSample = 0 // unlimited
)
