package wavio

// RIFF/WAVE layout.
const (
	chunkIDSize     = 4
	chunkHeaderSize = 8  // id + little-endian size
	fmtMinSize      = 16 // PCM fmt chunk body
	riffOverhead    = 36 // header bytes counted in the RIFF size field before data

	formatPCM = 1
)

// Supported sample layout.
const (
	bitDepth16     = 16
	bytesPerSample = 2
	monoChannels   = 1
	stereoChannels = 2
	stereoBlock    = stereoChannels * bytesPerSample
)

// Quantization scales for signed 16-bit PCM. The range is asymmetric, so
// negative and non-negative values use different divisors to map exactly
// onto [-1, 1].
const (
	negativeScale = 32768
	positiveScale = 32767
)

// maxDataBytes is the largest data chunk whose RIFF size still fits in 32 bits.
const maxDataBytes = 1<<32 - 1 - riffOverhead

// readBlockFrames is the number of frames decoded per read.
const readBlockFrames = 4096
