package wavio

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode is the parent of every container decode failure.
	ErrDecode = errors.New("wav decode failed")

	// ErrUnsupportedFormat indicates a well-formed file with a sample format
	// other than 16-bit PCM mono or stereo.
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported sample format", ErrDecode)

	// ErrMalformed indicates a broken or incomplete RIFF/WAVE structure.
	ErrMalformed = fmt.Errorf("%w: malformed container", ErrDecode)

	// ErrTooLarge indicates a buffer whose data would overflow the 32-bit
	// RIFF size fields.
	ErrTooLarge = errors.New("sound buffer too large for wav container")
)
