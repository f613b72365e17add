package biquad

import "errors"

// Common errors returned by the filter engine.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid filter configuration")

	// ErrAllocation indicates that a sample buffer could not be allocated.
	// No partially constructed buffer is ever returned alongside it.
	ErrAllocation = errors.New("sample buffer allocation failed")

	// ErrBufferTooSmall indicates the output buffer is too small.
	ErrBufferTooSmall = errors.New("output buffer too small")

	// ErrReleased indicates an operation on a buffer whose storage has
	// already been returned to its allocator.
	ErrReleased = errors.New("sound buffer already released")
)
