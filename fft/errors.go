package fft

import "errors"

// Sentinel errors returned by plan construction and execution. Callers
// should use errors.Is against these rather than comparing error values
// directly, since wrapped context (the offending size, for example) is
// added with fmt.Errorf("%w", ...).
var (
	// ErrInvalidSize is returned when N is not a supported power of two.
	ErrInvalidSize = errors.New("fft: invalid transform size")
	// ErrInvalidArgument is returned for nil buffers or mismatched lengths.
	ErrInvalidArgument = errors.New("fft: invalid argument")
	// ErrOutOfMemory is returned when a plan's buffers cannot be allocated.
	ErrOutOfMemory = errors.New("fft: out of memory")
)
