package resampler

import "errors"

var (
	ErrInvalidRate     = errors.New("resampler: invalid sample rate")
	ErrInvalidArgument = errors.New("resampler: invalid argument")
	ErrOverflowGuard   = errors.New("resampler: configuration would overflow internal buffers")
)
