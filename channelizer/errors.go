package channelizer

import "errors"

var (
	ErrInvalidArgument = errors.New("channelizer: invalid argument")
	ErrInvalidSize     = errors.New("channelizer: invalid channel count")
	ErrNotInitialised  = errors.New("channelizer: not initialised")
	ErrInitFailed      = errors.New("channelizer: global fft library initialisation failed")
)
