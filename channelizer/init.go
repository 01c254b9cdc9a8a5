package channelizer

import (
	"fmt"
	"sync/atomic"
)

// Process-wide FFT engine initialisation handshake. The C original
// guards hlfft_init() the same way: exactly one caller performs the
// work, concurrent callers spin-wait behind it until it reaches a
// terminal state. Go's fft package needs no process-wide state today —
// NewPlan is self-contained — but New still goes through this gate so
// a future shared resource (a twiddle cache, a vectorised kernel
// probe) can be added here without touching every call site.
const (
	initNotStarted int32 = iota
	initInProgress
	initDone
	initFailed
)

var libInitState atomic.Int32

// ensureLibraryInit runs the one-time initialisation exactly once
// across however many Channelizer instances are constructed
// concurrently, returning ErrInitFailed to every caller if the winning
// goroutine's init fails.
func ensureLibraryInit() error {
	if libInitState.CompareAndSwap(initNotStarted, initInProgress) {
		if err := initFFTEngine(); err != nil {
			libInitState.Store(initFailed)
			return fmt.Errorf("%w: %w", ErrInitFailed, err)
		}
		libInitState.Store(initDone)
		return nil
	}

	for {
		switch libInitState.Load() {
		case initDone:
			return nil
		case initFailed:
			return ErrInitFailed
		default:
			// initInProgress: another goroutine is running init.
		}
	}
}

// initFFTEngine performs the actual one-time setup. It cannot fail in
// the current implementation (the fft package is stateless), but keeps
// the error return so the handshake above has a real failure path to
// propagate, matching hlfft_init()'s fallible contract.
func initFFTEngine() error {
	return nil
}
