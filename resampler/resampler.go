// Package resampler implements the rational L/M polyphase resampler:
// integer sample-rate conversion on interleaved complex float32 IQ,
// used by the core orchestrator to match a channelizer output rate to
// a downstream decoder's expected rate.
package resampler

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/hydrasdr/hydrasdr-433/align"
	"github.com/hydrasdr/hydrasdr-433/internal/kaiser"
)

// TapsPerBranch is the fixed number of taps per polyphase branch of the
// prototype filter (T in the data model).
const TapsPerBranch = 32

// stopbandDB is the fixed Kaiser stopband attenuation used for the
// resampler's prototype filter.
const stopbandDB = 60.0

// Config describes a rational resampler instance.
type Config struct {
	InputRate  uint32
	OutputRate uint32
	// MaxInput bounds the largest input block ever passed to Process,
	// used to size the owned output buffer.
	MaxInput int
}

// Validate checks Config against the §7 InvalidRate/InvalidArgument
// categories before any allocation happens. The OverflowGuard checks
// depend on the reduced L/M factors and are made in New.
func (c Config) Validate() error {
	if c.InputRate == 0 || c.OutputRate == 0 {
		return fmt.Errorf("%w: rates must be non-zero", ErrInvalidRate)
	}
	if c.InputRate > math.MaxInt32 || c.OutputRate > math.MaxInt32 {
		return fmt.Errorf("%w: rate exceeds signed 32-bit domain", ErrInvalidRate)
	}
	if c.MaxInput < 0 {
		return fmt.Errorf("%w: negative max input", ErrInvalidArgument)
	}
	return nil
}

// Resampler converts an interleaved complex float32 IQ stream from
// Config.InputRate to Config.OutputRate using a Kaiser-windowed
// polyphase FIR. Resampler is not safe for concurrent use: its history
// buffer and phase accumulator are mutable scratch owned by exactly one
// caller, per the core orchestrator's single-owner-thread rule.
type Resampler struct {
	up, down      int
	tapsPerBranch int

	// branches[m][k] holds the k-th tap of polyphase branch m.
	branches [][]float32

	histI, histQ []float32
	histMask     int
	writePos     int

	phase int

	output []float32 // owned, reused across Process calls, AoS

	passthrough bool

	logger *slog.Logger
}

// New builds a Resampler for the given configuration. logger receives
// construction-time filter design parameters and a per-call note when
// the output buffer saturates before all input is consumed; a nil
// logger defaults to slog.Default().
func New(cfg Config, logger *slog.Logger) (*Resampler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.InputRate == cfg.OutputRate {
		logger.Debug("resampler: passthrough", "rate", cfg.InputRate)
		return &Resampler{passthrough: true, logger: logger}, nil
	}

	g := gcd(int(cfg.OutputRate), int(cfg.InputRate))
	up := int(cfg.OutputRate) / g
	down := int(cfg.InputRate) / g

	if up > math.MaxInt32/TapsPerBranch {
		return nil, fmt.Errorf("%w: up_factor=%d taps_per_branch=%d would overflow", ErrOverflowGuard, up, TapsPerBranch)
	}
	numTaps := TapsPerBranch * up

	outputBufSize := (cfg.MaxInput*up)/down + up + 1
	if outputBufSize > math.MaxInt32/2 {
		return nil, fmt.Errorf("%w: output buffer of %d samples too large", ErrOverflowGuard, outputBufSize)
	}

	maxFactor := up
	if down > maxFactor {
		maxFactor = down
	}

	// internal/kaiser's cutoff is in cycles/sample (0 < fc < 0.5); the
	// Nyquist-relative cutoff this filter wants is 1/maxFactor, i.e.
	// fc = 1/(2*maxFactor).
	proto := make([]float64, numTaps)
	kaiser.DesignLowpass(proto, 1.0/(2.0*float64(maxFactor)), stopbandDB)

	// Scale for unity gain through the interpolator: DC gain must equal
	// up (compensates the zero-stuffing attenuation of interpolation).
	for i := range proto {
		proto[i] *= float64(up)
	}

	branches := make([][]float32, up)
	for m := 0; m < up; m++ {
		branch := align.Buffer(TapsPerBranch)
		for k := 0; k < TapsPerBranch; k++ {
			idx := m + k*up
			if idx < numTaps {
				branch[k] = float32(proto[idx])
			}
		}
		branches[m] = branch
	}

	histSize := 64
	for histSize < TapsPerBranch*2 {
		histSize *= 2
	}

	logger.Debug("resampler: filter designed",
		"up", up, "down", down, "taps_per_branch", TapsPerBranch,
		"max_factor", maxFactor, "stopband_db", stopbandDB)

	return &Resampler{
		up:            up,
		down:          down,
		tapsPerBranch: TapsPerBranch,
		branches:      branches,
		histI:         align.Buffer(histSize),
		histQ:         align.Buffer(histSize),
		histMask:      histSize - 1,
		output:        make([]float32, 2*outputBufSize),
		logger:        logger,
	}, nil
}

// Passthrough reports whether this resampler is a no-op (input and
// output rates are equal); Process still works, copying input to
// output, but the core orchestrator may choose to bypass the call
// entirely in that case.
func (r *Resampler) Passthrough() bool { return r.passthrough }

// Process converts n complex samples of interleaved input (length
// 2n) and returns a slice view over the resampler's own output buffer
// together with the number of complex samples produced. The returned
// slice is only valid until the next call to Process — callers that
// need to retain it must copy.
func (r *Resampler) Process(input []float32) ([]float32, int, error) {
	if len(input)%2 != 0 {
		return nil, 0, fmt.Errorf("%w: odd-length interleaved input", ErrInvalidArgument)
	}

	if r.passthrough {
		if len(input) > len(r.output) {
			r.output = make([]float32, len(input))
		}
		n := copy(r.output, input)
		return r.output[:n], n / 2, nil
	}

	numSamples := len(input) / 2
	up, down := r.up, r.down
	phase := r.phase
	outIdx := 0
	maxOutput := len(r.output) / 2

	n := 0
	for ; n < numSamples && outIdx < maxOutput; n++ {
		r.histI[r.writePos&r.histMask] = input[n*2+0]
		r.histQ[r.writePos&r.histMask] = input[n*2+1]
		r.writePos++

		baseReadPos := (r.writePos - 1) & r.histMask
		for phase < up && outIdx < maxOutput {
			accI, accQ := dotProdCircular(r.histI, r.histQ, baseReadPos, r.histMask, r.branches[phase])
			r.output[outIdx*2+0] = accI
			r.output[outIdx*2+1] = accQ
			outIdx++
			phase += down
		}
		phase -= up
	}

	if dropped := numSamples - n; dropped > 0 {
		r.logger.Debug("resampler: output buffer saturated, dropped trailing input samples",
			"dropped", dropped, "input_samples", numSamples)
	}

	r.phase = phase
	return r.output[:outIdx*2], outIdx, nil
}

// Reset clears the resampler's history and phase accumulator, as if
// newly constructed, without re-designing the filter.
func (r *Resampler) Reset() {
	for i := range r.histI {
		r.histI[i] = 0
		r.histQ[i] = 0
	}
	r.writePos = 0
	r.phase = 0
}

// dotProdCircular walks branch[0..len) backwards from basePos through
// the circular history, avoiding a modulo per tap the way
// dotprod_interleaved in the original splits a wrapping access into
// non-wrapping runs: here the same effect is achieved by masking the
// position once per tap, a single AND per iteration since mask is a
// power of two minus one.
func dotProdCircular(histI, histQ []float32, basePos, mask int, branch []float32) (float32, float32) {
	var accI, accQ float32
	pos := basePos
	for k := 0; k < len(branch); k++ {
		accI += histI[pos] * branch[k]
		accQ += histQ[pos] * branch[k]
		pos = (pos - 1) & mask
	}
	return accI, accQ
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
