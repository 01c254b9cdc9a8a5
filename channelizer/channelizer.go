// Package channelizer implements a 2x oversampled polyphase filter
// bank (OS-PFB) analysis channelizer: it splits a wideband complex
// IQ stream into M equal-width frequency channels, each decimated by
// D = M/2.
//
// Algorithm based on liquid-dsp's firpfbch (Joseph Gaeddert, MIT
// licensed): samples are pushed into M polyphase filter branches via a
// reverse commutator, each branch's circular window is dot-producted
// against its filter coefficients, and an M-point FFT separates the
// results into frequency channels.
package channelizer

import (
	"fmt"
	"log/slog"

	"github.com/hydrasdr/hydrasdr-433/align"
	"github.com/hydrasdr/hydrasdr-433/fft"
)

// MaxChannels is the largest channel count New accepts.
const MaxChannels = 16

// Config describes a channelizer instance.
type Config struct {
	NumChannels int     // M, power of two in [2, MaxChannels]
	CenterFreq  float64 // Hz
	Bandwidth   float64 // Hz
	InputRate   uint32  // Hz
	MaxInput    int     // largest complex-sample block ever passed to Process
}

func (c Config) Validate() error {
	if c.NumChannels < 2 || c.NumChannels > MaxChannels {
		return fmt.Errorf("%w: num_channels=%d", ErrInvalidSize, c.NumChannels)
	}
	if c.NumChannels&(c.NumChannels-1) != 0 {
		return fmt.Errorf("%w: num_channels=%d not a power of two", ErrInvalidSize, c.NumChannels)
	}
	if c.InputRate == 0 {
		return fmt.Errorf("%w: input_rate must be non-zero", ErrInvalidArgument)
	}
	if c.MaxInput < 0 {
		return fmt.Errorf("%w: negative max input", ErrInvalidArgument)
	}
	return nil
}

// Channelizer is an initialised OS-PFB analysis filter bank. It is not
// safe for concurrent Process calls: all mutable state (window
// buffers, commutator index, output storage) belongs to a single
// caller. It holds no mutex and has no listener hook.
type Channelizer struct {
	numChannels      int
	tapsPerBranch    int
	decimationFactor int
	channelSpacing   float64
	channelRate      uint32
	channelFreqs     []float64

	branches [][]float32 // [M][tapsPerBranch], reversed

	windowRe, windowIm [][]float32 // [M][windowAlloc]
	windowWritePos     []int
	windowLen          int
	windowAlloc        int
	windowMask         int
	channelMask        int
	filterIndex        int

	fftPlan            *fft.Plan
	fftInRe, fftInIm   []float32
	fftOutRe, fftOutIm []float32

	channelOutputs []float32 // M * outputBufSize * 2, AoS per channel
	outputBufSize  int

	initialized bool

	logger *slog.Logger
}

// New builds and initialises a Channelizer for the given configuration.
// logger receives construction-time diagnostics (filter design
// parameters) and a per-call note when trailing input samples are
// dropped; a nil logger defaults to slog.Default().
func New(cfg Config, logger *slog.Logger) (*Channelizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := ensureLibraryInit(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := cfg.NumChannels
	tapsPerBranch := 2 * filterSemiLen

	plan, err := fft.NewPlan(m, logger)
	if err != nil {
		return nil, fmt.Errorf("channelizer: building fft plan: %w", err)
	}

	windowAlloc := 1
	for windowAlloc < tapsPerBranch {
		windowAlloc <<= 1
	}

	windowRe := make([][]float32, m)
	windowIm := make([][]float32, m)
	for i := 0; i < m; i++ {
		windowRe[i] = align.Buffer(windowAlloc)
		windowIm[i] = align.Buffer(windowAlloc)
	}

	outputBufSize := cfg.MaxInput/(m/2) + 1
	if outputBufSize < 2 {
		outputBufSize = 2
	}

	ch := &Channelizer{
		numChannels:      m,
		tapsPerBranch:    tapsPerBranch,
		decimationFactor: m / 2,
		channelSpacing:   float64(cfg.InputRate) / float64(m),
		channelRate:      cfg.InputRate / uint32(m/2),
		branches:         designBranches(m, tapsPerBranch),
		windowRe:         windowRe,
		windowIm:         windowIm,
		windowWritePos:   make([]int, m),
		windowLen:        tapsPerBranch,
		windowAlloc:      windowAlloc,
		windowMask:       windowAlloc - 1,
		channelMask:      m - 1,
		filterIndex:      m - 1,
		fftPlan:          plan,
		fftInRe:          align.Buffer(m),
		fftInIm:          align.Buffer(m),
		fftOutRe:         align.Buffer(m),
		fftOutIm:         align.Buffer(m),
		channelOutputs:   align.Buffer(m * outputBufSize * 2),
		outputBufSize:    outputBufSize,
		logger:           logger,
	}
	ch.channelFreqs = buildChannelFreqs(m, cfg.CenterFreq, ch.channelSpacing)
	ch.initialized = true

	logger.Debug("channelizer: filter designed",
		"num_channels", m, "taps_per_branch", tapsPerBranch,
		"cutoff_ratio", cutoffRatio, "stopband_db", filterStopbandDB,
		"window_alloc", windowAlloc, "decimation_factor", ch.decimationFactor)
	return ch, nil
}

// buildChannelFreqs computes each channel's centre frequency in
// natural FFT bin order: channel 0 is DC, channels 1..M/2 are positive
// offsets, channels M/2+1..M-1 are negative offsets.
func buildChannelFreqs(m int, centerFreq, spacing float64) []float64 {
	freqs := make([]float64, m)
	for c := 0; c < m; c++ {
		var binOffset float64
		switch {
		case c == 0:
			binOffset = 0
		case c <= m/2:
			binOffset = float64(c) * spacing
		default:
			binOffset = float64(c-m) * spacing
		}
		freqs[c] = centerFreq + binOffset
	}
	return freqs
}

// ChannelFreq returns the centre frequency of channel c in Hz.
// Channel M/2 sits at the Nyquist edge (centre + fs/2), which aliases
// with centre - fs/2: it is produced like any other channel, but a
// signal there cannot be told apart from one at the opposite edge.
func (ch *Channelizer) ChannelFreq(c int) (float64, error) {
	if !ch.initialized {
		return 0, ErrNotInitialised
	}
	if c < 0 || c >= ch.numChannels {
		return 0, fmt.Errorf("%w: channel=%d", ErrInvalidArgument, c)
	}
	return ch.channelFreqs[c], nil
}

// NumChannels returns M.
func (ch *Channelizer) NumChannels() int { return ch.numChannels }

// ChannelRate returns the per-channel output sample rate in Hz.
func (ch *Channelizer) ChannelRate() uint32 { return ch.channelRate }

// Process pushes n complex input samples (interleaved, length 2n)
// through the filter bank, D = M/2 at a time, and returns a view over
// each channel's output (interleaved, length 2*outSamples) together
// with outSamples. Returned slices alias Channelizer-owned storage and
// are only valid until the next Process call.
func (ch *Channelizer) Process(input []float32) (channels [][]float32, outSamples int, err error) {
	if !ch.initialized {
		return nil, 0, ErrNotInitialised
	}
	if len(input)%2 != 0 {
		return nil, 0, fmt.Errorf("%w: odd-length interleaved input", ErrInvalidArgument)
	}

	nSamples := len(input) / 2
	m := ch.numChannels
	d := ch.decimationFactor
	outIdx := 0

	s := 0
	for ; s+d <= nSamples && outIdx < ch.outputBufSize; s += d {
		for i := 0; i < d; i++ {
			idx := ch.filterIndex
			pos := ch.windowWritePos[idx]
			ch.windowRe[idx][pos] = input[(s+i)*2+0]
			ch.windowIm[idx][pos] = input[(s+i)*2+1]
			ch.windowWritePos[idx] = (pos + 1) & ch.windowMask
			ch.filterIndex = (idx + m - 1) & ch.channelMask
		}

		ch.analyzerRun()

		for c := 0; c < m; c++ {
			re := ch.fftOutRe[c]
			im := ch.fftOutIm[c]
			if c&1 == 1 && outIdx&1 == 1 {
				re, im = -re, -im
			}
			base := c*ch.outputBufSize*2 + outIdx*2
			ch.channelOutputs[base+0] = re
			ch.channelOutputs[base+1] = im
		}
		outIdx++
	}

	if dropped := nSamples - s; dropped > 0 {
		ch.logger.Debug("channelizer: dropped trailing input samples", "dropped", dropped, "input_samples", nSamples)
	}

	result := make([][]float32, m)
	for c := 0; c < m; c++ {
		base := c * ch.outputBufSize * 2
		result[c] = ch.channelOutputs[base : base+outIdx*2]
	}
	return result, outIdx, nil
}

// analyzerRun computes the M polyphase filter outputs and runs the
// M-point FFT that separates them into channels, writing into
// fftOutRe/fftOutIm.
func (ch *Channelizer) analyzerRun() {
	m := ch.numChannels
	p := ch.windowLen

	for i := 0; i < m; i++ {
		index := (i + ch.filterIndex + 1) & ch.channelMask
		outIdx := m - i - 1

		start := (ch.windowWritePos[index] + ch.windowAlloc - p) & ch.windowMask
		sumRe, sumIm := dotProdCircular(ch.windowRe[index], ch.windowIm[index], start, ch.windowMask, ch.branches[i])

		ch.fftInRe[outIdx] = sumRe
		ch.fftInIm[outIdx] = sumIm
	}

	// ForwardSplit never returns an error for a plan already built for
	// exactly m inputs; the error return exists for mismatched slice
	// lengths, which cannot happen here since all slices are sized to m.
	_ = ch.fftPlan.ForwardSplit(ch.fftOutRe, ch.fftOutIm, ch.fftInRe, ch.fftInIm)
}

// dotProdCircular walks len(coeff) taps forward from start through a
// circular SoA window, matching dotprod_interleaved's single/double
// segment split but expressed as one masked index per step: a single
// AND per tap, since the window length is a power of two.
func dotProdCircular(winRe, winIm []float32, start, mask int, coeff []float32) (float32, float32) {
	var sumRe, sumIm float32
	pos := start
	for i := 0; i < len(coeff); i++ {
		c := coeff[i]
		sumRe += winRe[pos] * c
		sumIm += winIm[pos] * c
		pos = (pos + 1) & mask
	}
	return sumRe, sumIm
}
