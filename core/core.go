// Package core implements the orchestrator that wires a channelizer,
// per-channel resamplers, external decoders and the cross-channel
// dedup gate into a single wideband processing pipeline.
package core

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/hydrasdr/hydrasdr-433/channelizer"
	"github.com/hydrasdr/hydrasdr-433/dedup"
	"github.com/hydrasdr/hydrasdr-433/resampler"
)

// Decoder turns a single channel's IQ stream into a decoded record.
// Implementations are protocol decoders (OOK/FSK pulse demodulators)
// supplied by the caller; this package has no decoder of its own.
type Decoder interface {
	// Decode inspects iq (interleaved, at the channel's output rate —
	// post-resample if a target rate was configured) and returns a
	// decoded record and true if it found one, or false otherwise.
	Decode(channelIndex int, centerFreqHz float64, iq []float32) (dedup.Record, bool)
}

// DecodeListener is notified of every decode that survives the dedup
// gate.
type DecodeListener interface {
	OnDecode(channelIndex int, centerFreqHz float64, record dedup.Record)
}

// ChannelConfig configures one channel's downstream decoder and,
// optionally, a target sample rate different from the channelizer's
// native per-channel output rate.
type ChannelConfig struct {
	Decoder    Decoder
	TargetRate uint32 // 0: no resampling, decode at the channel's native rate
}

// Config describes a Core instance: the channelizer configuration plus
// one ChannelConfig per output channel.
type Config struct {
	Channelizer channelizer.Config
	Channels    []ChannelConfig
}

// channelState is the mutable per-channel state the orchestrator
// owns: the channel's decoder and centre frequency, an optional
// resampler, and smoothed noise/power estimates reported through
// ChannelPower. It holds no demodulation scratch; any state a decoder
// keeps across calls lives in the Decoder itself. The estimates do not
// gate decode attempts: Process calls the decoder on every block.
type channelState struct {
	decoder    Decoder
	resampler  *resampler.Resampler
	freqHz     float64
	noiseEMA   float64
	powerEMA   float64
	hasDecoder bool
}

// emaAlpha is the exponential-moving-average weight applied to the new
// sample when updating a channel's smoothed power/noise estimate.
const emaAlpha = 0.05

// Core is the wideband processing orchestrator: one channelizer
// instance, a resampler and decoder per channel, and a shared dedup
// gate. Core is not safe for concurrent Process calls — per the
// single-producer-thread model, exactly one caller drives Process at a
// time; AddDecodeListener may be called before Process begins.
type Core struct {
	mu sync.RWMutex

	chz      *channelizer.Channelizer
	dedup    *dedup.Dedup
	channels []channelState

	listeners []DecodeListener
}

// New builds a Core: a channelizer per cfg.Channelizer, and one
// channelState per entry of cfg.Channels (which must have exactly M
// entries, M = cfg.Channelizer.NumChannels). logger is forwarded to
// the channelizer, each per-channel resampler, and the dedup ring;
// a nil logger defaults to slog.Default().
func New(cfg Config, logger *slog.Logger) (*Core, error) {
	if logger == nil {
		logger = slog.Default()
	}

	chz, err := channelizer.New(cfg.Channelizer, logger)
	if err != nil {
		return nil, fmt.Errorf("core: building channelizer: %w", err)
	}

	m := chz.NumChannels()
	if len(cfg.Channels) != m {
		return nil, fmt.Errorf("%w: channel config count %d != num_channels %d", ErrInvalidArgument, len(cfg.Channels), m)
	}

	channels := make([]channelState, m)
	for c := 0; c < m; c++ {
		freq, err := chz.ChannelFreq(c)
		if err != nil {
			return nil, err
		}

		cs := channelState{freqHz: freq}
		if cfg.Channels[c].Decoder != nil {
			cs.decoder = cfg.Channels[c].Decoder
			cs.hasDecoder = true
		}

		targetRate := cfg.Channels[c].TargetRate
		if targetRate != 0 && targetRate != chz.ChannelRate() {
			rs, err := resampler.New(resampler.Config{
				InputRate:  chz.ChannelRate(),
				OutputRate: targetRate,
				MaxInput:   cfg.Channelizer.MaxInput,
			}, logger)
			if err != nil {
				return nil, fmt.Errorf("core: building resampler for channel %d: %w", c, err)
			}
			cs.resampler = rs
		}

		channels[c] = cs
	}

	return &Core{
		chz:      chz,
		dedup:    dedup.New(logger),
		channels: channels,
	}, nil
}

// AddDecodeListener registers l to be notified of every decode that
// passes the dedup gate.
func (c *Core) AddDecodeListener(l DecodeListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// SuppressedCount returns the total number of decodes the dedup gate
// has suppressed since Core was created.
func (c *Core) SuppressedCount() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dedup.SuppressedCount()
}

// Process pushes wideband interleaved IQ input through the
// channelizer, then through each channel's optional resampler and
// decoder, forwarding accepted decodes through the dedup gate to every
// registered listener. It returns the number of channelizer output
// samples produced (per channel, before any per-channel resampling).
func (c *Core) Process(input []float32) (int, error) {
	c.mu.RLock()
	listeners := c.listeners
	c.mu.RUnlock()

	channelOut, n, err := c.chz.Process(input)
	if err != nil {
		return 0, fmt.Errorf("core: channelizer process: %w", err)
	}

	for idx := range c.channels {
		cs := &c.channels[idx]
		iq := channelOut[idx]

		updatePowerEstimate(cs, iq)

		if !cs.hasDecoder {
			continue
		}

		if cs.resampler != nil {
			resampled, _, err := cs.resampler.Process(iq)
			if err != nil {
				return 0, fmt.Errorf("core: resampling channel %d: %w", idx, err)
			}
			iq = resampled
		}

		record, ok := cs.decoder.Decode(idx, cs.freqHz, iq)
		if !ok {
			continue
		}

		if c.dedup.Check(record, cs.freqHz) == dedup.Suppress {
			continue
		}

		for _, l := range listeners {
			l.OnDecode(idx, cs.freqHz, record)
		}
	}

	return n, nil
}

// updatePowerEstimate folds iq's mean power into cs's smoothed power
// estimate via a simple exponential moving average; the noise estimate
// tracks the same quantity more slowly, giving callers of ChannelPower
// a squelch reference independent of short bursts.
func updatePowerEstimate(cs *channelState, iq []float32) {
	if len(iq) == 0 {
		return
	}
	var sum float64
	for i := 0; i < len(iq)/2; i++ {
		re := float64(iq[2*i+0])
		im := float64(iq[2*i+1])
		sum += re*re + im*im
	}
	power := sum / float64(len(iq)/2)

	cs.powerEMA += emaAlpha * (power - cs.powerEMA)
	cs.noiseEMA += (emaAlpha / 10) * (power - cs.noiseEMA)
}

// ChannelPower returns the current smoothed power and noise estimates
// for channel idx.
func (c *Core) ChannelPower(idx int) (power, noise float64, err error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if idx < 0 || idx >= len(c.channels) {
		return 0, 0, fmt.Errorf("%w: channel=%d", ErrInvalidArgument, idx)
	}
	return c.channels[idx].powerEMA, c.channels[idx].noiseEMA, nil
}

// ResetChannel clears channel idx's resampler history and phase
// accumulator and its smoothed power/noise estimates, without
// rebuilding the filter. Callers use this after a hardware retune
// invalidates the channel's accumulated history but leaves the
// channelizer/resampler configuration unchanged; per §7's propagation
// policy the caller decides when a reconfigure is warranted, Core only
// provides the mechanism.
func (c *Core) ResetChannel(idx int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx < 0 || idx >= len(c.channels) {
		return fmt.Errorf("%w: channel=%d", ErrInvalidArgument, idx)
	}
	cs := &c.channels[idx]
	if cs.resampler != nil {
		cs.resampler.Reset()
	}
	cs.powerEMA = 0
	cs.noiseEMA = 0
	return nil
}

// ChannelFreq returns the centre frequency, in Hz, of channel idx.
func (c *Core) ChannelFreq(idx int) (float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if idx < 0 || idx >= len(c.channels) {
		return 0, fmt.Errorf("%w: channel=%d", ErrInvalidArgument, idx)
	}
	return c.channels[idx].freqHz, nil
}
