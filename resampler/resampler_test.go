package resampler

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func toneInput(n int, freq float64) []float32 {
	out := make([]float32, 2*n)
	for i := 0; i < n; i++ {
		phase := 2 * math.Pi * freq * float64(i)
		out[2*i+0] = float32(math.Cos(phase))
		out[2*i+1] = float32(math.Sin(phase))
	}
	return out
}

func power(buf []float32) float64 {
	var sum float64
	for i := 0; i < len(buf)/2; i++ {
		re := float64(buf[2*i+0])
		im := float64(buf[2*i+1])
		sum += re*re + im*im
	}
	return sum / float64(len(buf)/2)
}

func TestNewInvalidRate(t *testing.T) {
	t.Parallel()
	_, err := New(Config{InputRate: 0, OutputRate: 48000, MaxInput: 1024}, nil)
	require.True(t, errors.Is(err, ErrInvalidRate))
}

func TestNewOverflowGuard(t *testing.T) {
	t.Parallel()
	_, err := New(Config{InputRate: 1, OutputRate: math.MaxInt32, MaxInput: 1024}, nil)
	require.True(t, errors.Is(err, ErrOverflowGuard))
}

// Property 8: passthrough when input and output rates are equal.
func TestPassthrough(t *testing.T) {
	t.Parallel()
	r, err := New(Config{InputRate: 48000, OutputRate: 48000, MaxInput: 64}, nil)
	require.NoError(t, err)
	require.True(t, r.Passthrough())

	in := toneInput(16, 0.01)
	out, n, err := r.Process(in)
	require.NoError(t, err)
	require.Equal(t, 16, n)
	require.Equal(t, in, out)
}

// Property 7: resampler sample ratio. Feeding N input samples through a
// L/M resampler in one call should produce approximately N*L/M output
// samples.
func TestSampleRatio(t *testing.T) {
	t.Parallel()
	r, err := New(Config{InputRate: 2000000, OutputRate: 250000, MaxInput: 100000}, nil)
	require.NoError(t, err)

	const numIn = 100000
	in := toneInput(numIn, 0.001)
	out, n, err := r.Process(in)
	require.NoError(t, err)
	require.Equal(t, len(out), n*2)

	expected := float64(numIn) * float64(r.up) / float64(r.down)
	ratio := float64(n) / expected
	require.InDelta(t, 1.0, ratio, 0.01)
}

// Property 6: resampler DC gain. A DC (zero-frequency) input should
// pass through with approximately unity magnitude gain once the filter
// has filled its history.
func TestDCGain(t *testing.T) {
	t.Parallel()
	r, err := New(Config{InputRate: 48000, OutputRate: 96000, MaxInput: 4096}, nil)
	require.NoError(t, err)

	in := make([]float32, 2*2048)
	for i := range in {
		if i%2 == 0 {
			in[i] = 1.0
		}
	}

	out, n, err := r.Process(in)
	require.NoError(t, err)
	require.Greater(t, n, 0)

	tail := out[2*(n-64):]
	for i := 0; i < len(tail)/2; i++ {
		require.InDelta(t, 1.0, float64(tail[2*i+0]), 0.05)
		require.InDelta(t, 0.0, float64(tail[2*i+1]), 0.05)
	}
}

// Property: phase continuity across successive Process calls — feeding
// a signal in two chunks must produce (up to boundary transients) the
// same output as feeding it in one chunk.
func TestPhaseContinuityAcrossCalls(t *testing.T) {
	t.Parallel()
	mk := func() *Resampler {
		r, err := New(Config{InputRate: 8000, OutputRate: 12000, MaxInput: 4096}, nil)
		require.NoError(t, err)
		return r
	}

	whole := mk()
	in := toneInput(2000, 0.01)
	outWhole, nWhole, err := whole.Process(in)
	require.NoError(t, err)
	outWholeCopy := append([]float32(nil), outWhole[:2*nWhole]...)

	split := mk()
	out1, n1, err := split.Process(in[:2*1000])
	require.NoError(t, err)
	part1 := append([]float32(nil), out1[:2*n1]...)
	out2, n2, err := split.Process(in[2*1000:])
	require.NoError(t, err)
	part2 := append([]float32(nil), out2[:2*n2]...)

	require.Equal(t, nWhole, n1+n2)
	combined := append(part1, part2...)
	for i := range combined {
		require.InDelta(t, float64(outWholeCopy[i]), float64(combined[i]), 1e-5)
	}
}

func TestPowerPreservedRoughly(t *testing.T) {
	t.Parallel()
	r, err := New(Config{InputRate: 100000, OutputRate: 300000, MaxInput: 8192}, nil)
	require.NoError(t, err)

	in := toneInput(4096, 0.02)
	out, n, err := r.Process(in)
	require.NoError(t, err)
	require.Greater(t, n, 0)

	pIn := power(in[2*512:])
	pOut := power(out[2*(n-512):])
	require.InDelta(t, pIn, pOut, 0.2)
}

// S6: InputRate==OutputRate==250000 is passthrough, byte-identical
// output for every input.
func TestS6PassthroughByteIdentical(t *testing.T) {
	t.Parallel()
	r, err := New(Config{InputRate: 250000, OutputRate: 250000, MaxInput: 512}, nil)
	require.NoError(t, err)
	require.True(t, r.Passthrough())

	in := toneInput(256, 0.0137)
	out, n, err := r.Process(in)
	require.NoError(t, err)
	require.Equal(t, 256, n)
	require.Equal(t, in, out)
}

// S5: 312500 -> 250000 (up=4, down=5) with constant I=0.75, Q=0.375
// input should settle to the same constant output once the filter
// history has filled, after around 100 input samples.
func TestS5SteadyStateConstantIQ(t *testing.T) {
	t.Parallel()
	r, err := New(Config{InputRate: 312500, OutputRate: 250000, MaxInput: 4096}, nil)
	require.NoError(t, err)
	require.Equal(t, 4, r.up)
	require.Equal(t, 5, r.down)

	in := make([]float32, 2*2000)
	for i := 0; i < 2000; i++ {
		in[2*i+0] = 0.75
		in[2*i+1] = 0.375
	}

	out, n, err := r.Process(in)
	require.NoError(t, err)
	require.Greater(t, n, 100)

	tail := out[2*(n-50):]
	for i := 0; i < len(tail)/2; i++ {
		require.InDelta(t, 0.75, float64(tail[2*i+0]), 0.02)
		require.InDelta(t, 0.375, float64(tail[2*i+1]), 0.02)
	}
}

func TestProcessRejectsOddLength(t *testing.T) {
	t.Parallel()
	r, err := New(Config{InputRate: 8000, OutputRate: 16000, MaxInput: 64}, nil)
	require.NoError(t, err)
	_, _, err = r.Process(make([]float32, 3))
	require.True(t, errors.Is(err, ErrInvalidArgument))
}
