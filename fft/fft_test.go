package fft

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func naiveDFT(in []complex64) []complex64 {
	n := len(in)
	out := make([]complex64, n)
	for k := 0; k < n; k++ {
		var accRe, accIm float64
		for j := 0; j < n; j++ {
			angle := -2 * math.Pi * float64(k) * float64(j) / float64(n)
			c, s := math.Cos(angle), math.Sin(angle)
			accRe += float64(real(in[j]))*c - float64(imag(in[j]))*s
			accIm += float64(real(in[j]))*s + float64(imag(in[j]))*c
		}
		out[k] = complex(float32(accRe), float32(accIm))
	}
	return out
}

func maxAbsDiff(a, b []complex64) float64 {
	var m float64
	for i := range a {
		d := a[i] - b[i]
		mag := math.Hypot(float64(real(d)), float64(imag(d)))
		if mag > m {
			m = mag
		}
	}
	return m
}

func TestNewPlanInvalidSize(t *testing.T) {
	t.Parallel()
	for _, n := range []int{0, 1, 3, 5, 17, 33, 64} {
		_, err := NewPlan(n, nil)
		require.ErrorIs(t, err, ErrInvalidSize, "n=%d", n)
	}
}

func TestForwardS1Impulse(t *testing.T) {
	t.Parallel()
	p, err := NewPlan(8, nil)
	require.NoError(t, err)

	in := make([]complex64, 8)
	in[0] = 1
	out := make([]complex64, 8)
	require.NoError(t, p.Forward(out, in))

	for k, v := range out {
		require.InDeltaf(t, 1.0, float64(real(v)), 1e-5, "bin %d re", k)
		require.InDeltaf(t, 0.0, float64(imag(v)), 1e-5, "bin %d im", k)
	}
}

func TestForwardS2AllOnes(t *testing.T) {
	t.Parallel()
	p, err := NewPlan(8, nil)
	require.NoError(t, err)

	in := make([]complex64, 8)
	for i := range in {
		in[i] = 1
	}
	out := make([]complex64, 8)
	require.NoError(t, p.Forward(out, in))

	require.InDeltaf(t, 8.0, float64(real(out[0])), 1e-5, "DC bin")
	require.InDeltaf(t, 0.0, float64(imag(out[0])), 1e-5, "DC bin im")
	for k := 1; k < 8; k++ {
		require.InDeltaf(t, 0.0, float64(real(out[k])), 1e-5, "bin %d re", k)
		require.InDeltaf(t, 0.0, float64(imag(out[k])), 1e-5, "bin %d im", k)
	}
}

func TestForwardMatchesNaiveDFT(t *testing.T) {
	t.Parallel()
	for _, n := range []int{2, 4, 8, 16, 32} {
		n := n
		t.Run(nSizeName(n), func(t *testing.T) {
			t.Parallel()
			p, err := NewPlan(n, nil)
			require.NoError(t, err)

			in := make([]complex64, n)
			for i := range in {
				in[i] = complex(float32(math.Sin(float64(i)*0.7+1)), float32(math.Cos(float64(i)*0.3)))
			}
			out := make([]complex64, n)
			require.NoError(t, p.Forward(out, in))

			want := naiveDFT(in)
			diff := maxAbsDiff(out, want)
			require.LessOrEqualf(t, diff, 1e-4*float64(n), "n=%d max diff=%v", n, diff)
		})
	}
}

func TestRoundTripForwardInverse(t *testing.T) {
	t.Parallel()
	for _, n := range []int{2, 4, 8, 16, 32} {
		n := n
		t.Run(nSizeName(n), func(t *testing.T) {
			t.Parallel()
			p, err := NewPlan(n, nil)
			require.NoError(t, err)

			in := make([]complex64, n)
			for i := range in {
				in[i] = complex(float32(i)-float32(n)/2, float32(i*2)-float32(n))
			}

			freq := make([]complex64, n)
			require.NoError(t, p.Forward(freq, in))

			back := make([]complex64, n)
			require.NoError(t, p.Inverse(back, freq))

			for i := range back {
				gotRe := float64(real(back[i])) / float64(n)
				gotIm := float64(imag(back[i])) / float64(n)
				require.InDeltaf(t, float64(real(in[i])), gotRe, 1e-4, "n=%d i=%d re", n, i)
				require.InDeltaf(t, float64(imag(in[i])), gotIm, 1e-4, "n=%d i=%d im", n, i)
			}
		})
	}
}

func TestRealFFTRoundTrip(t *testing.T) {
	t.Parallel()
	for _, n := range []int{4, 8, 16, 32} {
		n := n
		t.Run(nSizeName(n), func(t *testing.T) {
			t.Parallel()
			p, err := NewPlanReal(n, nil)
			require.NoError(t, err)

			in := make([]float32, n)
			for i := range in {
				in[i] = float32(math.Sin(float64(i) * 0.9))
			}

			freq := make([]complex64, n/2+1)
			require.NoError(t, p.Forward(freq, in))

			require.InDeltaf(t, 0, float64(imag(freq[0])), 1e-5, "DC must be real")
			require.InDeltaf(t, 0, float64(imag(freq[n/2])), 1e-5, "Nyquist must be real")

			back := make([]float32, n)
			require.NoError(t, p.Inverse(back, freq))

			for i := range back {
				require.InDeltaf(t, float64(in[i]), float64(back[i])/float64(n), 1e-4, "i=%d", i)
			}
		})
	}
}

func nSizeName(n int) string {
	return fmt.Sprintf("N%d", n)
}
