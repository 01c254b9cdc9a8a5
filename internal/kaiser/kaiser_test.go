package kaiser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBesselI0AtZero(t *testing.T) {
	t.Parallel()
	require.InDelta(t, 1.0, BesselI0(0), 1e-12)
}

func TestBesselI0Monotonic(t *testing.T) {
	t.Parallel()
	prev := BesselI0(0)
	for x := 0.5; x <= 10; x += 0.5 {
		cur := BesselI0(x)
		require.Greater(t, cur, prev)
		prev = cur
	}
}

func TestBetaPiecewise(t *testing.T) {
	t.Parallel()
	require.Equal(t, 0.0, Beta(10))
	require.Greater(t, Beta(30), 0.0)
	require.Greater(t, Beta(60), Beta(30))
}

func TestDesignLowpassUnityDCGain(t *testing.T) {
	t.Parallel()
	h := make([]float64, 97) // 2*M*m+1 for M=2, m=24
	DesignLowpass(h, 0.45, 60)

	var sum float64
	for _, v := range h {
		sum += v
	}
	require.InDelta(t, 1.0, sum, 1e-9)
}

func TestDesignLowpassSymmetric(t *testing.T) {
	t.Parallel()
	h := make([]float64, 65)
	DesignLowpass(h, 0.25, 80)

	n := len(h)
	for i := 0; i < n/2; i++ {
		require.InDelta(t, h[i], h[n-1-i], 1e-9, "tap %d vs %d", i, n-1-i)
	}
}
