package align

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferAligned(t *testing.T) {
	t.Parallel()
	for _, n := range []int{0, 1, 2, 17, 64, 1000} {
		buf := Buffer(n)
		require.Len(t, buf, n)
		require.True(t, IsAligned(buf), "n=%d", n)
	}
}

func TestBufferIndependent(t *testing.T) {
	t.Parallel()
	a := Buffer(8)
	b := Buffer(8)
	a[0] = 1
	require.NotEqual(t, a[0], b[0])
}

func TestBuildInfoNonEmpty(t *testing.T) {
	t.Parallel()
	require.NotEmpty(t, BuildInfo())
}
