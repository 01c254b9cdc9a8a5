package fft

import (
	"fmt"
	"testing"
)

// BenchmarkForwardSizes benchmarks forward FFT at every supported
// channelizer/resampler-relevant size, 2 through 32.
func BenchmarkForwardSizes(b *testing.B) {
	sizes := []int{2, 4, 8, 16, 32}
	for _, n := range sizes {
		b.Run(fmt.Sprintf("N_%d", n), func(b *testing.B) {
			p, err := NewPlan(n, nil)
			if err != nil {
				b.Fatal(err)
			}
			in := make([]complex64, n)
			out := make([]complex64, n)
			for i := range in {
				in[i] = complex(float32(i), float32(-i))
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := p.Forward(out, in); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkForwardSplitSizes benchmarks the allocation-free SoA hot path
// used directly by the channelizer.
func BenchmarkForwardSplitSizes(b *testing.B) {
	sizes := []int{2, 4, 8, 16, 32}
	for _, n := range sizes {
		b.Run(fmt.Sprintf("N_%d", n), func(b *testing.B) {
			p, err := NewPlan(n, nil)
			if err != nil {
				b.Fatal(err)
			}
			inRe := make([]float32, n)
			inIm := make([]float32, n)
			outRe := make([]float32, n)
			outIm := make([]float32, n)
			for i := range inRe {
				inRe[i] = float32(i)
				inIm[i] = float32(-i)
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := p.ForwardSplit(outRe, outIm, inRe, inIm); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
