package fft

import (
	"fmt"
	"log/slog"
	"math"
)

// PlanReal is an immutable plan for real-to-complex and
// complex-to-real transforms of power-of-two length N. Internally it packs N
// real samples into N/2 complex samples, runs an N/2-point complex FFT
// via an embedded *Plan, and combines the result with precomputed
// post-processing twiddles W_N^k to produce the N/2+1 non-redundant
// complex bins (DC and Nyquist are real).
type PlanReal struct {
	n      int
	halfN  int
	half   *Plan
	tw2Re  []float32 // W_N^k for k=0..N/2-1
	tw2Im  []float32
	scratchZRe []float32
	scratchZIm []float32
	halfOutRe  []float32
	halfOutIm  []float32
}

// NewPlanReal creates a real<->complex plan for power-of-two N in
// [MinSize, MaxSize]. logger is forwarded to the embedded complex
// Plan; a nil logger defaults to slog.Default().
func NewPlanReal(n int, logger *slog.Logger) (*PlanReal, error) {
	if !isPowerOfTwo(n) || n < MinSize || n > MaxSize {
		return nil, fmt.Errorf("%w: n=%d", ErrInvalidSize, n)
	}

	halfN := n / 2
	var half *Plan
	if halfN >= MinSize {
		p, err := NewPlan(halfN, logger)
		if err != nil {
			return nil, err
		}
		half = p
	}

	pr := &PlanReal{
		n:          n,
		halfN:      halfN,
		half:       half,
		tw2Re:      make([]float32, halfN),
		tw2Im:      make([]float32, halfN),
		scratchZRe: make([]float32, halfN),
		scratchZIm: make([]float32, halfN),
		halfOutRe:  make([]float32, halfN),
		halfOutIm:  make([]float32, halfN),
	}

	negTwoPiOverN := -2.0 * math.Pi / float64(n)
	for k := 0; k < halfN; k++ {
		angle := negTwoPiOverN * float64(k)
		pr.tw2Re[k] = float32(math.Cos(angle))
		pr.tw2Im[k] = float32(math.Sin(angle))
	}

	return pr, nil
}

// N returns the real-domain transform length.
func (p *PlanReal) N() int { return p.n }

// Forward computes the real-to-complex FFT of N real samples, writing
// the N/2+1 non-redundant complex bins into out (len(out) must be
// N/2+1). DC and Nyquist bins are real (zero imaginary part).
func (p *PlanReal) Forward(out []complex64, in []float32) error {
	if in == nil || out == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidArgument)
	}
	if len(in) != p.n || len(out) != p.halfN+1 {
		return fmt.Errorf("%w: want in=%d out=%d", ErrInvalidArgument, p.n, p.halfN+1)
	}

	zRe, zIm := p.scratchZRe, p.scratchZIm
	for k := 0; k < p.halfN; k++ {
		zRe[k] = in[2*k]
		zIm[k] = in[2*k+1]
	}

	srcRe, srcIm, err := p.runHalfForward(zRe, zIm)
	if err != nil {
		return err
	}

	halfN := p.halfN

	out[0] = complex(srcRe[0]+srcIm[0], 0)
	out[halfN] = complex(srcRe[0]-srcIm[0], 0)

	for k := 1; k < halfN; k++ {
		conjK := halfN - k
		zkRe, zkIm := srcRe[k], srcIm[k]
		zcRe, zcIm := srcRe[conjK], -srcIm[conjK]

		aRe, aIm := 0.5*(zkRe+zcRe), 0.5*(zkIm+zcIm)
		bRe, bIm := 0.5*(zkRe-zcRe), 0.5*(zkIm-zcIm)

		wRe, wIm := p.tw2Re[k], p.tw2Im[k]
		jwBRe := wRe*bIm + wIm*bRe
		jwBIm := -(wRe*bRe - wIm*bIm)

		out[k] = complex(aRe+jwBRe, aIm+jwBIm)
	}
	return nil
}

// Inverse computes the complex-to-real inverse FFT from the N/2+1
// non-redundant complex bins into N real samples, unscaled (caller
// normalises by 1/N). len(in) must be N/2+1, len(out) must be N.
func (p *PlanReal) Inverse(out []float32, in []complex64) error {
	if in == nil || out == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidArgument)
	}
	if len(out) != p.n || len(in) != p.halfN+1 {
		return fmt.Errorf("%w: want out=%d in=%d", ErrInvalidArgument, p.n, p.halfN+1)
	}

	halfN := p.halfN
	zRe, zIm := p.scratchZRe, p.scratchZIm

	zRe[0] = 0.5 * (real(in[0]) + real(in[halfN]))
	zIm[0] = 0.5 * (real(in[0]) - real(in[halfN]))

	for k := 1; k < halfN; k++ {
		conjK := halfN - k
		xkRe, xkIm := real(in[k]), imag(in[k])
		xcRe, xcIm := real(in[conjK]), -imag(in[conjK])

		aRe, aIm := 0.5*(xkRe+xcRe), 0.5*(xkIm+xcIm)
		bRe, bIm := 0.5*(xkRe-xcRe), 0.5*(xkIm-xcIm)

		wRe, wIm := p.tw2Re[k], -p.tw2Im[k]
		wBRe := wRe*bRe - wIm*bIm
		wBIm := wRe*bIm + wIm*bRe

		zRe[k] = aRe - wBIm
		zIm[k] = aIm + wBRe
	}

	// Conjugate, N/2-point forward FFT, conjugate — the usual
	// unscaled-inverse trick, then scale by 2 to compensate running the
	// inverse as an N/2-point transform instead of N-point.
	for k := 0; k < halfN; k++ {
		zIm[k] = -zIm[k]
	}

	srcRe, srcIm, err := p.runHalfForward(zRe, zIm)
	if err != nil {
		return err
	}

	for k := 0; k < halfN; k++ {
		out[2*k] = 2 * srcRe[k]
		out[2*k+1] = -2 * srcIm[k]
	}
	return nil
}

// runHalfForward executes the embedded N/2-point forward complex FFT
// on the supplied SoA buffers and returns the buffers holding the
// result: halfOutRe/halfOutIm, or re, im unchanged when N/2 == 1.
func (p *PlanReal) runHalfForward(re, im []float32) ([]float32, []float32, error) {
	if p.half == nil {
		// N/2 == 1: a single complex "transform" is the identity.
		return re, im, nil
	}

	if err := p.half.ForwardSplit(p.halfOutRe, p.halfOutIm, re, im); err != nil {
		return nil, nil, err
	}
	return p.halfOutRe, p.halfOutIm, nil
}
