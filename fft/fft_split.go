package fft

import "fmt"

// ForwardSplit computes the N-point forward DFT on SoA buffers, writing
// into outRe/outIm. This is the hot-path entry point used by the
// channelizer: no allocation, no AoS conversion. inRe/inIm and
// outRe/outIm may not alias each other or the plan's own scratch
// (Forward/Inverse pass freshly allocated buffers).
func (p *Plan) ForwardSplit(outRe, outIm, inRe, inIm []float32) error {
	if err := p.checkSplit(outRe, outIm, inRe, inIm); err != nil {
		return err
	}

	if p.small != nil {
		p.small(inRe, inIm, outRe, outIm)
		return nil
	}

	srcRe, srcIm := inRe, inIm
	dstRe, dstIm := p.work2Re, p.work2Im

	for s := 0; s < p.log4n; s++ {
		radix4StageOTF(srcRe, srcIm, dstRe, dstIm, p.twRe[s], p.twIm[s], p.n, s)
		if s == 0 {
			// After the first stage we must stop reading/writing the
			// caller's inRe/inIm, so switch to the plan's own ping-pong
			// pair for the remaining stages.
			srcRe, srcIm = dstRe, dstIm
			dstRe, dstIm = p.workRe, p.workIm
		} else {
			srcRe, srcIm, dstRe, dstIm = dstRe, dstIm, srcRe, srcIm
		}
	}

	if p.hasRadix2 {
		radix2LastStage(srcRe, srcIm, dstRe, dstIm, p.n)
		srcRe, srcIm = dstRe, dstIm
	}

	copy(outRe, srcRe[:p.n])
	copy(outIm, srcIm[:p.n])
	return nil
}

func (p *Plan) checkSplit(outRe, outIm, inRe, inIm []float32) error {
	if outRe == nil || outIm == nil || inRe == nil || inIm == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidArgument)
	}
	if len(outRe) != p.n || len(outIm) != p.n || len(inRe) != p.n || len(inIm) != p.n {
		return fmt.Errorf("%w: want len=%d", ErrInvalidArgument, p.n)
	}
	return nil
}

// radix4StageOTF applies one radix-4 Stockham stage, computing W^2k and
// W^3k on the fly from the stored fundamental twiddle W^k.
func radix4StageOTF(srcRe, srcIm, dstRe, dstIm, twRe, twIm []float32, n, stage int) {
	quarterN := n >> 2
	m := n >> (stage * 2)
	quarterM := m >> 2
	numBlocks := 1 << (stage * 2)

	for b := 0; b < numBlocks; b++ {
		srcBase := b * m
		dstBase := b * quarterM

		a0Re, a0Im := srcRe[srcBase:srcBase+quarterM], srcIm[srcBase:srcBase+quarterM]
		a1Re, a1Im := srcRe[srcBase+quarterM:], srcIm[srcBase+quarterM:]
		a2Re, a2Im := srcRe[srcBase+2*quarterM:], srcIm[srcBase+2*quarterM:]
		a3Re, a3Im := srcRe[srcBase+3*quarterM:], srcIm[srcBase+3*quarterM:]

		d0Re, d0Im := dstRe[dstBase:], dstIm[dstBase:]
		d1Re, d1Im := dstRe[dstBase+quarterN:], dstIm[dstBase+quarterN:]
		d2Re, d2Im := dstRe[dstBase+2*quarterN:], dstIm[dstBase+2*quarterN:]
		d3Re, d3Im := dstRe[dstBase+3*quarterN:], dstIm[dstBase+3*quarterN:]

		for j := 0; j < quarterM; j++ {
			a0r, a0i := a0Re[j], a0Im[j]
			a1r, a1i := a1Re[j], a1Im[j]
			a2r, a2i := a2Re[j], a2Im[j]
			a3r, a3i := a3Re[j], a3Im[j]

			w1r, w1i := twRe[j], twIm[j]
			w2r := w1r*w1r - w1i*w1i
			w2i := 2 * w1r * w1i
			w3r := w2r*w1r - w2i*w1i
			w3i := w2r*w1i + w2i*w1r

			t0r, t0i := a0r+a2r, a0i+a2i
			t1r, t1i := a0r-a2r, a0i-a2i
			t2r, t2i := a1r+a3r, a1i+a3i
			t3r, t3i := a1r-a3r, a1i-a3i

			d0Re[j] = t0r + t2r
			d0Im[j] = t0i + t2i

			u1r, u1i := t1r+t3i, t1i-t3r
			d1Re[j] = u1r*w1r - u1i*w1i
			d1Im[j] = u1r*w1i + u1i*w1r

			u2r, u2i := t0r-t2r, t0i-t2i
			d2Re[j] = u2r*w2r - u2i*w2i
			d2Im[j] = u2r*w2i + u2i*w2r

			u3r, u3i := t1r-t3i, t1i+t3r
			d3Re[j] = u3r*w3r - u3i*w3i
			d3Im[j] = u3r*w3i + u3i*w3r
		}
	}
}

// radix2LastStage applies the final radix-2 combination when log2(n) is
// odd. The radix-4 stages leave n/2 blocks of two samples; block i holds
// the 2-point sub-transform for output bins i and i+n/2.
func radix2LastStage(srcRe, srcIm, dstRe, dstIm []float32, n int) {
	halfN := n >> 1
	for i := 0; i < halfN; i++ {
		aRe, aIm := srcRe[2*i], srcIm[2*i]
		bRe, bIm := srcRe[2*i+1], srcIm[2*i+1]
		dstRe[i] = aRe + bRe
		dstIm[i] = aIm + bIm
		dstRe[i+halfN] = aRe - bRe
		dstIm[i+halfN] = aIm - bIm
	}
}

func aosToSoa(in []complex64, re, im []float32) {
	for i, v := range in {
		re[i] = real(v)
		im[i] = imag(v)
	}
}

func soaToAos(re, im []float32, out []complex64) {
	for i := range out {
		out[i] = complex(re[i], im[i])
	}
}
