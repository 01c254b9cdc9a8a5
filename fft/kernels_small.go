package fft

// Fully unrolled SoA forward-FFT kernels for N=2,4,8,16, using
// compile-time constant twiddles instead of a stage loop. These have no
// scratch buffers and no branches on the transform size once dispatched,
// and are selected transparently by NewPlan for matching sizes — the
// channelizer's M-point FFT hits this path whenever M is 2, 4, 8 or 16.

const (
	sqrt2Over2 = 0.70710678118654752
	cosPiOver8 = 0.92387953251128676
	sinPiOver8 = 0.38268343236508978
)

type smallKernel func(inRe, inIm, outRe, outIm []float32)

func smallKernelFor(n int) smallKernel {
	switch n {
	case 2:
		return fft2ForwardSoA
	case 4:
		return fft4ForwardSoA
	case 8:
		return fft8ForwardSoA
	case 16:
		return fft16ForwardSoA
	default:
		return nil
	}
}

// fft2ForwardSoA is the 2-point DFT butterfly: 4 adds, 0 multiplies.
func fft2ForwardSoA(inRe, inIm, outRe, outIm []float32) {
	aRe, aIm := inRe[0], inIm[0]
	bRe, bIm := inRe[1], inIm[1]

	outRe[0] = aRe + bRe
	outIm[0] = aIm + bIm
	outRe[1] = aRe - bRe
	outIm[1] = aIm - bIm
}

// fft4ForwardSoA is a radix-2 DIT combination of two 2-point DFTs; all
// twiddles are trivial (swap and negate).
func fft4ForwardSoA(inRe, inIm, outRe, outIm []float32) {
	e0Re, e0Im := inRe[0]+inRe[2], inIm[0]+inIm[2]
	e1Re, e1Im := inRe[0]-inRe[2], inIm[0]-inIm[2]

	o0Re, o0Im := inRe[1]+inRe[3], inIm[1]+inIm[3]
	o1Re, o1Im := inRe[1]-inRe[3], inIm[1]-inIm[3]

	outRe[0] = e0Re + o0Re
	outIm[0] = e0Im + o0Im
	outRe[1] = e1Re + o1Im
	outIm[1] = e1Im - o1Re
	outRe[2] = e0Re - o0Re
	outIm[2] = e0Im - o0Im
	outRe[3] = e1Re - o1Im
	outIm[3] = e1Im + o1Re
}

// fft8ForwardSoA combines two inline 4-point DFTs (even/odd indices)
// with W8 twiddles; only W8^1 and W8^3 need a real multiply.
func fft8ForwardSoA(inRe, inIm, outRe, outIm []float32) {
	ee0Re, ee0Im := inRe[0]+inRe[4], inIm[0]+inIm[4]
	ee1Re, ee1Im := inRe[0]-inRe[4], inIm[0]-inIm[4]
	eo0Re, eo0Im := inRe[2]+inRe[6], inIm[2]+inIm[6]
	eo1Re, eo1Im := inRe[2]-inRe[6], inIm[2]-inIm[6]

	e0Re, e0Im := ee0Re+eo0Re, ee0Im+eo0Im
	e1Re, e1Im := ee1Re+eo1Im, ee1Im-eo1Re
	e2Re, e2Im := ee0Re-eo0Re, ee0Im-eo0Im
	e3Re, e3Im := ee1Re-eo1Im, ee1Im+eo1Re

	oe0Re, oe0Im := inRe[1]+inRe[5], inIm[1]+inIm[5]
	oe1Re, oe1Im := inRe[1]-inRe[5], inIm[1]-inIm[5]
	oo0Re, oo0Im := inRe[3]+inRe[7], inIm[3]+inIm[7]
	oo1Re, oo1Im := inRe[3]-inRe[7], inIm[3]-inIm[7]

	o0Re, o0Im := oe0Re+oo0Re, oe0Im+oo0Im
	o1Re, o1Im := oe1Re+oo1Im, oe1Im-oo1Re
	o2Re, o2Im := oe0Re-oo0Re, oe0Im-oo0Im
	o3Re, o3Im := oe1Re-oo1Im, oe1Im+oo1Re

	t1Re := sqrt2Over2 * (o1Re + o1Im)
	t1Im := sqrt2Over2 * (o1Im - o1Re)
	t3Re := sqrt2Over2 * (-o3Re + o3Im)
	t3Im := sqrt2Over2 * (-o3Im - o3Re)

	outRe[0] = e0Re + o0Re
	outIm[0] = e0Im + o0Im
	outRe[1] = e1Re + t1Re
	outIm[1] = e1Im + t1Im
	outRe[2] = e2Re + o2Im
	outIm[2] = e2Im - o2Re
	outRe[3] = e3Re + t3Re
	outIm[3] = e3Im + t3Im
	outRe[4] = e0Re - o0Re
	outIm[4] = e0Im - o0Im
	outRe[5] = e1Re - t1Re
	outIm[5] = e1Im - t1Im
	outRe[6] = e2Re - o2Im
	outIm[6] = e2Im + o2Re
	outRe[7] = e3Re - t3Re
	outIm[7] = e3Im - t3Im
}

// fft16ForwardSoA is a radix-4 decomposition: four inline 4-point DFTs
// into a small staging buffer, then four twiddled radix-4 butterflies.
// This avoids the register pressure of a pure radix-2 16-point unroll.
func fft16ForwardSoA(inRe, inIm, outRe, outIm []float32) {
	var tr, ti [16]float32

	group := func(x0, x1, x2, x3 int, base int) {
		e0r, e0i := inRe[x0]+inRe[x2], inIm[x0]+inIm[x2]
		e1r, e1i := inRe[x0]-inRe[x2], inIm[x0]-inIm[x2]
		o0r, o0i := inRe[x1]+inRe[x3], inIm[x1]+inIm[x3]
		o1r, o1i := inRe[x1]-inRe[x3], inIm[x1]-inIm[x3]

		tr[base+0] = e0r + o0r
		ti[base+0] = e0i + o0i
		tr[base+1] = e1r + o1i
		ti[base+1] = e1i - o1r
		tr[base+2] = e0r - o0r
		ti[base+2] = e0i - o0i
		tr[base+3] = e1r - o1i
		ti[base+3] = e1i + o1r
	}

	group(0, 4, 8, 12, 0)
	group(1, 5, 9, 13, 4)
	group(2, 6, 10, 14, 8)
	group(3, 7, 11, 15, 12)

	butterfly := func(k int, br, bi, cr, ci, dr, di float32) {
		ar, ai := tr[k], ti[k]
		pr, pi := ar+cr, ai+ci
		qr, qi := br+dr, bi+di
		rr, ri := ar-cr, ai-ci
		sr, si := br-dr, bi-di

		outRe[k] = pr + qr
		outIm[k] = pi + qi
		outRe[k+4] = rr + si
		outIm[k+4] = ri - sr
		outRe[k+8] = pr - qr
		outIm[k+8] = pi - qi
		outRe[k+12] = rr - si
		outIm[k+12] = ri + sr
	}

	// k=0: all twiddles W16^0 = 1.
	butterfly(0, tr[4], ti[4], tr[8], ti[8], tr[12], ti[12])

	// k=1: W16^1=(cos(pi/8),-sin(pi/8)), W16^2=(S2,-S2), W16^3=(sin(pi/8),-cos(pi/8)).
	butterfly(1,
		cosPiOver8*tr[5]+sinPiOver8*ti[5], cosPiOver8*ti[5]-sinPiOver8*tr[5],
		sqrt2Over2*(tr[9]+ti[9]), sqrt2Over2*(ti[9]-tr[9]),
		sinPiOver8*tr[13]+cosPiOver8*ti[13], sinPiOver8*ti[13]-cosPiOver8*tr[13])

	// k=2: W16^2=(S2,-S2), W16^4=-j, W16^6=(-S2,-S2).
	butterfly(2,
		sqrt2Over2*(tr[6]+ti[6]), sqrt2Over2*(ti[6]-tr[6]),
		ti[10], -tr[10],
		sqrt2Over2*(-tr[14]+ti[14]), sqrt2Over2*(-ti[14]-tr[14]))

	// k=3: W16^3=(sin(pi/8),-cos(pi/8)), W16^6=(-S2,-S2), W16^9=(-cos(pi/8),sin(pi/8)).
	butterfly(3,
		sinPiOver8*tr[7]+cosPiOver8*ti[7], sinPiOver8*ti[7]-cosPiOver8*tr[7],
		sqrt2Over2*(-tr[11]+ti[11]), sqrt2Over2*(-ti[11]-tr[11]),
		-cosPiOver8*tr[15]-sinPiOver8*ti[15], sinPiOver8*tr[15]-cosPiOver8*ti[15])
}
