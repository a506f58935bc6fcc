package resample

import (
	"fmt"
	"math"
)

// DefaultLanczosWindow is the default Lanczos support radius a.
const DefaultLanczosWindow = 3

// maxStackWindow is the largest window whose taps fit in fixed arrays.
const maxStackWindow = 8

// LanczosSampler returns a Lanczos sampler with window a.
func LanczosSampler(a int) (Sampler, error) {
	if a < 1 {
		return nil, fmt.Errorf("%w: lanczos window %d", ErrInvalidDimension, a)
	}
	return func(src *Image, dstX, dstY, dstW, dstH int) Color {
		return SampleLanczos(src, dstX, dstY, dstW, dstH, a)
	}, nil
}

func mustLanczos(a int) Sampler {
	s, err := LanczosSampler(a)
	if err != nil {
		panic(err)
	}
	return s
}

// SampleLanczos filters the 2a x 2a source neighbourhood of the mapped centre
// with a separable Lanczos kernel. Weights on each axis are normalized to sum
// to one, and sample indices are clamped to the image edge.
func SampleLanczos(src *Image, dstX, dstY, dstW, dstH, a int) Color {
	taps := 2 * a

	var idxBuf [4 * maxStackWindow]int
	var wBuf [4 * maxStackWindow]float64
	idx, w := idxBuf[:], wBuf[:]
	if a > maxStackWindow {
		idx, w = make([]int, 2*taps), make([]float64, 2*taps)
	}
	idx, w = idx[:2*taps], w[:2*taps]

	xi, yi := idx[:taps], idx[taps:]
	wx, wy := w[:taps], w[taps:]

	lanczosAxis(sourceCoord(dstX, src.Width, dstW), src.Width, a, xi, wx)
	lanczosAxis(sourceCoord(dstY, src.Height, dstH), src.Height, a, yi, wy)

	var r, g, b, al float64
	for j, y := range yi {
		var rr, rg, rb, ra float64
		row := y * src.Stride
		for i, x := range xi {
			p := src.Pix[row+x*Channels : row+x*Channels+Channels]
			rr += wx[i] * float64(p[0])
			rg += wx[i] * float64(p[1])
			rb += wx[i] * float64(p[2])
			ra += wx[i] * float64(p[3])
		}
		r += wy[j] * rr
		g += wy[j] * rg
		b += wy[j] * rb
		al += wy[j] * ra
	}
	return Color{R: float32(r), G: float32(g), B: float32(b), A: float32(al)}
}

// lanczosAxis fills idx and w with the 2a integer taps nearest to s.
// Indices are clamped to [0, size-1]; weights are normalized.
func lanczosAxis(s float64, size, a int, idx []int, w []float64) {
	base := int(math.Floor(s)) - a + 1
	var sum float64
	for i := range idx {
		p := base + i
		w[i] = LanczosWeight(s-float64(p), a)
		idx[i] = clamp(p, 0, size-1)
		sum += w[i]
	}
	if sum == 0 {
		// Only reachable through float underflow; fall back to the nearest tap.
		clear(w)
		w[a-1] = 1
		return
	}
	for i := range w {
		w[i] /= sum
	}
}

// LanczosWeight evaluates sinc(x)*sinc(x/a) for |x| < a and 0 elsewhere.
func LanczosWeight(x float64, a int) float64 {
	if x == 0 {
		return 1
	}
	fa := float64(a)
	if x <= -fa || x >= fa {
		return 0
	}
	return sinc(x) * sinc(x/fa)
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	x *= math.Pi
	return math.Sin(x) / x
}
