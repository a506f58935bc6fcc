package resample

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-5

func gray(v float32) Color { return Color{R: v, G: v, B: v, A: 1} }

func newTestImage(t *testing.T, w, h int, fill func(x, y int) Color) *Image {
	t.Helper()
	m, err := NewImage(w, h)
	require.NoError(t, err)
	for y := range h {
		for x := range w {
			m.Set(x, y, fill(x, y))
		}
	}
	return m
}

func gradient(t *testing.T, w, h int) *Image {
	return newTestImage(t, w, h, func(x, y int) Color {
		return Color{
			R: float32(x) / float32(w),
			G: float32(y) / float32(h),
			B: float32((x*7+y*13)%11) / 10,
			A: 1,
		}
	})
}

func assertColorInDelta(t *testing.T, want, got Color, delta float64, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, want.R, got.R, delta, msgAndArgs...)
	assert.InDelta(t, want.G, got.G, delta, msgAndArgs...)
	assert.InDelta(t, want.B, got.B, delta, msgAndArgs...)
	assert.InDelta(t, want.A, got.A, delta, msgAndArgs...)
}

func TestNewImage(t *testing.T) {
	m, err := NewImage(3, 2)
	require.NoError(t, err)
	assert.Equal(t, 12, m.Stride)
	assert.Len(t, m.Pix, 24)
	assert.NoError(t, m.Validate())

	for _, size := range [][2]int{{0, 1}, {1, 0}, {-2, 3}} {
		_, err := NewImage(size[0], size[1])
		assert.ErrorIs(t, err, ErrInvalidDimension, "size %v", size)
	}
}

func TestImageValidate(t *testing.T) {
	var nilImage *Image
	assert.ErrorIs(t, nilImage.Validate(), ErrInvalidDimension)

	short := &Image{Width: 2, Height: 2, Stride: 8, Pix: make([]float32, 12)}
	assert.ErrorIs(t, short.Validate(), ErrInvalidDimension)
}

func TestFromImageRoundTrip(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{G: 128, A: 255})
	src.SetNRGBA(2, 1, color.NRGBA{B: 10, A: 40})

	m, err := FromImage(src)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Width)
	assert.Equal(t, 2, m.Height)
	assert.InDelta(t, 1.0, m.At(0, 0).R, tolerance)
	assert.InDelta(t, 128.0/255, m.At(1, 0).G, tolerance)

	assert.Equal(t, src.Pix, m.ToNRGBA().Pix)
}

func TestFromImageNil(t *testing.T) {
	_, err := FromImage(nil)
	assert.ErrorIs(t, err, ErrInvalidDimension)
}

func TestToNRGBAClampsOvershoot(t *testing.T) {
	m := newTestImage(t, 1, 1, func(int, int) Color {
		return Color{R: 1.3, G: -0.2, B: 0.5, A: 1}
	})
	px := m.ToNRGBA().NRGBAAt(0, 0)
	assert.Equal(t, color.NRGBA{R: 255, G: 0, B: 128, A: 255}, px)
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{Bilinear, Lanczos, Nearest, Bicubic} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	got, err := ParseKind("  LANCZOS ")
	require.NoError(t, err)
	assert.Equal(t, Lanczos, got)

	_, err = ParseKind("mitchell")
	assert.ErrorIs(t, err, ErrUnsupportedKernel)
}

func TestLookup(t *testing.T) {
	for _, k := range []Kind{Bilinear, Lanczos, Nearest, Bicubic} {
		s, err := Lookup(k)
		require.NoError(t, err, k.String())
		assert.NotNil(t, s)
	}

	_, err := Lookup(Kind(200))
	assert.ErrorIs(t, err, ErrUnsupportedKernel)
	assert.Equal(t, "kind(200)", Kind(200).String())
}

func TestRegister(t *testing.T) {
	const custom = Kind(100)
	Register(custom, func(*Image, int, int, int, int) Color { return gray(0.25) })
	t.Cleanup(func() {
		samplersMu.Lock()
		delete(samplers, custom)
		samplersMu.Unlock()
	})

	s, err := Lookup(custom)
	require.NoError(t, err)
	assert.Equal(t, gray(0.25), s(nil, 0, 0, 1, 1))
}

func TestBilinearIdentityAtScaleOne(t *testing.T) {
	src := gradient(t, 5, 4)
	for y := range 4 {
		for x := range 5 {
			assert.Equal(t, src.At(x, y), SampleBilinear(src, x, y, 5, 4))
		}
	}
}

func TestBilinearExactOnAlignedCentres(t *testing.T) {
	src := gradient(t, 4, 3)
	const s = 3
	for y := range 3 {
		for x := range 4 {
			got := SampleBilinear(src, x*s+1, y*s+1, 4*s, 3*s)
			assertColorInDelta(t, src.At(x, y), got, tolerance, "pixel %d,%d", x, y)
		}
	}
}

func TestBilinearCheckerboard(t *testing.T) {
	black, white := gray(0), gray(1)
	src := newTestImage(t, 2, 2, func(x, y int) Color {
		if (x+y)%2 == 0 {
			return black
		}
		return white
	})

	tests := []struct {
		name string
		x, y int
		want float32
	}{
		{"corner clamps to black", 0, 0, 0},
		{"corner clamps to white", 3, 0, 1},
		{"centre near black", 1, 1, 0.375},
		{"centre near white", 2, 1, 0.625},
		{"centre near white below", 1, 2, 0.625},
		{"centre near black below", 2, 2, 0.375},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SampleBilinear(src, tt.x, tt.y, 4, 4)
			assert.InDelta(t, tt.want, got.R, tolerance)
			assert.InDelta(t, 1.0, got.A, tolerance)
		})
	}
}

func TestSinglePixelSourceIsConstant(t *testing.T) {
	want := Color{R: 0.2, G: 0.4, B: 0.6, A: 0.8}
	src := newTestImage(t, 1, 1, func(int, int) Color { return want })

	kernels := map[string]Sampler{
		"bilinear": SampleBilinear,
		"lanczos":  mustLanczos(3),
		"lanczos1": mustLanczos(1),
		"nearest":  SampleNearest,
		"bicubic":  SampleBicubic,
	}
	for name, s := range kernels {
		t.Run(name, func(t *testing.T) {
			for _, dst := range [][2]int{{1, 1}, {3, 3}, {7, 2}} {
				for y := range dst[1] {
					for x := range dst[0] {
						assertColorInDelta(t, want, s(src, x, y, dst[0], dst[1]), tolerance)
					}
				}
			}
		})
	}
}

func TestLanczosWeight(t *testing.T) {
	assert.Equal(t, 1.0, LanczosWeight(0, 3))
	assert.Equal(t, 0.0, LanczosWeight(3, 3))
	assert.Equal(t, 0.0, LanczosWeight(-4.5, 3))
	assert.InDelta(t, 0.0, LanczosWeight(1, 3), 1e-12)
	assert.InDelta(t, LanczosWeight(0.7, 3), LanczosWeight(-0.7, 3), 1e-12)
	assert.Greater(t, LanczosWeight(0.5, 3), 0.0)
}

func TestLanczosAxisWeightsNormalized(t *testing.T) {
	for _, a := range []int{1, 2, 3, 5} {
		for _, size := range []int{1, 2, 5, 40} {
			for dst := range 3 * size {
				s := sourceCoord(dst, size, 3*size)
				idx := make([]int, 2*a)
				w := make([]float64, 2*a)
				lanczosAxis(s, size, a, idx, w)

				var sum float64
				for i, v := range w {
					sum += v
					assert.GreaterOrEqual(t, idx[i], 0)
					assert.Less(t, idx[i], size)
				}
				assert.InDelta(t, 1.0, sum, 1e-9, "a=%d size=%d dst=%d", a, size, dst)
			}
		}
	}
}

func TestLanczosSamplerRejectsWindow(t *testing.T) {
	_, err := LanczosSampler(0)
	assert.ErrorIs(t, err, ErrInvalidDimension)
}

// lanczosDirect evaluates the 2D kernel as a single weighted sum.
func lanczosDirect(src *Image, dstX, dstY, dstW, dstH, a int) Color {
	xi, wx := make([]int, 2*a), make([]float64, 2*a)
	yi, wy := make([]int, 2*a), make([]float64, 2*a)
	lanczosAxis(sourceCoord(dstX, src.Width, dstW), src.Width, a, xi, wx)
	lanczosAxis(sourceCoord(dstY, src.Height, dstH), src.Height, a, yi, wy)

	var r, g, b, al float64
	for j := range yi {
		for i := range xi {
			c := src.At(xi[i], yi[j])
			w := wx[i] * wy[j]
			r += w * float64(c.R)
			g += w * float64(c.G)
			b += w * float64(c.B)
			al += w * float64(c.A)
		}
	}
	return Color{R: float32(r), G: float32(g), B: float32(b), A: float32(al)}
}

func TestLanczosSeparableMatchesDirect(t *testing.T) {
	src := gradient(t, 7, 5)
	for _, a := range []int{2, 3, maxStackWindow + 2} {
		for y := range 12 {
			for x := range 17 {
				want := lanczosDirect(src, x, y, 17, 12, a)
				got := SampleLanczos(src, x, y, 17, 12, a)
				assertColorInDelta(t, want, got, tolerance)
			}
		}
	}
}

func TestSampleLanczosDoesNotAllocate(t *testing.T) {
	src := gradient(t, 8, 8)
	for _, a := range []int{1, DefaultLanczosWindow, maxStackWindow} {
		allocs := testing.AllocsPerRun(100, func() {
			SampleLanczos(src, 5, 7, 19, 23, a)
		})
		assert.Zero(t, allocs, "a=%d", a)
	}
}

func TestLanczosIdentityAtScaleOne(t *testing.T) {
	src := gradient(t, 6, 6)
	for y := range 6 {
		for x := range 6 {
			assertColorInDelta(t, src.At(x, y), SampleLanczos(src, x, y, 6, 6, 3), tolerance)
		}
	}
}

func TestLanczosPreservesFlatField(t *testing.T) {
	src := newTestImage(t, 5, 3, func(int, int) Color { return gray(0.5) })
	for y := range 9 {
		for x := range 15 {
			got := SampleLanczos(src, x, y, 15, 9, 3)
			assert.False(t, math.IsNaN(float64(got.R)))
			assertColorInDelta(t, gray(0.5), got, tolerance)
		}
	}
}

func TestNearest(t *testing.T) {
	src := gradient(t, 2, 2)
	assert.Equal(t, src.At(0, 0), SampleNearest(src, 0, 0, 4, 4))
	assert.Equal(t, src.At(0, 0), SampleNearest(src, 1, 1, 4, 4))
	assert.Equal(t, src.At(1, 1), SampleNearest(src, 3, 3, 4, 4))
}

func TestCubicWeightPartitionOfUnity(t *testing.T) {
	for _, tx := range []float64{0, 0.1, 0.5, 0.9} {
		sum := cubicWeight(tx+1) + cubicWeight(tx) + cubicWeight(tx-1) + cubicWeight(tx-2)
		assert.InDelta(t, 1.0, sum, 1e-12)
	}
}
