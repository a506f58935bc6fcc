package resample

import "math"

// SampleBicubic applies a Catmull-Rom filter to the 4x4 neighbourhood of the
// mapped centre, clamping indices to the image edge.
func SampleBicubic(src *Image, dstX, dstY, dstW, dstH int) Color {
	sx := sourceCoord(dstX, src.Width, dstW)
	sy := sourceCoord(dstY, src.Height, dstH)

	x := int(math.Floor(sx))
	y := int(math.Floor(sy))
	tx := sx - float64(x)
	ty := sy - float64(y)

	wx := [4]float64{cubicWeight(tx + 1), cubicWeight(tx), cubicWeight(tx - 1), cubicWeight(tx - 2)}
	wy := [4]float64{cubicWeight(ty + 1), cubicWeight(ty), cubicWeight(ty - 1), cubicWeight(ty - 2)}

	var r, g, b, a float64
	for j := range 4 {
		py := clamp(y+j-1, 0, src.Height-1)
		for i := range 4 {
			px := clamp(x+i-1, 0, src.Width-1)
			c := src.At(px, py)
			w := wx[i] * wy[j]
			r += w * float64(c.R)
			g += w * float64(c.G)
			b += w * float64(c.B)
			a += w * float64(c.A)
		}
	}
	return Color{R: float32(r), G: float32(g), B: float32(b), A: float32(a)}
}

// cubicWeight is the Catmull-Rom kernel (B=0, C=0.5).
func cubicWeight(t float64) float64 {
	t = math.Abs(t)
	switch {
	case t < 1:
		return 1.5*t*t*t - 2.5*t*t + 1
	case t < 2:
		return -0.5*t*t*t + 2.5*t*t - 4*t + 2
	default:
		return 0
	}
}
