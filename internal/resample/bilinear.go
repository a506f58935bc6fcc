package resample

import "math"

// SampleBilinear blends the four source pixels around the mapped centre of
// (dstX, dstY). Neighbour indices are clamped to the image edge.
func SampleBilinear(src *Image, dstX, dstY, dstW, dstH int) Color {
	sx := sourceCoord(dstX, src.Width, dstW)
	sy := sourceCoord(dstY, src.Height, dstH)

	x0 := int(math.Floor(sx))
	y0 := int(math.Floor(sy))
	fx := float32(sx - float64(x0))
	fy := float32(sy - float64(y0))

	x1 := clamp(x0+1, 0, src.Width-1)
	y1 := clamp(y0+1, 0, src.Height-1)
	x0 = clamp(x0, 0, src.Width-1)
	y0 = clamp(y0, 0, src.Height-1)

	top := lerpColor(src.At(x0, y0), src.At(x1, y0), fx)
	bottom := lerpColor(src.At(x0, y1), src.At(x1, y1), fx)
	return lerpColor(top, bottom, fy)
}

// SampleNearest returns the source pixel closest to the mapped centre.
func SampleNearest(src *Image, dstX, dstY, dstW, dstH int) Color {
	x := int(math.Floor(sourceCoord(dstX, src.Width, dstW) + 0.5))
	y := int(math.Floor(sourceCoord(dstY, src.Height, dstH) + 0.5))
	return src.At(clamp(x, 0, src.Width-1), clamp(y, 0, src.Height-1))
}
