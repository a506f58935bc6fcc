// Package resample implements per-pixel resampling kernels over RGBA images.
package resample

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Channels is the number of components stored per pixel.
const Channels = 4

var (
	// ErrInvalidDimension is returned when an image or destination size is not positive.
	ErrInvalidDimension = errors.New("resample: invalid dimension")

	// ErrUnsupportedKernel is returned when no sampler is registered for a kind.
	ErrUnsupportedKernel = errors.New("resample: unsupported kernel")
)

// Color is a linear RGBA sample with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Image is a grid of RGBA samples stored as normalized float32.
//
// Pix holds Width*Height*Channels components in row-major order. Stride is the
// number of components between vertically adjacent pixels.
type Image struct {
	Width  int
	Height int
	Stride int
	Pix    []float32
}

// NewImage allocates a zeroed image of the given size.
func NewImage(width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimension, width, height)
	}
	return &Image{
		Width:  width,
		Height: height,
		Stride: width * Channels,
		Pix:    make([]float32, width*height*Channels),
	}, nil
}

// Validate reports whether the image satisfies its shape invariants.
func (m *Image) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil image", ErrInvalidDimension)
	}
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimension, m.Width, m.Height)
	}
	if m.Stride != m.Width*Channels || len(m.Pix) != m.Width*m.Height*Channels {
		return fmt.Errorf("%w: buffer length %d does not match %dx%d",
			ErrInvalidDimension, len(m.Pix), m.Width, m.Height)
	}
	return nil
}

// PixOffset returns the index of the first component of pixel (x, y).
func (m *Image) PixOffset(x, y int) int {
	return y*m.Stride + x*Channels
}

// At returns the sample at (x, y). Coordinates must be in range.
func (m *Image) At(x, y int) Color {
	i := m.PixOffset(x, y)
	p := m.Pix[i : i+Channels : i+Channels]
	return Color{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// Set stores c at (x, y). Coordinates must be in range.
func (m *Image) Set(x, y int, c Color) {
	i := m.PixOffset(x, y)
	p := m.Pix[i : i+Channels : i+Channels]
	p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
}

// FromImage converts any decoded image into a normalized float image.
// Samples are taken from the non-premultiplied representation.
func FromImage(src image.Image) (*Image, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil source", ErrInvalidDimension)
	}
	nrgba := imaging.Clone(src)
	b := nrgba.Bounds()
	m, err := NewImage(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	for y := range m.Height {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+m.Width*Channels]
		dst := m.Pix[y*m.Stride : y*m.Stride+m.Width*Channels]
		for i, v := range row {
			dst[i] = float32(v) / 255
		}
	}
	return m, nil
}

// ToNRGBA converts the image to 8-bit non-premultiplied RGBA, clamping
// components that overshoot [0, 1].
func (m *Image) ToNRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := range m.Height {
		src := m.Pix[y*m.Stride : y*m.Stride+m.Width*Channels]
		dst := out.Pix[y*out.Stride : y*out.Stride+m.Width*Channels]
		for i, v := range src {
			dst[i] = toByte(v)
		}
	}
	return out
}

// NRGBA returns the color as an 8-bit non-premultiplied color.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: toByte(c.R), G: toByte(c.G), B: toByte(c.B), A: toByte(c.A)}
}

func toByte(v float32) uint8 {
	v = v*255 + 0.5
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

func lerpColor(a, b Color, t float32) Color {
	return Color{
		R: lerp(a.R, b.R, t),
		G: lerp(a.G, b.G, t),
		B: lerp(a.B, b.B, t),
		A: lerp(a.A, b.A, t),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
