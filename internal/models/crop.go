package models

import "image"

// CropRequest selects a source region before upscaling. Regions reaching
// past the image are clipped; see Clip.
type CropRequest struct {
	X      int `json:"x" binding:"min=0"`
	Y      int `json:"y" binding:"min=0"`
	Width  int `json:"width" binding:"required,min=1"`
	Height int `json:"height" binding:"required,min=1"`
}

// Clip returns the crop rectangle inside bounds. The origin is clamped into
// the image and the size is shrunk to fit, keeping at least one pixel.
func (c CropRequest) Clip(bounds image.Rectangle) image.Rectangle {
	x := max(0, min(c.X, bounds.Dx()-1))
	y := max(0, min(c.Y, bounds.Dy()-1))
	width := max(1, min(c.Width, bounds.Dx()-x))
	height := max(1, min(c.Height, bounds.Dy()-y))

	return image.Rect(x, y, x+width, y+height).Add(bounds.Min)
}
