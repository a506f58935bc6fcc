package models

type UpscaleRequest struct {
	Scale      float64      `json:"scale,omitempty" binding:"omitempty,gt=0"`
	Kernel     string       `json:"kernel" binding:"omitempty,oneof=bilinear lanczos nearest bicubic"`
	TileWidth  int          `json:"tile_width,omitempty" binding:"omitempty,min=1"`
	TileHeight int          `json:"tile_height,omitempty" binding:"omitempty,min=1"`
	Format     string       `json:"format,omitempty" binding:"omitempty,oneof=png jpeg gif bmp tiff webp"`
	Quality    int          `json:"quality,omitempty" binding:"omitempty,min=1,max=100"`
	Crop       *CropRequest `json:"crop,omitempty"`
}

type ImageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatGIF  = "gif"
	FormatBMP  = "bmp"
	FormatTIFF = "tiff"
	FormatWebP = "webp"
)
