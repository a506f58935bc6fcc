package processor

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/phambaophuc/image-upscaler/internal/upscaler"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ValidateImage checks the byte limit, that the header decodes as a
// supported image and that its pixel count is within MaxSourcePixels.
// The reader is rewound before returning.
func (p *ImageProcessor) ValidateImage(file io.ReadSeeker, maxSize int64) error {
	size, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("failed to determine file size: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind file: %w", err)
	}

	if size > maxSize {
		return fmt.Errorf("file size %d exceeds maximum allowed size %d", size, maxSize)
	}

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return fmt.Errorf("invalid image format: %w", err)
	}
	if err := p.checkSourceSize(cfg); err != nil {
		return err
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind file: %w", err)
	}
	return nil
}

func (p *ImageProcessor) checkSourceSize(cfg image.Config) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: image dimensions %dx%d", upscaler.ErrInvalidDimension, cfg.Width, cfg.Height)
	}
	if limit := p.cfg.MaxSourcePixels; limit > 0 && int64(cfg.Width)*int64(cfg.Height) > limit {
		return fmt.Errorf("%w: source %dx%d exceeds %d pixels",
			upscaler.ErrInvalidDimension, cfg.Width, cfg.Height, limit)
	}
	return nil
}

// decodeImage reads the header first and refuses oversized sources before
// any pixel buffer is allocated.
func (p *ImageProcessor) decodeImage(r io.Reader) (image.Image, string, error) {
	var head bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	if err := p.checkSourceSize(cfg); err != nil {
		return nil, "", err
	}

	img, format, err := image.Decode(io.MultiReader(&head, r))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}
