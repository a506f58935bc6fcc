package processor

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/phambaophuc/image-upscaler/internal/resample"
	"github.com/phambaophuc/image-upscaler/internal/upscaler"
	"go.uber.org/zap"
)

func (p *ImageProcessor) upscaleImage(ctx context.Context, img image.Image, opts Options) (*image.NRGBA, error) {
	b := img.Bounds()
	dstW, dstH, err := upscaler.TargetSize(b.Dx(), b.Dy(), opts.Scale)
	if err != nil {
		return nil, err
	}
	if limit := p.cfg.MaxOutputPixels; limit > 0 && int64(dstW)*int64(dstH) > limit {
		return nil, fmt.Errorf("%w: output %dx%d exceeds %d pixels",
			upscaler.ErrInvalidDimension, dstW, dstH, limit)
	}

	src, err := resample.FromImage(img)
	if err != nil {
		return nil, err
	}

	dst, err := p.upscaler.Resize(ctx, src, opts.Scale, opts.Kernel, opts.Tile)
	if errors.Is(err, upscaler.ErrDeviceUnavailable) && p.fallback != nil {
		p.logger.Warn("Upscale backend unavailable, retrying on fallback",
			zap.String("kernel", opts.Kernel.String()),
			zap.Error(err))
		dst, err = p.fallback.Resize(ctx, src, opts.Scale, opts.Kernel, opts.Tile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to upscale image: %w", err)
	}

	return dst.ToNRGBA(), nil
}
