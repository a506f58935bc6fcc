package processor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/phambaophuc/image-upscaler/internal/config"
	"github.com/phambaophuc/image-upscaler/internal/models"
	"github.com/phambaophuc/image-upscaler/internal/resample"
	"github.com/phambaophuc/image-upscaler/internal/upscaler"
	"go.uber.org/zap"
)

const (
	DefaultQuality = 85
	DefaultWorkers = 5
	DefaultFormat  = models.FormatPNG
)

// Options is an UpscaleRequest with defaults applied and names resolved.
type Options struct {
	Scale   float64
	Kernel  resample.Kind
	Tile    image.Point
	Format  string // format actually encoded
	Quality int
	Crop    *models.CropRequest

	// LanczosWindow is the configured window; it changes Lanczos output.
	LanczosWindow int
}

// Result is an encoded upscaled image.
type Result struct {
	Buffer     *bytes.Buffer
	Format     string
	Image      image.Image
	SourceSize models.ImageSize
	Size       models.ImageSize
	Scale      float64
	Kernel     resample.Kind
}

type ImageProcessor struct {
	upscaler *upscaler.Upscaler
	fallback *upscaler.Upscaler
	cfg      config.UpscaleConfig
	logger   *zap.Logger
}

// NewImageProcessor wires the processor to an upscaler. fallback may be nil;
// when set it is used once if the primary backend is unavailable.
func NewImageProcessor(up, fallback *upscaler.Upscaler, cfg config.UpscaleConfig, logger *zap.Logger) *ImageProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageProcessor{
		upscaler: up,
		fallback: fallback,
		cfg:      cfg,
		logger:   logger,
	}
}

// ResolveOptions fills request defaults from configuration.
func (p *ImageProcessor) ResolveOptions(req *models.UpscaleRequest) (Options, error) {
	if req == nil {
		req = &models.UpscaleRequest{}
	}

	opts := Options{
		Scale:         req.Scale,
		Tile:          image.Pt(req.TileWidth, req.TileHeight),
		Format:        strings.ToLower(req.Format),
		Quality:       req.Quality,
		Crop:          req.Crop,
		LanczosWindow: p.cfg.LanczosWindow,
	}
	if opts.Scale == 0 {
		opts.Scale = p.cfg.DefaultScale
	}
	if opts.Tile.X == 0 {
		opts.Tile.X = p.cfg.TileWidth
	}
	if opts.Tile.Y == 0 {
		opts.Tile.Y = p.cfg.TileHeight
	}
	if opts.Format == "" {
		opts.Format = DefaultFormat
	}
	if opts.Quality <= 0 {
		opts.Quality = DefaultQuality
	}
	opts.Quality = min(100, opts.Quality)

	kernel := req.Kernel
	if kernel == "" {
		kernel = p.cfg.DefaultKernel
	}
	kind, err := resample.ParseKind(kernel)
	if err != nil {
		return Options{}, err
	}
	opts.Kernel = kind

	if opts.LanczosWindow == 0 {
		opts.LanczosWindow = resample.DefaultLanczosWindow
	}

	if _, err := encodingFormat(opts.Format); err != nil {
		return Options{}, err
	}
	// webp has no encoder and jpg is an alias; report what is written.
	opts.Format = Extension(opts.Format)
	return opts, nil
}

// ProcessImage decodes r, applies the optional crop, upscales and encodes the result.
func (p *ImageProcessor) ProcessImage(ctx context.Context, r io.Reader, req *models.UpscaleRequest) (*Result, error) {
	opts, err := p.ResolveOptions(req)
	if err != nil {
		return nil, err
	}

	img, _, err := p.decodeImage(r)
	if err != nil {
		return nil, err
	}

	if opts.Crop != nil {
		img = p.cropImage(img, opts.Crop)
	}

	upscaled, err := p.upscaleImage(ctx, img, opts)
	if err != nil {
		return nil, err
	}

	buffer := &bytes.Buffer{}
	if err := p.encodeImage(buffer, upscaled, opts.Format, opts.Quality); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	src := img.Bounds()
	dst := upscaled.Bounds()
	return &Result{
		Buffer:     buffer,
		Format:     opts.Format,
		Image:      upscaled,
		SourceSize: models.ImageSize{Width: src.Dx(), Height: src.Dy()},
		Size:       models.ImageSize{Width: dst.Dx(), Height: dst.Dy()},
		Scale:      opts.Scale,
		Kernel:     opts.Kernel,
	}, nil
}
