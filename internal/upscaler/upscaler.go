// Package upscaler resizes images by running a resampling kernel over a tile
// grid of the destination.
package upscaler

import (
	"context"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/phambaophuc/image-upscaler/internal/parallel"
	"github.com/phambaophuc/image-upscaler/internal/resample"
	"go.uber.org/zap"
)

// Errors reported by Resize. Callers match them with errors.Is.
var (
	ErrInvalidDimension  = resample.ErrInvalidDimension
	ErrUnsupportedKernel = resample.ErrUnsupportedKernel
	ErrDeviceUnavailable = parallel.ErrDeviceUnavailable
)

// DefaultTileSize is the default work-group size in destination pixels.
var DefaultTileSize = image.Pt(16, 16)

// Upscaler dispatches resize jobs to an executor.
// It holds no per-job state and is safe for concurrent use.
type Upscaler struct {
	exec      parallel.Executor
	logger    *zap.Logger
	lanczosA  int
	overrides map[resample.Kind]resample.Sampler
}

// Option configures an Upscaler.
type Option func(*Upscaler)

// WithLogger sets the logger used for job diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(u *Upscaler) {
		if logger != nil {
			u.logger = logger
		}
	}
}

// WithLanczosWindow sets the Lanczos support radius used for resample.Lanczos.
func WithLanczosWindow(a int) Option {
	return func(u *Upscaler) {
		u.lanczosA = a
	}
}

// WithSampler overrides the sampler used for kind on this Upscaler only.
func WithSampler(kind resample.Kind, s resample.Sampler) Option {
	return func(u *Upscaler) {
		u.overrides[kind] = s
	}
}

// New returns an Upscaler that submits tiles to exec.
func New(exec parallel.Executor, opts ...Option) *Upscaler {
	u := &Upscaler{
		exec:      exec,
		logger:    zap.NewNop(),
		lanczosA:  resample.DefaultLanczosWindow,
		overrides: make(map[resample.Kind]resample.Sampler),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// TargetSize returns the destination size for scaling w x h by scale.
// Dimensions are truncated toward zero.
func TargetSize(w, h int, scale float64) (int, int, error) {
	if !(scale > 0) || math.IsInf(scale, 0) {
		return 0, 0, fmt.Errorf("%w: scale %v", ErrInvalidDimension, scale)
	}
	fw := math.Floor(scale * float64(w))
	fh := math.Floor(scale * float64(h))
	if fw < 1 || fh < 1 || fw > math.MaxInt32 || fh > math.MaxInt32 {
		return 0, 0, fmt.Errorf("%w: %dx%d scaled by %v gives %.0fx%.0f",
			ErrInvalidDimension, w, h, scale, fw, fh)
	}
	return int(fw), int(fh), nil
}

// Resize returns src scaled by scale using the kernel selected by kind.
//
// The destination is split into tiles of tile.X x tile.Y pixels which are run
// by the executor. All validation happens before dispatch. On error the
// partially written destination is discarded.
func (u *Upscaler) Resize(ctx context.Context, src *resample.Image, scale float64, kind resample.Kind, tile image.Point) (*resample.Image, error) {
	j, err := u.newJob(src, scale, kind, tile)
	if err != nil {
		return nil, err
	}
	if u.exec == nil {
		return nil, fmt.Errorf("%w: no executor configured", ErrDeviceUnavailable)
	}

	start := time.Now()
	if err := u.exec.Dispatch(ctx, j.grid, j.run); err != nil {
		return nil, fmt.Errorf("failed to dispatch %s resize: %w", j.kind, err)
	}

	u.logger.Debug("Resize completed",
		zap.String("kernel", j.kind.String()),
		zap.Int("src_width", src.Width),
		zap.Int("src_height", src.Height),
		zap.Int("dst_width", j.dst.Width),
		zap.Int("dst_height", j.dst.Height),
		zap.Int("tile_width", j.tile.X),
		zap.Int("tile_height", j.tile.Y),
		zap.Int("tiles", j.grid.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return j.dst, nil
}

func (u *Upscaler) sampler(kind resample.Kind) (resample.Sampler, error) {
	if s, ok := u.overrides[kind]; ok && s != nil {
		return s, nil
	}
	if kind == resample.Lanczos && u.lanczosA != resample.DefaultLanczosWindow {
		return resample.LanczosSampler(u.lanczosA)
	}
	return resample.Lookup(kind)
}
