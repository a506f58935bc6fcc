package upscaler

import (
	"fmt"
	"image"

	"github.com/phambaophuc/image-upscaler/internal/parallel"
	"github.com/phambaophuc/image-upscaler/internal/resample"
)

// job is a single resize invocation. It owns dst until Resize returns.
type job struct {
	src    *resample.Image
	dst    *resample.Image
	sample resample.Sampler
	grid   parallel.Grid
	kind   resample.Kind
	tile   image.Point
}

func (u *Upscaler) newJob(src *resample.Image, scale float64, kind resample.Kind, tile image.Point) (*job, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if tile.X <= 0 || tile.Y <= 0 {
		return nil, fmt.Errorf("%w: tile size %dx%d", ErrInvalidDimension, tile.X, tile.Y)
	}
	dstW, dstH, err := TargetSize(src.Width, src.Height, scale)
	if err != nil {
		return nil, err
	}
	sample, err := u.sampler(kind)
	if err != nil {
		return nil, err
	}

	grid, err := parallel.NewGrid(dstW, dstH, tile.X, tile.Y)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDimension, err)
	}
	dst, err := resample.NewImage(dstW, dstH)
	if err != nil {
		return nil, err
	}

	return &job{
		src:    src,
		dst:    dst,
		sample: sample,
		grid:   grid,
		kind:   kind,
		tile:   tile,
	}, nil
}

// run fills the destination pixels covered by t. Coordinates past the
// destination edge are skipped, so tail tiles never write out of bounds.
func (j *job) run(t parallel.Tile) {
	dstW, dstH := j.dst.Width, j.dst.Height
	for y := t.Bounds.Min.Y; y < t.Bounds.Max.Y; y++ {
		if y >= dstH {
			return
		}
		for x := t.Bounds.Min.X; x < t.Bounds.Max.X; x++ {
			if x >= dstW {
				break
			}
			j.dst.Set(x, y, j.sample(j.src, x, y, dstW, dstH))
		}
	}
}
