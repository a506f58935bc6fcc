package processor

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/phambaophuc/image-upscaler/internal/config"
	"github.com/phambaophuc/image-upscaler/internal/models"
	"github.com/phambaophuc/image-upscaler/internal/parallel"
	"github.com/phambaophuc/image-upscaler/internal/resample"
	"github.com/phambaophuc/image-upscaler/internal/upscaler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testConfig() config.UpscaleConfig {
	return config.UpscaleConfig{
		DefaultScale:    2,
		DefaultKernel:   "lanczos",
		TileWidth:       16,
		TileHeight:      16,
		LanczosWindow:   3,
		MaxOutputPixels: 1 << 20,
		MaxSourcePixels: 64 * 64,
	}
}

func newTestProcessor(t *testing.T) *ImageProcessor {
	t.Helper()
	up := upscaler.New(parallel.Serial{})
	return NewImageProcessor(up, nil, testConfig(), zaptest.NewLogger(t))
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 40), G: uint8(y * 40), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestResolveOptionsDefaults(t *testing.T) {
	p := newTestProcessor(t)

	opts, err := p.ResolveOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, 2.0, opts.Scale)
	assert.Equal(t, resample.Lanczos, opts.Kernel)
	assert.Equal(t, image.Pt(16, 16), opts.Tile)
	assert.Equal(t, models.FormatPNG, opts.Format)
	assert.Equal(t, DefaultQuality, opts.Quality)

	opts, err = p.ResolveOptions(&models.UpscaleRequest{
		Scale: 3, Kernel: "Bilinear", TileWidth: 8, Format: "JPEG", Quality: 250,
	})
	require.NoError(t, err)
	assert.Equal(t, 3.0, opts.Scale)
	assert.Equal(t, resample.Bilinear, opts.Kernel)
	assert.Equal(t, image.Pt(8, 16), opts.Tile)
	assert.Equal(t, models.FormatJPEG, opts.Format)
	assert.Equal(t, 100, opts.Quality)
}

func TestResolveOptionsReportsEncodedFormat(t *testing.T) {
	p := newTestProcessor(t)

	for requested, encoded := range map[string]string{
		"webp": models.FormatPNG,
		"WEBP": models.FormatPNG,
		"jpg":  models.FormatJPEG,
		"tiff": "tiff",
	} {
		opts, err := p.ResolveOptions(&models.UpscaleRequest{Format: requested})
		require.NoError(t, err, requested)
		assert.Equal(t, encoded, opts.Format, requested)
	}
}

func TestResolveOptionsRejects(t *testing.T) {
	p := newTestProcessor(t)

	_, err := p.ResolveOptions(&models.UpscaleRequest{Kernel: "mitchell"})
	assert.ErrorIs(t, err, resample.ErrUnsupportedKernel)

	_, err = p.ResolveOptions(&models.UpscaleRequest{Format: "avif"})
	assert.Error(t, err)
}

func TestProcessImage(t *testing.T) {
	p := newTestProcessor(t)

	for _, kernel := range []string{"bilinear", "lanczos", "bicubic", "nearest"} {
		t.Run(kernel, func(t *testing.T) {
			res, err := p.ProcessImage(context.Background(), bytes.NewReader(encodePNG(t, 5, 3)),
				&models.UpscaleRequest{Scale: 2.5, Kernel: kernel})
			require.NoError(t, err)

			assert.Equal(t, models.ImageSize{Width: 5, Height: 3}, res.SourceSize)
			assert.Equal(t, models.ImageSize{Width: 12, Height: 7}, res.Size)
			assert.Equal(t, models.FormatPNG, res.Format)

			decoded, err := png.Decode(res.Buffer)
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 12, 7), decoded.Bounds())
		})
	}
}

func TestProcessImageWithCrop(t *testing.T) {
	p := newTestProcessor(t)

	res, err := p.ProcessImage(context.Background(), bytes.NewReader(encodePNG(t, 6, 6)),
		&models.UpscaleRequest{
			Scale:  2,
			Kernel: "bilinear",
			Crop:   &models.CropRequest{X: 4, Y: 1, Width: 10, Height: 2},
		})
	require.NoError(t, err)
	assert.Equal(t, models.ImageSize{Width: 2, Height: 2}, res.SourceSize)
	assert.Equal(t, models.ImageSize{Width: 4, Height: 4}, res.Size)
}

func TestProcessImageErrors(t *testing.T) {
	p := newTestProcessor(t)
	ctx := context.Background()

	_, err := p.ProcessImage(ctx, bytes.NewReader([]byte("not an image")), nil)
	assert.Error(t, err)

	_, err = p.ProcessImage(ctx, bytes.NewReader(encodePNG(t, 4, 4)), &models.UpscaleRequest{Scale: 0.1})
	assert.ErrorIs(t, err, upscaler.ErrInvalidDimension)

	_, err = p.ProcessImage(ctx, bytes.NewReader(encodePNG(t, 4, 4)), &models.UpscaleRequest{Scale: 1000})
	assert.ErrorIs(t, err, upscaler.ErrInvalidDimension)
}

func TestProcessImageWebPRequestIsPNG(t *testing.T) {
	p := newTestProcessor(t)

	res, err := p.ProcessImage(context.Background(), bytes.NewReader(encodePNG(t, 2, 2)),
		&models.UpscaleRequest{Scale: 2, Format: "webp"})
	require.NoError(t, err)
	assert.Equal(t, models.FormatPNG, res.Format)

	_, decodedFormat, err := image.Decode(res.Buffer)
	require.NoError(t, err)
	assert.Equal(t, res.Format, decodedFormat)
}

func TestSourcePixelLimit(t *testing.T) {
	p := newTestProcessor(t)
	atLimit := encodePNG(t, 64, 64)
	over := encodePNG(t, 65, 64)

	require.NoError(t, p.ValidateImage(bytes.NewReader(atLimit), 1<<20))
	err := p.ValidateImage(bytes.NewReader(over), 1<<20)
	assert.ErrorIs(t, err, upscaler.ErrInvalidDimension)
	assert.Contains(t, err.Error(), "65x64")

	_, err = p.ProcessImage(context.Background(), bytes.NewReader(over), &models.UpscaleRequest{Scale: 1.5})
	assert.ErrorIs(t, err, upscaler.ErrInvalidDimension)

	res, err := p.ProcessImage(context.Background(), bytes.NewReader(atLimit), &models.UpscaleRequest{Scale: 1.5, Kernel: "bilinear"})
	require.NoError(t, err)
	assert.Equal(t, models.ImageSize{Width: 96, Height: 96}, res.Size)

	unlimited := NewImageProcessor(upscaler.New(parallel.Serial{}), nil, config.UpscaleConfig{DefaultScale: 2, DefaultKernel: "bilinear"}, nil)
	assert.NoError(t, unlimited.ValidateImage(bytes.NewReader(over), 1<<20))
}

func TestProcessImageFallsBackWhenBackendUnavailable(t *testing.T) {
	pool := parallel.NewPool(2, nil)
	pool.Close()

	data := encodePNG(t, 3, 3)
	req := &models.UpscaleRequest{Scale: 2, Kernel: "lanczos"}

	noFallback := NewImageProcessor(upscaler.New(pool), nil, testConfig(), nil)
	_, err := noFallback.ProcessImage(context.Background(), bytes.NewReader(data), req)
	assert.ErrorIs(t, err, upscaler.ErrDeviceUnavailable)

	withFallback := NewImageProcessor(upscaler.New(pool), upscaler.New(parallel.Serial{}), testConfig(), zaptest.NewLogger(t))
	res, err := withFallback.ProcessImage(context.Background(), bytes.NewReader(data), req)
	require.NoError(t, err)
	assert.Equal(t, models.ImageSize{Width: 6, Height: 6}, res.Size)
}

func TestEncodeFormats(t *testing.T) {
	p := newTestProcessor(t)
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))

	for _, format := range []string{"png", "jpeg", "jpg", "gif", "bmp", "tiff", "webp"} {
		var buf bytes.Buffer
		require.NoError(t, p.encodeImage(&buf, img, format, 90), format)

		_, decodedFormat, err := image.Decode(&buf)
		require.NoError(t, err, format)
		assert.Equal(t, Extension(format), decodedFormat, format)
	}

	assert.Error(t, p.encodeImage(io.Discard, img, "avif", 90))
	assert.Equal(t, "image/png", ContentType("webp"))
	assert.Equal(t, "image/jpeg", ContentType("jpg"))
	assert.Equal(t, "application/octet-stream", ContentType("avif"))
}

func TestValidateImage(t *testing.T) {
	p := newTestProcessor(t)
	data := encodePNG(t, 4, 4)

	r := bytes.NewReader(data)
	require.NoError(t, p.ValidateImage(r, int64(len(data))))
	pos, err := r.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Zero(t, pos)

	assert.Error(t, p.ValidateImage(bytes.NewReader(data), int64(len(data)-1)))
	assert.Error(t, p.ValidateImage(bytes.NewReader([]byte("garbage")), 1024))
}

func TestBatchUpscale(t *testing.T) {
	p := newTestProcessor(t)
	inputs := []io.Reader{
		bytes.NewReader(encodePNG(t, 2, 2)),
		bytes.NewReader([]byte("broken")),
		bytes.NewReader(encodePNG(t, 3, 1)),
	}

	results := p.BatchUpscale(context.Background(), inputs, &models.UpscaleRequest{Scale: 2, Kernel: "bilinear"})
	require.Len(t, results, 3)

	assert.Empty(t, results[0].Error)
	assert.Equal(t, models.ImageSize{Width: 4, Height: 4}, results[0].Size)
	assert.Positive(t, results[0].FileSize)

	assert.Contains(t, results[1].Error, "failed to process image 1")
	assert.Nil(t, results[1].Buffer)

	assert.Equal(t, models.ImageSize{Width: 6, Height: 2}, results[2].Size)

	assert.Empty(t, p.BatchUpscale(context.Background(), nil, nil))
}
