package storage

import (
	"image"
	"strings"
	"testing"

	"github.com/phambaophuc/image-upscaler/internal/config"
	"github.com/phambaophuc/image-upscaler/internal/models"
	"github.com/phambaophuc/image-upscaler/internal/resample"
	"github.com/phambaophuc/image-upscaler/internal/services/processor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCacheKey(t *testing.T) {
	base := processor.Options{
		Scale:         2,
		Kernel:        resample.Lanczos,
		Tile:          image.Pt(16, 16),
		Format:        "png",
		Quality:       85,
		LanczosWindow: 3,
	}
	key := GenerateCacheKey("cat.png", base)

	assert.True(t, strings.HasPrefix(key, cacheKeyPrefix))
	assert.Equal(t, key, GenerateCacheKey("cat.png", base))

	retiled := base
	retiled.Tile = image.Pt(4, 64)
	assert.Equal(t, key, GenerateCacheKey("cat.png", retiled), "tile size must not change the key")

	variants := map[string]func(o *processor.Options){
		"scale":   func(o *processor.Options) { o.Scale = 3 },
		"kernel":  func(o *processor.Options) { o.Kernel = resample.Bilinear },
		"format":  func(o *processor.Options) { o.Format = "jpeg" },
		"quality": func(o *processor.Options) { o.Quality = 90 },
		"window":  func(o *processor.Options) { o.LanczosWindow = 2 },
		"crop":    func(o *processor.Options) { o.Crop = &models.CropRequest{Width: 2, Height: 2} },
	}
	for name, mutate := range variants {
		opts := base
		mutate(&opts)
		assert.NotEqual(t, key, GenerateCacheKey("cat.png", opts), name)
	}

	assert.NotEqual(t, key, GenerateCacheKey("dog.png", base))
}

func TestGenerateCacheKeyIgnoresWindowForOtherKernels(t *testing.T) {
	opts := processor.Options{Scale: 2, Kernel: resample.Bilinear, Format: "png", Quality: 85, LanczosWindow: 3}
	other := opts
	other.LanczosWindow = 5
	assert.Equal(t, GenerateCacheKey("cat.png", opts), GenerateCacheKey("cat.png", other))
}

func TestGenerateCacheKeyFollowsConfiguredDefaults(t *testing.T) {
	resolve := func(cfg config.UpscaleConfig, req models.UpscaleRequest) processor.Options {
		t.Helper()
		opts, err := processor.NewImageProcessor(nil, nil, cfg, nil).ResolveOptions(&req)
		require.NoError(t, err)
		return opts
	}

	cfg := config.UpscaleConfig{DefaultScale: 2, DefaultKernel: "bilinear", TileWidth: 8, TileHeight: 8, LanczosWindow: 3}
	empty := GenerateCacheKey("cat.png", resolve(cfg, models.UpscaleRequest{}))
	explicit := GenerateCacheKey("cat.png", resolve(cfg, models.UpscaleRequest{Scale: 2, Kernel: "BILINEAR", Format: "PNG"}))
	assert.Equal(t, empty, explicit, "defaults and explicit equivalents share a key")

	// webp is encoded as png, so both requests produce the same output.
	webp := GenerateCacheKey("cat.png", resolve(cfg, models.UpscaleRequest{Format: "webp"}))
	assert.Equal(t, empty, webp)

	cfg.DefaultKernel = "lanczos"
	assert.NotEqual(t, empty, GenerateCacheKey("cat.png", resolve(cfg, models.UpscaleRequest{})))

	cfg.DefaultKernel = "bilinear"
	cfg.DefaultScale = 4
	assert.NotEqual(t, empty, GenerateCacheKey("cat.png", resolve(cfg, models.UpscaleRequest{})))
}
