package queue

import (
	"context"
	"io"

	"github.com/phambaophuc/image-upscaler/internal/models"
	"github.com/phambaophuc/image-upscaler/internal/services/processor"
)

// storageScheme marks job sources that live in the storage bucket rather
// than behind an HTTP URL.
const storageScheme = "storage://"

// ImageProcessor upscales an encoded image.
type ImageProcessor interface {
	ResolveOptions(req *models.UpscaleRequest) (processor.Options, error)
	ValidateImage(file io.ReadSeeker, maxSize int64) error
	ProcessImage(ctx context.Context, r io.Reader, req *models.UpscaleRequest) (*processor.Result, error)
}

// Store is the subset of the storage service used by queue workers.
type Store interface {
	GetFromCache(ctx context.Context, cacheKey string) ([]byte, error)
	SetCache(ctx context.Context, cacheKey string, data []byte) error
	SaveFile(ctx context.Context, data []byte, filename, contentType string) (string, error)
	Download(ctx context.Context, path string) ([]byte, error)
	SaveJob(ctx context.Context, job *models.ProcessingJob) error
}

// Fetcher downloads a remote image of an allowed type, returning its bytes
// and detected content type.
type Fetcher func(ctx context.Context, imageURL string, maxSize int64, allowedTypes []string) ([]byte, string, error)
