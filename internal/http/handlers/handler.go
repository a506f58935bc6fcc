package handlers

import (
	"bytes"
	"context"
	"io"

	"github.com/phambaophuc/image-upscaler/internal/config"
	"github.com/phambaophuc/image-upscaler/internal/models"
	"github.com/phambaophuc/image-upscaler/internal/services/processor"
	"go.uber.org/zap"
)

// Processor upscales uploaded images.
type Processor interface {
	ResolveOptions(req *models.UpscaleRequest) (processor.Options, error)
	ValidateImage(file io.ReadSeeker, maxSize int64) error
	ProcessImage(ctx context.Context, r io.Reader, req *models.UpscaleRequest) (*processor.Result, error)
	BatchUpscale(ctx context.Context, inputs []io.Reader, req *models.UpscaleRequest) []models.BatchImage
}

// Storage persists results and job records.
type Storage interface {
	Upload(ctx context.Context, buffer *bytes.Buffer, filename, contentType string) (string, error)
	UploadMultiple(ctx context.Context, files []models.UploadFile) []models.UploadResult
	Delete(ctx context.Context, path string) error
	GetJob(ctx context.Context, id string) (*models.ProcessingJob, error)
	GetCacheStats(ctx context.Context) (map[string]interface{}, error)
	HealthCheck(ctx context.Context) map[string]string
}

// JobQueue accepts asynchronous upscale jobs.
type JobQueue interface {
	PublishJob(ctx context.Context, job *models.ProcessingJob) error
	GetQueueStats() (*models.QueueStats, error)
	HealthCheck() string
}

// Engine reports the state of the tile worker pool.
type Engine interface {
	Workers() int
	IsRunning() bool
}

type ImageHandler struct {
	processor Processor
	storage   Storage
	queue     JobQueue
	engine    Engine
	logger    *zap.Logger
	config    *config.Config
}

// NewImageHandler builds the HTTP handlers. storage, queue and engine may be
// nil; endpoints that need them then answer 503.
func NewImageHandler(
	processor Processor,
	storage Storage,
	queue JobQueue,
	engine Engine,
	logger *zap.Logger,
	config *config.Config,
) *ImageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageHandler{
		processor: processor,
		storage:   storage,
		queue:     queue,
		engine:    engine,
		logger:    logger,
		config:    config,
	}
}
