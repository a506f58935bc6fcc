package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/phambaophuc/image-upscaler/internal/models"
	"github.com/phambaophuc/image-upscaler/internal/services/processor"
	"github.com/phambaophuc/image-upscaler/internal/services/storage"
	"github.com/phambaophuc/image-upscaler/pkg/utils"
	"go.uber.org/zap"
)

func (q *QueueService) processJob(ctx context.Context, job *models.ProcessingJob) (*models.ProcessedImage, error) {
	opts, err := q.processor.ResolveOptions(&job.Request)
	if err != nil {
		return nil, fmt.Errorf("failed to process image: %w", err)
	}
	cacheKey := storage.GenerateCacheKey(job.ImageURL, opts)

	// Check cache first
	cachedData, err := q.store.GetFromCache(ctx, cacheKey)
	if err != nil {
		q.logger.Warn("Cache lookup failed", zap.String("job_id", job.ID), zap.Error(err))
	} else if cachedData != nil {
		var cachedResult models.ProcessedImage
		if err := json.Unmarshal(cachedData, &cachedResult); err == nil {
			q.logger.Info("Cache hit", zap.String("job_id", job.ID))
			return &cachedResult, nil
		}
		q.logger.Warn("Failed to unmarshal cached data", zap.String("job_id", job.ID))
	}

	imageData, err := q.loadSource(ctx, job.ImageURL)
	if err != nil {
		return nil, err
	}

	res, err := q.processor.ProcessImage(ctx, bytes.NewReader(imageData), &job.Request)
	if err != nil {
		return nil, fmt.Errorf("failed to process image: %w", err)
	}

	filename := utils.GenerateFilename(job.ID, processor.Extension(res.Format))
	processedURL, err := q.store.SaveFile(ctx, res.Buffer.Bytes(), filename, processor.ContentType(res.Format))
	if err != nil {
		return nil, fmt.Errorf("failed to save processed image: %w", err)
	}

	result := &models.ProcessedImage{
		ID:          job.ID,
		OriginalURL: job.ImageURL,
		ProcessedAt: time.Now(),
		SourceSize:  res.SourceSize,
		Size:        res.Size,
		Scale:       res.Scale,
		Kernel:      res.Kernel.String(),
		Format:      res.Format,
		URL:         processedURL,
		FileSize:    int64(res.Buffer.Len()),
	}

	// Cache the result
	resultBytes, _ := json.Marshal(result)
	if err := q.store.SetCache(ctx, cacheKey, resultBytes); err != nil {
		q.logger.Warn("Failed to cache result", zap.Error(err))
	}

	return result, nil
}

// loadSource reads a job's source and applies the same size and pixel
// limits as a direct upload.
func (q *QueueService) loadSource(ctx context.Context, source string) ([]byte, error) {
	var data []byte
	if path, ok := strings.CutPrefix(source, storageScheme); ok {
		stored, err := q.store.Download(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to load stored image: %w", err)
		}
		data = stored
	} else {
		fetched, _, err := q.fetch(ctx, source, q.maxFileSize, q.types)
		if err != nil {
			return nil, fmt.Errorf("failed to download image: %w", err)
		}
		data = fetched
	}

	if err := q.processor.ValidateImage(bytes.NewReader(data), q.maxFileSize); err != nil {
		return nil, fmt.Errorf("invalid source image: %w", err)
	}
	return data, nil
}
