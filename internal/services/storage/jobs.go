package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/phambaophuc/image-upscaler/internal/models"
	"github.com/redis/go-redis/v9"
)

// ErrJobNotFound is returned by GetJob for unknown job ids.
var ErrJobNotFound = errors.New("job not found")

// SaveJob stores the job record, refreshing its UpdatedAt timestamp.
func (s *StorageService) SaveJob(ctx context.Context, job *models.ProcessingJob) error {
	job.UpdatedAt = time.Now()

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	if err := s.redisClient.Set(ctx, jobKeyPrefix+job.ID, data, s.cacheDuration).Err(); err != nil {
		return fmt.Errorf("failed to save job %s: %w", job.ID, err)
	}
	return nil
}

func (s *StorageService) GetJob(ctx context.Context, id string) (*models.ProcessingJob, error) {
	data, err := s.redisClient.Get(ctx, jobKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to load job %s: %w", id, err)
	}

	var job models.ProcessingJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job %s: %w", id, err)
	}
	return &job, nil
}
