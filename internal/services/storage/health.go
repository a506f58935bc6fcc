package storage

import (
	"context"

	storage_go "github.com/supabase-community/storage-go"
	"go.uber.org/zap"
)

// HealthCheck checks Redis + Supabase
func (s *StorageService) HealthCheck(ctx context.Context) map[string]string {
	status := make(map[string]string)

	// Redis
	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		status["redis"] = "unhealthy: " + err.Error()
	} else {
		status["redis"] = "healthy"
	}

	// Supabase Storage check
	if s.bucket == "" {
		status["supabase"] = "not configured"
		return status
	}
	if _, err := s.sbClient.ListFiles(s.bucket, "", storage_go.FileSearchOptions{}); err != nil {
		s.logger.Warn("Supabase health check failed", zap.Error(err))
		status["supabase"] = "unhealthy: " + err.Error()
	} else {
		status["supabase"] = "healthy"
	}

	return status
}
