package storage

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"

	"github.com/phambaophuc/image-upscaler/internal/resample"
	"github.com/phambaophuc/image-upscaler/internal/services/processor"
	"github.com/redis/go-redis/v9"
)

func (s *StorageService) GetFromCache(ctx context.Context, cacheKey string) ([]byte, error) {
	data, err := s.redisClient.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("cache get error: %w", err)
	}
	return data, nil
}

func (s *StorageService) SetCache(ctx context.Context, cacheKey string, data []byte) error {
	return s.redisClient.Set(ctx, cacheKey, data, s.cacheDuration).Err()
}

// GenerateCacheKey derives a cache key from the source and the resolved
// options, so a change of configured defaults yields a new key. Tile size is
// omitted: it only affects how work is partitioned.
func GenerateCacheKey(source string, opts processor.Options) string {
	hash := md5.New()

	hash.Write([]byte(source))
	fmt.Fprintf(hash, "upscale_%g_%s_%s_%d", opts.Scale, opts.Kernel, opts.Format, opts.Quality)

	if opts.Kernel == resample.Lanczos {
		fmt.Fprintf(hash, "_window_%d", opts.LanczosWindow)
	}
	if opts.Crop != nil {
		fmt.Fprintf(hash, "_crop_%d_%d_%d_%d", opts.Crop.X, opts.Crop.Y, opts.Crop.Width, opts.Crop.Height)
	}

	return fmt.Sprintf("%s%x", cacheKeyPrefix, hash.Sum(nil))
}

// CleanupCache deletes cache entries that have no expiry set.
func (s *StorageService) CleanupCache(ctx context.Context) error {
	iter := s.redisClient.Scan(ctx, 0, cacheKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		ttl, err := s.redisClient.TTL(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("failed to read ttl for %s: %w", key, err)
		}
		if ttl < 0 {
			s.redisClient.Del(ctx, key)
		}
	}
	return iter.Err()
}

func (s *StorageService) GetCacheStats(ctx context.Context) (map[string]interface{}, error) {
	info, err := s.redisClient.Info(ctx, "memory").Result()
	if err != nil {
		return nil, err
	}

	dbSize, err := s.redisClient.DBSize(ctx).Result()
	if err != nil {
		return nil, err
	}

	stats := map[string]interface{}{
		"db_keys": dbSize,
		"info":    info,
	}

	return stats, nil
}
