package storage

import (
	"time"

	"github.com/phambaophuc/image-upscaler/internal/config"
	"github.com/redis/go-redis/v9"
	storage_go "github.com/supabase-community/storage-go"
	"go.uber.org/zap"
)

const (
	cacheKeyPrefix = "upscale_cache:"
	jobKeyPrefix   = "upscale_job:"
)

type StorageService struct {
	sbClient      *storage_go.Client
	sbURL         string
	sbKey         string
	redisClient   *redis.Client
	bucket        string
	cacheDuration time.Duration
	logger        *zap.Logger
}

func NewStorageService(cfg *config.Config, logger *zap.Logger) (*StorageService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	sbURL := cfg.Supabase.URL + "/storage/v1"
	sbClient := storage_go.NewClient(sbURL, cfg.Supabase.KEY, nil)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	return &StorageService{
		sbClient:      sbClient,
		sbURL:         sbURL,
		sbKey:         cfg.Supabase.KEY,
		redisClient:   redisClient,
		bucket:        cfg.Supabase.BUCKET,
		cacheDuration: cfg.Storage.CacheDuration,
		logger:        logger,
	}, nil
}

// uploadClient returns a client for a single upload. storage-go applies
// FileOptions to the client's shared headers, so uploads must not share one.
func (s *StorageService) uploadClient() *storage_go.Client {
	return storage_go.NewClient(s.sbURL, s.sbKey, nil)
}

// Close releases the redis connection pool.
func (s *StorageService) Close() error {
	return s.redisClient.Close()
}
