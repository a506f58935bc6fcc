package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/phambaophuc/image-upscaler/pkg/utils"
	storage_go "github.com/supabase-community/storage-go"
)

// resultCacheControl matches the immutable naming of uploaded results.
const resultCacheControl = "31536000"

func (s *StorageService) SaveFile(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	return s.Upload(ctx, bytes.NewBuffer(data), filename, contentType)
}

// Upload stores an encoded result under a unique key with its content type
// and returns the public URL.
func (s *StorageService) Upload(ctx context.Context, buffer *bytes.Buffer, filename, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := utils.GenerateStorageKey(filename)
	cacheControl := resultCacheControl

	client := s.uploadClient()
	_, err := client.UploadFile(s.bucket, key, bytes.NewReader(buffer.Bytes()), storage_go.FileOptions{
		ContentType:  &contentType,
		CacheControl: &cacheControl,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to supabase: %w", key, err)
	}

	return client.GetPublicUrl(s.bucket, key).SignedURL, nil
}

// Delete removes file from Supabase Storage
func (s *StorageService) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.sbClient.RemoveFile(s.bucket, []string{path}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}
