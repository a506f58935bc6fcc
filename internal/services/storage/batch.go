package storage

import (
	"context"
	"sync"

	"github.com/phambaophuc/image-upscaler/internal/models"
)

// maxConcurrentUploads bounds in-flight requests to the storage API.
const maxConcurrentUploads = 5

// UploadMultiple uploads batch results concurrently. Results are
// index-aligned with files; a failed upload carries its error and no URL.
func (s *StorageService) UploadMultiple(ctx context.Context, files []models.UploadFile) []models.UploadResult {
	results := make([]models.UploadResult, len(files))
	sem := make(chan struct{}, maxConcurrentUploads)

	var wg sync.WaitGroup
	for i, file := range files {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			for j := i; j < len(files); j++ {
				results[j] = models.UploadResult{Filename: files[j].Filename, Error: ctx.Err().Error()}
			}
			wg.Wait()
			return results
		}

		wg.Add(1)
		go func() {
			defer func() {
				<-sem
				wg.Done()
			}()

			url, err := s.SaveFile(ctx, file.Data, file.Filename, file.ContentType)
			results[i] = models.UploadResult{Filename: file.Filename, URL: url}
			if err != nil {
				results[i].Error = err.Error()
			}
		}()
	}

	wg.Wait()
	return results
}
