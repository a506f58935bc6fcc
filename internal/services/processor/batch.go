package processor

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/phambaophuc/image-upscaler/internal/models"
)

// BatchUpscale processes several images concurrently. Failures are reported
// per item in BatchImage.Error; results keep the order of inputs.
func (p *ImageProcessor) BatchUpscale(ctx context.Context, inputs []io.Reader, req *models.UpscaleRequest) []models.BatchImage {
	results := make([]models.BatchImage, len(inputs))
	if len(inputs) == 0 {
		return results
	}

	jobs := make(chan int, len(inputs))

	numWorkers := DefaultWorkers
	if len(inputs) < numWorkers {
		numWorkers = len(inputs)
	}

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = p.processBatchItem(ctx, i, inputs[i], req)
			}
		}()
	}

	for i := range inputs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

func (p *ImageProcessor) processBatchItem(ctx context.Context, i int, r io.Reader, req *models.UpscaleRequest) models.BatchImage {
	res, err := p.ProcessImage(ctx, r, req)
	if err != nil {
		return models.BatchImage{
			Error: fmt.Sprintf("failed to process image %d: %v", i, err),
		}
	}
	return models.BatchImage{
		Buffer:     res.Buffer,
		Format:     res.Format,
		SourceSize: res.SourceSize,
		Size:       res.Size,
		FileSize:   int64(res.Buffer.Len()),
	}
}
