package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/phambaophuc/image-upscaler/internal/models"
	"github.com/phambaophuc/image-upscaler/internal/services/processor"
	"go.uber.org/zap"
)

const (
	maxCacheAge    = 3600
	imageParamKey  = "image"
	imagesParamKey = "images"
	inlineQueryKey = "inline"
)

// === MAIN API ENDPOINTS ===

func (h *ImageHandler) UpscaleImage(c *gin.Context) {
	file, header, err := h.getUploadedFile(c, imageParamKey)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, "No image file provided")
		return
	}
	defer file.Close()

	req, opts, err := h.parseUpscaleParams(c)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.sniffUpload(file, header.Filename); err != nil {
		h.respondError(c, http.StatusUnsupportedMediaType, err.Error())
		return
	}

	if err := h.processor.ValidateImage(file, h.config.Storage.MaxFileSize); err != nil {
		h.respondError(c, http.StatusBadRequest, fmt.Sprintf("Invalid image: %v", err))
		return
	}

	res, err := h.processor.ProcessImage(c.Request.Context(), file, req)
	if err != nil {
		h.respondProcessingError(c, err)
		return
	}

	if inline, _ := strconv.ParseBool(c.Query(inlineQueryKey)); inline {
		h.respondWithImage(c, res)
		return
	}

	url := h.uploadToStorage(c, res, header.Filename)
	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    h.buildProcessedImage(header.Filename, url, res.SourceSize, res.Size, res.Buffer.Len(), opts),
	})
}

func (h *ImageHandler) BatchUpscale(c *gin.Context) {
	files, err := h.parseMultipartFiles(c)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	req, opts, err := h.parseUpscaleParams(c)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	openedFiles, err := h.openFiles(files)
	if err != nil {
		h.respondError(c, http.StatusInternalServerError, "Failed to open files: "+err.Error())
		return
	}
	defer h.closeFiles(openedFiles)

	// Files of a disallowed type are reported and skipped.
	var accepted []*multipart.FileHeader
	var readers []io.Reader
	var rejected []string
	for i, f := range openedFiles {
		if err := h.sniffUpload(f, files[i].Filename); err != nil {
			rejected = append(rejected, err.Error())
			continue
		}
		accepted = append(accepted, files[i])
		readers = append(readers, f)
	}
	if len(accepted) == 0 {
		h.respondError(c, http.StatusUnsupportedMediaType, strings.Join(rejected, "; "))
		return
	}

	images := h.processor.BatchUpscale(c.Request.Context(), readers, req)
	response := h.buildBatchResponse(c, images, accepted, opts)
	response.Errors = append(rejected, response.Errors...)

	c.JSON(http.StatusOK, models.APIResponse{
		Success: len(response.Images) > 0,
		Data:    response,
	})
}

// DeleteImage removes a previously uploaded result from storage.
func (h *ImageHandler) DeleteImage(c *gin.Context) {
	if h.storage == nil {
		h.respondError(c, http.StatusServiceUnavailable, "Storage not available")
		return
	}

	path := strings.TrimPrefix(c.Param("path"), "/")
	if path == "" {
		h.respondError(c, http.StatusBadRequest, "Image path is required")
		return
	}

	if err := h.storage.Delete(c.Request.Context(), path); err != nil {
		h.logger.Error("Failed to delete image", zap.String("path", path), zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "Failed to delete image")
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    gin.H{"deleted": path},
	})
}

// HealthCheck
func (h *ImageHandler) HealthCheck(c *gin.Context) {
	services := map[string]string{}
	if h.storage != nil {
		services = h.storage.HealthCheck(c.Request.Context())
	} else {
		services["storage"] = models.HealthNotConfigured
	}
	if h.queue != nil {
		services["rabbitmq"] = h.queue.HealthCheck()
	} else {
		services["rabbitmq"] = models.HealthNotConfigured
	}

	engine := h.engineStatus()
	switch {
	case engine == nil:
		services["engine"] = models.HealthNotConfigured
	case engine.Running:
		services["engine"] = models.HealthHealthy
	default:
		services["engine"] = models.HealthDegraded + ": worker pool stopped"
	}

	overall := h.calculateOverallHealth(services)

	statusCode := http.StatusOK
	if overall == models.HealthUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, models.APIResponse{
		Success: overall == models.HealthHealthy,
		Data: models.HealthCheck{
			Status:    overall,
			Timestamp: time.Now(),
			Services:  services,
			Engine:    engine,
		},
	})
}

func (h *ImageHandler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"upscale": gin.H{
			"default_scale":  h.config.Upscale.DefaultScale,
			"default_kernel": h.config.Upscale.DefaultKernel,
			"tile_width":     h.config.Upscale.TileWidth,
			"tile_height":    h.config.Upscale.TileHeight,
			"workers":        h.config.Upscale.Workers,
		},
		"timestamp": time.Now(),
	}
	if engine := h.engineStatus(); engine != nil {
		stats["engine"] = engine
	}

	if h.storage != nil {
		cacheStats, err := h.storage.GetCacheStats(c.Request.Context())
		if err != nil {
			h.logger.Error("Failed to get cache stats", zap.Error(err))
		} else {
			stats["cache"] = cacheStats
		}
	}

	if h.queue != nil {
		queueStats, err := h.queue.GetQueueStats()
		if err != nil {
			h.logger.Error("Failed to get queue stats", zap.Error(err))
		} else {
			stats["queue"] = queueStats
		}
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    stats,
	})
}

func (h *ImageHandler) buildProcessedImage(
	filename, url string,
	sourceSize, size models.ImageSize,
	fileSize int,
	opts processor.Options,
) models.ProcessedImage {
	return models.ProcessedImage{
		ID:          uuid.New().String(),
		OriginalURL: filename,
		ProcessedAt: time.Now(),
		SourceSize:  sourceSize,
		Size:        size,
		Scale:       opts.Scale,
		Kernel:      opts.Kernel.String(),
		Format:      opts.Format,
		URL:         url,
		FileSize:    int64(fileSize),
	}
}
