package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-upscaler/internal/models"
	"github.com/phambaophuc/image-upscaler/internal/services/processor"
	"github.com/phambaophuc/image-upscaler/internal/upscaler"
	"github.com/phambaophuc/image-upscaler/pkg/utils"
	"go.uber.org/zap"
)

// === REQUEST PARSING ===

// parseUpscaleParams reads the upscale form fields and resolves them against
// the configured defaults so bad kernels or formats fail before decoding.
func (h *ImageHandler) parseUpscaleParams(c *gin.Context) (*models.UpscaleRequest, processor.Options, error) {
	scale, err := h.parsePositiveFloat(c.PostForm("scale"), "scale")
	if err != nil {
		return nil, processor.Options{}, err
	}

	tileWidth, err := h.parseOptionalInt(c.PostForm("tile_width"), "tile_width")
	if err != nil {
		return nil, processor.Options{}, err
	}

	tileHeight, err := h.parseOptionalInt(c.PostForm("tile_height"), "tile_height")
	if err != nil {
		return nil, processor.Options{}, err
	}

	crop, err := h.parseCrop(c)
	if err != nil {
		return nil, processor.Options{}, err
	}

	req := &models.UpscaleRequest{
		Scale:      scale,
		Kernel:     c.PostForm("kernel"),
		TileWidth:  tileWidth,
		TileHeight: tileHeight,
		Format:     c.PostForm("format"),
		Quality:    h.parseQuality(c.PostForm("quality")),
		Crop:       crop,
	}

	opts, err := h.processor.ResolveOptions(req)
	if err != nil {
		return nil, processor.Options{}, err
	}

	return req, opts, nil
}

func (h *ImageHandler) parseCrop(c *gin.Context) (*models.CropRequest, error) {
	if c.PostForm("crop_width") == "" && c.PostForm("crop_height") == "" {
		return nil, nil
	}

	x, err := h.parseOptionalInt(c.PostForm("crop_x"), "crop_x")
	if err != nil {
		return nil, err
	}
	y, err := h.parseOptionalInt(c.PostForm("crop_y"), "crop_y")
	if err != nil {
		return nil, err
	}
	width, err := h.parsePositiveInt(c.PostForm("crop_width"), "crop_width")
	if err != nil {
		return nil, err
	}
	height, err := h.parsePositiveInt(c.PostForm("crop_height"), "crop_height")
	if err != nil {
		return nil, err
	}

	return &models.CropRequest{X: x, Y: y, Width: width, Height: height}, nil
}

func (h *ImageHandler) parseMultipartFiles(c *gin.Context) ([]*multipart.FileHeader, error) {
	if err := c.Request.ParseMultipartForm(h.config.Storage.MaxFileSize * 10); err != nil {
		return nil, fmt.Errorf("failed to parse form data: %v", err)
	}

	files := c.Request.MultipartForm.File[imagesParamKey]
	if len(files) == 0 {
		return nil, fmt.Errorf("no images provided")
	}

	for _, fh := range files {
		if fh.Size > h.config.Storage.MaxFileSize {
			return nil, fmt.Errorf("file %s exceeds maximum allowed size %d", fh.Filename, h.config.Storage.MaxFileSize)
		}
	}

	return files, nil
}

func (h *ImageHandler) parsePositiveInt(value, fieldName string) (int, error) {
	if value == "" {
		return 0, fmt.Errorf("%s is required", fieldName)
	}

	num, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be a number", fieldName)
	}

	if num <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", fieldName)
	}

	return num, nil
}

// parseOptionalInt returns 0 for an empty value.
func (h *ImageHandler) parseOptionalInt(value, fieldName string) (int, error) {
	if value == "" {
		return 0, nil
	}

	num, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be a number", fieldName)
	}

	if num < 0 {
		return 0, fmt.Errorf("%s must not be negative", fieldName)
	}

	return num, nil
}

// parsePositiveFloat returns 0 for an empty value so the default applies.
func (h *ImageHandler) parsePositiveFloat(value, fieldName string) (float64, error) {
	if value == "" {
		return 0, nil
	}

	num, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be a number", fieldName)
	}

	if !(num > 0) {
		return 0, fmt.Errorf("%s must be positive", fieldName)
	}

	return num, nil
}

func (h *ImageHandler) parseQuality(value string) int {
	if value == "" {
		return 0
	}

	quality, err := strconv.Atoi(value)
	if err != nil || quality < 1 || quality > 100 {
		return 0
	}

	return quality
}

// === FILE OPERATIONS ===

func (h *ImageHandler) getUploadedFile(c *gin.Context, paramKey string) (multipart.File, *multipart.FileHeader, error) {
	return c.Request.FormFile(paramKey)
}

func (h *ImageHandler) openFiles(files []*multipart.FileHeader) ([]multipart.File, error) {
	var openedFiles []multipart.File

	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			h.closeFiles(openedFiles)
			return nil, err
		}
		openedFiles = append(openedFiles, f)
	}

	return openedFiles, nil
}

func (h *ImageHandler) closeFiles(files []multipart.File) {
	for _, file := range files {
		if file != nil {
			file.Close()
		}
	}
}

// === RESPONSE HANDLING ===

func (h *ImageHandler) respondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, models.APIResponse{
		Success: false,
		Error:   message,
	})
}

// respondProcessingError maps engine errors to HTTP status codes.
func (h *ImageHandler) respondProcessingError(c *gin.Context, err error) {
	statusCode := statusForError(err)
	if statusCode == http.StatusInternalServerError {
		h.logger.Error("Processing failed", zap.Error(err))
		h.respondError(c, statusCode, "Failed to process image")
		return
	}

	h.logger.Warn("Processing rejected", zap.Int("status", statusCode), zap.Error(err))
	h.respondError(c, statusCode, err.Error())
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, upscaler.ErrInvalidDimension), errors.Is(err, upscaler.ErrUnsupportedKernel):
		return http.StatusBadRequest
	case errors.Is(err, upscaler.ErrDeviceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *ImageHandler) respondWithImage(c *gin.Context, res *processor.Result) {
	c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", maxCacheAge))
	c.Header("X-Image-Width", strconv.Itoa(res.Size.Width))
	c.Header("X-Image-Height", strconv.Itoa(res.Size.Height))
	c.Data(http.StatusOK, processor.ContentType(res.Format), res.Buffer.Bytes())
}

// === UTILITY METHODS ===

// calculateOverallHealth returns the worst service state. Services report
// "<state>" or "<state>: <detail>".
func (h *ImageHandler) calculateOverallHealth(services map[string]string) string {
	overall := models.HealthHealthy
	for _, status := range services {
		state, _, _ := strings.Cut(status, ":")
		switch state {
		case models.HealthHealthy, models.HealthNotConfigured:
		case models.HealthDegraded:
			overall = models.HealthDegraded
		default:
			return models.HealthUnhealthy
		}
	}
	return overall
}

func (h *ImageHandler) engineStatus() *models.EngineStatus {
	if h.engine == nil {
		return nil
	}
	return &models.EngineStatus{
		Backend: "cpu",
		Workers: h.engine.Workers(),
		Running: h.engine.IsRunning(),
	}
}

// sniffUpload checks the file's leading bytes against the allowed types.
func (h *ImageHandler) sniffUpload(file io.ReadSeeker, filename string) error {
	if _, err := utils.SniffImageType(file, h.config.Storage.AllowedTypes); err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	return nil
}

func (h *ImageHandler) generateNewFilename(originalFilename, format string) string {
	ext := "." + processor.Extension(format)
	return strings.TrimSuffix(originalFilename, filepath.Ext(originalFilename)) + ext
}

func (h *ImageHandler) buildBatchResponse(
	c *gin.Context,
	images []models.BatchImage,
	files []*multipart.FileHeader,
	opts processor.Options,
) models.BatchResponse {
	response := models.BatchResponse{ProcessedAt: time.Now()}

	var uploads []models.UploadFile
	var indices []int
	for i, img := range images {
		if img.Error != "" {
			response.Errors = append(response.Errors, fmt.Sprintf("%s: %s", files[i].Filename, img.Error))
			continue
		}
		uploads = append(uploads, models.UploadFile{
			Data:        img.Buffer.Bytes(),
			Filename:    h.generateNewFilename(files[i].Filename, img.Format),
			ContentType: processor.ContentType(img.Format),
		})
		indices = append(indices, i)
	}

	urls := make([]string, len(uploads))
	if h.storage != nil && len(uploads) > 0 {
		for j, res := range h.storage.UploadMultiple(c.Request.Context(), uploads) {
			if res.Error != "" {
				h.logger.Warn("Failed to upload batch result",
					zap.String("filename", res.Filename), zap.String("error", res.Error))
				response.Errors = append(response.Errors,
					fmt.Sprintf("%s: upload failed: %s", files[indices[j]].Filename, res.Error))
				continue
			}
			urls[j] = res.URL
		}
	}

	for j, i := range indices {
		img := images[i]
		response.Images = append(response.Images, h.buildProcessedImage(
			files[i].Filename, urls[j], img.SourceSize, img.Size, int(img.FileSize), opts))
	}

	return response
}

// === STORAGE OPERATIONS ===

func (h *ImageHandler) uploadToStorage(c *gin.Context, res *processor.Result, originalFilename string) string {
	if h.storage == nil {
		return ""
	}

	newFilename := h.generateNewFilename(originalFilename, res.Format)
	url, err := h.storage.Upload(c.Request.Context(), res.Buffer, newFilename, processor.ContentType(res.Format))
	if err != nil {
		h.logger.Warn("Failed to upload to Storage", zap.Error(err))
		return ""
	}

	return url
}
