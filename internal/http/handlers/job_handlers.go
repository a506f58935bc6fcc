package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/phambaophuc/image-upscaler/internal/models"
	"github.com/phambaophuc/image-upscaler/internal/services/storage"
	"go.uber.org/zap"
)

// CreateJob queues an upscale of a remote image and answers 202 with the job.
func (h *ImageHandler) CreateJob(c *gin.Context) {
	if h.queue == nil {
		h.respondError(c, http.StatusServiceUnavailable, "Job queue not available")
		return
	}

	var req models.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid job request: "+err.Error())
		return
	}

	if _, err := h.processor.ResolveOptions(&req.Upscale); err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	job := &models.ProcessingJob{
		ID:        uuid.New().String(),
		ImageURL:  req.ImageURL,
		Request:   req.Upscale,
		CreatedAt: time.Now(),
	}

	if err := h.queue.PublishJob(c.Request.Context(), job); err != nil {
		h.logger.Error("Failed to publish job", zap.String("job_id", job.ID), zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "Failed to queue job")
		return
	}

	c.JSON(http.StatusAccepted, models.APIResponse{
		Success: true,
		Data:    job,
	})
}

func (h *ImageHandler) GetJob(c *gin.Context) {
	if h.storage == nil {
		h.respondError(c, http.StatusServiceUnavailable, "Storage not available")
		return
	}

	job, err := h.storage.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrJobNotFound) {
			h.respondError(c, http.StatusNotFound, "Job not found")
			return
		}
		h.logger.Error("Failed to load job", zap.String("job_id", c.Param("id")), zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "Failed to load job")
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    job,
	})
}
