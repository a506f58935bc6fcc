package models

import "time"

type ProcessingJob struct {
	ID        string          `json:"id"`
	ImageURL  string          `json:"image_url"`
	Request   UpscaleRequest  `json:"request"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at,omitempty"`
	Result    *ProcessedImage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
}

type CreateJobRequest struct {
	ImageURL string         `json:"image_url" binding:"required,url"`
	Upscale  UpscaleRequest `json:"upscale"`
}

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)
