package models

import "time"

type ProcessedImage struct {
	ID          string    `json:"id"`
	OriginalURL string    `json:"original_url"`
	ProcessedAt time.Time `json:"processed_at"`
	SourceSize  ImageSize `json:"source_size"`
	Size        ImageSize `json:"size"`
	Scale       float64   `json:"scale"`
	Kernel      string    `json:"kernel"`
	Format      string    `json:"format"`
	URL         string    `json:"url"`
	FileSize    int64     `json:"file_size"`
}
