package models

import (
	"bytes"
	"time"
)

type BatchResponse struct {
	Images      []ProcessedImage `json:"images,omitempty"`
	Errors      []string         `json:"errors,omitempty"`
	ProcessedAt time.Time        `json:"processed_at,omitempty"`
}

// BatchImage is the outcome of one item in a batch upscale.
type BatchImage struct {
	Buffer     *bytes.Buffer
	Format     string
	SourceSize ImageSize
	Size       ImageSize
	FileSize   int64
	Error      string
}

type UploadFile struct {
	Data        []byte
	Filename    string
	ContentType string
}

// UploadResult is the outcome of one upload in UploadMultiple.
type UploadResult struct {
	Filename string
	URL      string
	Error    string
}
