package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// DefaultImageTypes are the MIME types accepted when no list is configured.
var DefaultImageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/bmp",
	"image/tiff",
}

// sniffLimit is how many leading bytes are inspected to detect a type.
const sniffLimit = 3072

// DownloadImage fetches an image over HTTP, reading at most maxSize bytes,
// and rejects bodies whose detected type is not in allowedTypes.
func DownloadImage(ctx context.Context, imageURL string, maxSize int64, allowedTypes []string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(io.LimitReader(resp.Body, maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(imageData)) > maxSize {
		return nil, "", fmt.Errorf("image exceeds maximum size %d", maxSize)
	}

	if len(imageData) == 0 {
		return nil, "", fmt.Errorf("empty image data")
	}

	contentType, err := DetectImageType(imageData, allowedTypes)
	if err != nil {
		return nil, "", err
	}

	return imageData, contentType, nil
}

// DetectImageType sniffs data and returns its MIME type when it is allowed.
func DetectImageType(data []byte, allowedTypes []string) (string, error) {
	contentType := mimetype.Detect(data).String()
	if !IsValidImageType(contentType, allowedTypes) {
		return "", fmt.Errorf("invalid content type: %s", contentType)
	}
	return contentType, nil
}

// SniffImageType detects the type of an upload from its leading bytes and
// rewinds it.
func SniffImageType(file io.ReadSeeker, allowedTypes []string) (string, error) {
	head := make([]byte, sniffLimit)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read file header: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind file: %w", err)
	}
	return DetectImageType(head[:n], allowedTypes)
}

// IsValidImageType reports whether contentType is one of allowedTypes,
// ignoring case and parameters. An empty list means DefaultImageTypes.
func IsValidImageType(contentType string, allowedTypes []string) bool {
	if len(allowedTypes) == 0 {
		allowedTypes = DefaultImageTypes
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	if mediaType == "image/jpg" {
		mediaType = "image/jpeg"
	}

	for _, allowed := range allowedTypes {
		if strings.EqualFold(mediaType, allowed) {
			return true
		}
	}
	return false
}

// GenerateFilename generates a unique filename for processed image
func GenerateFilename(jobID, format string) string {
	timestamp := time.Now().Unix()
	if format == "" {
		format = "png"
	}
	return fmt.Sprintf("upscaled_%s_%d.%s", jobID, timestamp, format)
}

func GenerateStorageKey(filename string) string {
	ext := filepath.Ext(filename)
	name := strings.TrimSuffix(filename, ext)
	timestamp := time.Now().Unix()
	uuid := uuid.New().String()[:8]

	return fmt.Sprintf("upscaled/%s_%d_%s%s", name, timestamp, uuid, ext)
}
