package processor

import (
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/image-upscaler/internal/models"
)

func encodingFormat(format string) (imaging.Format, error) {
	switch format {
	case models.FormatPNG, models.FormatWebP:
		// No webp encoder is available; webp requests are served as PNG.
		return imaging.PNG, nil
	case models.FormatJPEG, "jpg":
		return imaging.JPEG, nil
	case models.FormatGIF:
		return imaging.GIF, nil
	case models.FormatBMP:
		return imaging.BMP, nil
	case models.FormatTIFF:
		return imaging.TIFF, nil
	default:
		return 0, fmt.Errorf("unsupported output format %q", format)
	}
}

func (p *ImageProcessor) encodeImage(w io.Writer, img image.Image, format string, quality int) error {
	f, err := encodingFormat(format)
	if err != nil {
		return err
	}
	return imaging.Encode(w, img, f, imaging.JPEGQuality(quality))
}

// ContentType returns the MIME type of an encoded output format.
func ContentType(format string) string {
	f, err := encodingFormat(format)
	if err != nil {
		return "application/octet-stream"
	}
	switch f {
	case imaging.JPEG:
		return "image/jpeg"
	case imaging.GIF:
		return "image/gif"
	case imaging.BMP:
		return "image/bmp"
	case imaging.TIFF:
		return "image/tiff"
	default:
		return "image/png"
	}
}

// Extension returns the file extension for an encoded output format.
func Extension(format string) string {
	switch ContentType(format) {
	case "image/jpeg":
		return "jpeg"
	case "image/gif":
		return "gif"
	case "image/bmp":
		return "bmp"
	case "image/tiff":
		return "tiff"
	default:
		return "png"
	}
}
