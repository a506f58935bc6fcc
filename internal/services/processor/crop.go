package processor

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/image-upscaler/internal/models"
)

func (p *ImageProcessor) cropImage(img image.Image, req *models.CropRequest) image.Image {
	return imaging.Crop(img, req.Clip(img.Bounds()))
}
