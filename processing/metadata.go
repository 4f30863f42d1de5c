package processing

import (
	"bytes"
	"context"
	"image"
	"log"
	"net/http"
	"strings"
	"studio/models"

	"gorm.io/gorm"
)

// metadata fills in photo dimensions and the sniffed mime type after upload
type metadata struct {
	db *gorm.DB
}

func (md *metadata) getName() string {
	return "metadata"
}

func (md *metadata) shouldHandle(photo *models.Photo) bool {
	return photo.Width == 0 || photo.Height == 0 || !strings.HasPrefix(photo.MimeType, "image/")
}

func (md *metadata) process(ctx context.Context, photo *models.Photo, data []byte) int {
	config, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		log.Printf("Metadata processing error for photo %d: %v", photo.ID, err)
		return Failed
	}
	photo.Width = clampDimension(config.Width)
	photo.Height = clampDimension(config.Height)
	if format == "webp" {
		photo.MimeType = "image/webp"
	} else {
		photo.MimeType = http.DetectContentType(data)
	}
	err = md.db.WithContext(ctx).Model(photo).Updates(map[string]interface{}{
		"width":     photo.Width,
		"height":    photo.Height,
		"mime_type": photo.MimeType,
	}).Error
	if err != nil {
		log.Printf("Error updating DB for photo ID %d: %v", photo.ID, err)
		return FailedDB
	}
	return Done
}

func clampDimension(v int) uint16 {
	if v > 65535 {
		return 65535
	}
	if v < 0 {
		return 0
	}
	return uint16(v)
}

// preview warms the cache with the unwatermarked preview
type preview struct {
	p    *Processor
	size uint
}

func (pt *preview) getName() string {
	return "preview"
}

func (pt *preview) shouldHandle(photo *models.Photo) bool {
	return pt.p.maxPreviews > 0
}

func (pt *preview) process(ctx context.Context, photo *models.Photo, data []byte) int {
	if _, err := pt.p.Preview(ctx, photo, pt.size, nil); err != nil {
		log.Printf("Preview error for photo %d: %v", photo.ID, err)
		return Failed
	}
	return Done
}
