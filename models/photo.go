package models

import (
	"path/filepath"
	"strconv"
	"strings"
	"studio/storage"
	"time"

	"gorm.io/gorm"
)

type Photo struct {
	ID        uint64    `gorm:"primaryKey"`
	AlbumID   uint64    `gorm:"not null;index:album_photo_created,priority:1"`
	Album     Album     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt time.Time `gorm:"index:album_photo_created,priority:2"`
	BucketID  uint64
	Bucket    storage.Bucket `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Name      string         `gorm:"type:varchar(300)"`
	MimeType  string         `gorm:"type:varchar(50)"`
	Size      int64
	Width     uint16
	Height    uint16
}

// GetPath returns the location of the original within its bucket, e.g. album/12/345.jpg
func (p *Photo) GetPath() string {
	return "album/" + strconv.FormatUint(p.AlbumID, 10) + "/" + strconv.FormatUint(p.ID, 10) + strings.ToLower(filepath.Ext(p.Name))
}

func (p *Photo) BeforeSave(tx *gorm.DB) (err error) {
	// Restrict the characters in Name
	var name strings.Builder
	for i, c := range p.Name {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
			(c == '.' && i > 0) || (c == '-') || (c == '_') {

			name.WriteRune(c)
		} else {
			// Replace all other characters with '_' (underscore)
			name.WriteString("_")
		}
	}
	p.Name = name.String()
	return
}
