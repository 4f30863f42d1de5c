package models

import "time"

type Album struct {
	ID           uint64     `gorm:"primaryKey"`
	PhotoShootID uint64     `gorm:"not null;index"`
	PhotoShoot   PhotoShoot `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt    time.Time
	Name         string `gorm:"type:varchar(300)"`
	Photos       []Photo
}

// GalleryAlbum attaches an album to a gallery (many-to-many)
type GalleryAlbum struct {
	GalleryID uint64 `gorm:"primaryKey"`
	AlbumID   uint64 `gorm:"primaryKey;index"`
}
