package models

import "time"

// Capabilities is embedded both in AccessGrant and (for anonymous public links) in Gallery
type Capabilities struct {
	CanDownload         bool `gorm:"not null;default:false" json:"can_download"`
	CanProof            bool `gorm:"not null;default:false" json:"can_proof"`
	CanOrder            bool `gorm:"not null;default:false" json:"can_order"`
	CanDownloadOriginal bool `gorm:"not null;default:false" json:"can_download_original"` // skips the watermark
}

// AccessGrant authorizes one client to view a gallery. Unique per (gallery, client)
type AccessGrant struct {
	ID              uint64        `gorm:"primaryKey"`
	CreatedAt       time.Time     `gorm:"not null"`
	GalleryID       uint64        `gorm:"not null;index:uniq_gallery_client,unique,priority:1"`
	Gallery         Gallery       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ClientProfileID uint64        `gorm:"not null;index:uniq_gallery_client,unique,priority:2"`
	ClientProfile   ClientProfile `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Capabilities    Capabilities  `gorm:"embedded"`
}
