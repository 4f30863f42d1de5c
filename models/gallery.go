package models

import (
	"math"
	"time"
)

type GalleryStatus string

const (
	GalleryStatusInactive GalleryStatus = "Inactive"
	GalleryStatusExpired  GalleryStatus = "Expired"
	GalleryStatusActive   GalleryStatus = "Active"
)

type WatermarkPosition string

const (
	WatermarkCenter      WatermarkPosition = "center"
	WatermarkTopLeft     WatermarkPosition = "top-left"
	WatermarkTopRight    WatermarkPosition = "top-right"
	WatermarkBottomLeft  WatermarkPosition = "bottom-left"
	WatermarkBottomRight WatermarkPosition = "bottom-right"

	WatermarkMinOpacity = 0.1
	WatermarkMaxOpacity = 1.0
)

var WatermarkPositions = []WatermarkPosition{
	WatermarkCenter, WatermarkTopLeft, WatermarkTopRight, WatermarkBottomLeft, WatermarkBottomRight,
}

func (p WatermarkPosition) Valid() bool {
	for _, v := range WatermarkPositions {
		if v == p {
			return true
		}
	}
	return false
}

// Watermark is embedded in Gallery with a "watermark_" column prefix
type Watermark struct {
	Enabled   bool              `gorm:"not null;default:false" json:"enabled"`
	Text      string            `gorm:"type:varchar(200)" json:"text"`
	ImagePath string            `gorm:"type:varchar(500)" json:"image_path"` // path within the gallery owner's bucket
	Opacity   float64           `gorm:"not null;default:0.5" json:"opacity"`
	Position  WatermarkPosition `gorm:"type:varchar(20);not null;default:'bottom-right'" json:"position"`
	Tiled     bool              `gorm:"not null;default:false" json:"tiled"`
}

// ClampedOpacity keeps the opacity within [0.1, 1.0]
func (w Watermark) ClampedOpacity() float64 {
	return math.Min(WatermarkMaxOpacity, math.Max(WatermarkMinOpacity, w.Opacity))
}

type Gallery struct {
	ID                 uint64    `gorm:"primaryKey"`
	UserID             uint64    `gorm:"not null;index"` // studio user owning the gallery
	User               User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time
	Name               string       `gorm:"type:varchar(300);not null"`
	Description        string       `gorm:"type:text"`
	ExpiryDate         time.Time    `gorm:"not null;index"`
	IsActive           bool         `gorm:"not null"`
	BrandColor         string       `gorm:"type:varchar(20)"`
	Watermark          Watermark    `gorm:"embedded;embeddedPrefix:watermark_"`
	PublicLinkEnabled  bool         `gorm:"not null;default:false"`
	PublicCapabilities Capabilities `gorm:"embedded;embeddedPrefix:public_"`
	ReminderSentAt     *time.Time
	Albums             []Album `gorm:"many2many:gallery_albums;"`
}

// IsExpiredAt compares in UTC: expired strictly after the expiry date
func (g *Gallery) IsExpiredAt(now time.Time) bool {
	return now.UTC().After(g.ExpiryDate.UTC())
}

// StatusAt is derived, never stored. An inactive gallery is Inactive regardless of expiry
func (g *Gallery) StatusAt(now time.Time) GalleryStatus {
	if !g.IsActive {
		return GalleryStatusInactive
	}
	if g.IsExpiredAt(now) {
		return GalleryStatusExpired
	}
	return GalleryStatusActive
}

// DaysUntilExpiry returns whole days left, 0 once expired
func (g *Gallery) DaysUntilExpiry(now time.Time) int {
	left := g.ExpiryDate.UTC().Sub(now.UTC())
	if left <= 0 {
		return 0
	}
	return int(left / (24 * time.Hour))
}
