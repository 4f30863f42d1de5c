package models

import "time"

// Proof is a client's mark on a photo within one gallery session.
// At most one row per (photo, session)
type Proof struct {
	ID                 uint64         `gorm:"primaryKey"`
	PhotoID            uint64         `gorm:"not null;index:uniq_photo_session,unique,priority:1"`
	Photo              Photo          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	GallerySessionID   string         `gorm:"type:varchar(36);not null;index:uniq_photo_session,unique,priority:2"`
	GallerySession     GallerySession `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	IsFavorite         bool           `gorm:"not null"`
	IsMarkedForEditing bool           `gorm:"not null"`
	EditingNotes       string         `gorm:"type:text"`
	SelectedDate       time.Time      `gorm:"not null"`
}

// IsEmpty is true when the proof carries nothing worth keeping
func (p *Proof) IsEmpty() bool {
	return !p.IsFavorite && !p.IsMarkedForEditing && p.EditingNotes == ""
}
