package models

import "time"

// GallerySession is a token-identified visit scope to one gallery. Sessions are never
// deleted automatically, ending one only sets EndedAt
type GallerySession struct {
	ID              string    `gorm:"type:varchar(36);primaryKey"` // UUID
	GalleryID       uint64    `gorm:"not null;index"`
	Gallery         Gallery   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Token           string    `gorm:"type:varchar(100);not null;index:uniq_session_token,unique"`
	ClientProfileID *uint64   `gorm:"index"` // nil for anonymous public link visitors
	CreatedAt       time.Time `gorm:"not null"`
	LastAccessDate  time.Time `gorm:"not null"`
	EndedAt         *time.Time
}

func (s *GallerySession) IsEnded() bool {
	return s.EndedAt != nil
}

// IsIdleAt reports whether the session was not used for longer than idle. idle <= 0 never expires
func (s *GallerySession) IsIdleAt(now time.Time, idle time.Duration) bool {
	if idle <= 0 {
		return false
	}
	return now.UTC().Sub(s.LastAccessDate.UTC()) > idle
}

// IsOwnedBy is true for anonymous sessions and sessions minted for the same client
func (s *GallerySession) IsOwnedBy(client *uint64) bool {
	if s.ClientProfileID == nil {
		return true
	}
	return client != nil && *client == *s.ClientProfileID
}
