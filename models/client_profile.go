package models

import "time"

// ClientProfile is a studio customer. UserID links it to a login, if the client has one
type ClientProfile struct {
	ID        uint64 `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	StudioID  uint64  `gorm:"not null;index"` // studio user that owns this client record
	Studio    User    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	UserID    *uint64 `gorm:"index:uniq_client_user,unique"`
	User      *User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Name      string  `gorm:"type:varchar(200);not null"`
	Email     string  `gorm:"type:varchar(150)"`
	Phone     string  `gorm:"type:varchar(50)"`
}
