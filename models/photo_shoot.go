package models

import "time"

type PhotoShoot struct {
	ID              uint64 `gorm:"primaryKey"`
	CreatedAt       time.Time
	UserID          uint64         `gorm:"not null;index"`
	User            User           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ClientProfileID *uint64        `gorm:"index"`
	ClientProfile   *ClientProfile `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Title           string         `gorm:"type:varchar(300);not null"`
	Location        string         `gorm:"type:varchar(300)"`
	ShotAt          *time.Time
	Albums          []Album
}
