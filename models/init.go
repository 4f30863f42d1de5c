package models

import (
	"studio/storage"

	"gorm.io/gorm"
)

// Migrate creates/updates all tables
func Migrate(tx *gorm.DB) error {
	if err := tx.SetupJoinTable(&Gallery{}, "Albums", &GalleryAlbum{}); err != nil {
		return err
	}
	return tx.AutoMigrate(
		&storage.Bucket{},
		&User{},
		&Grant{},
		&ClientProfile{},
		&PhotoShoot{},
		&Album{},
		&Photo{},
		&Gallery{},
		&GalleryAlbum{},
		&AccessGrant{},
		&GallerySession{},
		&Proof{},
	)
}
