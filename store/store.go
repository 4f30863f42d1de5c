// Package store implements the gallery workflow repositories on top of gorm
package store

import (
	"context"
	"errors"
	"studio/gallery"
	"studio/models"

	"gorm.io/gorm"
)

type Store struct {
	DB *gorm.DB
}

var (
	_ gallery.Galleries = (*Store)(nil)
	_ gallery.Grants    = (*Store)(nil)
	_ gallery.Sessions  = (*Store)(nil)
	_ gallery.Proofs    = (*Store)(nil)
	_ gallery.Photos    = (*Store)(nil)
)

func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) db(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx)
}

// translate maps gorm errors onto the workflow's repository errors
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return gallery.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return gallery.ErrDuplicate
	}
	return err
}

func (s *Store) FindGallery(ctx context.Context, id uint64) (*models.Gallery, error) {
	g := &models.Gallery{}
	if err := s.db(ctx).First(g, id).Error; err != nil {
		return nil, translate(err)
	}
	return g, nil
}

func (s *Store) FindGrant(ctx context.Context, galleryID, clientProfileID uint64) (*models.AccessGrant, error) {
	grant := &models.AccessGrant{}
	err := s.db(ctx).Where("gallery_id = ? AND client_profile_id = ?", galleryID, clientProfileID).First(grant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return grant, nil
}
