package store

import (
	"context"
	"studio/models"
	"time"

	"gorm.io/gorm"
)

func (s *Store) FindSession(ctx context.Context, id string) (*models.GallerySession, error) {
	sess := &models.GallerySession{}
	if err := s.db(ctx).First(sess, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return sess, nil
}

func (s *Store) FindSessionByToken(ctx context.Context, token string) (*models.GallerySession, error) {
	sess := &models.GallerySession{}
	if err := s.db(ctx).First(sess, "token = ?", token).Error; err != nil {
		return nil, translate(err)
	}
	return sess, nil
}

func (s *Store) TokenExists(ctx context.Context, token string) (bool, error) {
	var count int64
	err := s.db(ctx).Model(&models.GallerySession{}).Where("token = ?", token).Count(&count).Error
	return count > 0, err
}

func (s *Store) CreateSession(ctx context.Context, session *models.GallerySession) error {
	return translate(s.db(ctx).Create(session).Error)
}

// TouchSession never moves last_access_date backwards, concurrent visits may arrive out of order
func (s *Store) TouchSession(ctx context.Context, id string, at time.Time, client *uint64) error {
	at = at.UTC()
	return s.db(ctx).Model(&models.GallerySession{}).Where("id = ?", id).Updates(map[string]interface{}{
		"last_access_date":  gorm.Expr("CASE WHEN last_access_date < ? THEN ? ELSE last_access_date END", at, at),
		"client_profile_id": client,
	}).Error
}

func (s *Store) EndSession(ctx context.Context, id string, at time.Time) error {
	return s.db(ctx).Model(&models.GallerySession{}).
		Where("id = ? AND ended_at IS NULL", id).
		Update("ended_at", at.UTC()).Error
}

// SessionsForGallery lists the gallery's visits, newest first
func (s *Store) SessionsForGallery(ctx context.Context, galleryID uint64) (sessions []models.GallerySession, err error) {
	err = s.db(ctx).Where("gallery_id = ?", galleryID).Order("created_at DESC").Find(&sessions).Error
	return
}
