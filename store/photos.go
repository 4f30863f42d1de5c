package store

import (
	"context"
	"studio/models"

	"gorm.io/gorm"
)

// galleryPhotos selects the union of the photos of every album attached to the gallery
func (s *Store) galleryPhotos(ctx context.Context, galleryID uint64) *gorm.DB {
	return s.db(ctx).Model(&models.Photo{}).
		Joins("JOIN gallery_albums ON gallery_albums.album_id = photos.album_id").
		Where("gallery_albums.gallery_id = ?", galleryID)
}

func (s *Store) PhotosForGallery(ctx context.Context, galleryID uint64) (photos []models.Photo, err error) {
	err = s.galleryPhotos(ctx, galleryID).Select("photos.*").Order("photos.created_at, photos.id").Find(&photos).Error
	return
}

func (s *Store) PagePhotos(ctx context.Context, galleryID uint64, offset, limit int) (photos []models.Photo, total int64, err error) {
	if err = s.galleryPhotos(ctx, galleryID).Count(&total).Error; err != nil {
		return
	}
	err = s.galleryPhotos(ctx, galleryID).
		Select("photos.*").
		Order("photos.created_at, photos.id").
		Offset(offset).
		Limit(limit).
		Find(&photos).Error
	return
}

func (s *Store) FindGalleryPhoto(ctx context.Context, galleryID, photoID uint64) (*models.Photo, error) {
	photo := &models.Photo{}
	if err := s.galleryPhotos(ctx, galleryID).Select("photos.*").Where("photos.id = ?", photoID).First(photo).Error; err != nil {
		return nil, translate(err)
	}
	return photo, nil
}
