package gallery

import (
	"context"
	"log"
	"math"
	"studio/models"
)

type PhotoPage struct {
	Photos     []models.Photo
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
}

// ListPhotos pages through the gallery's photo set. page < 1 becomes 1, pageSize <= 0
// becomes the default page size and anything above the maximum is clamped.
// A page whose offset does not fit is InvalidRequest.
func (s *Service) ListPhotos(ctx context.Context, galleryID uint64, page, pageSize int) (*PhotoPage, error) {
	now := s.clock()
	if _, err := s.loadGallery(ctx, galleryID, now); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.opts.PageSize
	}
	if pageSize > s.opts.MaxPageSize {
		pageSize = s.opts.MaxPageSize
	}
	if page > math.MaxInt32/pageSize {
		return nil, newError(StatusInvalidRequest, ReasonPageOutOfRange, "This page does not exist")
	}
	photos, total, err := s.Photos.PagePhotos(ctx, galleryID, (page-1)*pageSize, pageSize)
	if err != nil {
		log.Printf("Photos page %d for gallery %d error: %v", page, galleryID, err)
		return nil, internalError(err)
	}
	return &PhotoPage{
		Photos:     photos,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}
