package store

import (
	"context"
	"sort"
	"studio/gallery"
	"studio/models"

	"gorm.io/gorm/clause"
)

// UpsertProof relies on the uniq_photo_session index, concurrent writes for the
// same pair end up in one row holding the last written values
func (s *Store) UpsertProof(ctx context.Context, proof *models.Proof) (*models.Proof, error) {
	proof.SelectedDate = proof.SelectedDate.UTC()
	err := s.db(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "photo_id"}, {Name: "gallery_session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_favorite", "is_marked_for_editing", "editing_notes", "selected_date"}),
	}).Create(proof).Error
	if err != nil {
		return nil, err
	}
	saved := &models.Proof{}
	err = s.db(ctx).Where("photo_id = ? AND gallery_session_id = ?", proof.PhotoID, proof.GallerySessionID).First(saved).Error
	if err != nil {
		return nil, translate(err)
	}
	return saved, nil
}

func (s *Store) DeleteProof(ctx context.Context, sessionID string, photoID uint64) error {
	return s.db(ctx).Where("gallery_session_id = ? AND photo_id = ?", sessionID, photoID).Delete(&models.Proof{}).Error
}

func (s *Store) SessionProofs(ctx context.Context, sessionID string) (proofs []models.Proof, err error) {
	err = s.db(ctx).Where("gallery_session_id = ?", sessionID).Order("photo_id").Find(&proofs).Error
	return
}

// ProofSummary aggregates every session's proofs per photo, most favorited first
func (s *Store) ProofSummary(ctx context.Context, galleryID uint64) ([]gallery.PhotoProofs, error) {
	proofs := []models.Proof{}
	err := s.db(ctx).
		Select("proofs.*").
		Joins("JOIN gallery_sessions ON gallery_sessions.id = proofs.gallery_session_id").
		Where("gallery_sessions.gallery_id = ?", galleryID).
		Preload("Photo").
		Find(&proofs).Error
	if err != nil {
		return nil, err
	}
	byPhoto := map[uint64]*gallery.PhotoProofs{}
	for _, p := range proofs {
		summary, ok := byPhoto[p.PhotoID]
		if !ok {
			summary = &gallery.PhotoProofs{PhotoID: p.PhotoID, PhotoName: p.Photo.Name}
			byPhoto[p.PhotoID] = summary
		}
		if p.IsFavorite {
			summary.Favorites++
		}
		if p.IsMarkedForEditing {
			summary.EditRequests++
		}
		if p.EditingNotes != "" {
			summary.NotesCount++
		}
		if at := p.SelectedDate.Unix(); at > summary.LastSelectedAt {
			summary.LastSelectedAt = at
		}
	}
	result := make([]gallery.PhotoProofs, 0, len(byPhoto))
	for _, summary := range byPhoto {
		result = append(result, *summary)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Favorites != result[j].Favorites {
			return result[i].Favorites > result[j].Favorites
		}
		return result[i].PhotoID < result[j].PhotoID
	})
	return result, nil
}
