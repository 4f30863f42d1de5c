package gallery

import (
	"context"
	"log"
	"studio/models"
	"studio/utils"
	"unicode/utf8"
)

// RecordProof upserts the session's mark on a photo. All-false flags with empty notes
// are rejected, ClearProof removes a mark instead.
func (s *Service) RecordProof(ctx context.Context, sessionID string, photoID uint64, isFavorite, isMarkedForEditing bool, notes string) (*models.Proof, error) {
	now := s.clock()
	sess, access, err := s.sessionAccess(ctx, 0, sessionID, now)
	if err != nil {
		return nil, err
	}
	if !access.Capabilities.CanProof {
		return nil, newError(StatusForbidden, ReasonNoCapability, "Proofing is not enabled for you in this gallery")
	}
	proof := &models.Proof{
		PhotoID:            photoID,
		GallerySessionID:   sess.ID,
		IsFavorite:         isFavorite,
		IsMarkedForEditing: isMarkedForEditing,
		EditingNotes:       utils.SanitizeText(notes),
		SelectedDate:       now,
	}
	if proof.IsEmpty() {
		return nil, newError(StatusInvalidRequest, ReasonNothingToRecord, "Nothing to record, clear the proof instead")
	}
	if utf8.RuneCountInString(proof.EditingNotes) > maxNotesLength {
		return nil, newError(StatusInvalidRequest, ReasonNotesTooLong, "Editing notes are too long")
	}
	if _, err = s.galleryPhoto(ctx, sess.GalleryID, photoID); err != nil {
		return nil, err
	}
	saved, err := s.Proofs.UpsertProof(ctx, proof)
	if err != nil {
		log.Printf("Proof upsert error for photo %d, session %s: %v", photoID, sess.ID, err)
		return nil, internalError(err)
	}
	s.touch(ctx, sess, now)
	s.publish(access.Gallery, Event{
		Type:               EventProofRecorded,
		SessionID:          sess.ID,
		ClientProfileID:    sess.ClientProfileID,
		PhotoID:            photoID,
		IsFavorite:         saved.IsFavorite,
		IsMarkedForEditing: saved.IsMarkedForEditing,
		At:                 now,
	})
	return saved, nil
}

// ClearProof removes the session's mark on a photo, missing marks are not an error
func (s *Service) ClearProof(ctx context.Context, sessionID string, photoID uint64) error {
	now := s.clock()
	sess, access, err := s.sessionAccess(ctx, 0, sessionID, now)
	if err != nil {
		return err
	}
	if !access.Capabilities.CanProof {
		return newError(StatusForbidden, ReasonNoCapability, "Proofing is not enabled for you in this gallery")
	}
	if err = s.Proofs.DeleteProof(ctx, sess.ID, photoID); err != nil {
		log.Printf("Proof delete error for photo %d, session %s: %v", photoID, sess.ID, err)
		return internalError(err)
	}
	s.touch(ctx, sess, now)
	s.publish(access.Gallery, Event{Type: EventProofCleared, SessionID: sess.ID, ClientProfileID: sess.ClientProfileID, PhotoID: photoID, At: now})
	return nil
}

func (s *Service) SessionProofs(ctx context.Context, sessionID string) ([]models.Proof, error) {
	now := s.clock()
	sess, _, err := s.sessionAccess(ctx, 0, sessionID, now)
	if err != nil {
		return nil, err
	}
	proofs, err := s.Proofs.SessionProofs(ctx, sess.ID)
	if err != nil {
		log.Printf("Session %s proofs error: %v", sess.ID, err)
		return nil, internalError(err)
	}
	return proofs, nil
}

// ProofSummary is the studio view over every session's proofs, callers check gallery ownership
func (s *Service) ProofSummary(ctx context.Context, galleryID uint64) ([]PhotoProofs, error) {
	summary, err := s.Proofs.ProofSummary(ctx, galleryID)
	if err != nil {
		log.Printf("Proof summary error for gallery %d: %v", galleryID, err)
		return nil, internalError(err)
	}
	return summary, nil
}
