package gallery

import (
	"context"
	"errors"
	"log"
	"studio/models"
	"time"
)

type Access struct {
	Gallery         *models.Gallery
	IsPublicAccess  bool
	DaysUntilExpiry int
	Capabilities    models.Capabilities
}

// ResolveAccess answers "can this caller view the gallery". caller is the
// authenticated client profile id, nil for anonymous link visitors. Read-only.
func (s *Service) ResolveAccess(ctx context.Context, galleryID uint64, caller *uint64) (*Access, error) {
	now := s.clock()
	g, err := s.loadGallery(ctx, galleryID, now)
	if err != nil {
		return nil, err
	}
	return s.authorize(ctx, g, caller, now)
}

// loadGallery fails with Forbidden once expired, even when inactive, and NotFound for missing/inactive galleries
func (s *Service) loadGallery(ctx context.Context, galleryID uint64, now time.Time) (*models.Gallery, error) {
	g, err := s.Galleries.FindGallery(ctx, galleryID)
	if errors.Is(err, ErrNotFound) {
		return nil, newError(StatusNotFound, ReasonGalleryNotFound, "This gallery does not exist")
	}
	if err != nil {
		log.Printf("Gallery %d load error: %v", galleryID, err)
		return nil, internalError(err)
	}
	// expiry wins over the active flag
	if g.IsExpiredAt(now) {
		return nil, newError(StatusForbidden, ReasonExpired, "This gallery has expired")
	}
	if g.StatusAt(now) == models.GalleryStatusInactive {
		return nil, newError(StatusNotFound, ReasonGalleryInactive, "This gallery does not exist")
	}
	return g, nil
}

func (s *Service) authorize(ctx context.Context, g *models.Gallery, caller *uint64, now time.Time) (*Access, error) {
	access := &Access{
		Gallery:         g,
		DaysUntilExpiry: g.DaysUntilExpiry(now),
	}
	if caller == nil {
		if !g.PublicLinkEnabled {
			return nil, newError(StatusUnauthorized, ReasonLoginRequired, "Please sign in to view this gallery")
		}
		access.IsPublicAccess = true
		access.Capabilities = g.PublicCapabilities
		return access, nil
	}
	grant, err := s.Grants.FindGrant(ctx, g.ID, *caller)
	if err != nil {
		log.Printf("Grant lookup error for gallery %d, client %d: %v", g.ID, *caller, err)
		return nil, internalError(err)
	}
	if grant == nil {
		return nil, newError(StatusForbidden, ReasonNoGrant, "You do not have access to this gallery")
	}
	access.Capabilities = grant.Capabilities
	return access, nil
}

// activeSession loads a session that may still be used for proofing/downloading
func (s *Service) activeSession(ctx context.Context, sessionID string, now time.Time) (*models.GallerySession, error) {
	if sessionID == "" {
		return nil, newError(StatusUnauthorized, ReasonSessionInvalid, "Your gallery session is not valid, please reopen the gallery link")
	}
	sess, err := s.Sessions.FindSession(ctx, sessionID)
	if errors.Is(err, ErrNotFound) {
		return nil, newError(StatusUnauthorized, ReasonSessionInvalid, "Your gallery session is not valid, please reopen the gallery link")
	}
	if err != nil {
		log.Printf("Session %s load error: %v", sessionID, err)
		return nil, internalError(err)
	}
	if sess.IsEnded() || sess.IsIdleAt(now, s.opts.SessionIdle) {
		return nil, newError(StatusUnauthorized, ReasonSessionInvalid, "Your gallery session has ended, please reopen the gallery link")
	}
	return sess, nil
}

// sessionAccess resolves the session, its gallery and the session owner's capabilities.
// galleryID 0 skips the gallery match check.
func (s *Service) sessionAccess(ctx context.Context, galleryID uint64, sessionID string, now time.Time) (*models.GallerySession, *Access, error) {
	sess, err := s.activeSession(ctx, sessionID, now)
	if err != nil {
		return nil, nil, err
	}
	if galleryID != 0 && sess.GalleryID != galleryID {
		return nil, nil, newError(StatusForbidden, ReasonSessionInvalid, "This session belongs to another gallery")
	}
	g, err := s.loadGallery(ctx, sess.GalleryID, now)
	if err != nil {
		return nil, nil, err
	}
	access, err := s.authorize(ctx, g, sess.ClientProfileID, now)
	if err != nil {
		return nil, nil, err
	}
	return sess, access, nil
}

func (s *Service) galleryPhoto(ctx context.Context, galleryID, photoID uint64) (*models.Photo, error) {
	photo, err := s.Photos.FindGalleryPhoto(ctx, galleryID, photoID)
	if errors.Is(err, ErrNotFound) {
		return nil, newError(StatusNotFound, ReasonPhotoNotFound, "This photo is not part of the gallery")
	}
	if err != nil {
		log.Printf("Photo %d lookup error for gallery %d: %v", photoID, galleryID, err)
		return nil, internalError(err)
	}
	return photo, nil
}
