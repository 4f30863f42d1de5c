package gallery

import (
	"context"
	"crypto/subtle"
	"errors"
	"log"
	"studio/models"
	"time"

	"github.com/google/uuid"
)

// Visit is a session together with what its owner may do in the gallery
type Visit struct {
	Session *models.GallerySession
	Access  *Access
	IsNew   bool
}

// GetOrCreateSession refreshes the session identified by token when it is still usable
// for this gallery and caller, otherwise mints a new one with a fresh token.
// An unknown token is never adopted as the new session's token.
func (s *Service) GetOrCreateSession(ctx context.Context, galleryID uint64, token string, caller *uint64) (*Visit, error) {
	now := s.clock()
	g, err := s.loadGallery(ctx, galleryID, now)
	if err != nil {
		return nil, err
	}
	access, err := s.authorize(ctx, g, caller, now)
	if err != nil {
		return nil, err
	}
	if token != "" {
		sess, err := s.Sessions.FindSessionByToken(ctx, token)
		switch {
		case errors.Is(err, ErrNotFound):
		case err != nil:
			log.Printf("Session token lookup error for gallery %d: %v", galleryID, err)
			return nil, internalError(err)
		case s.isReusable(sess, galleryID, caller, now):
			if err = s.refresh(ctx, sess, caller, now); err != nil {
				return nil, internalError(err)
			}
			return &Visit{Session: sess, Access: access}, nil
		}
	}
	sess, err := s.mint(ctx, g.ID, caller, now)
	if err != nil {
		return nil, err
	}
	s.publish(g, Event{Type: EventSessionStarted, SessionID: sess.ID, ClientProfileID: sess.ClientProfileID, At: now})
	return &Visit{Session: sess, Access: access, IsNew: true}, nil
}

// FindSession resolves a presented token without minting. Proof and download
// endpoints use it to pick up the session the visitor opened the gallery with.
func (s *Service) FindSession(ctx context.Context, galleryID uint64, token string, caller *uint64) (*Visit, error) {
	now := s.clock()
	if token == "" {
		return nil, newError(StatusUnauthorized, ReasonSessionInvalid, "Please reopen the gallery link")
	}
	sess, err := s.Sessions.FindSessionByToken(ctx, token)
	if errors.Is(err, ErrNotFound) {
		return nil, newError(StatusUnauthorized, ReasonSessionInvalid, "Your gallery session is not valid, please reopen the gallery link")
	}
	if err != nil {
		log.Printf("Session token lookup error for gallery %d: %v", galleryID, err)
		return nil, internalError(err)
	}
	if !s.isReusable(sess, galleryID, caller, now) {
		return nil, newError(StatusUnauthorized, ReasonSessionInvalid, "Your gallery session has ended, please reopen the gallery link")
	}
	sess, access, err := s.sessionAccess(ctx, galleryID, sess.ID, now)
	if err != nil {
		return nil, err
	}
	return &Visit{Session: sess, Access: access}, nil
}

// EndSession marks the session as ended. Ending an ended session is a no-op.
func (s *Service) EndSession(ctx context.Context, sessionID string) error {
	now := s.clock()
	sess, err := s.Sessions.FindSession(ctx, sessionID)
	if errors.Is(err, ErrNotFound) {
		return newError(StatusNotFound, ReasonSessionNotFound, "This session does not exist")
	}
	if err != nil {
		log.Printf("Session %s load error: %v", sessionID, err)
		return internalError(err)
	}
	if sess.IsEnded() {
		return nil
	}
	if err = s.Sessions.EndSession(ctx, sess.ID, now); err != nil {
		log.Printf("Session %s end error: %v", sess.ID, err)
		return internalError(err)
	}
	sess.EndedAt = &now
	if g, err := s.Galleries.FindGallery(ctx, sess.GalleryID); err == nil {
		s.publish(g, Event{Type: EventSessionEnded, SessionID: sess.ID, ClientProfileID: sess.ClientProfileID, At: now})
	}
	return nil
}

// EndPresentedSession ends sessionID on behalf of a caller who must present the
// session's token; token returns what the caller holds for the session's gallery.
// Ending an already ended session stays a no-op.
func (s *Service) EndPresentedSession(ctx context.Context, sessionID string, token func(galleryID uint64) string) error {
	sess, err := s.Sessions.FindSession(ctx, sessionID)
	if errors.Is(err, ErrNotFound) {
		return newError(StatusNotFound, ReasonSessionNotFound, "This session does not exist")
	}
	if err != nil {
		log.Printf("Session %s load error: %v", sessionID, err)
		return internalError(err)
	}
	presented := token(sess.GalleryID)
	if presented == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(sess.Token)) != 1 {
		return newError(StatusUnauthorized, ReasonSessionInvalid, "Your gallery session is not valid, please reopen the gallery link")
	}
	return s.EndSession(ctx, sess.ID)
}

func (s *Service) isReusable(sess *models.GallerySession, galleryID uint64, caller *uint64, now time.Time) bool {
	return sess.GalleryID == galleryID &&
		!sess.IsEnded() &&
		!sess.IsIdleAt(now, s.opts.SessionIdle) &&
		sess.IsOwnedBy(caller)
}

// refresh bumps LastAccessDate (never backwards) and binds anonymous sessions to the first signed in caller
func (s *Service) refresh(ctx context.Context, sess *models.GallerySession, caller *uint64, now time.Time) error {
	at := now
	if at.Before(sess.LastAccessDate) {
		at = sess.LastAccessDate
	}
	owner := sess.ClientProfileID
	if owner == nil && caller != nil {
		id := *caller
		owner = &id
	}
	if err := s.Sessions.TouchSession(ctx, sess.ID, at, owner); err != nil {
		log.Printf("Session %s touch error: %v", sess.ID, err)
		return err
	}
	sess.LastAccessDate = at
	sess.ClientProfileID = owner
	return nil
}

// touch is refresh for operations that already succeeded, failures are only logged
func (s *Service) touch(ctx context.Context, sess *models.GallerySession, now time.Time) {
	_ = s.refresh(ctx, sess, nil, now)
}

func (s *Service) mint(ctx context.Context, galleryID uint64, caller *uint64, now time.Time) (*models.GallerySession, error) {
	var owner *uint64
	if caller != nil {
		id := *caller
		owner = &id
	}
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token := s.opts.NewToken()
		exists, err := s.Sessions.TokenExists(ctx, token)
		if err != nil {
			log.Printf("Session token check error: %v", err)
			return nil, internalError(err)
		}
		if exists {
			continue
		}
		sess := &models.GallerySession{
			ID:              uuid.NewString(),
			GalleryID:       galleryID,
			Token:           token,
			ClientProfileID: owner,
			CreatedAt:       now,
			LastAccessDate:  now,
		}
		err = s.Sessions.CreateSession(ctx, sess)
		if errors.Is(err, ErrDuplicate) {
			continue
		}
		if err != nil {
			log.Printf("Session create error for gallery %d: %v", galleryID, err)
			return nil, internalError(err)
		}
		return sess, nil
	}
	log.Printf("Could not generate a unique session token for gallery %d after %d attempts", galleryID, maxTokenAttempts)
	return nil, internalError(errors.New("session token collision"))
}

func (s *Service) publish(g *models.Gallery, e Event) {
	e.OwnerID = g.UserID
	e.GalleryID = g.ID
	e.GalleryName = g.Name
	s.Events.Publish(e)
}
