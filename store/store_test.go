package store

import (
	"context"
	"strings"
	"studio/db"
	"studio/gallery"
	"studio/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

var base = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

type seeded struct {
	store   *Store
	gallery models.Gallery
	client  models.ClientProfile
	photos  []models.Photo // attached to the gallery, in creation order
	foreign models.Photo   // in an album the gallery does not reference
}

func setup(t *testing.T) *seeded {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := db.Open(sqlite.Open("file:" + name + "?mode=memory&cache=shared"))
	require.NoError(t, err)
	require.NoError(t, models.Migrate(conn))

	s := &seeded{store: New(conn)}
	user := models.User{Name: "Studio", Email: "studio@example.com"}
	require.NoError(t, conn.Create(&user).Error)
	s.client = models.ClientProfile{StudioID: user.ID, Name: "Anna"}
	require.NoError(t, conn.Create(&s.client).Error)
	shoot := models.PhotoShoot{UserID: user.ID, Title: "Wedding"}
	require.NoError(t, conn.Create(&shoot).Error)

	albums := []models.Album{{PhotoShootID: shoot.ID, Name: "Ceremony"}, {PhotoShootID: shoot.ID, Name: "Party"}, {PhotoShootID: shoot.ID, Name: "Private"}}
	require.NoError(t, conn.Create(&albums).Error)

	// created out of order on purpose, the gallery order is (created_at, id)
	for i, offset := range []int{3, 1, 2, 0} {
		p := models.Photo{AlbumID: albums[i%2].ID, Name: "photo" + string(rune('a'+i)) + ".jpg", CreatedAt: base.Add(time.Duration(offset) * time.Minute)}
		require.NoError(t, conn.Create(&p).Error)
		s.photos = append(s.photos, p)
	}
	s.photos = []models.Photo{s.photos[3], s.photos[1], s.photos[2], s.photos[0]}
	s.foreign = models.Photo{AlbumID: albums[2].ID, Name: "secret.jpg", CreatedAt: base}
	require.NoError(t, conn.Create(&s.foreign).Error)

	s.gallery = models.Gallery{UserID: user.ID, Name: "Anna & Ben", IsActive: true, ExpiryDate: base.AddDate(0, 1, 0)}
	require.NoError(t, conn.Create(&s.gallery).Error)
	require.NoError(t, conn.Create(&[]models.GalleryAlbum{{GalleryID: s.gallery.ID, AlbumID: albums[0].ID}, {GalleryID: s.gallery.ID, AlbumID: albums[1].ID}}).Error)
	return s
}

func (s *seeded) session(t *testing.T, token string) *models.GallerySession {
	sess := &models.GallerySession{ID: "session-" + token, GalleryID: s.gallery.ID, Token: token, CreatedAt: base, LastAccessDate: base}
	require.NoError(t, s.store.CreateSession(context.Background(), sess))
	return sess
}

func ids(photos []models.Photo) []uint64 {
	result := []uint64{}
	for _, p := range photos {
		result = append(result, p.ID)
	}
	return result
}

func TestFindGalleryAndGrant(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	g, err := s.store.FindGallery(ctx, s.gallery.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anna & Ben", g.Name)
	_, err = s.store.FindGallery(ctx, 999)
	assert.ErrorIs(t, err, gallery.ErrNotFound)

	grant, err := s.store.FindGrant(ctx, s.gallery.ID, s.client.ID)
	require.NoError(t, err)
	assert.Nil(t, grant)

	require.NoError(t, s.store.DB.Create(&models.AccessGrant{
		GalleryID:       s.gallery.ID,
		ClientProfileID: s.client.ID,
		Capabilities:    models.Capabilities{CanDownload: true},
	}).Error)
	grant, err = s.store.FindGrant(ctx, s.gallery.ID, s.client.ID)
	require.NoError(t, err)
	require.NotNil(t, grant)
	assert.True(t, grant.Capabilities.CanDownload)
	assert.False(t, grant.Capabilities.CanProof)
}

func TestGalleryPhotos(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	all, err := s.store.PhotosForGallery(ctx, s.gallery.ID)
	require.NoError(t, err)
	assert.Equal(t, ids(s.photos), ids(all))

	page, total, err := s.store.PagePhotos(ctx, s.gallery.ID, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Equal(t, ids(s.photos[2:]), ids(page))

	p, err := s.store.FindGalleryPhoto(ctx, s.gallery.ID, s.photos[0].ID)
	require.NoError(t, err)
	assert.Equal(t, s.photos[0].Name, p.Name)

	_, err = s.store.FindGalleryPhoto(ctx, s.gallery.ID, s.foreign.ID)
	assert.ErrorIs(t, err, gallery.ErrNotFound)
}

func TestSessions(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	sess := s.session(t, "tok1")

	err := s.store.CreateSession(ctx, &models.GallerySession{ID: "other", GalleryID: s.gallery.ID, Token: "tok1", CreatedAt: base, LastAccessDate: base})
	assert.ErrorIs(t, err, gallery.ErrDuplicate)

	exists, err := s.store.TokenExists(ctx, "tok1")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = s.store.TokenExists(ctx, "abc123")
	require.NoError(t, err)
	assert.False(t, exists)

	later := base.Add(time.Hour)
	require.NoError(t, s.store.TouchSession(ctx, sess.ID, later, &s.client.ID))
	require.NoError(t, s.store.TouchSession(ctx, sess.ID, base, &s.client.ID))
	found, err := s.store.FindSessionByToken(ctx, "tok1")
	require.NoError(t, err)
	assert.True(t, found.LastAccessDate.Equal(later))
	require.NotNil(t, found.ClientProfileID)
	assert.Equal(t, s.client.ID, *found.ClientProfileID)

	require.NoError(t, s.store.EndSession(ctx, sess.ID, later))
	require.NoError(t, s.store.EndSession(ctx, sess.ID, later.Add(time.Hour)))
	found, err = s.store.FindSession(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, found.EndedAt)
	assert.True(t, found.EndedAt.Equal(later))

	_, err = s.store.FindSession(ctx, "missing")
	assert.ErrorIs(t, err, gallery.ErrNotFound)

	list, err := s.store.SessionsForGallery(ctx, s.gallery.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUpsertProof(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	sess := s.session(t, "tok1")
	photo := s.photos[0]

	first, err := s.store.UpsertProof(ctx, &models.Proof{PhotoID: photo.ID, GallerySessionID: sess.ID, IsFavorite: true, SelectedDate: base})
	require.NoError(t, err)
	second, err := s.store.UpsertProof(ctx, &models.Proof{PhotoID: photo.ID, GallerySessionID: sess.ID, IsMarkedForEditing: true, EditingNotes: "crop", SelectedDate: base.Add(time.Minute)})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.False(t, second.IsFavorite)
	assert.True(t, second.IsMarkedForEditing)
	assert.Equal(t, "crop", second.EditingNotes)

	proofs, err := s.store.SessionProofs(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, proofs, 1)

	require.NoError(t, s.store.DeleteProof(ctx, sess.ID, photo.ID))
	require.NoError(t, s.store.DeleteProof(ctx, sess.ID, photo.ID))
	proofs, err = s.store.SessionProofs(ctx, sess.ID)
	require.NoError(t, err)
	assert.Empty(t, proofs)
}

func TestProofSummary(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	one := s.session(t, "tok1")
	two := s.session(t, "tok2")

	for _, p := range []models.Proof{
		{PhotoID: s.photos[1].ID, GallerySessionID: one.ID, IsFavorite: true, SelectedDate: base},
		{PhotoID: s.photos[1].ID, GallerySessionID: two.ID, IsFavorite: true, IsMarkedForEditing: true, EditingNotes: "warmer", SelectedDate: base.Add(time.Hour)},
		{PhotoID: s.photos[0].ID, GallerySessionID: two.ID, IsMarkedForEditing: true, SelectedDate: base},
	} {
		_, err := s.store.UpsertProof(ctx, &p)
		require.NoError(t, err)
	}

	summary, err := s.store.ProofSummary(ctx, s.gallery.ID)
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, gallery.PhotoProofs{
		PhotoID:        s.photos[1].ID,
		PhotoName:      s.photos[1].Name,
		Favorites:      2,
		EditRequests:   1,
		NotesCount:     1,
		LastSelectedAt: base.Add(time.Hour).Unix(),
	}, summary[0])
	assert.Equal(t, s.photos[0].ID, summary[1].PhotoID)
	assert.Equal(t, int64(0), summary[1].Favorites)
}

func TestServiceOnStore(t *testing.T) {
	s := setup(t)
	s.gallery.PublicLinkEnabled = true
	s.gallery.PublicCapabilities = models.Capabilities{CanProof: true}
	require.NoError(t, s.store.DB.Save(&s.gallery).Error)

	svc := gallery.NewService(gallery.Deps{
		Galleries: s.store,
		Grants:    s.store,
		Sessions:  s.store,
		Proofs:    s.store,
		Photos:    s.store,
	}, gallery.Options{Now: func() time.Time { return base }})
	ctx := context.Background()

	visit, err := svc.GetOrCreateSession(ctx, s.gallery.ID, "abc123", nil)
	require.NoError(t, err)
	assert.True(t, visit.IsNew)
	assert.NotEqual(t, "abc123", visit.Session.Token)

	again, err := svc.GetOrCreateSession(ctx, s.gallery.ID, visit.Session.Token, nil)
	require.NoError(t, err)
	assert.Equal(t, visit.Session.ID, again.Session.ID)

	_, err = svc.RecordProof(ctx, visit.Session.ID, s.photos[2].ID, true, false, "")
	require.NoError(t, err)
	_, err = svc.RecordProof(ctx, visit.Session.ID, s.photos[2].ID, false, true, "")
	require.NoError(t, err)
	proofs, err := svc.SessionProofs(ctx, visit.Session.ID)
	require.NoError(t, err)
	require.Len(t, proofs, 1)
	assert.True(t, proofs[0].IsMarkedForEditing)

	_, err = svc.RecordProof(ctx, visit.Session.ID, s.foreign.ID, true, false, "")
	assert.Equal(t, gallery.StatusNotFound, gallery.StatusOf(err))
}
