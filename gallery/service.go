// Package gallery implements the client-facing gallery workflow: access checks,
// photo pagination, visit sessions, proofing and downloads.
//
// Persistence, image processing and notifications are collaborators passed to
// NewService, the HTTP layer only talks to *Service.
package gallery

import (
	"context"
	"studio/models"
	"studio/utils"
	"time"
)

// Galleries returns ErrNotFound for unknown ids
type Galleries interface {
	FindGallery(ctx context.Context, id uint64) (*models.Gallery, error)
}

// Grants returns a nil grant (and nil error) when the client has no access row
type Grants interface {
	FindGrant(ctx context.Context, galleryID, clientProfileID uint64) (*models.AccessGrant, error)
}

type Sessions interface {
	FindSession(ctx context.Context, id string) (*models.GallerySession, error)
	FindSessionByToken(ctx context.Context, token string) (*models.GallerySession, error)
	TokenExists(ctx context.Context, token string) (bool, error)
	// CreateSession returns ErrDuplicate when the token is already taken
	CreateSession(ctx context.Context, session *models.GallerySession) error
	TouchSession(ctx context.Context, id string, at time.Time, client *uint64) error
	EndSession(ctx context.Context, id string, at time.Time) error
}

type Proofs interface {
	// UpsertProof inserts or updates the single row for (PhotoID, GallerySessionID) atomically
	UpsertProof(ctx context.Context, proof *models.Proof) (*models.Proof, error)
	DeleteProof(ctx context.Context, sessionID string, photoID uint64) error
	SessionProofs(ctx context.Context, sessionID string) ([]models.Proof, error)
	ProofSummary(ctx context.Context, galleryID uint64) ([]PhotoProofs, error)
}

// Photos sees a gallery's photo set: every photo of every attached album, ordered by (CreatedAt, ID)
type Photos interface {
	PhotosForGallery(ctx context.Context, galleryID uint64) ([]models.Photo, error)
	PagePhotos(ctx context.Context, galleryID uint64, offset, limit int) ([]models.Photo, int64, error)
	// FindGalleryPhoto returns ErrNotFound when the photo is not part of the gallery
	FindGalleryPhoto(ctx context.Context, galleryID, photoID uint64) (*models.Photo, error)
}

// Images is the image processing collaborator
type Images interface {
	Load(ctx context.Context, photo *models.Photo) ([]byte, error)
	ApplyWatermark(ctx context.Context, data []byte, watermark models.Watermark) ([]byte, error)
	// Preview returns a JPEG scaled to fit size, watermarked when watermark is not nil
	Preview(ctx context.Context, photo *models.Photo, size uint, watermark *models.Watermark) ([]byte, error)
	BuildArchive(ctx context.Context, files []ArchiveFile) ([]byte, error)
}

type ArchiveFile struct {
	Name string
	Data []byte
}

// PhotoProofs aggregates the proofs of all sessions for one photo
type PhotoProofs struct {
	PhotoID        uint64 `json:"photo_id"`
	PhotoName      string `json:"photo_name"`
	Favorites      int64  `json:"favorites"`
	EditRequests   int64  `json:"edit_requests"`
	NotesCount     int64  `json:"notes"`
	LastSelectedAt int64  `json:"last_selected_at"`
}

type Options struct {
	PageSize    int
	MaxPageSize int
	BulkMax     int
	SessionIdle time.Duration // 0 disables idle expiry
	ThumbSize   uint
	Now         func() time.Time
	NewToken    func() string
}

type Deps struct {
	Galleries Galleries
	Grants    Grants
	Sessions  Sessions
	Proofs    Proofs
	Photos    Photos
	Images    Images
	Events    EventSink // optional
}

type Service struct {
	Deps
	opts Options
}

const (
	defaultPageSize    = 48
	defaultMaxPageSize = 200
	defaultBulkMax     = 500
	defaultThumbSize   = 1280
	maxTokenAttempts   = 5
	maxNotesLength     = 2000
	tokenBytes         = 32
)

func NewService(deps Deps, opts Options) *Service {
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = defaultMaxPageSize
	}
	if opts.PageSize > opts.MaxPageSize {
		opts.PageSize = opts.MaxPageSize
	}
	if opts.BulkMax <= 0 {
		opts.BulkMax = defaultBulkMax
	}
	if opts.ThumbSize == 0 {
		opts.ThumbSize = defaultThumbSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewToken == nil {
		opts.NewToken = func() string {
			return utils.RandBytesToBase62(tokenBytes)
		}
	}
	if deps.Events == nil {
		deps.Events = Sinks{}
	}
	return &Service{Deps: deps, opts: opts}
}

// clock is read once per operation so compound checks agree with each other
func (s *Service) clock() time.Time {
	return s.opts.Now().UTC()
}
