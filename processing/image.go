package processing

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"
	"studio/gallery"
	"studio/models"
	"studio/storage"

	_ "github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	cmap "github.com/orcaman/concurrent-map/v2"
	"gorm.io/gorm"
)

const jpegQuality = 90

// Processor renders what gallery visitors receive: originals, watermarked copies,
// previews and zip archives. Previews are kept in memory, bounded by maxPreviews
type Processor struct {
	DB          *gorm.DB
	previews    cmap.ConcurrentMap[string, []byte]
	logos       cmap.ConcurrentMap[string, image.Image]
	maxPreviews int
	tasks       map[string]processingTask
}

var _ gallery.Images = (*Processor)(nil)

func NewProcessor(db *gorm.DB, maxPreviews int) *Processor {
	return &Processor{
		DB:          db,
		previews:    cmap.New[[]byte](),
		logos:       cmap.New[image.Image](),
		maxPreviews: maxPreviews,
	}
}

// Load reads the original photo from its bucket
func (p *Processor) Load(ctx context.Context, photo *models.Photo) ([]byte, error) {
	s := storage.StorageFrom(photo.BucketID)
	if s == nil {
		return nil, fmt.Errorf("no storage for bucket %d (photo %d)", photo.BucketID, photo.ID)
	}
	buf := bytes.Buffer{}
	if _, err := s.Load(photo.GetPath(), &buf); err != nil {
		return nil, fmt.Errorf("loading %s: %w", photo.GetPath(), err)
	}
	return buf.Bytes(), ctx.Err()
}

func (p *Processor) ApplyWatermark(ctx context.Context, data []byte, watermark models.Watermark) ([]byte, error) {
	img, err := decode(data)
	if err != nil {
		return nil, err
	}
	marked, err := p.watermark(img, watermark)
	if err != nil {
		return nil, err
	}
	return encodeJPEG(marked)
}

// Preview returns a JPEG fitting in a size x size box
func (p *Processor) Preview(ctx context.Context, photo *models.Photo, size uint, watermark *models.Watermark) ([]byte, error) {
	key := previewKey(photo.ID, size, watermark)
	if data, ok := p.previews.Get(key); ok {
		return data, nil
	}
	original, err := p.Load(ctx, photo)
	if err != nil {
		return nil, err
	}
	img, err := decode(original)
	if err != nil {
		return nil, err
	}
	img = resize.Thumbnail(size, size, img, resize.Lanczos3)
	if watermark != nil {
		if img, err = p.watermark(img, *watermark); err != nil {
			return nil, err
		}
	}
	data, err := encodeJPEG(img)
	if err != nil {
		return nil, err
	}
	p.remember(key, data)
	return data, nil
}

// ForgetPhoto drops the cached previews of one photo
func (p *Processor) ForgetPhoto(photoID uint64) {
	prefix := fmt.Sprintf("%d/", photoID)
	for _, key := range p.previews.Keys() {
		if strings.HasPrefix(key, prefix) {
			p.previews.Remove(key)
		}
	}
}

// ForgetAll is used when watermark settings change
func (p *Processor) ForgetAll() {
	p.previews.Clear()
	p.logos.Clear()
}

func (p *Processor) remember(key string, data []byte) {
	if p.maxPreviews <= 0 {
		return
	}
	// Evict arbitrary entries
	for p.previews.Count() >= p.maxPreviews {
		keys := p.previews.Keys()
		if len(keys) == 0 {
			break
		}
		p.previews.Remove(keys[0])
	}
	p.previews.Set(key, data)
}

func previewKey(photoID uint64, size uint, watermark *models.Watermark) string {
	if watermark == nil {
		return fmt.Sprintf("%d/%d", photoID, size)
	}
	return fmt.Sprintf("%d/%d/%+v", photoID, size, *watermark)
}

func decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

func encodeJPEG(img image.Image) ([]byte, error) {
	buf := bytes.Buffer{}
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// loadFrom reads a whole object from the default bucket
func loadFrom(path string) (io.Reader, error) {
	s := storage.GetDefaultStorage()
	if s == nil {
		return nil, fmt.Errorf("no default storage for %s", path)
	}
	buf := &bytes.Buffer{}
	if _, err := s.Load(path, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
