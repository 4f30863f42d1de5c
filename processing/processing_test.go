package processing

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"studio/db"
	"studio/gallery"
	"studio/models"
	"studio/storage"
	"testing"
	"time"

	"github.com/chai2010/webp"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

var bucket storage.StorageAPI

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "processing")
	if err != nil {
		panic(err)
	}
	bucket = storage.NewDiskStorage(&storage.Bucket{ID: 1, StorageType: storage.StorageTypeFile, Path: dir})
	storage.Register(bucket)
	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func jpegBytes(t *testing.T, img image.Image) []byte {
	buf := bytes.Buffer{}
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func storePhoto(t *testing.T, photo *models.Photo, data []byte) {
	_, err := bucket.Save(photo.GetPath(), bytes.NewReader(data))
	require.NoError(t, err)
}

func brightest(img image.Image, area image.Rectangle) uint32 {
	top := uint32(0)
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if v := (r + g + b) / 3 >> 8; v > top {
				top = v
			}
		}
	}
	return top
}

func TestPreview_ResizesAndCaches(t *testing.T) {
	p := NewProcessor(nil, 10)
	photo := &models.Photo{ID: 101, AlbumID: 1, BucketID: 1, Name: "wide.jpg"}
	storePhoto(t, photo, jpegBytes(t, solid(200, 100, color.White)))

	data, err := p.Preview(context.Background(), photo, 50, nil)
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(50, 25), img.Bounds().Size())

	require.NoError(t, bucket.Delete(photo.GetPath()))
	cached, err := p.Preview(context.Background(), photo, 50, nil)
	require.NoError(t, err)
	assert.Equal(t, data, cached)

	p.ForgetPhoto(photo.ID)
	_, err = p.Preview(context.Background(), photo, 50, nil)
	assert.Error(t, err)
}

func TestPreview_CacheIsBounded(t *testing.T) {
	p := NewProcessor(nil, 2)
	for i := uint64(1); i <= 4; i++ {
		photo := &models.Photo{ID: 200 + i, AlbumID: 2, BucketID: 1, Name: "p.jpg"}
		storePhoto(t, photo, jpegBytes(t, solid(20, 20, color.Black)))
		_, err := p.Preview(context.Background(), photo, 10, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, p.previews.Count())
}

func TestPreview_WebP(t *testing.T) {
	p := NewProcessor(nil, 0)
	photo := &models.Photo{ID: 301, AlbumID: 3, BucketID: 1, Name: "photo.webp"}
	buf := bytes.Buffer{}
	require.NoError(t, webp.Encode(&buf, solid(40, 80, color.White), &webp.Options{Lossless: true}))
	storePhoto(t, photo, buf.Bytes())

	data, err := p.Preview(context.Background(), photo, 20, nil)
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(10, 20), img.Bounds().Size())
	assert.Zero(t, p.previews.Count())
}

func TestApplyWatermark_Text(t *testing.T) {
	p := NewProcessor(nil, 0)
	original := jpegBytes(t, solid(400, 200, color.Black))

	data, err := p.ApplyWatermark(context.Background(), original, models.Watermark{
		Enabled:  true,
		Text:     "Studio",
		Opacity:  1,
		Position: models.WatermarkBottomRight,
	})
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(400, 200), img.Bounds().Size())
	assert.Greater(t, brightest(img, image.Rect(200, 100, 400, 200)), uint32(128))
	assert.Less(t, brightest(img, image.Rect(0, 0, 150, 80)), uint32(40))
}

func TestApplyWatermark_TiledLogo(t *testing.T) {
	p := NewProcessor(nil, 0)
	logo := bytes.Buffer{}
	require.NoError(t, png.Encode(&logo, solid(10, 10, color.White)))
	_, err := bucket.Save("watermark/logo.png", &logo)
	require.NoError(t, err)

	data, err := p.ApplyWatermark(context.Background(), jpegBytes(t, solid(400, 400, color.Black)), models.Watermark{
		Enabled:   true,
		ImagePath: "watermark/logo.png",
		Opacity:   0.8,
		Tiled:     true,
	})
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Greater(t, brightest(img, image.Rect(0, 0, 100, 100)), uint32(128))
	assert.Greater(t, brightest(img, image.Rect(0, 300, 400, 400)), uint32(128))
}

func TestApplyWatermark_BadInput(t *testing.T) {
	p := NewProcessor(nil, 0)
	_, err := p.ApplyWatermark(context.Background(), []byte("not an image"), models.Watermark{Text: "x"})
	assert.Error(t, err)
	_, err = p.ApplyWatermark(context.Background(), jpegBytes(t, solid(10, 10, color.Black)), models.Watermark{ImagePath: "watermark/missing.png"})
	assert.Error(t, err)
}

func TestMarkPosition(t *testing.T) {
	bounds := image.Rect(0, 0, 1000, 500)
	mark := image.Rect(0, 0, 100, 50)
	tests := []struct {
		position models.WatermarkPosition
		want     image.Point
	}{
		{models.WatermarkCenter, image.Pt(450, 225)},
		{models.WatermarkTopLeft, image.Pt(20, 20)},
		{models.WatermarkTopRight, image.Pt(880, 20)},
		{models.WatermarkBottomLeft, image.Pt(20, 430)},
		{models.WatermarkBottomRight, image.Pt(880, 430)},
		{"", image.Pt(880, 430)},
	}
	for _, tt := range tests {
		t.Run(string(tt.position), func(t *testing.T) {
			assert.Equal(t, tt.want, markPosition(bounds, mark, tt.position))
		})
	}
}

func TestBuildArchive(t *testing.T) {
	p := NewProcessor(nil, 0)
	data, err := p.BuildArchive(context.Background(), []gallery.ArchiveFile{
		{Name: "a.jpg", Data: []byte("first")},
		{Name: "a (2).jpg", Data: []byte("second")},
	})
	require.NoError(t, err)

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, r.File, 2)
	assert.Equal(t, "a.jpg", r.File[0].Name)
	assert.Equal(t, "a (2).jpg", r.File[1].Name)
	assert.Equal(t, zip.Store, r.File[1].Method)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.BuildArchive(ctx, []gallery.ArchiveFile{{Name: "a.jpg"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessingTask_Status(t *testing.T) {
	pt := ProcessingTask{PhotoID: 1, Status: "preview:3,metadata:2,broken"}
	statusMap := pt.statusToMap()
	assert.Equal(t, map[string]int{"preview": Failed, "metadata": Done}, statusMap)

	statusMap["preview"] = Done
	pt.updateWith(statusMap)
	assert.Equal(t, "metadata:2,preview:2", pt.Status)
}

func TestProcessPending(t *testing.T) {
	conn, err := db.Open(sqlite.Open("file:processpending?mode=memory&cache=shared"))
	require.NoError(t, err)
	require.NoError(t, models.Migrate(conn))
	p := NewProcessor(conn, 10)
	require.NoError(t, p.Init(32))

	photo := models.Photo{AlbumID: 4, BucketID: 1, Name: "upload.jpg", Size: 1, CreatedAt: time.Now().UTC().Add(-time.Minute)}
	require.NoError(t, conn.Create(&photo).Error)
	storePhoto(t, &photo, jpegBytes(t, solid(64, 48, color.White)))

	assert.Equal(t, 1, p.processPending(context.Background()))
	assert.Equal(t, 0, p.processPending(context.Background()))

	saved := models.Photo{}
	require.NoError(t, conn.First(&saved, photo.ID).Error)
	assert.Equal(t, uint16(64), saved.Width)
	assert.Equal(t, uint16(48), saved.Height)
	assert.Equal(t, "image/jpeg", saved.MimeType)

	task := ProcessingTask{}
	require.NoError(t, conn.First(&task, "photo_id = ?", photo.ID).Error)
	assert.Equal(t, "metadata:2,preview:2", task.Status)
	assert.Equal(t, 1, p.previews.Count())
}
