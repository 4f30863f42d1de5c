package gallery

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"studio/models"
)

type Download struct {
	Status      Status
	Bytes       []byte
	Filename    string
	ContentType string
}

type Archive struct {
	Status   Status
	Bytes    []byte
	Count    int
	Filename string
}

// DownloadPhoto returns the photo bytes, watermarked when the gallery requires it and the
// caller has no original download exception. On failure the result carries the status and no bytes.
func (s *Service) DownloadPhoto(ctx context.Context, galleryID, photoID uint64, sessionID string) (*Download, error) {
	now := s.clock()
	sess, access, err := s.sessionAccess(ctx, galleryID, sessionID, now)
	if err != nil {
		return failedDownload(err)
	}
	if !access.Capabilities.CanDownload {
		return failedDownload(newError(StatusForbidden, ReasonNoCapability, "Downloads are not enabled for you in this gallery"))
	}
	photo, err := s.galleryPhoto(ctx, galleryID, photoID)
	if err != nil {
		return failedDownload(err)
	}
	file, err := s.render(ctx, photo, access)
	if err != nil {
		return failedDownload(err)
	}
	s.touch(ctx, sess, now)
	s.publish(access.Gallery, Event{Type: EventDownload, SessionID: sess.ID, ClientProfileID: sess.ClientProfileID, PhotoID: photo.ID, Count: 1, At: now})
	return &Download{
		Status:      StatusSuccess,
		Bytes:       file.Data,
		Filename:    file.Name,
		ContentType: file.contentType,
	}, nil
}

// Thumbnail is the in-gallery preview, it only needs view access
func (s *Service) Thumbnail(ctx context.Context, galleryID, photoID uint64, sessionID string) (*Download, error) {
	now := s.clock()
	_, access, err := s.sessionAccess(ctx, galleryID, sessionID, now)
	if err != nil {
		return failedDownload(err)
	}
	photo, err := s.galleryPhoto(ctx, galleryID, photoID)
	if err != nil {
		return failedDownload(err)
	}
	var watermark *models.Watermark
	if needsWatermark(access) {
		watermark = &access.Gallery.Watermark
	}
	data, err := s.Images.Preview(ctx, photo, s.opts.ThumbSize, watermark)
	if err != nil {
		log.Printf("Preview error for photo %d: %v", photo.ID, err)
		return failedDownload(internalError(err))
	}
	return &Download{
		Status:      StatusSuccess,
		Bytes:       data,
		Filename:    baseName(photo.Name) + "_preview.jpg",
		ContentType: "image/jpeg",
	}, nil
}

// BulkDownload zips the requested photos. Duplicate ids are collapsed and ids outside the
// gallery are skipped, Count is the number of files actually in the archive.
func (s *Service) BulkDownload(ctx context.Context, galleryID uint64, photoIDs []uint64, sessionID string) (*Archive, error) {
	now := s.clock()
	sess, access, err := s.sessionAccess(ctx, galleryID, sessionID, now)
	if err != nil {
		return failedArchive(err)
	}
	if !access.Capabilities.CanDownload {
		return failedArchive(newError(StatusForbidden, ReasonNoCapability, "Downloads are not enabled for you in this gallery"))
	}
	ids := uniqueIDs(photoIDs)
	if len(ids) == 0 {
		return failedArchive(newError(StatusInvalidRequest, ReasonNoPhotos, "Select at least one photo"))
	}
	if len(ids) > s.opts.BulkMax {
		return failedArchive(newError(StatusInvalidRequest, ReasonTooManyPhotos, fmt.Sprintf("At most %d photos can be downloaded at once", s.opts.BulkMax)))
	}
	photos, err := s.Photos.PhotosForGallery(ctx, galleryID)
	if err != nil {
		log.Printf("Photos for gallery %d error: %v", galleryID, err)
		return failedArchive(internalError(err))
	}
	byID := make(map[uint64]*models.Photo, len(photos))
	for i := range photos {
		byID[photos[i].ID] = &photos[i]
	}
	files := []ArchiveFile{}
	names := map[string]int{}
	for _, id := range ids {
		photo, ok := byID[id]
		if !ok {
			continue
		}
		file, err := s.render(ctx, photo, access)
		if err != nil {
			return failedArchive(err)
		}
		file.Name = uniqueName(names, file.Name)
		files = append(files, file.ArchiveFile)
	}
	if len(files) == 0 {
		return failedArchive(newError(StatusNotFound, ReasonPhotoNotFound, "None of the selected photos are part of the gallery"))
	}
	data, err := s.Images.BuildArchive(ctx, files)
	if err != nil {
		log.Printf("Archive error for gallery %d: %v", galleryID, err)
		return failedArchive(internalError(err))
	}
	s.touch(ctx, sess, now)
	s.publish(access.Gallery, Event{Type: EventDownload, SessionID: sess.ID, ClientProfileID: sess.ClientProfileID, Count: len(files), At: now})
	return &Archive{
		Status:   StatusSuccess,
		Bytes:    data,
		Count:    len(files),
		Filename: archiveName(access.Gallery),
	}, nil
}

type renderedFile struct {
	ArchiveFile
	contentType string
}

func (s *Service) render(ctx context.Context, photo *models.Photo, access *Access) (*renderedFile, error) {
	data, err := s.Images.Load(ctx, photo)
	if err != nil {
		log.Printf("Photo %d load error: %v", photo.ID, err)
		return nil, internalError(err)
	}
	file := &renderedFile{ArchiveFile: ArchiveFile{Name: photo.Name, Data: data}, contentType: photo.MimeType}
	if needsWatermark(access) {
		if file.Data, err = s.Images.ApplyWatermark(ctx, data, access.Gallery.Watermark); err != nil {
			log.Printf("Watermark error for photo %d: %v", photo.ID, err)
			return nil, internalError(err)
		}
		file.Name = baseName(photo.Name) + ".jpg"
		file.contentType = "image/jpeg"
	}
	if file.contentType == "" {
		file.contentType = "application/octet-stream"
	}
	return file, nil
}

func needsWatermark(access *Access) bool {
	return access.Gallery.Watermark.Enabled && !access.Capabilities.CanDownloadOriginal
}

func failedDownload(err error) (*Download, error) {
	return &Download{Status: StatusOf(err)}, err
}

func failedArchive(err error) (*Archive, error) {
	return &Archive{Status: StatusOf(err)}, err
}

func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]bool, len(ids))
	result := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}

// uniqueName appends " (2)", " (3)"... to repeated archive entry names
func uniqueName(seen map[string]int, name string) string {
	key := strings.ToLower(name)
	seen[key]++
	if seen[key] == 1 {
		return name
	}
	ext := filepath.Ext(name)
	candidate := fmt.Sprintf("%s (%d)%s", strings.TrimSuffix(name, ext), seen[key], ext)
	return uniqueName(seen, candidate)
}

func baseName(name string) string {
	name = filepath.Base(name)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func archiveName(g *models.Gallery) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(g.Name))
	if name == "" {
		name = fmt.Sprintf("gallery-%d", g.ID)
	}
	return name + ".zip"
}
