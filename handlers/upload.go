package handlers

import (
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"studio/db"
	"studio/models"
	"studio/storage"

	"github.com/gin-gonic/gin"
)

type PhotoUploadRequest struct {
	AlbumID uint64 `form:"album_id" binding:"required"`
}

// PhotoUpload stores a multipart "file" in the default bucket. Metadata and previews
// are filled in later by the processing loop
func PhotoUpload(c *gin.Context, user *models.User) {
	r := PhotoUploadRequest{}
	if err := c.ShouldBind(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{"missing file"})
		return
	}
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(header.Filename)))
	if !strings.HasPrefix(mimeType, "image/") {
		c.JSON(http.StatusBadRequest, Response{"only images can be uploaded"})
		return
	}
	if ownedAlbum(c, user.ID, r.AlbumID) == nil {
		return
	}
	bucket := storage.GetDefaultStorage()
	if bucket == nil {
		c.JSON(http.StatusInternalServerError, Response{"no storage configured"})
		return
	}
	photo := models.Photo{
		AlbumID:  r.AlbumID,
		BucketID: bucket.GetBucket().ID,
		Name:     header.Filename,
		MimeType: mimeType,
	}
	if err = db.Instance.Create(&photo).Error; err != nil {
		log.Printf("PhotoUpload create error: %v", err)
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	file, err := header.Open()
	if err != nil {
		db.Instance.Delete(&photo)
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	defer file.Close()
	size, err := bucket.Save(photo.GetPath(), file)
	if err != nil {
		log.Printf("PhotoUpload storage error: %v", err)
		db.Instance.Delete(&photo)
		c.JSON(http.StatusInternalServerError, Response{"cannot store photo"})
		return
	}
	// Size > 0 marks the upload as complete
	if err = db.Instance.Model(&photo).Update("size", size).Error; err != nil {
		c.JSON(http.StatusInternalServerError, DBError2Response)
		return
	}
	photo.Size = size
	c.JSON(http.StatusOK, photoInfo(&photo))
}
