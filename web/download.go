package web

import (
	"mime"
	"net/http"
	"strconv"
	"studio/handlers"

	"github.com/gin-gonic/gin"
)

type BulkDownloadRequest struct {
	PhotoIDs []uint64 `json:"photo_ids"`
}

func attachment(c *gin.Context, disposition, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": filename}))
	c.Data(http.StatusOK, contentType, data)
}

func PhotoDownload(c *gin.Context) {
	id, ok := galleryID(c)
	if !ok {
		return
	}
	photo, ok := photoID(c)
	if !ok {
		return
	}
	v := visit(c, id)
	if v == nil {
		return
	}
	download, err := handlers.Galleries.DownloadPhoto(c.Request.Context(), id, photo, v.Session.ID)
	if err != nil {
		fail(c, err)
		return
	}
	attachment(c, "attachment", download.Filename, download.ContentType, download.Bytes)
}

func PhotoThumb(c *gin.Context) {
	id, ok := galleryID(c)
	if !ok {
		return
	}
	photo, ok := photoID(c)
	if !ok {
		return
	}
	v := visit(c, id)
	if v == nil {
		return
	}
	thumb, err := handlers.Galleries.Thumbnail(c.Request.Context(), id, photo, v.Session.ID)
	if err != nil {
		fail(c, err)
		return
	}
	attachment(c, "inline", thumb.Filename, thumb.ContentType, thumb.Bytes)
}

// BulkDownload zips the requested photos, ids outside the gallery are skipped
func BulkDownload(c *gin.Context) {
	id, ok := galleryID(c)
	if !ok {
		return
	}
	r := BulkDownloadRequest{}
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	v := visit(c, id)
	if v == nil {
		return
	}
	archive, err := handlers.Galleries.BulkDownload(c.Request.Context(), id, r.PhotoIDs, v.Session.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("X-Photo-Count", strconv.Itoa(archive.Count))
	attachment(c, "attachment", archive.Filename, "application/zip", archive.Bytes)
}
