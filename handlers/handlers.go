package handlers

import (
	"database/sql"
	"hash/fnv"
	"net/http"
	"strconv"
	"studio/gallery"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Response struct {
	Error string `json:"error"`
}

type MultiResponse struct {
	Error  string   `json:"error"`
	Failed []uint64 `json:"failed"`
}

const (
	etagHeader = "ETag"
)

var (
	// Predefined errors
	OKResponse       = Response{}
	NotFoundResponse = Response{"not found"}
	DBError1Response = Response{"DB Error 1"}
	DBError2Response = Response{"DB Error 2"}
)

// PreviewCache is implemented by processing.Processor
type PreviewCache interface {
	ForgetPhoto(photoID uint64)
	ForgetAll()
}

var (
	Galleries *gallery.Service
	Previews  PreviewCache
	Live      = NewLiveFeed()
)

// Setup wires the collaborators used by the studio handlers
func Setup(service *gallery.Service, previews PreviewCache) {
	Galleries = service
	Previews = previews
}

// isNotModified expects tx to select a row count and the last update time
func isNotModified(c *gin.Context, tx *gorm.DB) bool {
	// Set the current ETag in all cases
	var count int64
	var lastUpdatedAt sql.NullString
	if tx.Row().Scan(&count, &lastUpdatedAt) != nil {
		return false
	}
	h := fnv.New64a()
	h.Write([]byte(lastUpdatedAt.String))
	etag := `"` + strconv.FormatInt(count, 10) + "-" + strconv.FormatUint(h.Sum64(), 36) + `"`
	c.Header("cache-control", "private, max-age=1")
	c.Header(etagHeader, etag)

	if c.Request.Header.Get("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}
