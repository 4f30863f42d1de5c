package web

import (
	"errors"
	"net/http"
	"strconv"
	"studio/auth"
	"studio/gallery"
	"studio/handlers"
	"studio/metrics"
	"studio/utils"
	"time"

	"github.com/gin-gonic/gin"
)

// SessionHeader carries the gallery session token for clients without cookies
const SessionHeader = "X-Gallery-Session"

type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

type GalleryView struct {
	ID              uint64       `json:"id"`
	Name            string       `json:"name"`
	Description     string       `json:"description"`
	BrandColor      string       `json:"brand_color"`
	ExpiryDate      time.Time    `json:"expiry_date"`
	DaysUntilExpiry int          `json:"days_until_expiry"`
	IsPublicAccess  bool         `json:"is_public_access"`
	Capabilities    Capabilities `json:"capabilities"`
	SessionID       string       `json:"session_id"`
	Token           string       `json:"token"`
}

type Capabilities struct {
	CanDownload bool `json:"can_download"`
	CanProof    bool `json:"can_proof"`
	CanOrder    bool `json:"can_order"`
}

type PhotoView struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	Width  uint16 `json:"width"`
	Height uint16 `json:"height"`
}

type PhotoPageView struct {
	Photos     []PhotoView `json:"photos"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"total_pages"`
}

type PhotosRequest struct {
	Page int `form:"page"`
	Size int `form:"size"`
}

// httpStatus maps workflow statuses to response codes. An expired gallery is gone for good
func httpStatus(err error) int {
	if gallery.ReasonOf(err) == gallery.ReasonExpired {
		return http.StatusGone
	}
	switch gallery.StatusOf(err) {
	case gallery.StatusSuccess:
		return http.StatusOK
	case gallery.StatusNotFound:
		return http.StatusNotFound
	case gallery.StatusForbidden:
		return http.StatusForbidden
	case gallery.StatusUnauthorized:
		return http.StatusUnauthorized
	case gallery.StatusInvalidRequest:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// fail answers with the visitor-safe message only
func fail(c *gin.Context, err error) {
	metrics.Failure(err)
	response := ErrorResponse{Error: "Something went wrong, please try again later"}
	var e *gallery.Error
	if errors.As(err, &e) {
		response.Error = e.Message
		response.Reason = string(e.Reason)
	}
	c.JSON(httpStatus(err), response)
}

func galleryID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Gallery not found", Reason: string(gallery.ReasonGalleryNotFound)})
		return 0, false
	}
	return id, true
}

func photoID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("photoId"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Photo not found", Reason: string(gallery.ReasonPhotoNotFound)})
		return 0, false
	}
	return id, true
}

// presentedToken prefers the header over the cookie session
func presentedToken(c *gin.Context, session *auth.Session, id uint64) string {
	if token := c.GetHeader(SessionHeader); token != "" {
		return token
	}
	return session.GalleryToken(id)
}

// visit resolves the caller's gallery session, writing the error response itself
func visit(c *gin.Context, id uint64) *gallery.Visit {
	session := auth.LoadSession(c)
	v, err := handlers.Galleries.FindSession(c.Request.Context(), id, presentedToken(c, session, id), session.ClientProfileID())
	if err != nil {
		fail(c, err)
		return nil
	}
	return v
}

// GalleryOpen is the entry point of a gallery link: it checks access and opens (or
// resumes) the visitor's gallery session
func GalleryOpen(c *gin.Context) {
	id, ok := galleryID(c)
	if !ok {
		return
	}
	session := auth.LoadSession(c)
	token := presentedToken(c, session, id)
	v, err := handlers.Galleries.GetOrCreateSession(c.Request.Context(), id, token, session.ClientProfileID())
	if err != nil {
		fail(c, err)
		return
	}
	if v.Session.Token != token {
		if err = session.SetGalleryToken(id, v.Session.Token); err != nil {
			c.Error(err)
		}
	}
	c.Header(SessionHeader, v.Session.Token)
	g := v.Access.Gallery
	c.JSON(http.StatusOK, GalleryView{
		ID:              g.ID,
		Name:            g.Name,
		Description:     g.Description,
		BrandColor:      g.BrandColor,
		ExpiryDate:      g.ExpiryDate,
		DaysUntilExpiry: v.Access.DaysUntilExpiry,
		IsPublicAccess:  v.Access.IsPublicAccess,
		Capabilities: Capabilities{
			CanDownload: v.Access.Capabilities.CanDownload,
			CanProof:    v.Access.Capabilities.CanProof,
			CanOrder:    v.Access.Capabilities.CanOrder,
		},
		SessionID: v.Session.ID,
		Token:     v.Session.Token,
	})
}

func GalleryPhotos(c *gin.Context) {
	id, ok := galleryID(c)
	if !ok {
		return
	}
	r := PhotosRequest{}
	if err := c.ShouldBindQuery(&r); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if visit(c, id) == nil {
		return
	}
	page, err := handlers.Galleries.ListPhotos(c.Request.Context(), id, r.Page, r.Size)
	if err != nil {
		fail(c, err)
		return
	}
	result := PhotoPageView{
		Photos:     make([]PhotoView, 0, len(page.Photos)),
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	}
	for _, p := range page.Photos {
		result.Photos = append(result.Photos, PhotoView{ID: p.ID, Name: p.Name, Width: p.Width, Height: p.Height})
	}
	c.JSON(http.StatusOK, result)
}

// EndSession is idempotent for a known session id
// EndSession only ends the session whose token the caller presents
func EndSession(c *gin.Context) {
	session := auth.LoadSession(c)
	err := handlers.Galleries.EndPresentedSession(c.Request.Context(), c.Param("id"), func(galleryID uint64) string {
		return presentedToken(c, session, galleryID)
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handlers.OKResponse)
}

func DisallowRobots(c *gin.Context) {
	c.String(http.StatusOK, "User-agent: *\nDisallow: /\n")
}

// Routes registers the client facing gallery end-points
func Routes(router gin.IRoutes, thumbCacheTime int) {
	router.GET("/galleries/:id", GalleryOpen)
	router.GET("/galleries/:id/photos", GalleryPhotos)
	router.GET("/galleries/:id/photos/:photoId/thumb", (&utils.CacheRouter{CacheTime: thumbCacheTime}).Handler(), PhotoThumb)
	router.GET("/galleries/:id/proofs", ProofList)
	router.POST("/galleries/:id/proofs", ProofRecord)
	router.DELETE("/galleries/:id/proofs/:photoId", ProofClear)
	router.GET("/galleries/:id/download/:photoId", PhotoDownload)
	router.POST("/galleries/:id/bulk-download", BulkDownload)
	router.POST("/sessions/:id/end", EndSession)
}
