package handlers

import (
	"log"
	"net/http"
	"studio/config"
	"studio/db"
	"studio/models"
	"studio/utils"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WatermarkRequest struct {
	Enabled   bool    `json:"enabled"`
	Text      string  `json:"text" binding:"max=200"`
	ImagePath string  `json:"image_path" binding:"max=500"`
	Opacity   float64 `json:"opacity" binding:"omitempty,gte=0.1,lte=1"`
	Position  string  `json:"position" binding:"omitempty,watermark_position"`
	Tiled     bool    `json:"tiled"`
}

type GallerySaveRequest struct {
	ID                 uint64              `json:"id"`
	Name               string              `json:"name" binding:"required,max=300"`
	Description        string              `json:"description"`
	ExpiryDate         time.Time           `json:"expiry_date" binding:"required"`
	IsActive           bool                `json:"is_active"`
	BrandColor         string              `json:"brand_color" binding:"omitempty,hexcolor"`
	PublicLinkEnabled  *bool               `json:"public_link_enabled"`
	PublicCapabilities models.Capabilities `json:"public_capabilities"`
	Watermark          WatermarkRequest    `json:"watermark"`
}

type GalleryIDRequest struct {
	ID uint64 `form:"id" json:"id" binding:"required"`
}

type GalleryAlbumsRequest struct {
	GalleryID uint64   `json:"gallery_id" binding:"required"`
	AlbumIDs  []uint64 `json:"album_ids" binding:"required,min=1"`
	Detach    bool     `json:"detach"`
}

type GalleryGrantRequest struct {
	GalleryID       uint64              `json:"gallery_id" binding:"required"`
	ClientProfileID uint64              `json:"client_profile_id" binding:"required"`
	Capabilities    models.Capabilities `json:"capabilities"`
}

type GalleryInfo struct {
	ID                 uint64              `json:"id"`
	Name               string              `json:"name"`
	Description        string              `json:"description"`
	Status             string              `json:"status"`
	ExpiryDate         time.Time           `json:"expiry_date"`
	DaysUntilExpiry    int                 `json:"days_until_expiry"`
	IsActive           bool                `json:"is_active"`
	BrandColor         string              `json:"brand_color"`
	PublicLinkEnabled  bool                `json:"public_link_enabled"`
	PublicCapabilities models.Capabilities `json:"public_capabilities"`
	Watermark          models.Watermark    `json:"watermark"`
}

func galleryInfo(g *models.Gallery, now time.Time) GalleryInfo {
	return GalleryInfo{
		ID:                 g.ID,
		Name:               g.Name,
		Description:        g.Description,
		Status:             string(g.StatusAt(now)),
		ExpiryDate:         g.ExpiryDate,
		DaysUntilExpiry:    g.DaysUntilExpiry(now),
		IsActive:           g.IsActive,
		BrandColor:         g.BrandColor,
		PublicLinkEnabled:  g.PublicLinkEnabled,
		PublicCapabilities: g.PublicCapabilities,
		Watermark:          g.Watermark,
	}
}

// ownedGallery loads one of the user's galleries, writing the error response itself
func ownedGallery(c *gin.Context, userID, galleryID uint64) *models.Gallery {
	g := models.Gallery{}
	if err := db.Instance.Where("id = ? AND user_id = ?", galleryID, userID).First(&g).Error; err != nil {
		c.JSON(http.StatusNotFound, NotFoundResponse)
		return nil
	}
	return &g
}

func GalleryList(c *gin.Context, user *models.User) {
	if isNotModified(c, db.Instance.Model(&models.Gallery{}).Select("COUNT(*), MAX(updated_at)").Where("user_id = ?", user.ID)) {
		return
	}
	galleries := []models.Gallery{}
	if err := db.Instance.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&galleries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	now := time.Now().UTC()
	result := make([]GalleryInfo, 0, len(galleries))
	for i := range galleries {
		result = append(result, galleryInfo(&galleries[i], now))
	}
	c.JSON(http.StatusOK, result)
}

// GallerySave creates a gallery (ID 0) or updates one of the user's galleries
func GallerySave(c *gin.Context, user *models.User) {
	r := GallerySaveRequest{}
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	g := &models.Gallery{UserID: user.ID, PublicLinkEnabled: config.PUBLIC_LINKS_DEFAULT}
	if r.ID != 0 {
		if g = ownedGallery(c, user.ID, r.ID); g == nil {
			return
		}
	}
	g.Name = utils.SanitizeText(r.Name)
	if g.Name == "" {
		c.JSON(http.StatusBadRequest, Response{"empty gallery name"})
		return
	}
	g.Description = utils.SanitizeText(r.Description)
	if !g.ExpiryDate.Equal(r.ExpiryDate) {
		// A new expiry date deserves a new reminder
		g.ReminderSentAt = nil
	}
	g.ExpiryDate = r.ExpiryDate.UTC()
	g.IsActive = r.IsActive
	g.BrandColor = r.BrandColor
	if r.PublicLinkEnabled != nil {
		g.PublicLinkEnabled = *r.PublicLinkEnabled
	}
	g.PublicCapabilities = r.PublicCapabilities
	g.Watermark = models.Watermark{
		Enabled:   r.Watermark.Enabled,
		Text:      utils.SanitizeText(r.Watermark.Text),
		ImagePath: r.Watermark.ImagePath,
		Opacity:   r.Watermark.Opacity,
		Position:  models.WatermarkPosition(r.Watermark.Position),
		Tiled:     r.Watermark.Tiled,
	}
	if g.Watermark.Position == "" {
		g.Watermark.Position = models.WatermarkBottomRight
	}
	if g.Watermark.Opacity == 0 {
		g.Watermark.Opacity = 0.5
	}
	if g.Watermark.Enabled && g.Watermark.Text == "" && g.Watermark.ImagePath == "" {
		c.JSON(http.StatusBadRequest, Response{"watermark needs a text or an image"})
		return
	}
	if err := db.Instance.Save(g).Error; err != nil {
		log.Printf("GallerySave error: %v", err)
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	if r.ID != 0 && Previews != nil {
		Previews.ForgetAll()
	}
	c.JSON(http.StatusOK, galleryInfo(g, time.Now().UTC()))
}

func GalleryDelete(c *gin.Context, user *models.User) {
	r := GalleryIDRequest{}
	if err := c.ShouldBind(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	g := ownedGallery(c, user.ID, r.ID)
	if g == nil {
		return
	}
	err := db.Instance.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("gallery_session_id IN (?)", tx.Model(&models.GallerySession{}).Select("id").Where("gallery_id = ?", g.ID)).Delete(&models.Proof{}).Error; err != nil {
			return err
		}
		for _, m := range []any{&models.GallerySession{}, &models.AccessGrant{}, &models.GalleryAlbum{}} {
			if err := tx.Where("gallery_id = ?", g.ID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(g).Error
	})
	if err != nil {
		log.Printf("GalleryDelete error: %v", err)
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	c.JSON(http.StatusOK, OKResponse)
}

// GalleryAlbums attaches (or detaches) albums of the user's shoots to a gallery
func GalleryAlbums(c *gin.Context, user *models.User) {
	r := GalleryAlbumsRequest{}
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	g := ownedGallery(c, user.ID, r.GalleryID)
	if g == nil {
		return
	}
	albums := []models.Album{}
	err := db.Instance.
		Joins("JOIN photo_shoots ON photo_shoots.id = albums.photo_shoot_id").
		Where("albums.id IN ? AND photo_shoots.user_id = ?", r.AlbumIDs, user.ID).
		Select("albums.*").
		Find(&albums).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	found := map[uint64]bool{}
	for _, a := range albums {
		found[a.ID] = true
	}
	failed := []uint64{}
	for _, id := range r.AlbumIDs {
		if !found[id] {
			failed = append(failed, id)
		}
	}
	if len(albums) > 0 {
		association := db.Instance.Model(g).Association("Albums")
		if r.Detach {
			err = association.Delete(&albums)
		} else {
			err = association.Append(&albums)
		}
		if err != nil {
			log.Printf("GalleryAlbums error: %v", err)
			c.JSON(http.StatusInternalServerError, DBError2Response)
			return
		}
	}
	c.JSON(http.StatusOK, MultiResponse{Failed: failed})
}

// GalleryGrant gives a client of the studio access to a gallery, or updates their capabilities
func GalleryGrant(c *gin.Context, user *models.User) {
	r := GalleryGrantRequest{}
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	if ownedGallery(c, user.ID, r.GalleryID) == nil {
		return
	}
	var count int64
	err := db.Instance.Model(&models.ClientProfile{}).Where("id = ? AND studio_id = ?", r.ClientProfileID, user.ID).Count(&count).Error
	if err != nil {
		log.Printf("Grant client lookup error: %v", err)
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, Response{"client not found"})
		return
	}
	grant := models.AccessGrant{
		GalleryID:       r.GalleryID,
		ClientProfileID: r.ClientProfileID,
		Capabilities:    r.Capabilities,
	}
	err = db.Instance.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "gallery_id"}, {Name: "client_profile_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"can_download", "can_proof", "can_order", "can_download_original"}),
	}).Create(&grant).Error
	if err != nil {
		log.Printf("GalleryGrant error: %v", err)
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	c.JSON(http.StatusOK, OKResponse)
}

func GalleryRevoke(c *gin.Context, user *models.User) {
	r := GalleryGrantRequest{}
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	if ownedGallery(c, user.ID, r.GalleryID) == nil {
		return
	}
	result := db.Instance.Where("gallery_id = ? AND client_profile_id = ?", r.GalleryID, r.ClientProfileID).Delete(&models.AccessGrant{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, NotFoundResponse)
		return
	}
	c.JSON(http.StatusOK, OKResponse)
}

// GalleryProofs returns favorite and edit request counts per photo
func GalleryProofs(c *gin.Context, user *models.User) {
	r := GalleryIDRequest{}
	if err := c.ShouldBindQuery(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	if ownedGallery(c, user.ID, r.ID) == nil {
		return
	}
	summary, err := Galleries.ProofSummary(c.Request.Context(), r.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, DBError2Response)
		return
	}
	c.JSON(http.StatusOK, summary)
}
