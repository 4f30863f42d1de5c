package handlers

import (
	"log"
	"net/http"
	"studio/db"
	"studio/models"
	"studio/utils"
	"time"

	"github.com/gin-gonic/gin"
)

type ShootCreateRequest struct {
	Title           string     `json:"title" binding:"required,max=300"`
	Location        string     `json:"location" binding:"max=300"`
	ShotAt          *time.Time `json:"shot_at"`
	ClientProfileID *uint64    `json:"client_profile_id"`
}

type AlbumCreateRequest struct {
	PhotoShootID uint64 `json:"photo_shoot_id" binding:"required"`
	Name         string `json:"name" binding:"required,max=300"`
}

type AlbumIDRequest struct {
	AlbumID uint64 `form:"album_id" binding:"required"`
}

type ShootInfo struct {
	ID       uint64 `json:"id"`
	Title    string `json:"title"`
	Location string `json:"location"`
	Subtitle string `json:"subtitle"`
	Photos   int    `json:"photos"`
}

type AlbumInfo struct {
	ID           uint64 `json:"id"`
	PhotoShootID uint64 `json:"photo_shoot_id"`
	Name         string `json:"name"`
}

type PhotoInfo struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
	Width    uint16 `json:"width"`
	Height   uint16 `json:"height"`
	Created  int64  `json:"created"`
}

func photoInfo(photo *models.Photo) PhotoInfo {
	return PhotoInfo{
		ID:       photo.ID,
		Name:     photo.Name,
		MimeType: photo.MimeType,
		Size:     photo.Size,
		Width:    photo.Width,
		Height:   photo.Height,
		Created:  photo.CreatedAt.Unix(),
	}
}

// ownedAlbum loads an album of one of the user's shoots, writing the error response itself
func ownedAlbum(c *gin.Context, userID, albumID uint64) *models.Album {
	album := models.Album{}
	err := db.Instance.
		Joins("JOIN photo_shoots ON photo_shoots.id = albums.photo_shoot_id").
		Where("albums.id = ? AND photo_shoots.user_id = ?", albumID, userID).
		Select("albums.*").
		Take(&album).Error
	if err != nil {
		c.JSON(http.StatusNotFound, NotFoundResponse)
		return nil
	}
	return &album
}

func ShootCreate(c *gin.Context, user *models.User) {
	r := ShootCreateRequest{}
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	if r.ClientProfileID != nil {
		var count int64
		db.Instance.Model(&models.ClientProfile{}).Where("id = ? AND studio_id = ?", *r.ClientProfileID, user.ID).Count(&count)
		if count == 0 {
			c.JSON(http.StatusNotFound, Response{"client not found"})
			return
		}
	}
	shoot := models.PhotoShoot{
		UserID:          user.ID,
		ClientProfileID: r.ClientProfileID,
		Title:           utils.SanitizeText(r.Title),
		Location:        utils.SanitizeText(r.Location),
		ShotAt:          r.ShotAt,
	}
	if err := db.Instance.Create(&shoot).Error; err != nil {
		log.Printf("ShootCreate error: %v", err)
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": "", "id": shoot.ID})
}

// ShootList returns the user's shoots, newest first, with the date range of their photos
func ShootList(c *gin.Context, user *models.User) {
	shoots := []models.PhotoShoot{}
	if err := db.Instance.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&shoots).Error; err != nil {
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	type shootPhoto struct {
		PhotoShootID uint64
		CreatedAt    time.Time
	}
	photos := []shootPhoto{}
	err := db.Instance.Table("photos").
		Select("albums.photo_shoot_id, photos.created_at").
		Joins("JOIN albums ON albums.id = photos.album_id").
		Joins("JOIN photo_shoots ON photo_shoots.id = albums.photo_shoot_id").
		Where("photo_shoots.user_id = ? AND photos.size > 0", user.ID).
		Find(&photos).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, DBError2Response)
		return
	}
	type span struct {
		min, max int64
		count    int
	}
	spans := map[uint64]*span{}
	for _, p := range photos {
		created := p.CreatedAt.Unix()
		s, ok := spans[p.PhotoShootID]
		if !ok {
			s = &span{min: created, max: created}
			spans[p.PhotoShootID] = s
		}
		s.min = min(s.min, created)
		s.max = max(s.max, created)
		s.count++
	}
	result := make([]ShootInfo, 0, len(shoots))
	for _, shoot := range shoots {
		info := ShootInfo{ID: shoot.ID, Title: shoot.Title, Location: shoot.Location}
		s, ok := spans[shoot.ID]
		if !ok {
			s = &span{}
		}
		info.Subtitle = utils.GetDatesString(s.min, s.max)
		info.Photos = s.count
		result = append(result, info)
	}
	c.JSON(http.StatusOK, result)
}

func AlbumCreate(c *gin.Context, user *models.User) {
	r := AlbumCreateRequest{}
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	var count int64
	db.Instance.Model(&models.PhotoShoot{}).Where("id = ? AND user_id = ?", r.PhotoShootID, user.ID).Count(&count)
	if count == 0 {
		c.JSON(http.StatusNotFound, Response{"shoot not found"})
		return
	}
	album := models.Album{
		PhotoShootID: r.PhotoShootID,
		Name:         utils.SanitizeText(r.Name),
	}
	if err := db.Instance.Create(&album).Error; err != nil {
		log.Printf("AlbumCreate error: %v", err)
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	c.JSON(http.StatusOK, AlbumInfo{
		ID:           album.ID,
		PhotoShootID: album.PhotoShootID,
		Name:         album.Name,
	})
}

func AlbumPhotos(c *gin.Context, user *models.User) {
	r := AlbumIDRequest{}
	if err := c.ShouldBindQuery(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	if ownedAlbum(c, user.ID, r.AlbumID) == nil {
		return
	}
	photos := []models.Photo{}
	if err := db.Instance.Where("album_id = ?", r.AlbumID).Order("created_at, id").Find(&photos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	result := make([]PhotoInfo, 0, len(photos))
	for i := range photos {
		result = append(result, photoInfo(&photos[i]))
	}
	c.JSON(http.StatusOK, result)
}
