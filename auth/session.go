package auth

import (
	"strconv"
	"studio/db"
	"studio/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	userIdKey          = "id"
	permissionsKey     = "permissions"
	galleryTokenPrefix = "gallery:"
)

type Session struct {
	sessions.Session
}

func LoadSession(c *gin.Context) *Session {
	return &Session{
		Session: sessions.Default(c),
	}
}

func (s *Session) LoginUser(user *models.User) error {
	s.Set(userIdKey, user.ID)
	s.Set(permissionsKey, user.GetPermissions())
	return s.Save()
}

func (s *Session) LogoutUser() {
	s.Delete(userIdKey)
	s.Clear()
	s.Options(sessions.Options{Path: "/", MaxAge: -1})
	s.Save()
}

func (s *Session) UserID() uint64 {
	id, _ := s.Get(userIdKey).(uint64)
	return id
}

func (s *Session) User() (user models.User) {
	user.ID = s.UserID()
	if user.ID == 0 {
		return
	}
	if db.Instance.Preload("Grants").First(&user).Error != nil {
		user.ID = 0
	}
	return
}

// ClientProfileID returns the client profile linked to the signed in user, nil for anonymous visitors
func (s *Session) ClientProfileID() *uint64 {
	userID := s.UserID()
	if userID == 0 {
		return nil
	}
	client := models.ClientProfile{}
	if db.Instance.Select("id").Where("user_id = ?", userID).First(&client).Error != nil {
		return nil
	}
	return &client.ID
}

// GalleryToken is the gallery session token handed out on the visitor's first visit
func (s *Session) GalleryToken(galleryID uint64) string {
	token, _ := s.Get(galleryTokenPrefix + strconv.FormatUint(galleryID, 10)).(string)
	return token
}

func (s *Session) SetGalleryToken(galleryID uint64, token string) error {
	s.Set(galleryTokenPrefix+strconv.FormatUint(galleryID, 10), token)
	return s.Save()
}
