package handlers

import (
	"errors"
	"log"
	"net/http"
	"studio/auth"
	"studio/db"
	"studio/models"
	"studio/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserLoginRequest struct {
	Email    string `form:"email" json:"email" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type UserSaveRequest struct {
	ID          uint64              `json:"id"`
	Name        string              `json:"name" binding:"required,max=100"`
	Email       string              `json:"email" binding:"required,email,max=150"`
	Password    string              `json:"password"`
	Permissions []models.Permission `json:"permissions"`
}

type UserInfo struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Permissions []int  `json:"permissions"`
}

func UserLogin(c *gin.Context) {
	r := UserLoginRequest{}
	if err := c.ShouldBind(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	user, err := models.UserLogin(db.Instance, r.Email, r.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, Response{err.Error()})
		return
	}
	if err = auth.LoadSession(c).LoginUser(&user); err != nil {
		log.Printf("Session save error: %v", err)
		c.JSON(http.StatusInternalServerError, Response{"cannot save session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": "", "name": user.Name, "permissions": user.GetPermissions()})
}

func UserLogout(c *gin.Context, user *models.User) {
	auth.LoadSession(c).LogoutUser()
	c.JSON(http.StatusOK, OKResponse)
}

func UserGetStatus(c *gin.Context, user *models.User) {
	c.JSON(http.StatusOK, UserInfo{
		ID:          user.ID,
		Name:        user.Name,
		Permissions: user.GetPermissions(),
	})
}

// UserPushToken issues a new token the user's app registers with the push server
func UserPushToken(c *gin.Context, user *models.User) {
	if err := user.SetNewPushToken(db.Instance); err != nil {
		log.Printf("Push token error for user %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": "", "push_token": user.PushToken})
}

// UserSave creates or updates a studio user and replaces their permissions
func UserSave(c *gin.Context, user *models.User) {
	r := UserSaveRequest{}
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	if r.ID == 0 && len(r.Password) < 8 {
		c.JSON(http.StatusBadRequest, Response{"password must be at least 8 characters"})
		return
	}
	err := db.Instance.Transaction(func(tx *gorm.DB) error {
		target := models.User{}
		if r.ID == 0 {
			created, err := models.UserCreate(tx, utils.SanitizeText(r.Name), r.Email, r.Password)
			if err != nil {
				return err
			}
			target = created
		} else {
			if err := tx.First(&target, r.ID).Error; err != nil {
				return err
			}
			target.Name = utils.SanitizeText(r.Name)
			target.Email = r.Email
			if r.Password != "" {
				if err := target.SetPassword(r.Password); err != nil {
					return err
				}
			}
			if err := tx.Save(&target).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", target.ID).Delete(&models.Grant{}).Error; err != nil {
			return err
		}
		for _, p := range r.Permissions {
			grant := models.Grant{GrantorID: &user.ID, UserID: target.ID, Permission: p}
			if err := tx.Create(&grant).Error; err != nil {
				return err
			}
		}
		r.ID = target.ID
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, NotFoundResponse)
		return
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		c.JSON(http.StatusConflict, Response{"email already in use"})
		return
	}
	if err != nil {
		log.Printf("UserSave error: %v", err)
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": "", "id": r.ID})
}
