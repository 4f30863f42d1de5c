package handlers

import (
	"errors"
	"log"
	"net/http"
	"studio/db"
	"studio/models"
	"studio/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ClientSaveRequest struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name" binding:"required,max=200"`
	Email    string `json:"email" binding:"omitempty,email,max=150"`
	Phone    string `json:"phone" binding:"max=50"`
	Password string `json:"password"` // creates a login for the client when set
}

type ClientInfo struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	HasLogin bool   `json:"has_login"`
}

func clientInfo(client *models.ClientProfile) ClientInfo {
	return ClientInfo{
		ID:       client.ID,
		Name:     client.Name,
		Email:    client.Email,
		Phone:    client.Phone,
		HasLogin: client.UserID != nil,
	}
}

// ClientSave creates or updates a client of the studio, optionally with a login
func ClientSave(c *gin.Context, user *models.User) {
	r := ClientSaveRequest{}
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	if r.Password != "" && r.Email == "" {
		c.JSON(http.StatusBadRequest, Response{"email is required for a client login"})
		return
	}
	client := models.ClientProfile{}
	err := db.Instance.Transaction(func(tx *gorm.DB) error {
		if r.ID != 0 {
			if err := tx.Where("id = ? AND studio_id = ?", r.ID, user.ID).First(&client).Error; err != nil {
				return err
			}
		}
		client.StudioID = user.ID
		client.Name = utils.SanitizeText(r.Name)
		client.Email = r.Email
		client.Phone = utils.SanitizeText(r.Phone)
		if r.Password != "" {
			if client.UserID == nil {
				login, err := models.UserCreate(tx, client.Name, r.Email, r.Password)
				if err != nil {
					return err
				}
				client.UserID = &login.ID
			} else {
				login := models.User{ID: *client.UserID}
				if err := login.SetPassword(r.Password); err != nil {
					return err
				}
				if err := tx.Model(&login).Update("password", login.Password).Error; err != nil {
					return err
				}
			}
		}
		return tx.Save(&client).Error
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
		log.Printf("ClientSave error: %v", err)
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	c.JSON(http.StatusOK, clientInfo(&client))
}

func ClientList(c *gin.Context, user *models.User) {
	clients := []models.ClientProfile{}
	if err := db.Instance.Where("studio_id = ?", user.ID).Order("name").Find(&clients).Error; err != nil {
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	result := make([]ClientInfo, 0, len(clients))
	for i := range clients {
		result = append(result, clientInfo(&clients[i]))
	}
	c.JSON(http.StatusOK, result)
}
