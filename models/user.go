package models

import (
	"errors"
	"studio/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidLogin = errors.New("invalid email or password")

type User struct {
	ID        uint64 `gorm:"primaryKey"`
	CreatedAt int
	UpdatedAt int
	Name      string  `gorm:"type:varchar(100)"`
	Email     string  `gorm:"type:varchar(150);index:uniq_email,unique"`
	Password  string  `gorm:"type:varchar(128)"`
	Grants    []Grant `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	PushToken string  `gorm:"type:varchar(128)"`
}

func UserCreate(tx *gorm.DB, name, email, plainTextPassword string) (u User, err error) {
	u.Email = email
	u.Name = name
	if err = u.SetPassword(plainTextPassword); err != nil {
		return
	}
	return u, tx.Create(&u).Error
}

func (u *User) SetPassword(plainTextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

func (u *User) SetNewPushToken(tx *gorm.DB) error {
	u.PushToken = utils.RandBytesToBase62(32)
	return tx.Model(u).Update("push_token", u.PushToken).Error
}

func UserLogin(tx *gorm.DB, email, plainTextPassword string) (u User, err error) {
	if err = tx.Preload("Grants").First(&u, "email = ?", email).Error; err != nil {
		return User{}, ErrInvalidLogin
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plainTextPassword)) != nil {
		return User{}, ErrInvalidLogin
	}
	return u, nil
}

func (u *User) GetPermissions() []int {
	permissions := []int{}
	for _, grant := range u.Grants {
		permissions = append(permissions, int(grant.Permission))
	}
	return permissions
}

func (u *User) HasPermission(required Permission) bool {
	for _, permission := range u.Grants {
		if permission.Permission == required || permission.Permission == PermissionAdmin {
			return true
		}
	}
	return false
}

func (u *User) HasPermissions(required []Permission) bool {
	for _, permission := range required {
		if !u.HasPermission(permission) {
			return false
		}
	}
	return true
}
