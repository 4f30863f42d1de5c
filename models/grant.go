package models

type Permission uint8

const (
	PermissionNone            Permission = 0
	PermissionAdmin           Permission = 1
	PermissionManageGalleries Permission = 2 // shoots, albums, galleries and client access
	PermissionManageClients   Permission = 3
)

// Grant gives a studio user a permission. Not to be confused with AccessGrant
type Grant struct {
	ID         uint64 `gorm:"primaryKey"`
	CreatedAt  int64
	GrantorID  *uint64
	Grantor    *User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	UserID     uint64     `gorm:"index:user_permission,unique"`
	User       User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Permission Permission `gorm:"index:user_permission,unique"`
}
