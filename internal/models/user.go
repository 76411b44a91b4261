package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email      string `gorm:"uniqueIndex;not null"`
	Password   string `gorm:"not null"`
	Name       string `gorm:"not null"`
	Role       string `gorm:"default:'user'"`
	UserType   string `gorm:"default:'customer'"` // customer or merchant
	Status     string `gorm:"default:'active'"`
	InviteCode string `gorm:"uniqueIndex;not null"`
}

// IsMerchant reports whether the user operates a vendor listing.
func (u *User) IsMerchant() bool {
	return u.UserType == "merchant"
}
