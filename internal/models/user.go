// internal/models/user.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// User accounts are registered by the storefront; this service only reads them.
type User struct {
	BaseModel
	Email       string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Name        string     `json:"name" gorm:"size:255;default:'Guest'"`
	LastLoginAt *time.Time `json:"lastLogin,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Name == "" {
		u.Name = DefaultUserName
	}
	return u.BaseModel.BeforeCreate(tx)
}

// UserSummary is the projection exposed by the user listing.
type UserSummary struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type Contact struct {
	BaseModel
	Name      string    `json:"name" gorm:"size:255;not null"`
	Email     string    `json:"email" gorm:"size:255;not null"`
	Phone     string    `json:"phone" gorm:"size:30"`
	Subject   string    `json:"subject" gorm:"size:255"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	Status    string    `json:"status" gorm:"size:30;not null;default:'Pending'"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null;index"`
}
