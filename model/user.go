package model

import (
	"time"

	"gorm.io/gorm"
)

// User is the authentication identity record. Accounts are created inactive
// and switched to active only by email verification.
type User struct {
	ID         uint       `gorm:"primarykey"`
	Username   string     `gorm:"uniqueIndex:idx_user_username;size:15;not null"`
	Email      string     `gorm:"uniqueIndex:idx_user_email;size:256;not null"`
	Password   string     `gorm:"size:64;not null"`
	Active     bool       `gorm:"default:false;not null"`
	Staff      bool       `gorm:"default:false;not null"`
	LastLogin  *time.Time // nil until the first successful login
	DateJoined time.Time
	Profile    Profile `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == 0 {
		u.ID = GenerateID()
	}
	if u.DateJoined.IsZero() {
		u.DateJoined = time.Now()
	}
	return nil
}
