package model

import "time"

type AuditEvent struct {
	ID         uint   `gorm:"primarykey,autoIncrement"`
	Type       string `gorm:"size:32;index;not null"`
	UserID     uint   `gorm:"index"`
	Identifier string `gorm:"size:256"`
	IP         string `gorm:"size:45"`
	UserAgent  string `gorm:"size:256"`
	Detail     string `gorm:"size:256"`
	CreatedAt  time.Time
}
