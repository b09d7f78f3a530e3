package model

import "time"

const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Profile holds the personal attributes of a user, one row per account.
// It is inserted together with its owning User and removed by cascade.
type Profile struct {
	ID        uint   `gorm:"primarykey,autoIncrement"`
	UserID    uint   `gorm:"uniqueIndex;not null"`
	FirstName string `gorm:"size:30"`
	LastName  string `gorm:"size:30"`
	Bio       string `gorm:"type:text"`
	Location  string `gorm:"size:100"`
	Gender    string `gorm:"size:10"`
	BirthDate *time.Time
	Picture   string `gorm:"size:256"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName returns first and last name joined with a space, trimmed.
func (p *Profile) FullName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
