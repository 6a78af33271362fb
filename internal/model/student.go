package model

import "time"

// Student is a registered user, keyed by campus ID number.
type Student struct {
	IDNumber     string    `gorm:"primaryKey;size:64" json:"id_number"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	IsAdmin      bool      `gorm:"not null" json:"is_admin"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}
