package model

import "time"

// ConferenceRoom represents a bookable conference room. The room owns its
// reservations exclusively; the room row is the unit of concurrency for
// slot allocation.
type ConferenceRoom struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	RoomName  string    `gorm:"uniqueIndex;size:128;not null" json:"room_name"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	// Associations
	Reservations []RoomReservation `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"reservations"`
}
