package model

import "time"

// RoomReservation is a single 90-minute booking of a conference room.
// Date is the "YYYY-MM-DD" calendar day; StartTime and EndTime are the
// concrete UTC instants within that day.
type RoomReservation struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	RoomID     string    `gorm:"size:36;not null;index" json:"-"`
	ReservedBy string    `gorm:"size:64;not null;index" json:"reserved_by"`
	Date       string    `gorm:"size:10;not null;index" json:"date"`
	StartTime  time.Time `gorm:"not null" json:"start_time"`
	EndTime    time.Time `gorm:"not null;index" json:"end_time"`
	CreatedAt  time.Time `json:"-"`
}
