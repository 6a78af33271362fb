package model

import "time"

// BookStatus is the lifecycle state of a book in the collection.
type BookStatus string

const (
	BookAvailable BookStatus = "available"
	BookReserved  BookStatus = "reserved"
	BookBorrowed  BookStatus = "borrowed"
)

// bookTransitions lists the legal status changes. Every mutation is a
// compare-and-set against the expected prior status, so an update racing
// against another request simply affects zero rows.
var bookTransitions = map[BookStatus][]BookStatus{
	BookAvailable: {BookReserved},
	BookReserved:  {BookBorrowed, BookAvailable},
	BookBorrowed:  {BookAvailable},
}

// CanTransitionTo reports whether moving from s to next is a legal change.
func (s BookStatus) CanTransitionTo(next BookStatus) bool {
	for _, allowed := range bookTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Book represents a book in the circulating collection.
type Book struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	Title      string     `gorm:"size:256;not null" json:"title"`
	Author     string     `gorm:"size:256;not null" json:"author"`
	Genre      string     `gorm:"size:128;not null;index" json:"genre"`
	Status     BookStatus `gorm:"size:16;not null;index" json:"status"`
	ReservedBy *string    `gorm:"size:64;index" json:"reserved_by,omitempty"`
	ReservedAt *time.Time `json:"reserved_at,omitempty"`
	BorrowedAt *time.Time `json:"borrowed_at,omitempty"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	CreatedAt  time.Time  `json:"-"`
	UpdatedAt  time.Time  `json:"-"`
}
