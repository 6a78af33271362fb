package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"library-reservation-backend/internal/model"
	"library-reservation-backend/internal/slot"
)

// ErrNoFreeSlot is returned when a room has no allocatable slot left on the
// requested day.
var ErrNoFreeSlot = errors.New("no free slot available")

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	// Sweepers. Both are idempotent and safe to run redundantly.
	SweepBooks(ctx context.Context, cutoff time.Time) error
	SweepRooms(ctx context.Context, now time.Time) error

	// Eligibility.
	StudentHasActiveBook(ctx context.Context, studentID string) (bool, error)
	StudentHasRoomReservation(ctx context.Context, studentID string) (bool, error)

	// Lookups.
	GetStudent(ctx context.Context, idNumber string) (*model.Student, error)
	GetBook(ctx context.Context, bookID string) (*model.Book, error)
	GetRoom(ctx context.Context, roomID string) (*model.ConferenceRoom, error)

	// Book status transitions. Each is a compare-and-set against the
	// expected prior status; the bool reports whether a row was changed.
	ReserveBook(ctx context.Context, bookID, studentID string, now time.Time) (bool, error)
	ReleaseBook(ctx context.Context, bookID, studentID string) (bool, error)
	MarkBorrowed(ctx context.Context, bookID string, now time.Time) (bool, error)
	MarkReturned(ctx context.Context, bookID string, now time.Time) (bool, error)

	// Room reservation mutations. Allocation and placement run inside a
	// transaction that first claims the room row, so concurrent slot
	// computations for the same room serialize.
	ReserveRoomNextSlot(ctx context.Context, roomID, studentID, date string, p slot.Policy) (*model.RoomReservation, error)
	AddRoomReservation(ctx context.Context, roomID, studentID, date string, start time.Time, p slot.Policy) (*model.RoomReservation, error)
	RemoveRoomReservations(ctx context.Context, roomID, studentID string) (int64, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// SweepBooks reverts every book still in status reserved whose reservation
// was stamped before cutoff, clearing the reservation fields.
func (s *gormStore) SweepBooks(ctx context.Context, cutoff time.Time) error {
	err := s.db.WithContext(ctx).
		Model(&model.Book{}).
		Where("status = ? AND reserved_at < ?", model.BookReserved, cutoff).
		Updates(map[string]any{
			"status":      model.BookAvailable,
			"reserved_by": nil,
			"reserved_at": nil,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to sweep expired book reservations: %w", err)
	}
	return nil
}

// SweepRooms prunes every room reservation that has already ended, so stale
// entries never block a new booking or show up in a listing.
func (s *gormStore) SweepRooms(ctx context.Context, now time.Time) error {
	err := s.db.WithContext(ctx).
		Where("end_time <= ?", now).
		Delete(&model.RoomReservation{}).Error
	if err != nil {
		return fmt.Errorf("failed to sweep past room reservations: %w", err)
	}
	return nil
}

func (s *gormStore) StudentHasActiveBook(ctx context.Context, studentID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Book{}).
		Where("status IN ? AND reserved_by = ?", []model.BookStatus{model.BookReserved, model.BookBorrowed}, studentID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count active books for %s: %w", studentID, err)
	}
	return count > 0, nil
}

func (s *gormStore) StudentHasRoomReservation(ctx context.Context, studentID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.RoomReservation{}).
		Where("reserved_by = ?", studentID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count room reservations for %s: %w", studentID, err)
	}
	return count > 0, nil
}

func (s *gormStore) GetStudent(ctx context.Context, idNumber string) (*model.Student, error) {
	var student model.Student
	if err := s.db.WithContext(ctx).First(&student, "id_number = ?", idNumber).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (s *gormStore) GetBook(ctx context.Context, bookID string) (*model.Book, error) {
	var book model.Book
	if err := s.db.WithContext(ctx).First(&book, "id = ?", bookID).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (s *gormStore) GetRoom(ctx context.Context, roomID string) (*model.ConferenceRoom, error) {
	var room model.ConferenceRoom
	if err := s.db.WithContext(ctx).Preload("Reservations").First(&room, "id = ?", roomID).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// transitionBook applies a conditional status update. The transition table
// guards against wiring an illegal pair here; the WHERE clause on the prior
// status is the concurrency mechanism: under a race only one update affects
// a row. Extra WHERE conditions and field updates are merged in.
func (s *gormStore) transitionBook(ctx context.Context, bookID string, from, to model.BookStatus, cond map[string]any, updates map[string]any) (bool, error) {
	if !from.CanTransitionTo(to) {
		return false, fmt.Errorf("illegal book transition %s -> %s", from, to)
	}

	tx := s.db.WithContext(ctx).
		Model(&model.Book{}).
		Where("id = ? AND status = ?", bookID, from)
	for column, value := range cond {
		tx = tx.Where(column+" = ?", value)
	}

	updates["status"] = to
	res := tx.Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("failed to transition book %s to %s: %w", bookID, to, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ReserveBook claims an available book for a student.
func (s *gormStore) ReserveBook(ctx context.Context, bookID, studentID string, now time.Time) (bool, error) {
	return s.transitionBook(ctx, bookID, model.BookAvailable, model.BookReserved, nil, map[string]any{
		"reserved_by": studentID,
		"reserved_at": now,
	})
}

// ReleaseBook cancels a student's own reservation.
func (s *gormStore) ReleaseBook(ctx context.Context, bookID, studentID string) (bool, error) {
	return s.transitionBook(ctx, bookID, model.BookReserved, model.BookAvailable,
		map[string]any{"reserved_by": studentID},
		map[string]any{
			"reserved_by": nil,
			"reserved_at": nil,
		})
}

// MarkBorrowed moves a reserved book into circulation.
func (s *gormStore) MarkBorrowed(ctx context.Context, bookID string, now time.Time) (bool, error) {
	return s.transitionBook(ctx, bookID, model.BookReserved, model.BookBorrowed, nil, map[string]any{
		"borrowed_at": now,
	})
}

// MarkReturned puts a borrowed book back on the shelf, clearing the whole
// reservation trail and stamping the return.
func (s *gormStore) MarkReturned(ctx context.Context, bookID string, now time.Time) (bool, error) {
	return s.transitionBook(ctx, bookID, model.BookBorrowed, model.BookAvailable, nil, map[string]any{
		"returned_at": now,
		"reserved_by": nil,
		"reserved_at": nil,
		"borrowed_at": nil,
	})
}

// claimRoom loads the room inside tx and writes its row before the
// reservation list is read. Taking the row write lock up front serializes
// concurrent allocations for the same room, so two requests can never both
// compute the same free slot and both append.
func claimRoom(tx *gorm.DB, roomID string) (*model.ConferenceRoom, error) {
	var room model.ConferenceRoom
	if err := tx.First(&room, "id = ?", roomID).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(&room).Update("updated_at", time.Now().UTC()).Error; err != nil {
		return nil, fmt.Errorf("failed to claim room %s: %w", roomID, err)
	}
	return &room, nil
}

func roomReservationsForDate(tx *gorm.DB, roomID, date string) ([]model.RoomReservation, error) {
	var existing []model.RoomReservation
	if err := tx.Where("room_id = ? AND date = ?", roomID, date).Find(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to load reservations for room %s: %w", roomID, err)
	}
	return existing, nil
}

// ReserveRoomNextSlot allocates the earliest free slot on the given day and
// appends the reservation, all inside one transaction.
func (s *gormStore) ReserveRoomNextSlot(ctx context.Context, roomID, studentID, date string, p slot.Policy) (*model.RoomReservation, error) {
	var created *model.RoomReservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := claimRoom(tx, roomID)
		if err != nil {
			return err
		}

		existing, err := roomReservationsForDate(tx, room.ID, date)
		if err != nil {
			return err
		}

		start, err := slot.NextAvailableSlot(existing, date, p)
		if err != nil {
			return err
		}
		if start == nil {
			return ErrNoFreeSlot
		}

		reservation := model.RoomReservation{
			RoomID:     room.ID,
			ReservedBy: studentID,
			Date:       date,
			StartTime:  *start,
			EndTime:    start.Add(p.SlotDuration()),
		}
		if err := tx.Create(&reservation).Error; err != nil {
			return fmt.Errorf("failed to append reservation to room %s: %w", room.ID, err)
		}
		created = &reservation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AddRoomReservation appends an admin-picked reservation after re-validating
// placement against a fresh read of the room's reservations.
func (s *gormStore) AddRoomReservation(ctx context.Context, roomID, studentID, date string, start time.Time, p slot.Policy) (*model.RoomReservation, error) {
	var created *model.RoomReservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := claimRoom(tx, roomID)
		if err != nil {
			return err
		}

		existing, err := roomReservationsForDate(tx, room.ID, date)
		if err != nil {
			return err
		}

		end, err := slot.ValidatePlacement(existing, date, start, p)
		if err != nil {
			return err
		}

		reservation := model.RoomReservation{
			RoomID:     room.ID,
			ReservedBy: studentID,
			Date:       date,
			StartTime:  start,
			EndTime:    end,
		}
		if err := tx.Create(&reservation).Error; err != nil {
			return fmt.Errorf("failed to append reservation to room %s: %w", room.ID, err)
		}
		created = &reservation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// RemoveRoomReservations deletes every reservation a student holds in the
// given room and reports how many were removed.
func (s *gormStore) RemoveRoomReservations(ctx context.Context, roomID, studentID string) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("room_id = ? AND reserved_by = ?", roomID, studentID).
		Delete(&model.RoomReservation{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to remove reservations for %s in room %s: %w", studentID, roomID, res.Error)
	}
	return res.RowsAffected, nil
}
