package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"library-reservation-backend/internal/model"
	"library-reservation-backend/internal/slot"
)

var testPolicy = slot.Policy{OpenHour: 8, CloseHour: 18, SlotMinutes: 90}

func newTestStore(t *testing.T) Store {
	t.Helper()
	// A uniquely named shared-cache database keeps the whole pool on one
	// in-memory instance while isolating tests from each other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.Student{},
		&model.Book{},
		&model.ConferenceRoom{},
		&model.RoomReservation{},
	))
	return NewGormStore(db)
}

func seedBook(t *testing.T, s Store, id string, status model.BookStatus, reservedBy string, reservedAt time.Time) {
	t.Helper()
	book := model.Book{ID: id, Title: "T", Author: "A", Genre: "G", Status: status}
	if reservedBy != "" {
		book.ReservedBy = &reservedBy
		book.ReservedAt = &reservedAt
	}
	require.NoError(t, s.DB().Create(&book).Error)
}

func TestSweepBooks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	cutoff := now.Add(-48 * time.Hour)

	seedBook(t, s, "expired", model.BookReserved, "s1", now.Add(-49*time.Hour))
	seedBook(t, s, "fresh", model.BookReserved, "s2", now.Add(-1*time.Hour))
	seedBook(t, s, "loaned", model.BookBorrowed, "s3", now.Add(-200*time.Hour))

	require.NoError(t, s.SweepBooks(ctx, cutoff))

	var expired model.Book
	require.NoError(t, s.DB().First(&expired, "id = ?", "expired").Error)
	assert.Equal(t, model.BookAvailable, expired.Status)
	assert.Nil(t, expired.ReservedBy)
	assert.Nil(t, expired.ReservedAt)

	var fresh model.Book
	require.NoError(t, s.DB().First(&fresh, "id = ?", "fresh").Error)
	assert.Equal(t, model.BookReserved, fresh.Status)

	// Overdue loans are never auto-returned; the fee keeps accruing.
	var loaned model.Book
	require.NoError(t, s.DB().First(&loaned, "id = ?", "loaned").Error)
	assert.Equal(t, model.BookBorrowed, loaned.Status)

	// Idempotent: a second pass with the same cutoff changes nothing.
	require.NoError(t, s.SweepBooks(ctx, cutoff))
	var after model.Book
	require.NoError(t, s.DB().First(&after, "id = ?", "fresh").Error)
	assert.Equal(t, fresh.UpdatedAt.Unix(), after.UpdatedAt.Unix())
}

func TestSweepRooms(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.DB().Create(&model.ConferenceRoom{ID: "r1", RoomName: "Room A"}).Error)
	past := model.RoomReservation{
		RoomID: "r1", ReservedBy: "s1", Date: "2025-03-09",
		StartTime: now.Add(-26 * time.Hour), EndTime: now.Add(-24*time.Hour - 30*time.Minute),
	}
	future := model.RoomReservation{
		RoomID: "r1", ReservedBy: "s2", Date: "2025-03-11",
		StartTime: now.Add(22 * time.Hour), EndTime: now.Add(23*time.Hour + 30*time.Minute),
	}
	require.NoError(t, s.DB().Create(&past).Error)
	require.NoError(t, s.DB().Create(&future).Error)

	require.NoError(t, s.SweepRooms(ctx, now))
	require.NoError(t, s.SweepRooms(ctx, now)) // idempotent

	var remaining []model.RoomReservation
	require.NoError(t, s.DB().Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "s2", remaining[0].ReservedBy)
}

func TestReserveBookCompareAndSet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	seedBook(t, s, "b1", model.BookAvailable, "", time.Time{})

	claimed, err := s.ReserveBook(ctx, "b1", "s1", now)
	require.NoError(t, err)
	assert.True(t, claimed)

	// The second claim loses the race: zero rows match the CAS filter.
	claimed, err = s.ReserveBook(ctx, "b1", "s2", now)
	require.NoError(t, err)
	assert.False(t, claimed)

	var book model.Book
	require.NoError(t, s.DB().First(&book, "id = ?", "b1").Error)
	require.NotNil(t, book.ReservedBy)
	assert.Equal(t, "s1", *book.ReservedBy)
}

func TestReleaseBookOnlyByOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	seedBook(t, s, "b1", model.BookReserved, "s1", now)

	released, err := s.ReleaseBook(ctx, "b1", "someone-else")
	require.NoError(t, err)
	assert.False(t, released)

	released, err = s.ReleaseBook(ctx, "b1", "s1")
	require.NoError(t, err)
	assert.True(t, released)

	var book model.Book
	require.NoError(t, s.DB().First(&book, "id = ?", "b1").Error)
	assert.Equal(t, model.BookAvailable, book.Status)
	assert.Nil(t, book.ReservedBy)
}

func TestBorrowAndReturnTransitions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	seedBook(t, s, "b1", model.BookAvailable, "", time.Time{})

	// Borrowing an available book is not a legal transition.
	ok, err := s.MarkBorrowed(ctx, "b1", now)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.ReserveBook(ctx, "b1", "s1", now)
	require.NoError(t, err)

	ok, err = s.MarkBorrowed(ctx, "b1", now.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.MarkReturned(ctx, "b1", now.Add(48*time.Hour))
	require.NoError(t, err)
	assert.True(t, ok)

	var book model.Book
	require.NoError(t, s.DB().First(&book, "id = ?", "b1").Error)
	assert.Equal(t, model.BookAvailable, book.Status)
	assert.Nil(t, book.ReservedBy)
	assert.Nil(t, book.BorrowedAt)
	require.NotNil(t, book.ReturnedAt)
}

func TestStudentEligibility(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	seedBook(t, s, "b1", model.BookBorrowed, "s1", now)
	require.NoError(t, s.DB().Create(&model.ConferenceRoom{ID: "r1", RoomName: "Room A"}).Error)
	require.NoError(t, s.DB().Create(&model.RoomReservation{
		RoomID: "r1", ReservedBy: "s2", Date: "2025-03-11",
		StartTime: now.Add(20 * time.Hour), EndTime: now.Add(21*time.Hour + 30*time.Minute),
	}).Error)

	has, err := s.StudentHasActiveBook(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = s.StudentHasActiveBook(ctx, "s2")
	require.NoError(t, err)
	assert.False(t, has)

	has, err = s.StudentHasRoomReservation(ctx, "s2")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = s.StudentHasRoomReservation(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestReserveRoomNextSlotFillsTheDay(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	const date = "2025-03-11"

	require.NoError(t, s.DB().Create(&model.ConferenceRoom{ID: "r1", RoomName: "Room A"}).Error)

	// 10 business hours fit six full 90-minute slots and a 60-minute tail.
	var starts []string
	for i := 0; i < 6; i++ {
		res, err := s.ReserveRoomNextSlot(ctx, "r1", "student", date, testPolicy)
		require.NoError(t, err)
		starts = append(starts, res.StartTime.UTC().Format("15:04"))
	}
	assert.Equal(t, []string{"08:00", "09:30", "11:00", "12:30", "14:00", "15:30"}, starts)

	_, err := s.ReserveRoomNextSlot(ctx, "r1", "student", date, testPolicy)
	assert.ErrorIs(t, err, ErrNoFreeSlot)
}

func TestAddRoomReservationValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	const date = "2025-03-11"

	require.NoError(t, s.DB().Create(&model.ConferenceRoom{ID: "r1", RoomName: "Room A"}).Error)

	start, err := slot.ParseStart(date, "10:00")
	require.NoError(t, err)
	_, err = s.AddRoomReservation(ctx, "r1", "s1", date, start, testPolicy)
	require.NoError(t, err)

	// Overlapping placement is rejected against a fresh read.
	overlapping, err := slot.ParseStart(date, "11:00")
	require.NoError(t, err)
	_, err = s.AddRoomReservation(ctx, "r1", "s2", date, overlapping, testPolicy)
	assert.ErrorIs(t, err, slot.ErrOverlap)

	late, err := slot.ParseStart(date, "17:30")
	require.NoError(t, err)
	_, err = s.AddRoomReservation(ctx, "r1", "s2", date, late, testPolicy)
	assert.ErrorIs(t, err, slot.ErrOutsideHours)

	_, err = s.AddRoomReservation(ctx, "missing", "s2", date, start, testPolicy)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRemoveRoomReservations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.DB().Create(&model.ConferenceRoom{ID: "r1", RoomName: "Room A"}).Error)
	require.NoError(t, s.DB().Create(&model.RoomReservation{
		RoomID: "r1", ReservedBy: "s1", Date: "2025-03-11",
		StartTime: now.Add(20 * time.Hour), EndTime: now.Add(21*time.Hour + 30*time.Minute),
	}).Error)

	removed, err := s.RemoveRoomReservations(ctx, "r1", "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	// Cancelling with nothing to cancel is a no-op, not an error.
	removed, err = s.RemoveRoomReservations(ctx, "r1", "s1")
	require.NoError(t, err)
	assert.Zero(t, removed)
}
