// Package reservation implements the reservation lifecycle for books and
// conference rooms: sweep stale state, check eligibility, allocate or
// transition, commit.
package reservation

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"gorm.io/gorm"

	"library-reservation-backend/config"
	"library-reservation-backend/internal/model"
	"library-reservation-backend/internal/slot"
	"library-reservation-backend/internal/store"
	"library-reservation-backend/internal/timemath"
)

// Clock supplies the current time. Operations never read the wall clock
// directly, so tests can pin time.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock in UTC.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now().UTC() }

// Service orchestrates reservation operations on top of the store.
type Service struct {
	store  store.Store
	policy config.PolicyConfig
	clock  Clock
}

// NewService creates the lifecycle service.
func NewService(s store.Store, policy config.PolicyConfig, clock Clock) *Service {
	policy.ApplyDefaults()
	return &Service{store: s, policy: policy, clock: clock}
}

// Now returns the service's current time.
func (s *Service) Now() time.Time { return s.clock.Now() }

func (s *Service) slotPolicy() slot.Policy {
	return slot.Policy{
		OpenHour:    s.policy.OpenHour,
		CloseHour:   s.policy.CloseHour,
		SlotMinutes: s.policy.SlotMinutes,
	}
}

func (s *Service) holdDuration() time.Duration {
	return time.Duration(s.policy.BookHoldHours) * time.Hour
}

func (s *Service) loanDuration() time.Duration {
	return time.Duration(s.policy.LoanDays) * 24 * time.Hour
}

// Tomorrow is the only calendar day students may book rooms for, computed
// from the service clock as a UTC date string.
func (s *Service) Tomorrow() string {
	return s.clock.Now().UTC().AddDate(0, 0, 1).Format(slot.DateLayout)
}

// SweepBooks retires book reservations older than the hold window.
func (s *Service) SweepBooks(ctx context.Context, now time.Time) error {
	return s.store.SweepBooks(ctx, now.Add(-s.holdDuration()))
}

// SweepRooms prunes room reservations that have already ended. It runs
// before every room read or write so stale entries never block a booking.
func (s *Service) SweepRooms(ctx context.Context, now time.Time) error {
	return s.store.SweepRooms(ctx, now)
}

// ReserveBook places a 48-hour hold on an available book for a student.
// Losing the claim race to another student is a silent no-op.
func (s *Service) ReserveBook(ctx context.Context, studentID, bookID string) error {
	now := s.clock.Now()
	if err := s.SweepBooks(ctx, now); err != nil {
		return err
	}

	has, err := s.store.StudentHasActiveBook(ctx, studentID)
	if err != nil {
		return err
	}
	if has {
		reservationsRejected.WithLabelValues("book", "cap").Inc()
		return ErrAlreadyHasBook
	}

	claimed, err := s.store.ReserveBook(ctx, bookID, studentID, now)
	if err != nil {
		return err
	}
	if !claimed {
		if _, err := s.store.GetBook(ctx, bookID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return err
		}
		log.Printf("book %s was taken before %s could claim it", bookID, studentID)
		return nil
	}
	reservationsCreated.WithLabelValues("book").Inc()
	return nil
}

// CancelBookReservation releases a student's own hold. Holding no
// reservation on the book is a no-op, not an error.
func (s *Service) CancelBookReservation(ctx context.Context, studentID, bookID string) error {
	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		return err
	}
	_, err := s.store.ReleaseBook(ctx, bookID, studentID)
	return err
}

// MarkBorrowed hands a reserved book over the counter.
func (s *Service) MarkBorrowed(ctx context.Context, bookID string) error {
	now := s.clock.Now()
	if err := s.SweepBooks(ctx, now); err != nil {
		return err
	}
	ok, err := s.store.MarkBorrowed(ctx, bookID, now)
	if err != nil {
		return err
	}
	if !ok {
		return s.bookTransitionFailure(ctx, bookID)
	}
	return nil
}

// MarkReturned takes a borrowed book back and clears its reservation trail.
func (s *Service) MarkReturned(ctx context.Context, bookID string) error {
	ok, err := s.store.MarkReturned(ctx, bookID, s.clock.Now())
	if err != nil {
		return err
	}
	if !ok {
		return s.bookTransitionFailure(ctx, bookID)
	}
	return nil
}

func (s *Service) bookTransitionFailure(ctx context.Context, bookID string) error {
	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		return err
	}
	return ErrBadTransition
}

// ReserveRoomForTomorrow books the earliest free slot in a room for the next
// calendar day.
func (s *Service) ReserveRoomForTomorrow(ctx context.Context, studentID, roomID, date string) (*model.RoomReservation, error) {
	now := s.clock.Now()
	if err := s.SweepRooms(ctx, now); err != nil {
		return nil, err
	}

	if date != s.Tomorrow() {
		reservationsRejected.WithLabelValues("room", "not_tomorrow").Inc()
		return nil, ErrNotTomorrow
	}

	has, err := s.store.StudentHasRoomReservation(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if has {
		reservationsRejected.WithLabelValues("room", "cap").Inc()
		return nil, ErrAlreadyHasRoom
	}

	res, err := s.store.ReserveRoomNextSlot(ctx, roomID, studentID, date, s.slotPolicy())
	if err != nil {
		return nil, s.mapRoomError(err)
	}
	reservationsCreated.WithLabelValues("room").Inc()
	return res, nil
}

// CancelOwnRoomReservation removes the student's reservations in a room.
// The eligibility invariant means there is at most one.
func (s *Service) CancelOwnRoomReservation(ctx context.Context, studentID, roomID string) error {
	now := s.clock.Now()
	if err := s.SweepRooms(ctx, now); err != nil {
		return err
	}
	if _, err := s.store.GetRoom(ctx, roomID); err != nil {
		return s.mapRoomError(err)
	}
	_, err := s.store.RemoveRoomReservations(ctx, roomID, studentID)
	return err
}

// AdminAddRoomReservation places a fully specified reservation on behalf of
// a student: the admin picks the exact start time and nothing is
// auto-adjusted.
func (s *Service) AdminAddRoomReservation(ctx context.Context, studentID, roomID, date, startTime string) (*model.RoomReservation, error) {
	now := s.clock.Now()
	if err := s.SweepRooms(ctx, now); err != nil {
		return nil, err
	}

	student, err := s.store.GetStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	if student.IsAdmin {
		return nil, ErrNotAStudent
	}

	has, err := s.store.StudentHasRoomReservation(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if has {
		reservationsRejected.WithLabelValues("room", "cap").Inc()
		return nil, ErrAlreadyHasRoom
	}

	start, err := slot.ParseStart(date, startTime)
	if err != nil {
		return nil, ErrBadDateTime
	}

	res, err := s.store.AddRoomReservation(ctx, roomID, studentID, date, start, s.slotPolicy())
	if err != nil {
		return nil, s.mapRoomError(err)
	}
	reservationsCreated.WithLabelValues("room").Inc()
	return res, nil
}

// AdminCancelRoomReservation removes a student's reservations in a room on
// an admin's authority.
func (s *Service) AdminCancelRoomReservation(ctx context.Context, roomID, studentID string) error {
	now := s.clock.Now()
	if err := s.SweepRooms(ctx, now); err != nil {
		return err
	}
	if _, err := s.store.GetRoom(ctx, roomID); err != nil {
		return s.mapRoomError(err)
	}
	_, err := s.store.RemoveRoomReservations(ctx, roomID, studentID)
	return err
}

func (s *Service) mapRoomError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrRoomNotFound
	case errors.Is(err, store.ErrNoFreeSlot):
		reservationsRejected.WithLabelValues("room", "no_slots").Inc()
		return ErrNoSlots
	case errors.Is(err, slot.ErrOverlap):
		reservationsRejected.WithLabelValues("room", "overlap").Inc()
		return ErrSlotTaken
	case errors.Is(err, slot.ErrOutsideHours):
		reservationsRejected.WithLabelValues("room", "outside_hours").Inc()
		return ErrOutsideHours
	case errors.Is(err, slot.ErrBadDate), errors.Is(err, slot.ErrBadTime):
		return ErrBadDateTime
	default:
		return err
	}
}

// TimingFor reports the remaining hold time or loan state for an active
// book, or nil for an available one.
func (s *Service) TimingFor(book *model.Book) any {
	now := s.clock.Now()
	switch book.Status {
	case model.BookReserved:
		if book.ReservedAt == nil {
			return timemath.Remaining{Expired: true, Text: "Expired"}
		}
		return timemath.BookReservationRemaining(*book.ReservedAt, now, s.holdDuration())
	case model.BookBorrowed:
		if book.BorrowedAt == nil {
			return timemath.LoanInfo{Expired: true, Text: "Overdue"}
		}
		return timemath.BorrowingInfo(*book.BorrowedAt, now, s.loanDuration(), s.policy.LateFeePerDay)
	default:
		return nil
	}
}

// RoomStatus is the dashboard view of a single conference room.
type RoomStatus struct {
	RoomID        string                  `json:"room_id"`
	RoomName      string                  `json:"room_name"`
	CurrentStatus string                  `json:"current_status"`
	Reservations  []model.RoomReservation `json:"reservations"`
	NextSlotStart *time.Time              `json:"next_slot_start,omitempty"`
	NextSlotEnd   *time.Time              `json:"next_slot_end,omitempty"`
}

// RoomStatuses sweeps and then summarizes every room: whether it is in use
// right now, its upcoming reservations (optionally limited to one date), and
// the next allocatable slot for tomorrow. The slot hint is suppressed for a
// viewer who already holds a room reservation and so cannot book anyway; an
// empty viewerID (the admin console) always sees it.
func (s *Service) RoomStatuses(ctx context.Context, dateFilter, viewerID string) ([]RoomStatus, error) {
	now := s.clock.Now()
	if err := s.SweepRooms(ctx, now); err != nil {
		return nil, err
	}

	showNextSlot := true
	if viewerID != "" {
		has, err := s.store.StudentHasRoomReservation(ctx, viewerID)
		if err != nil {
			return nil, err
		}
		showNextSlot = !has
	}

	var rooms []model.ConferenceRoom
	if err := s.store.DB().WithContext(ctx).Preload("Reservations").Order("room_name").Find(&rooms).Error; err != nil {
		return nil, err
	}

	tomorrow := s.Tomorrow()
	statuses := make([]RoomStatus, 0, len(rooms))
	for _, room := range rooms {
		status := RoomStatus{
			RoomID:        room.ID,
			RoomName:      room.RoomName,
			CurrentStatus: "Available",
			Reservations:  []model.RoomReservation{},
		}

		for _, res := range room.Reservations {
			if !now.Before(res.StartTime) && !now.After(res.EndTime) {
				status.CurrentStatus = "Currently in use by " + res.ReservedBy +
					" until " + res.EndTime.UTC().Format(slot.TimeLayout)
				continue
			}
			if dateFilter == "" || res.Date == dateFilter {
				status.Reservations = append(status.Reservations, res)
			}
		}
		sort.Slice(status.Reservations, func(i, j int) bool {
			return status.Reservations[i].StartTime.Before(status.Reservations[j].StartTime)
		})

		if showNextSlot {
			if start, err := slot.NextAvailableSlot(room.Reservations, tomorrow, s.slotPolicy()); err == nil && start != nil {
				end := start.Add(s.slotPolicy().SlotDuration())
				status.NextSlotStart = start
				status.NextSlotEnd = &end
			}
		}

		statuses = append(statuses, status)
	}
	return statuses, nil
}
