// Package slot computes conference-room time slots within business hours.
// All functions are pure: they work on a snapshot of a room's reservations
// and never touch the database or the wall clock.
package slot

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"library-reservation-backend/internal/model"
)

const (
	// DateLayout is the calendar-day format used for room reservations.
	DateLayout = "2006-01-02"
	// TimeLayout is the wall-time format accepted for admin-picked starts.
	TimeLayout = "15:04"
)

var (
	ErrBadDate      = errors.New("invalid reservation date")
	ErrBadTime      = errors.New("invalid start time")
	ErrOutsideHours = errors.New("reservation outside business hours")
	ErrOverlap      = errors.New("time slot already reserved")
)

// Policy describes the business window and the fixed slot length.
type Policy struct {
	OpenHour    int
	CloseHour   int
	SlotMinutes int
}

// SlotDuration returns the fixed slot length.
func (p Policy) SlotDuration() time.Duration {
	return time.Duration(p.SlotMinutes) * time.Minute
}

// DayWindow returns the open and close instants of the business window on
// the given calendar day, in UTC.
func DayWindow(date string, p Policy) (time.Time, time.Time, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, date)
	}
	open := day.Add(time.Duration(p.OpenHour) * time.Hour)
	close := day.Add(time.Duration(p.CloseHour) * time.Hour)
	return open, close, nil
}

// ParseStart combines a date and an "HH:MM" wall time into a UTC instant.
func ParseStart(date, startTime string) (time.Time, error) {
	start, err := time.Parse(DateLayout+" "+TimeLayout, date+" "+startTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadTime, startTime)
	}
	return start, nil
}

// forDate returns the reservations falling on date, sorted by start time.
func forDate(reservations []model.RoomReservation, date string) []model.RoomReservation {
	var sameDay []model.RoomReservation
	for _, res := range reservations {
		if res.Date == date {
			sameDay = append(sameDay, res)
		}
	}
	sort.Slice(sameDay, func(i, j int) bool {
		return sameDay[i].StartTime.Before(sameDay[j].StartTime)
	})
	return sameDay
}

// NextAvailableSlot finds the earliest start for a fixed-length slot on the
// given day, walking the sorted reservations with a cursor from the opening
// hour. A gap before a reservation is returned as soon as it is found,
// without checking its width; only the tail after the last reservation must
// fit a whole slot. Returns nil when the day is full.
func NextAvailableSlot(reservations []model.RoomReservation, date string, p Policy) (*time.Time, error) {
	open, close, err := DayWindow(date, p)
	if err != nil {
		return nil, err
	}

	cursor := open
	for _, res := range forDate(reservations, date) {
		if res.StartTime.After(cursor) {
			return &cursor, nil
		}
		if res.EndTime.After(cursor) {
			cursor = res.EndTime
		}
	}

	if close.Sub(cursor) >= p.SlotDuration() {
		return &cursor, nil
	}
	return nil, nil
}

// ValidatePlacement checks an admin-picked start against the room's existing
// reservations: the whole slot must lie inside business hours and must not
// overlap any reservation on the same day. It returns the slot's end time.
func ValidatePlacement(reservations []model.RoomReservation, date string, start time.Time, p Policy) (time.Time, error) {
	open, close, err := DayWindow(date, p)
	if err != nil {
		return time.Time{}, err
	}

	end := start.Add(p.SlotDuration())
	if start.Before(open) || end.After(close) {
		return time.Time{}, ErrOutsideHours
	}

	for _, res := range forDate(reservations, date) {
		if start.Before(res.EndTime) && end.After(res.StartTime) {
			return time.Time{}, ErrOverlap
		}
	}
	return end, nil
}
