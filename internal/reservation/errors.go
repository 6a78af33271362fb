package reservation

import (
	"errors"
	"fmt"
)

// Taxonomy roots. Handlers map these to HTTP status codes; every specific
// error below wraps exactly one of them.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
)

var (
	ErrBookNotFound    = fmt.Errorf("%w: book", ErrNotFound)
	ErrRoomNotFound    = fmt.Errorf("%w: conference room", ErrNotFound)
	ErrStudentNotFound = fmt.Errorf("%w: student", ErrNotFound)

	ErrAlreadyHasBook = fmt.Errorf("%w: you can only reserve or borrow one book at a time", ErrConflict)
	ErrAlreadyHasRoom = fmt.Errorf("%w: you can only reserve one conference room at a time", ErrConflict)
	ErrNoSlots        = fmt.Errorf("%w: no available slots on that day", ErrConflict)
	ErrSlotTaken      = fmt.Errorf("%w: this time slot is already reserved", ErrConflict)
	ErrOutsideHours   = fmt.Errorf("%w: reservations must fall within business hours", ErrConflict)
	ErrBadTransition  = fmt.Errorf("%w: book is not in the required status", ErrConflict)

	ErrNotTomorrow = fmt.Errorf("%w: conference rooms can only be reserved for the next day", ErrValidation)
	ErrNotAStudent = fmt.Errorf("%w: reservations can only be made for students", ErrValidation)
	ErrBadDateTime = fmt.Errorf("%w: invalid date or time format", ErrValidation)
)
