package timemath

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var base = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestBookReservationRemaining(t *testing.T) {
	hold := 48 * time.Hour

	testCases := []struct {
		name     string
		now      time.Time
		expected Remaining
	}{
		{
			name:     "Just reserved",
			now:      base,
			expected: Remaining{Text: "2 days, 0 hours, 0 minutes"},
		},
		{
			name:     "Partway through window floors to minute",
			now:      base.Add(5*time.Hour + 30*time.Minute + 59*time.Second),
			expected: Remaining{Text: "1 days, 18 hours, 29 minutes"},
		},
		{
			name:     "One second before the boundary",
			now:      base.Add(48*time.Hour - time.Second),
			expected: Remaining{Text: "0 days, 0 hours, 0 minutes"},
		},
		{
			name:     "Exactly at the boundary",
			now:      base.Add(48 * time.Hour),
			expected: Remaining{Expired: true, Text: "Expired"},
		},
		{
			name:     "Past the boundary",
			now:      base.Add(72 * time.Hour),
			expected: Remaining{Expired: true, Text: "Expired"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, BookReservationRemaining(base, tc.now, hold))
		})
	}
}

func TestBorrowingInfo(t *testing.T) {
	loan := 7 * 24 * time.Hour
	const fee = 25

	testCases := []struct {
		name     string
		now      time.Time
		expected LoanInfo
	}{
		{
			name:     "Just borrowed",
			now:      base,
			expected: LoanInfo{Text: "7 days, 0 hours, 0 minutes"},
		},
		{
			name:     "Due exactly now, no fee yet",
			now:      base.Add(loan),
			expected: LoanInfo{Expired: true, Text: "Overdue", LateFee: 0},
		},
		{
			name:     "One second overdue rounds up to one day",
			now:      base.Add(loan + time.Second),
			expected: LoanInfo{Expired: true, Text: "Overdue", LateFee: 25},
		},
		{
			name:     "Exactly one day overdue",
			now:      base.Add(loan + 24*time.Hour),
			expected: LoanInfo{Expired: true, Text: "Overdue", LateFee: 25},
		},
		{
			name:     "A day and a bit overdue charges two days",
			now:      base.Add(loan + 24*time.Hour + time.Minute),
			expected: LoanInfo{Expired: true, Text: "Overdue", LateFee: 50},
		},
		{
			name:     "Ten days overdue",
			now:      base.Add(loan + 10*24*time.Hour),
			expected: LoanInfo{Expired: true, Text: "Overdue", LateFee: 250},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, BorrowingInfo(base, tc.now, loan, fee))
		})
	}
}

func TestLateFeeMonotonic(t *testing.T) {
	loan := 7 * 24 * time.Hour
	prev := 0
	for i := 0; i < 40; i++ {
		now := base.Add(loan + time.Duration(i)*6*time.Hour)
		info := BorrowingInfo(base, now, loan, 25)
		assert.GreaterOrEqual(t, info.LateFee, prev)
		assert.Zero(t, info.LateFee%25)
		prev = info.LateFee
	}
}
