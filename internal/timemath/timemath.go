// Package timemath holds the pure time arithmetic for reservation windows,
// loan periods and late fees. Every function takes the current time as an
// explicit parameter so callers can pin it in tests.
package timemath

import (
	"fmt"
	"time"
)

const day = 24 * time.Hour

// Remaining describes how much of a book reservation window is left.
type Remaining struct {
	Expired bool   `json:"expired"`
	Text    string `json:"text"`
}

// LoanInfo describes the state of an active loan, including the accrued
// late fee once the loan period has run out.
type LoanInfo struct {
	Expired bool   `json:"expired"`
	Text    string `json:"text"`
	LateFee int    `json:"late_fee"`
}

// BookReservationRemaining reports the time left on a book reservation.
// The reservation expires exactly at reservedAt+hold: at or past the
// boundary the result is Expired.
func BookReservationRemaining(reservedAt, now time.Time, hold time.Duration) Remaining {
	left := reservedAt.Add(hold).Sub(now)
	if left <= 0 {
		return Remaining{Expired: true, Text: "Expired"}
	}
	return Remaining{Text: formatRemaining(left)}
}

// BorrowingInfo reports the time left on a loan, or the late fee once it is
// overdue. Overdue time is charged per started day: any partial day past the
// due instant counts as a full day.
func BorrowingInfo(borrowedAt, now time.Time, loan time.Duration, feePerDay int) LoanInfo {
	due := borrowedAt.Add(loan)
	left := due.Sub(now)
	if left > 0 {
		return LoanInfo{Text: formatRemaining(left)}
	}
	overdue := now.Sub(due)
	days := int(overdue / day)
	if overdue%day > 0 {
		days++
	}
	return LoanInfo{Expired: true, Text: "Overdue", LateFee: days * feePerDay}
}

// formatRemaining renders a positive duration as "D days, H hours, M minutes",
// flooring to the minute.
func formatRemaining(d time.Duration) string {
	days := int(d / day)
	d -= time.Duration(days) * day
	hours := int(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	minutes := int(d / time.Minute)
	return fmt.Sprintf("%d days, %d hours, %d minutes", days, hours, minutes)
}
