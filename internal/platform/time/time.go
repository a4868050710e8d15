// Package time contains time related helpers
package time

import "time"

// Ptr returns a pointer to t or nil if t is zero
func Ptr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// MinutesBetween returns the span from start to end in minutes, or nil when
// either endpoint is zero or the span is not positive
func MinutesBetween(start, end time.Time) *float64 {
	if start.IsZero() || end.IsZero() {
		return nil
	}
	m := end.Sub(start).Minutes()
	if m <= 0 {
		return nil
	}
	return &m
}
