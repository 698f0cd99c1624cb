package model

import "time"

// AddMonths moves t forward by n calendar months keeping the day of month,
// clamped to the last day of shorter months (Jan 31 + 1 = Feb 28/29).
// Due dates are always derived from the approval date, never chained, so a
// clamp in February does not pull later months back.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()

	if last := daysIn(y, m+time.Month(n), t.Location()); d > last {
		d = last
	}
	return time.Date(y, m+time.Month(n), d, hh, mm, ss, t.Nanosecond(), t.Location())
}

// daysIn returns the number of days in the (possibly denormalised) month.
func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// sameMonth reports whether a and b fall in the same calendar month of a's zone.
func sameMonth(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.Month() == b.Month()
}
