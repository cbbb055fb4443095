// Package localtime provides the fixed-timezone "day" arithmetic used by the
// visitor counter. The reference timezone is configuration, not the server's
// local zone: "first visitor of the day" must mean the same thing no matter
// where the binary runs.
package localtime

import "time"

// StartOfDay returns the instant at which t's calendar day begins in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	year, month, day := t.In(loc).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// SameLocalDay reports whether a and b fall on the same calendar date in loc.
func SameLocalDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
