// Package aggregate computes period summaries and category rankings from
// expense records. Every function is pure: the caller supplies "now".
package aggregate

import (
	"time"

	"spendlog/internal/core"
)

// Window returns the half-open interval [start, end) of period p anchored at
// now, in now's location. Weeks start on Monday. An unknown period yields an
// empty window (start == end).
func Window(p core.Period, now time.Time) (start, end time.Time) {
	y, m, d := now.Date()
	loc := now.Location()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)

	switch p {
	case core.Day:
		return midnight, time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	case core.Week:
		offset := (int(now.Weekday()) + 6) % 7 // days since Monday
		start = time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
		return start, time.Date(y, m, d-offset+7, 0, 0, 0, 0, loc)
	case core.Month:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc), time.Date(y, m+1, 1, 0, 0, 0, 0, loc)
	default:
		return midnight, midnight
	}
}

// Contains reports whether t falls in [start, end).
func Contains(start, end, t time.Time) bool {
	return !t.Before(start) && t.Before(end)
}
