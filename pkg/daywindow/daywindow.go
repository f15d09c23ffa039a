// Package daywindow defines the single "today" boundary used by every
// operation that scopes queries to the current day (OTP lookup, same-day
// visit upsert, dashboard counts). Keeping one helper avoids skew between
// operations that would otherwise compute day boundaries independently.
package daywindow

import "time"

// Window is the half-open interval [Start, End) covering one calendar day.
type Window struct {
	Start time.Time
	End   time.Time
}

// For returns the day-window containing t, in t's location.
func For(t time.Time) Window {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}
