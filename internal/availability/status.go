// Package availability derives camera status and reservation display state
// from the current date. Nothing here is cached or stored.
package availability

import (
	"sort"

	"github.com/starford/camledger/internal/calendar"
	"github.com/starford/camledger/internal/models"
)

// Status is the derived availability of a camera.
type Status string

const (
	StatusAvailable  Status = "available"
	StatusCheckedOut Status = "checked out"
)

// State tags a reservation relative to today.
type State string

const (
	StateEnded   State = "ended"
	StateCurrent State = "current"
	StateFuture  State = "future"
	StateUnknown State = "unknown"
)

// ReservationView is a stored reservation plus derived display fields.
type ReservationView struct {
	models.Reservation
	Period string `json:"period_display"`
	State  State  `json:"status"`
}

// Interval parses both ends of r. ok is false if either end is unparseable.
func Interval(r models.Reservation, today calendar.Date) (start, end calendar.Date, ok bool) {
	start, err := calendar.Parse(r.StartDate, today)
	if err != nil {
		return start, end, false
	}
	end, err = calendar.Parse(r.EndDate, today)
	if err != nil {
		return start, end, false
	}
	return start, end, true
}

// IsActive reports whether r's interval contains today.
func IsActive(r models.Reservation, today calendar.Date) bool {
	start, end, ok := Interval(r, today)
	return ok && today.Within(start, end)
}

// CameraStatus returns StatusCheckedOut with the first reservation that
// contains today, or StatusAvailable and nil.
func CameraStatus(cam models.Camera, today calendar.Date) (Status, *models.Reservation) {
	for i := range cam.Reservations {
		if IsActive(cam.Reservations[i], today) {
			active := cam.Reservations[i]
			return StatusCheckedOut, &active
		}
	}
	return StatusAvailable, nil
}

// View enriches r with its display period and state.
func View(r models.Reservation, today calendar.Date) ReservationView {
	v := ReservationView{Reservation: r, State: StateUnknown}

	start, startErr := calendar.Parse(r.StartDate, today)
	end, endErr := calendar.Parse(r.EndDate, today)

	var startText, endText string
	if startErr == nil {
		startText = start.Display()
	}
	if endErr == nil {
		endText = end.Display()
	}
	v.Period = calendar.FormatPeriod(startText, endText)

	if startErr != nil || endErr != nil {
		return v
	}
	switch {
	case today.After(end):
		v.State = StateEnded
	case today.Before(start):
		v.State = StateFuture
	default:
		v.State = StateCurrent
	}
	return v
}

// Visible drops ended reservations and orders the rest by start date.
// Unparseable start dates sort last.
func Visible(cam models.Camera, today calendar.Date) []ReservationView {
	type keyed struct {
		view  ReservationView
		start calendar.Date
		ok    bool
	}
	items := make([]keyed, 0, len(cam.Reservations))
	for _, r := range cam.Reservations {
		v := View(r, today)
		if v.State == StateEnded {
			continue
		}
		start, err := calendar.Parse(r.StartDate, today)
		items = append(items, keyed{view: v, start: start, ok: err == nil})
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.ok != b.ok {
			return a.ok
		}
		return a.ok && a.start.Before(b.start)
	})

	out := make([]ReservationView, len(items))
	for i, it := range items {
		out[i] = it.view
	}
	return out
}
