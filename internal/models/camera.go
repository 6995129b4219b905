// Package models defines the persisted document shape for the camera ledger.
package models

// Document is the snapshot written to and read from disk.
type Document struct {
	Cameras []Camera `json:"cameras"`
}

// Camera is one lendable equipment item. Availability is never stored;
// it is derived from Reservations and the current date.
type Camera struct {
	ID           int           `json:"id"`
	Name         string        `json:"name"`
	Reservations []Reservation `json:"reservations"`
}

// Reservation is a closed interval [StartDate, EndDate] held by User.
// Dates are canonical "Y/M/D" strings, or empty when migration could not parse them.
type Reservation struct {
	User      string `json:"user"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Purpose   string `json:"purpose"`
}

// Clone returns a deep copy of c.
func (c Camera) Clone() Camera {
	out := c
	out.Reservations = make([]Reservation, len(c.Reservations))
	copy(out.Reservations, c.Reservations)
	return out
}
