package models

// RawCamera is a camera record exactly as found on disk. Pointer fields
// distinguish an absent key from an empty value.
type RawCamera struct {
	ID           int               `json:"id"`
	Name         string            `json:"name"`
	Reservations *[]RawReservation `json:"reservations,omitempty"`

	// Single-loan fields from before reservation lists existed.
	Status  *string `json:"status,omitempty"`
	User    *string `json:"user,omitempty"`
	Period  *string `json:"period,omitempty"`
	Purpose *string `json:"purpose,omitempty"`
}

// RawReservation is a reservation as found on disk. Old files carry a
// "period" string instead of start/end dates, and sometimes an is_current flag.
type RawReservation struct {
	User      string  `json:"user"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	Purpose   string  `json:"purpose"`
	Period    *string `json:"period,omitempty"`
	IsCurrent *bool   `json:"is_current,omitempty"`
}

// RawDocument is the on-disk document before migration. A nil Cameras
// means the key was missing.
type RawDocument struct {
	Cameras *[]RawCamera `json:"cameras"`
}

// LegacyCamera is a record without a reservation list. When CheckedOut is
// set it carries one active loan described by User, Period and Purpose.
type LegacyCamera struct {
	ID         int
	Name       string
	CheckedOut bool
	User       string
	Period     string
	Purpose    string
}

// CanonicalCamera is a record that already has a reservation list, though
// individual reservations may still use the period form.
type CanonicalCamera struct {
	ID           int
	Name         string
	Reservations []RawReservation
}

// LegacyCheckedOut lists the status values old files used for an active loan.
var LegacyCheckedOut = []string{"checked out", "貸出中"}

// Classify splits a raw record into exactly one of the two variants.
func (r RawCamera) Classify() (*LegacyCamera, *CanonicalCamera) {
	if r.Reservations != nil {
		return nil, &CanonicalCamera{ID: r.ID, Name: r.Name, Reservations: *r.Reservations}
	}
	legacy := &LegacyCamera{ID: r.ID, Name: r.Name}
	if r.Status != nil {
		for _, s := range LegacyCheckedOut {
			if *r.Status == s {
				legacy.CheckedOut = true
			}
		}
	}
	legacy.User = deref(r.User)
	legacy.Period = deref(r.Period)
	legacy.Purpose = deref(r.Purpose)
	return legacy, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
