// Package ledger owns the in-memory camera collection. Reservations always
// carry valid dates and never overlap on the same camera.
//
// All operations are synchronous and never perform I/O. Writers take the
// exclusive lock; readers share the read lock, so a reader never observes a
// half-applied mutation.
package ledger

import (
	"strings"
	"sync"

	"github.com/starford/camledger/internal/apperr"
	"github.com/starford/camledger/internal/availability"
	"github.com/starford/camledger/internal/calendar"
	"github.com/starford/camledger/internal/models"
)

// Ledger is the aggregate root for cameras and their reservations.
type Ledger struct {
	mu      sync.RWMutex
	cameras []models.Camera
}

// CameraView is a camera with its derived status and visible reservations.
type CameraView struct {
	ID           int                            `json:"id"`
	Name         string                         `json:"name"`
	Status       availability.Status            `json:"status"`
	Active       *models.Reservation            `json:"active,omitempty"`
	Reservations []availability.ReservationView `json:"reservations"`
}

// Snapshot is the full derived view returned by ListAll.
type Snapshot struct {
	Cameras   []CameraView `json:"cameras"`
	Available int          `json:"available"`
	Total     int          `json:"total"`
	Busy      int          `json:"busy"`
}

// ReserveRequest carries the raw user input for a reservation.
type ReserveRequest struct {
	User    string
	Start   string
	End     string
	Purpose string
}

// New takes a deep copy of cameras as the initial state.
func New(cameras []models.Camera) *Ledger {
	l := &Ledger{cameras: make([]models.Camera, 0, len(cameras))}
	for _, c := range cameras {
		l.cameras = append(l.cameras, c.Clone())
	}
	return l
}

// ListAll computes status, visible reservations and counts for every camera.
func (l *Ledger) ListAll(today calendar.Date) Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snap := Snapshot{Cameras: make([]CameraView, 0, len(l.cameras))}
	for _, c := range l.cameras {
		v := view(c, today)
		if v.Status == availability.StatusAvailable {
			snap.Available++
		}
		snap.Cameras = append(snap.Cameras, v)
	}
	snap.Total = len(snap.Cameras)
	snap.Busy = snap.Total - snap.Available
	return snap
}

// Camera returns the view of a single camera.
func (l *Ledger) Camera(id int, today calendar.Date) (CameraView, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	c := l.findUnsafe(id)
	if c == nil {
		return CameraView{}, apperr.ErrUnknownCamera
	}
	return view(*c, today), nil
}

// Document returns a deep copy of the state for persistence.
func (l *Ledger) Document() models.Document {
	l.mu.RLock()
	defer l.mu.RUnlock()

	doc := models.Document{Cameras: make([]models.Camera, 0, len(l.cameras))}
	for _, c := range l.cameras {
		doc.Cameras = append(doc.Cameras, c.Clone())
	}
	return doc
}

// Reserve validates req and appends it to the camera. A failed validation
// leaves the ledger unchanged.
func (l *Ledger) Reserve(id int, req ReserveRequest, today calendar.Date) (models.Reservation, error) {
	start, err := calendar.Parse(req.Start, today)
	if err != nil {
		return models.Reservation{}, apperr.ErrInvalidDateFormat
	}
	end, err := calendar.Parse(req.End, today)
	if err != nil {
		return models.Reservation{}, apperr.ErrInvalidDateFormat
	}
	if start.Before(today) {
		return models.Reservation{}, apperr.ErrPastStartDate
	}
	if end.Before(start) {
		return models.Reservation{}, apperr.ErrInvalidRange
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	c := l.findUnsafe(id)
	if c == nil {
		return models.Reservation{}, apperr.ErrUnknownCamera
	}
	for _, existing := range c.Reservations {
		s, e, ok := availability.Interval(existing, today)
		if ok && calendar.Overlaps(start, end, s, e) {
			return models.Reservation{}, &apperr.OverlapError{Start: s.Display(), End: e.Display()}
		}
	}

	r := models.Reservation{
		User:      req.User,
		StartDate: start.Canonical(),
		EndDate:   end.Canonical(),
		Purpose:   req.Purpose,
	}
	c.Reservations = append(c.Reservations, r)
	return r, nil
}

// ReturnActive removes the reservation containing today, if any. Future and
// ended reservations are never touched. Unknown ids are a no-op.
func (l *Ledger) ReturnActive(id int, today calendar.Date) (models.Reservation, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c := l.findUnsafe(id)
	if c == nil {
		return models.Reservation{}, false
	}
	for i, r := range c.Reservations {
		if availability.IsActive(r, today) {
			c.Reservations = append(c.Reservations[:i:i], c.Reservations[i+1:]...)
			return r, true
		}
	}
	return models.Reservation{}, false
}

// Cancel removes every reservation whose stored dates equal start and end
// byte for byte. It returns the removed reservations.
func (l *Ledger) Cancel(id int, start, end string) []models.Reservation {
	l.mu.Lock()
	defer l.mu.Unlock()

	c := l.findUnsafe(id)
	if c == nil {
		return nil
	}
	var removed []models.Reservation
	kept := make([]models.Reservation, 0, len(c.Reservations))
	for _, r := range c.Reservations {
		if r.StartDate == start && r.EndDate == end {
			removed = append(removed, r)
			continue
		}
		kept = append(kept, r)
	}
	if len(removed) > 0 {
		c.Reservations = kept
	}
	return removed
}

// AddCamera appends a camera with id max(existing)+1.
func (l *Ledger) AddCamera(name string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, apperr.ErrBlankName
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	id := 0
	for _, c := range l.cameras {
		if c.ID > id {
			id = c.ID
		}
	}
	id++
	l.cameras = append(l.cameras, models.Camera{ID: id, Name: name, Reservations: []models.Reservation{}})
	return id, nil
}

// DeleteCamera removes the camera unless it is checked out today, in which
// case it is retained and ErrCheckedOut is returned. Unknown ids are a no-op.
func (l *Ledger) DeleteCamera(id int, today calendar.Date) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, c := range l.cameras {
		if c.ID != id {
			continue
		}
		if status, _ := availability.CameraStatus(c, today); status == availability.StatusCheckedOut {
			return false, apperr.ErrCheckedOut
		}
		l.cameras = append(l.cameras[:i:i], l.cameras[i+1:]...)
		return true, nil
	}
	return false, nil
}

// RenameCamera replaces the name in place. Unknown ids are a no-op.
func (l *Ledger) RenameCamera(id int, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, apperr.ErrBlankName
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	c := l.findUnsafe(id)
	if c == nil {
		return false, nil
	}
	c.Name = name
	return true, nil
}

// findUnsafe must be called with l.mu held.
func (l *Ledger) findUnsafe(id int) *models.Camera {
	for i := range l.cameras {
		if l.cameras[i].ID == id {
			return &l.cameras[i]
		}
	}
	return nil
}

func view(c models.Camera, today calendar.Date) CameraView {
	status, active := availability.CameraStatus(c, today)
	return CameraView{
		ID:           c.ID,
		Name:         c.Name,
		Status:       status,
		Active:       active,
		Reservations: availability.Visible(c, today),
	}
}
