// Package migrate upgrades camera records from older on-disk shapes into the
// reservation-list model. Running it on already-canonical data is a no-op.
package migrate

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/starford/camledger/internal/calendar"
	"github.com/starford/camledger/internal/models"
)

// ErrNoCameras is returned when a document has no "cameras" key.
var ErrNoCameras = errors.New("migrate: document has no cameras")

// Document decodes raw snapshot bytes and migrates every camera.
// today resolves short dates found in legacy period strings.
func Document(data []byte, today calendar.Date) (models.Document, error) {
	var raw models.RawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.Document{}, fmt.Errorf("migrate: decode: %w", err)
	}
	if raw.Cameras == nil {
		return models.Document{}, ErrNoCameras
	}
	doc := models.Document{Cameras: make([]models.Camera, 0, len(*raw.Cameras))}
	for _, rc := range *raw.Cameras {
		doc.Cameras = append(doc.Cameras, Camera(rc, today))
	}
	return doc, nil
}

// Camera converts one raw record to canonical form. Unparseable legacy
// dates become empty strings rather than failing.
func Camera(raw models.RawCamera, today calendar.Date) models.Camera {
	legacy, canonical := raw.Classify()
	if legacy != nil {
		return fromLegacy(*legacy, today)
	}
	return fromCanonical(*canonical, today)
}

func fromLegacy(l models.LegacyCamera, today calendar.Date) models.Camera {
	cam := models.Camera{ID: l.ID, Name: l.Name, Reservations: []models.Reservation{}}
	if l.CheckedOut && l.User != "" {
		start, end := periodDates(l.Period, today)
		cam.Reservations = append(cam.Reservations, models.Reservation{
			User:      l.User,
			StartDate: start,
			EndDate:   end,
			Purpose:   l.Purpose,
		})
	}
	return cam
}

func fromCanonical(c models.CanonicalCamera, today calendar.Date) models.Camera {
	cam := models.Camera{ID: c.ID, Name: c.Name, Reservations: make([]models.Reservation, 0, len(c.Reservations))}
	for _, r := range c.Reservations {
		res := models.Reservation{User: r.User, Purpose: r.Purpose}
		if r.Period != nil && r.StartDate == nil {
			res.StartDate, res.EndDate = periodDates(*r.Period, today)
		} else {
			if r.StartDate != nil {
				res.StartDate = *r.StartDate
			}
			if r.EndDate != nil {
				res.EndDate = *r.EndDate
			}
		}
		cam.Reservations = append(cam.Reservations, res)
	}
	return cam
}

func periodDates(period string, today calendar.Date) (string, string) {
	startText, endText := calendar.SplitPeriod(period)
	return canonicalOrEmpty(startText, today), canonicalOrEmpty(endText, today)
}

func canonicalOrEmpty(text string, today calendar.Date) string {
	d, err := calendar.Parse(text, today)
	if err != nil {
		return ""
	}
	return d.Canonical()
}
