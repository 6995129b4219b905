package api

import (
	"github.com/starford/camledger/internal/history"
	"github.com/starford/camledger/internal/ledger"
	"github.com/starford/camledger/internal/models"
)

// CameraNameRequest is the request body for adding or renaming a camera.
type CameraNameRequest struct {
	Name string `json:"name" example:"Canon EOS R5" validate:"required"`
}

// ReserveRequest is the request body for creating a reservation.
// Dates accept "M/D" (year inferred) or "Y/M/D".
type ReserveRequest struct {
	User      string `json:"user" example:"Alice"`
	StartDate string `json:"start_date" example:"1/15" validate:"required"`
	EndDate   string `json:"end_date" example:"1/20" validate:"required"`
	Purpose   string `json:"purpose" example:"Product shoot"`
}

// Snapshot is the full derived view of the collection (aliased from the domain layer).
type Snapshot = ledger.Snapshot

// CameraView is one camera with derived status (aliased from the domain layer).
type CameraView = ledger.CameraView

// AddCameraResponse is returned after a camera is created.
type AddCameraResponse struct {
	ID int `json:"id" example:"6" validate:"required"`
}

// RenameCameraResponse reports whether a camera was renamed.
type RenameCameraResponse struct {
	Renamed bool `json:"renamed" validate:"required"`
}

// ReserveResponse carries the stored reservation and the refreshed snapshot.
type ReserveResponse struct {
	Reservation models.Reservation `json:"reservation" validate:"required"`
	Data        Snapshot           `json:"data" validate:"required"`
}

// ReturnResponse reports the returned reservation, if any.
type ReturnResponse struct {
	Returned    bool                `json:"returned" validate:"required"`
	Reservation *models.Reservation `json:"reservation,omitempty"`
	Data        Snapshot            `json:"data" validate:"required"`
}

// CancelResponse reports how many reservations were removed.
type CancelResponse struct {
	Removed int      `json:"removed" example:"1" validate:"required"`
	Data    Snapshot `json:"data" validate:"required"`
}

// HistoryResponse wraps journal entries, newest first.
type HistoryResponse struct {
	Events []history.Event `json:"events" validate:"required"`
}

// SaveResponse is returned after a manual save.
type SaveResponse struct {
	Status string `json:"status" example:"saved" validate:"required"`
	Digest string `json:"digest,omitempty" example:"9f86d081884c7d65..."`
}
