package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/starford/camledger/internal/apperr"
	"github.com/starford/camledger/internal/ledger"
	"github.com/starford/camledger/internal/lending"
)

// Flusher performs a synchronous snapshot save.
type Flusher interface {
	Flush(ctx context.Context) error
	LastDigest() string
}

// Handler holds API route handlers.
type Handler struct {
	svc   *lending.Service
	saver Flusher
}

// NewHandler creates a new Handler. saver may be nil, in which case
// POST /save answers 503.
func NewHandler(svc *lending.Service, saver Flusher) *Handler {
	return &Handler{svc: svc, saver: saver}
}

// cameraID parses the {id} URL parameter.
func cameraID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid camera id"))
		return 0, false
	}
	return id, true
}

// writeError maps ledger errors onto HTTP statuses.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case apperr.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrUnknownCamera):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrCheckedOut):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// GetData handles GET /api/data.
//
//	@Summary		Full snapshot of every camera with derived status
//	@Tags			cameras
//	@Produce		json
//	@Success		200	{object}	Snapshot
//	@Router			/data [get]
func (h *Handler) GetData(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Snapshot())
}

// GetCamera handles GET /api/cameras/{id}.
//
//	@Summary		Get one camera
//	@Tags			cameras
//	@Produce		json
//	@Param			id	path		int	true	"Camera id"
//	@Success		200	{object}	CameraView
//	@Failure		404	{object}	errResponse
//	@Router			/cameras/{id} [get]
func (h *Handler) GetCamera(w http.ResponseWriter, r *http.Request) {
	id, ok := cameraID(w, r)
	if !ok {
		return
	}
	view, err := h.svc.Camera(id)
	if err != nil {
		writeError(w, "get camera", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// AddCamera handles POST /api/cameras.
//
//	@Summary		Add a camera
//	@Tags			cameras
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CameraNameRequest	true	"Camera name"
//	@Success		201		{object}	AddCameraResponse
//	@Failure		400		{object}	errResponse
//	@Router			/cameras [post]
func (h *Handler) AddCamera(w http.ResponseWriter, r *http.Request) {
	var req CameraNameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	id, err := h.svc.AddCamera(r.Context(), req.Name)
	if err != nil {
		writeError(w, "add camera", err)
		return
	}
	writeJSON(w, http.StatusCreated, AddCameraResponse{ID: id})
}

// RenameCamera handles PATCH /api/cameras/{id}.
//
//	@Summary		Rename a camera
//	@Description	Unknown ids are accepted and change nothing.
//	@Tags			cameras
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int					true	"Camera id"
//	@Param			body	body		CameraNameRequest	true	"New name"
//	@Success		200		{object}	RenameCameraResponse
//	@Failure		400		{object}	errResponse
//	@Router			/cameras/{id} [patch]
func (h *Handler) RenameCamera(w http.ResponseWriter, r *http.Request) {
	id, ok := cameraID(w, r)
	if !ok {
		return
	}
	var req CameraNameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	renamed, err := h.svc.RenameCamera(r.Context(), id, req.Name)
	if err != nil {
		writeError(w, "rename camera", err)
		return
	}
	writeJSON(w, http.StatusOK, RenameCameraResponse{Renamed: renamed})
}

// DeleteCamera handles DELETE /api/cameras/{id}.
//
//	@Summary		Delete a camera that is not checked out
//	@Tags			cameras
//	@Param			id	path	int	true	"Camera id"
//	@Success		204
//	@Failure		409	{object}	errResponse
//	@Router			/cameras/{id} [delete]
func (h *Handler) DeleteCamera(w http.ResponseWriter, r *http.Request) {
	id, ok := cameraID(w, r)
	if !ok {
		return
	}
	if _, err := h.svc.DeleteCamera(r.Context(), id); err != nil {
		writeError(w, "delete camera", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reserve handles POST /api/cameras/{id}/reservations.
//
//	@Summary		Reserve a camera for a closed date interval
//	@Tags			reservations
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int				true	"Camera id"
//	@Param			body	body		ReserveRequest	true	"Reservation"
//	@Success		201		{object}	ReserveResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/cameras/{id}/reservations [post]
func (h *Handler) Reserve(w http.ResponseWriter, r *http.Request) {
	id, ok := cameraID(w, r)
	if !ok {
		return
	}
	var req ReserveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	res, err := h.svc.Reserve(r.Context(), id, ledger.ReserveRequest{
		User:    req.User,
		Start:   req.StartDate,
		End:     req.EndDate,
		Purpose: req.Purpose,
	})
	if err != nil {
		writeError(w, "reserve", err)
		return
	}
	writeJSON(w, http.StatusCreated, ReserveResponse{Reservation: res, Data: h.svc.Snapshot()})
}

// CancelReservation handles DELETE /api/cameras/{id}/reservations.
//
//	@Summary		Cancel reservations stored with exactly these dates
//	@Tags			reservations
//	@Produce		json
//	@Param			id		path		int		true	"Camera id"
//	@Param			start	query		string	true	"Stored start date (Y/M/D)"
//	@Param			end		query		string	true	"Stored end date (Y/M/D)"
//	@Success		200		{object}	CancelResponse
//	@Failure		400		{object}	errResponse
//	@Router			/cameras/{id}/reservations [delete]
func (h *Handler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := cameraID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	if !q.Has("start") || !q.Has("end") {
		writeJSON(w, http.StatusBadRequest, errorBody("start and end are required"))
		return
	}
	removed := h.svc.Cancel(r.Context(), id, q.Get("start"), q.Get("end"))
	writeJSON(w, http.StatusOK, CancelResponse{Removed: removed, Data: h.svc.Snapshot()})
}

// ReturnCamera handles POST /api/cameras/{id}/return.
//
//	@Summary		Return the camera's active loan
//	@Tags			reservations
//	@Produce		json
//	@Param			id	path		int	true	"Camera id"
//	@Success		200	{object}	ReturnResponse
//	@Router			/cameras/{id}/return [post]
func (h *Handler) ReturnCamera(w http.ResponseWriter, r *http.Request) {
	id, ok := cameraID(w, r)
	if !ok {
		return
	}
	resp := ReturnResponse{}
	if res, returned := h.svc.Return(r.Context(), id); returned {
		resp.Returned = true
		resp.Reservation = &res
	}
	resp.Data = h.svc.Snapshot()
	writeJSON(w, http.StatusOK, resp)
}

// History handles GET /api/history.
//
//	@Summary		Lending journal, newest first
//	@Tags			history
//	@Produce		json
//	@Param			camera_id	query		int	false	"Only this camera"
//	@Param			limit		query		int	false	"Maximum entries (default 50)"
//	@Success		200			{object}	HistoryResponse
//	@Router			/history [get]
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	camID, _ := strconv.Atoi(q.Get("camera_id"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	events, err := h.svc.History(r.Context(), camID, limit)
	if err != nil {
		writeError(w, "history", err)
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Events: events})
}

// Save handles POST /api/save.
//
//	@Summary		Write the snapshot file now
//	@Tags			admin
//	@Produce		json
//	@Success		200	{object}	SaveResponse
//	@Failure		503	{object}	errResponse
//	@Router			/save [post]
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	if h.saver == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("saving is not configured"))
		return
	}
	if err := h.saver.Flush(r.Context()); err != nil {
		writeError(w, "save", err)
		return
	}
	writeJSON(w, http.StatusOK, SaveResponse{Status: "saved", Digest: h.saver.LastDigest()})
}
