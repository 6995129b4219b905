package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/camledger/internal/lending"
)

// NewRouter creates a chi router with all API routes mounted.
// saver backs POST /save and may be nil.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc *lending.Service, saver Flusher, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, saver)

	r := chi.NewRouter()

	r.Get("/data", h.GetData)

	r.Route("/cameras", func(r chi.Router) {
		r.Post("/", h.AddCamera)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetCamera)
			r.Patch("/", h.RenameCamera)
			r.Delete("/", h.DeleteCamera)
			r.Post("/reservations", h.Reserve)
			r.Delete("/reservations", h.CancelReservation)
			r.Post("/return", h.ReturnCamera)
		})
	})

	r.Get("/history", h.History)
	r.Post("/save", h.Save)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
