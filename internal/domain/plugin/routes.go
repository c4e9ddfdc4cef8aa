package plugin

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the public plugin catalog router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{id}", h.Get)

	return r
}
