package avatar

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns avatar router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.Post("/", h.Mint)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)

	return r
}
