package plugin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/c8r-platform/c8r-api/internal/pkg/response"
)

// Handler handles plugin catalog HTTP requests
type Handler struct {
	repo Repository
}

// NewHandler creates plugin handler
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /plugins
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	plugins, err := h.repo.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list plugin catalog")
		response.InternalError(w)
		return
	}

	if plugins == nil {
		plugins = []*Plugin{}
	}
	response.OK(w, plugins)
}

// Get handles GET /plugins/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid plugin ID")
		return
	}

	p, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("plugin_id", id.String()).Msg("failed to get plugin")
		response.InternalError(w)
		return
	}
	if p == nil {
		response.NotFound(w, "Plugin not found")
		return
	}

	response.OK(w, p)
}
