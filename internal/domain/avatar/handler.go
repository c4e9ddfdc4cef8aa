package avatar

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/c8r-platform/c8r-api/internal/domain/wallet"
	"github.com/c8r-platform/c8r-api/internal/middleware"
	"github.com/c8r-platform/c8r-api/internal/pkg/response"
	"github.com/c8r-platform/c8r-api/internal/pkg/validator"
)

const maxUploadSize = 10 << 20 // 10 MB

// Handler handles avatar HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates avatar handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Mint handles POST /avatars, a multipart form with name, nft_type and the
// image file.
func (h *Handler) Mint(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		response.BadRequest(w, "Invalid multipart form")
		return
	}

	req := MintRequest{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Personality: r.FormValue("personality"),
		NFTType:     r.FormValue("nft_type"),
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		response.BadRequest(w, "Image file is required")
		return
	}
	defer file.Close()

	avatar, err := h.service.Mint(r.Context(), userID, &req, file)
	if err != nil {
		var insufficientErr *wallet.InsufficientBalanceError
		switch {
		case errors.Is(err, wallet.ErrNotAuthenticated):
			response.Unauthorized(w, "Authentication required")
		case errors.Is(err, ErrInvalidImage):
			response.BadRequest(w, "Could not decode image")
		case errors.As(err, &insufficientErr):
			response.PaymentRequired(w, insufficientErr.Error())
		case errors.Is(err, wallet.ErrInsufficientBalance):
			response.PaymentRequired(w, "Insufficient balance")
		default:
			log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to mint avatar")
			response.InternalError(w)
		}
		return
	}

	response.Created(w, avatar)
}

// List handles GET /avatars
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	avatars, err := h.service.List(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list avatars")
		response.InternalError(w)
		return
	}

	if avatars == nil {
		avatars = []*Avatar{}
	}
	response.OK(w, avatars)
}

// Get handles GET /avatars/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	avatarID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid avatar ID")
		return
	}

	avatar, err := h.service.Get(r.Context(), userID, avatarID)
	if err != nil {
		switch {
		case errors.Is(err, ErrAvatarNotFound):
			response.NotFound(w, "Avatar not found")
		default:
			log.Error().Err(err).Str("user_id", userID.String()).Str("avatar_id", avatarID.String()).Msg("failed to get avatar")
			response.InternalError(w)
		}
		return
	}

	response.OK(w, avatar)
}
