package wallet

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/c8r-platform/c8r-api/internal/middleware"
	"github.com/c8r-platform/c8r-api/internal/pkg/response"
	"github.com/c8r-platform/c8r-api/internal/pkg/validator"
)

// Handler handles wallet HTTP requests
type Handler struct {
	service *Service
	feed    *Feed
}

// NewHandler creates wallet handler
func NewHandler(service *Service, feed *Feed) *Handler {
	return &Handler{service: service, feed: feed}
}

var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Connect handles POST /wallet/connect
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	session, err := h.service.Connect(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotAuthenticated) {
			response.Unauthorized(w, "Authentication required")
			return
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to connect wallet")
		response.InternalError(w)
		return
	}

	response.OK(w, SessionResponse{
		Connected:   true,
		Address:     session.Address,
		ConnectedAt: &session.ConnectedAt,
	})
}

// Disconnect handles DELETE /wallet/session
func (h *Handler) Disconnect(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	h.service.Disconnect(r.Context(), userID)
	response.OK(w, SessionResponse{Connected: false})
}

// GetSession handles GET /wallet/session
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	session, ok := h.service.Session(userID)
	if !ok {
		response.OK(w, SessionResponse{Connected: false})
		return
	}
	response.OK(w, SessionResponse{
		Connected:   true,
		Address:     session.Address,
		ConnectedAt: &session.ConnectedAt,
	})
}

// GetBalance handles GET /wallet/balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	balance, err := h.service.RefreshBalance(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotAuthenticated) {
			response.Unauthorized(w, "Authentication required")
			return
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to read balance")
		response.InternalError(w)
		return
	}

	response.OK(w, BalanceResponse{Balance: balance})
}

// GetTransactions handles GET /wallet/transactions
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	txs, err := h.service.Transactions(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotAuthenticated) {
			response.Unauthorized(w, "Authentication required")
			return
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list transactions")
		response.InternalError(w)
		return
	}

	if txs == nil {
		txs = []Transaction{}
	}
	response.OK(w, txs)
}

// GetPlugins handles GET /wallet/plugins
func (h *Handler) GetPlugins(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	plugins, err := h.service.Plugins(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotAuthenticated) {
			response.Unauthorized(w, "Authentication required")
			return
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list owned plugins")
		response.InternalError(w)
		return
	}

	if plugins == nil {
		plugins = []OwnedPlugin{}
	}
	response.OK(w, plugins)
}

// PurchasePlugin handles POST /wallet/plugins/{id}/purchase
func (h *Handler) PurchasePlugin(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	pluginID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid plugin ID")
		return
	}

	owned, err := h.service.PurchasePlugin(r.Context(), userID, pluginID)
	if err != nil {
		var insufficientErr *InsufficientBalanceError
		switch {
		case errors.Is(err, ErrNotAuthenticated):
			response.Unauthorized(w, "Authentication required")
		case errors.Is(err, ErrPluginNotFound):
			response.NotFound(w, "Plugin not found")
		case errors.Is(err, ErrAlreadyOwned):
			response.Conflict(w, "Plugin already owned")
		case errors.As(err, &insufficientErr):
			response.PaymentRequired(w, insufficientErr.Error())
		case errors.Is(err, ErrInsufficientBalance):
			response.PaymentRequired(w, "Insufficient balance")
		default:
			log.Error().Err(err).Str("user_id", userID.String()).Str("plugin_id", pluginID.String()).Msg("failed to purchase plugin")
			response.InternalError(w)
		}
		return
	}

	response.Created(w, owned)
}

// GetStakes handles GET /wallet/stakes
func (h *Handler) GetStakes(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	stakes, err := h.service.Stakes(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotAuthenticated) {
			response.Unauthorized(w, "Authentication required")
			return
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list stakes")
		response.InternalError(w)
		return
	}

	now := time.Now()
	resp := make([]StakeResponse, 0, len(stakes))
	for _, s := range stakes {
		resp = append(resp, newStakeResponse(s, now))
	}
	response.OK(w, resp)
}

// Stake handles POST /wallet/stakes
func (h *Handler) Stake(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req StakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	stake, err := h.service.StakeTokens(r.Context(), userID, req.Amount, req.LockDays)
	if err != nil {
		var insufficientErr *InsufficientBalanceError
		switch {
		case errors.Is(err, ErrNotAuthenticated):
			response.Unauthorized(w, "Authentication required")
		case errors.Is(err, ErrInvalidAmount):
			response.BadRequest(w, "Amount must be positive")
		case errors.Is(err, ErrInvalidLockPeriod):
			response.BadRequest(w, "Lock period is below the minimum")
		case errors.As(err, &insufficientErr):
			response.PaymentRequired(w, insufficientErr.Error())
		case errors.Is(err, ErrInsufficientBalance):
			response.PaymentRequired(w, "Insufficient balance")
		default:
			log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to stake tokens")
			response.InternalError(w)
		}
		return
	}

	response.Created(w, newStakeResponse(*stake, time.Now()))
}

// Unstake handles POST /wallet/stakes/{id}/unstake
func (h *Handler) Unstake(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	stakeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid stake ID")
		return
	}

	credited, err := h.service.UnstakeTokens(r.Context(), userID, stakeID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotAuthenticated):
			response.Unauthorized(w, "Authentication required")
		case errors.Is(err, ErrStakeNotFound):
			response.NotFound(w, "Stake not found")
		case errors.Is(err, ErrStakeLocked):
			response.Conflict(w, "Stake is still locked")
		default:
			log.Error().Err(err).Str("user_id", userID.String()).Str("stake_id", stakeID.String()).Msg("failed to unstake")
			response.InternalError(w)
		}
		return
	}

	response.OK(w, UnstakeResponse{Credited: credited})
}

// Claim handles POST /wallet/stakes/{id}/claim
func (h *Handler) Claim(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	stakeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid stake ID")
		return
	}

	claimed, err := h.service.ClaimRewards(r.Context(), userID, stakeID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotAuthenticated):
			response.Unauthorized(w, "Authentication required")
		case errors.Is(err, ErrStakeNotFound):
			response.NotFound(w, "Stake not found")
		default:
			log.Error().Err(err).Str("user_id", userID.String()).Str("stake_id", stakeID.String()).Msg("failed to claim rewards")
			response.InternalError(w)
		}
		return
	}

	response.OK(w, ClaimResponse{Claimed: claimed})
}

// Transfer handles POST /wallet/transfer
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := h.service.Transfer(r.Context(), userID, req.RecipientEmail, req.Amount); err != nil {
		var insufficientErr *InsufficientBalanceError
		switch {
		case errors.Is(err, ErrNotAuthenticated):
			response.Unauthorized(w, "Authentication required")
		case errors.Is(err, ErrInvalidAmount):
			response.BadRequest(w, "Amount must be positive")
		case errors.Is(err, ErrRecipientNotFound):
			response.NotFound(w, "Recipient not found")
		case errors.Is(err, ErrSelfTransfer):
			response.BadRequest(w, "Cannot transfer to yourself")
		case errors.As(err, &insufficientErr):
			response.PaymentRequired(w, insufficientErr.Error())
		case errors.Is(err, ErrInsufficientBalance):
			response.PaymentRequired(w, "Insufficient balance")
		default:
			log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to transfer tokens")
			response.InternalError(w)
		}
		return
	}

	balance, err := h.service.RefreshBalance(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to read balance after transfer")
		response.InternalError(w)
		return
	}
	response.OK(w, BalanceResponse{Balance: balance})
}

// Feed handles GET /wallet/feed, upgrading to a WebSocket that streams the
// user's recorded transactions as they happen.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	conn, err := feedUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	sub := &FeedConnection{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 64),
	}
	h.feed.Register(sub)

	go sub.WritePump()
	go sub.ReadPump(h.feed.Unregister)
}
