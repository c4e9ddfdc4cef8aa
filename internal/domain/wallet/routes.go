package wallet

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns wallet router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// All routes require authentication
	r.Use(authMiddleware)

	// Session
	r.Post("/connect", h.Connect)
	r.Get("/session", h.GetSession)
	r.Delete("/session", h.Disconnect)

	// Balance and history
	r.Get("/balance", h.GetBalance)
	r.Get("/transactions", h.GetTransactions)
	r.Post("/transfer", h.Transfer)

	// Plugin entitlements
	r.Get("/plugins", h.GetPlugins)
	r.Post("/plugins/{id}/purchase", h.PurchasePlugin)

	// Staking
	r.Get("/stakes", h.GetStakes)
	r.Post("/stakes", h.Stake)
	r.Post("/stakes/{id}/unstake", h.Unstake)
	r.Post("/stakes/{id}/claim", h.Claim)

	// Live activity feed
	r.Get("/feed", h.Feed)

	return r
}
