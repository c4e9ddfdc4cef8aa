package wallet

import (
	"time"

	"github.com/google/uuid"
)

// Kind classifies a balance-affecting event
type Kind string

const (
	KindMint     Kind = "mint"
	KindPurchase Kind = "purchase"
	KindStake    Kind = "stake"
	KindUnstake  Kind = "unstake"
	KindClaim    Kind = "claim"
	KindReward   Kind = "reward"
	KindSignup   Kind = "signup"
	KindTransfer Kind = "transfer"
)

// Transaction is an immutable record of a balance-affecting event. Ordering is
// display-only: the log is prepended on write and sorted newest-first on read.
type Transaction struct {
	ID          uuid.UUID `json:"id"`
	Kind        Kind      `json:"kind"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// OwnedPlugin is a purchased plugin entitlement. Identity is the catalog
// plugin id; a plugin can appear at most once per user.
type OwnedPlugin struct {
	PluginID    uuid.UUID `json:"plugin_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Icon        string    `json:"icon"`
	Type        string    `json:"type"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// Stake is a locked token position earning time-based yield. Rewards follow an
// accrual-ledger model: EarnedAt is monotonic in time, and ClaimedRewards
// tracks how much of it has already been paid out, so the displayed and the
// claimable amount can never diverge.
type Stake struct {
	ID             uuid.UUID `json:"id"`
	Amount         int64     `json:"amount"`
	StartDate      time.Time `json:"start_date"`
	LockDays       int       `json:"lock_days"`
	APYBasisPoints int64     `json:"apy_basis_points"`
	ClaimedRewards int64     `json:"claimed_rewards"`
}

// EarnedAt returns the total reward earned since StartDate, in whole tokens:
// amount * apy * days / 365, with APY expressed in basis points.
func (s *Stake) EarnedAt(now time.Time) int64 {
	days := int64(now.Sub(s.StartDate) / (24 * time.Hour))
	if days <= 0 {
		return 0
	}
	return s.Amount * s.APYBasisPoints * days / (365 * 10000)
}

// AccruedAt returns the reward earned but not yet claimed
func (s *Stake) AccruedAt(now time.Time) int64 {
	return s.EarnedAt(now) - s.ClaimedRewards
}

// UnlockDate returns the instant the principal becomes withdrawable
func (s *Stake) UnlockDate() time.Time {
	return s.StartDate.AddDate(0, 0, s.LockDays)
}

// Unlocked reports whether the lock period has elapsed
func (s *Stake) Unlocked(now time.Time) bool {
	return !now.Before(s.UnlockDate())
}

// Session is the in-memory wallet connection state for a user. Connecting only
// simulates a wallet session; it has no balance effect.
type Session struct {
	Address     string    `json:"address"`
	ConnectedAt time.Time `json:"connected_at"`
}
