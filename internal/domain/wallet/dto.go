package wallet

import "time"

// StakeRequest creates a new stake position
type StakeRequest struct {
	Amount   int64 `json:"amount" validate:"required,gt=0"`
	LockDays int   `json:"lock_days" validate:"omitempty,gte=1"`
}

// TransferRequest sends tokens to another account
type TransferRequest struct {
	RecipientEmail string `json:"recipient_email" validate:"required,email"`
	Amount         int64  `json:"amount" validate:"required,gt=0"`
}

// BalanceResponse is the authoritative balance snapshot
type BalanceResponse struct {
	Balance int64 `json:"balance"`
}

// SessionResponse is the simulated wallet connection state
type SessionResponse struct {
	Connected   bool       `json:"connected"`
	Address     string     `json:"address,omitempty"`
	ConnectedAt *time.Time `json:"connected_at,omitempty"`
}

// StakeResponse is a stake position with its computed reward fields
type StakeResponse struct {
	Stake
	EarnedRewards  int64     `json:"earned_rewards"`
	AccruedRewards int64     `json:"accrued_rewards"`
	UnlockDate     time.Time `json:"unlock_date"`
	Unlocked       bool      `json:"unlocked"`
}

// ClaimResponse reports a reward payout
type ClaimResponse struct {
	Claimed int64 `json:"claimed"`
}

// UnstakeResponse reports the total credited back on unstake
type UnstakeResponse struct {
	Credited int64 `json:"credited"`
}

func newStakeResponse(s Stake, now time.Time) StakeResponse {
	return StakeResponse{
		Stake:          s,
		EarnedRewards:  s.EarnedAt(now),
		AccruedRewards: s.AccruedAt(now),
		UnlockDate:     s.UnlockDate(),
		Unlocked:       s.Unlocked(now),
	}
}
