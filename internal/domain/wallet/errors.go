package wallet

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrPluginNotFound      = errors.New("plugin not found")
	ErrAlreadyOwned        = errors.New("plugin already owned")
	ErrStakeNotFound       = errors.New("stake not found")
	ErrStakeLocked         = errors.New("stake is still locked")
	ErrRecipientNotFound   = errors.New("recipient not found")
	ErrSelfTransfer        = errors.New("cannot transfer to yourself")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidLockPeriod   = errors.New("lock period is below the minimum")
)

// InsufficientBalanceError carries the shortfall so callers can tell the user
// exactly how many tokens they are missing.
type InsufficientBalanceError struct {
	Required int64
	Balance  int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: need %d $C8R, have %d (short by %d)",
		e.Required, e.Balance, e.Required-e.Balance)
}

// Is makes errors.Is(err, ErrInsufficientBalance) match
func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}
