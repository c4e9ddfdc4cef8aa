package wallet

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/c8r-platform/c8r-api/internal/domain/plugin"
	"github.com/c8r-platform/c8r-api/internal/domain/user"
)

// Config holds the token economy knobs for the ledger
type Config struct {
	APYBasisPoints int64
	MinLockDays    int
}

// Publisher pushes recorded transactions to live subscribers
type Publisher interface {
	Publish(userID uuid.UUID, tx Transaction)
}

// Service is the ledger facade: the single entry point for every
// balance-affecting operation. It is the only writer to the authoritative
// balance and to the per-user caches, so UI code never touches either
// directly.
type Service struct {
	users   user.Repository
	plugins plugin.Repository
	txLog   TransactionLog
	owned   PluginSet
	stakes  StakeRegistry
	feed    Publisher // nil disables the live feed
	cfg     Config

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	now func() time.Time
}

// NewService creates the ledger facade
func NewService(users user.Repository, plugins plugin.Repository, txLog TransactionLog, owned PluginSet, stakes StakeRegistry, feed Publisher, cfg Config) *Service {
	return &Service{
		users:    users,
		plugins:  plugins,
		txLog:    txLog,
		owned:    owned,
		stakes:   stakes,
		feed:     feed,
		cfg:      cfg,
		sessions: make(map[uuid.UUID]*Session),
		now:      time.Now,
	}
}

// Connect simulates establishing a wallet session: a pseudo-random address is
// generated and the user is marked connected. No balance effect.
func (s *Service) Connect(ctx context.Context, userID uuid.UUID) (*Session, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}

	addr, err := mockAddress()
	if err != nil {
		return nil, fmt.Errorf("generate wallet address: %w", err)
	}

	session := &Session{Address: addr, ConnectedAt: s.now()}

	s.mu.Lock()
	s.sessions[userID] = session
	s.mu.Unlock()

	log.Info().Str("user_id", userID.String()).Str("address", addr).Msg("Wallet connected")

	copied := *session
	return &copied, nil
}

// Disconnect clears the in-memory session. Balance and history are untouched.
func (s *Service) Disconnect(ctx context.Context, userID uuid.UUID) {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
}

// Session returns the current wallet session, if connected
func (s *Service) Session(userID uuid.UUID) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[userID]
	if !ok {
		return nil, false
	}
	copied := *session
	return &copied, true
}

// RefreshBalance re-reads the authoritative balance. Last read wins; there is
// no reconciliation with in-flight operations.
func (s *Service) RefreshBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, ErrNotAuthenticated
	}
	return s.users.GetBalance(ctx, userID)
}

// Transactions returns the user's transaction history, newest first
func (s *Service) Transactions(ctx context.Context, userID uuid.UUID) ([]Transaction, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	txs, err := s.txLog.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Timestamp.After(txs[j].Timestamp)
	})
	return txs, nil
}

// RecordTransaction appends a transaction to the user's history and notifies
// live subscribers. Kind and amount are not validated here; the facade's
// operations construct them.
func (s *Service) RecordTransaction(ctx context.Context, userID uuid.UUID, kind Kind, amount int64, description string) (*Transaction, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}

	tx := Transaction{
		ID:          uuid.New(),
		Kind:        kind,
		Amount:      amount,
		Description: description,
		Timestamp:   s.now(),
	}

	existing, err := s.txLog.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	updated := append([]Transaction{tx}, existing...)
	if err := s.txLog.Save(ctx, userID, updated); err != nil {
		return nil, err
	}

	if s.feed != nil {
		s.feed.Publish(userID, tx)
	}

	return &tx, nil
}

// RecordSignupBonus records the welcome bonus transaction for a new account.
// The balance itself is seeded on the user row at creation.
func (s *Service) RecordSignupBonus(ctx context.Context, userID uuid.UUID, amount int64) error {
	_, err := s.RecordTransaction(ctx, userID, KindSignup,
		amount, fmt.Sprintf("Welcome bonus: %d $C8R", amount))
	return err
}

// MintCharge debits the mint cost and records the mint transaction. Used by
// the avatar service so minting goes through the facade like everything else.
func (s *Service) MintCharge(ctx context.Context, userID uuid.UUID, amount int64, description string) error {
	if userID == uuid.Nil {
		return ErrNotAuthenticated
	}
	if err := s.debit(ctx, userID, amount); err != nil {
		return err
	}
	if _, err := s.RecordTransaction(ctx, userID, KindMint, amount, description); err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to record mint transaction")
	}
	return nil
}

// Plugins returns the user's purchased plugin entitlements
func (s *Service) Plugins(ctx context.Context, userID uuid.UUID) ([]OwnedPlugin, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	return s.owned.List(ctx, userID)
}

// PurchasePlugin buys a catalog plugin: the price is debited atomically, the
// entitlement appended, and a purchase transaction recorded. Plugin identity
// is the catalog id; owning it already fails the purchase rather than
// duplicating the entitlement.
func (s *Service) PurchasePlugin(ctx context.Context, userID uuid.UUID, pluginID uuid.UUID) (*OwnedPlugin, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}

	p, err := s.plugins.GetByID(ctx, pluginID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPluginNotFound
	}

	existing, err := s.owned.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, e := range existing {
		if e.PluginID == pluginID {
			return nil, ErrAlreadyOwned
		}
	}

	if err := s.debit(ctx, userID, p.Price); err != nil {
		return nil, err
	}

	entry := OwnedPlugin{
		PluginID:    p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Icon:        p.Icon,
		Type:        p.Type,
		PurchasedAt: s.now(),
	}

	if err := s.owned.Save(ctx, userID, append(existing, entry)); err != nil {
		// The debit already landed; give the tokens back rather than leave
		// the user charged for an entitlement that was never stored.
		if crErr := s.users.Credit(ctx, userID, p.Price); crErr != nil {
			log.Error().Err(crErr).Str("user_id", userID.String()).Msg("Failed to refund after plugin save error")
		}
		return nil, err
	}

	if _, err := s.RecordTransaction(ctx, userID, KindPurchase, p.Price,
		fmt.Sprintf("Purchased %s", p.Name)); err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to record purchase transaction")
	}

	return &entry, nil
}

// Stakes returns the user's stake positions
func (s *Service) Stakes(ctx context.Context, userID uuid.UUID) ([]Stake, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	return s.stakes.List(ctx, userID)
}

// StakeTokens locks amount for at least lockDays days at the configured APY
func (s *Service) StakeTokens(ctx context.Context, userID uuid.UUID, amount int64, lockDays int) (*Stake, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if lockDays == 0 {
		lockDays = s.cfg.MinLockDays
	}
	if lockDays < s.cfg.MinLockDays {
		return nil, ErrInvalidLockPeriod
	}

	existing, err := s.stakes.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.debit(ctx, userID, amount); err != nil {
		return nil, err
	}

	stake := Stake{
		ID:             uuid.New(),
		Amount:         amount,
		StartDate:      s.now(),
		LockDays:       lockDays,
		APYBasisPoints: s.cfg.APYBasisPoints,
	}

	if err := s.stakes.Save(ctx, userID, append(existing, stake)); err != nil {
		if crErr := s.users.Credit(ctx, userID, amount); crErr != nil {
			log.Error().Err(crErr).Str("user_id", userID.String()).Msg("Failed to refund after stake save error")
		}
		return nil, err
	}

	if _, err := s.RecordTransaction(ctx, userID, KindStake, amount,
		fmt.Sprintf("Staked %d tokens for %d days", amount, lockDays)); err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to record stake transaction")
	}

	return &stake, nil
}

// UnstakeTokens removes a stake after its lock period: any unclaimed reward is
// settled first, then the principal is credited back exactly once.
func (s *Service) UnstakeTokens(ctx context.Context, userID uuid.UUID, stakeID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, ErrNotAuthenticated
	}

	existing, err := s.stakes.List(ctx, userID)
	if err != nil {
		return 0, err
	}

	idx := -1
	for i := range existing {
		if existing[i].ID == stakeID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return 0, ErrStakeNotFound
	}

	stake := existing[idx]
	now := s.now()
	if !stake.Unlocked(now) {
		return 0, ErrStakeLocked
	}

	accrued := stake.AccruedAt(now)

	remaining := append(existing[:idx:idx], existing[idx+1:]...)
	if err := s.stakes.Save(ctx, userID, remaining); err != nil {
		return 0, err
	}

	credited := stake.Amount
	if err := s.users.Credit(ctx, userID, stake.Amount); err != nil {
		return 0, err
	}
	if _, err := s.RecordTransaction(ctx, userID, KindUnstake, stake.Amount,
		fmt.Sprintf("Unstaked %d tokens", stake.Amount)); err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to record unstake transaction")
	}

	if accrued > 0 {
		if err := s.users.Credit(ctx, userID, accrued); err != nil {
			return credited, err
		}
		credited += accrued
		if _, err := s.RecordTransaction(ctx, userID, KindClaim, accrued,
			fmt.Sprintf("Claimed %d $C8R staking rewards", accrued)); err != nil {
			log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to record claim transaction")
		}
	}

	return credited, nil
}

// ClaimRewards pays out the reward accrued since the last claim. Claiming
// again without elapsed time yields zero; the principal stays locked until
// the lock period ends.
func (s *Service) ClaimRewards(ctx context.Context, userID uuid.UUID, stakeID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, ErrNotAuthenticated
	}

	existing, err := s.stakes.List(ctx, userID)
	if err != nil {
		return 0, err
	}

	idx := -1
	for i := range existing {
		if existing[i].ID == stakeID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return 0, ErrStakeNotFound
	}

	claimable := existing[idx].AccruedAt(s.now())
	if claimable <= 0 {
		return 0, nil
	}

	existing[idx].ClaimedRewards += claimable
	if err := s.stakes.Save(ctx, userID, existing); err != nil {
		return 0, err
	}

	if err := s.users.Credit(ctx, userID, claimable); err != nil {
		return 0, err
	}

	if _, err := s.RecordTransaction(ctx, userID, KindClaim, claimable,
		fmt.Sprintf("Claimed %d $C8R staking rewards", claimable)); err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to record claim transaction")
	}

	return claimable, nil
}

// Transfer moves tokens to another account by email and records a transfer
// transaction in both users' histories.
func (s *Service) Transfer(ctx context.Context, userID uuid.UUID, recipientEmail string, amount int64) error {
	if userID == uuid.Nil {
		return ErrNotAuthenticated
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}

	recipient, err := s.users.GetByEmail(ctx, recipientEmail)
	if err != nil {
		return err
	}
	if recipient == nil {
		return ErrRecipientNotFound
	}
	if recipient.ID == userID {
		return ErrSelfTransfer
	}

	if err := s.debit(ctx, userID, amount); err != nil {
		return err
	}
	if err := s.users.Credit(ctx, recipient.ID, amount); err != nil {
		if crErr := s.users.Credit(ctx, userID, amount); crErr != nil {
			log.Error().Err(crErr).Str("user_id", userID.String()).Msg("Failed to refund after transfer credit error")
		}
		return err
	}

	if _, err := s.RecordTransaction(ctx, userID, KindTransfer, amount,
		fmt.Sprintf("Sent %d $C8R to %s", amount, recipientEmail)); err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to record transfer transaction")
	}
	if _, err := s.RecordTransaction(ctx, recipient.ID, KindTransfer, amount,
		fmt.Sprintf("Received %d $C8R", amount)); err != nil {
		log.Error().Err(err).Str("user_id", recipient.ID.String()).Msg("Failed to record transfer transaction")
	}

	return nil
}

// debit wraps the atomic repository debit with a descriptive shortfall error
func (s *Service) debit(ctx context.Context, userID uuid.UUID, amount int64) error {
	err := s.users.Debit(ctx, userID, amount)
	if err == nil {
		return nil
	}
	if errors.Is(err, user.ErrInsufficientBalance) {
		balance, balErr := s.users.GetBalance(ctx, userID)
		if balErr != nil {
			return ErrInsufficientBalance
		}
		return &InsufficientBalanceError{Required: amount, Balance: balance}
	}
	return err
}

// mockAddress generates a simulated wallet address ("0x" + 10 hex chars)
func mockAddress() (string, error) {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(b), nil
}
