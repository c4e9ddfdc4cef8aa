package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// The three ledger caches mirror the per-user history lists. Each is a
// user-scoped full-list replacement store: read on demand, written whole on
// every mutation, no TTL. They are non-authoritative; only the balance row in
// Postgres is. Losing a cache loses history, which is an accepted tradeoff of
// this simulated ledger.

// TransactionLog stores the per-user transaction history
type TransactionLog interface {
	List(ctx context.Context, userID uuid.UUID) ([]Transaction, error)
	Save(ctx context.Context, userID uuid.UUID, txs []Transaction) error
}

// PluginSet stores the per-user plugin entitlements
type PluginSet interface {
	List(ctx context.Context, userID uuid.UUID) ([]OwnedPlugin, error)
	Save(ctx context.Context, userID uuid.UUID, plugins []OwnedPlugin) error
}

// StakeRegistry stores the per-user stake positions
type StakeRegistry interface {
	List(ctx context.Context, userID uuid.UUID) ([]Stake, error)
	Save(ctx context.Context, userID uuid.UUID, stakes []Stake) error
}

const (
	transactionsKeyPrefix = "wallet:transactions:"
	pluginsKeyPrefix      = "wallet:plugins:"
	stakesKeyPrefix       = "wallet:stakes:"
)

type redisTransactionLog struct {
	client *redis.Client
}

// NewTransactionLog creates a Redis-backed transaction log
func NewTransactionLog(client *redis.Client) TransactionLog {
	return &redisTransactionLog{client: client}
}

func (l *redisTransactionLog) List(ctx context.Context, userID uuid.UUID) ([]Transaction, error) {
	data, err := l.client.Get(ctx, transactionsKeyPrefix+userID.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("transaction log read: %w", err)
	}
	return decodeTransactions(data)
}

func (l *redisTransactionLog) Save(ctx context.Context, userID uuid.UUID, txs []Transaction) error {
	data, err := encodeTransactions(txs)
	if err != nil {
		return err
	}
	if err := l.client.Set(ctx, transactionsKeyPrefix+userID.String(), data, 0).Err(); err != nil {
		return fmt.Errorf("transaction log write: %w", err)
	}
	return nil
}

type redisPluginSet struct {
	client *redis.Client
}

// NewPluginSet creates a Redis-backed plugin ownership set
func NewPluginSet(client *redis.Client) PluginSet {
	return &redisPluginSet{client: client}
}

func (s *redisPluginSet) List(ctx context.Context, userID uuid.UUID) ([]OwnedPlugin, error) {
	data, err := s.client.Get(ctx, pluginsKeyPrefix+userID.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("plugin set read: %w", err)
	}
	return decodeOwnedPlugins(data)
}

func (s *redisPluginSet) Save(ctx context.Context, userID uuid.UUID, plugins []OwnedPlugin) error {
	data, err := encodeOwnedPlugins(plugins)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, pluginsKeyPrefix+userID.String(), data, 0).Err(); err != nil {
		return fmt.Errorf("plugin set write: %w", err)
	}
	return nil
}

type redisStakeRegistry struct {
	client *redis.Client
}

// NewStakeRegistry creates a Redis-backed stake registry
func NewStakeRegistry(client *redis.Client) StakeRegistry {
	return &redisStakeRegistry{client: client}
}

func (r *redisStakeRegistry) List(ctx context.Context, userID uuid.UUID) ([]Stake, error) {
	data, err := r.client.Get(ctx, stakesKeyPrefix+userID.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("stake registry read: %w", err)
	}
	return decodeStakes(data)
}

func (r *redisStakeRegistry) Save(ctx context.Context, userID uuid.UUID, stakes []Stake) error {
	data, err := encodeStakes(stakes)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, stakesKeyPrefix+userID.String(), data, 0).Err(); err != nil {
		return fmt.Errorf("stake registry write: %w", err)
	}
	return nil
}

// Encoding is plain JSON with RFC 3339 timestamps, so cached lists survive a
// round trip with timestamps intact.

func encodeTransactions(txs []Transaction) ([]byte, error) {
	data, err := json.Marshal(txs)
	if err != nil {
		return nil, fmt.Errorf("encode transactions: %w", err)
	}
	return data, nil
}

func decodeTransactions(data []byte) ([]Transaction, error) {
	var txs []Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	return txs, nil
}

func encodeOwnedPlugins(plugins []OwnedPlugin) ([]byte, error) {
	data, err := json.Marshal(plugins)
	if err != nil {
		return nil, fmt.Errorf("encode plugins: %w", err)
	}
	return data, nil
}

func decodeOwnedPlugins(data []byte) ([]OwnedPlugin, error) {
	var plugins []OwnedPlugin
	if err := json.Unmarshal(data, &plugins); err != nil {
		return nil, fmt.Errorf("decode plugins: %w", err)
	}
	return plugins, nil
}

func encodeStakes(stakes []Stake) ([]byte, error) {
	data, err := json.Marshal(stakes)
	if err != nil {
		return nil, fmt.Errorf("encode stakes: %w", err)
	}
	return data, nil
}

func decodeStakes(data []byte) ([]Stake, error) {
	var stakes []Stake
	if err := json.Unmarshal(data, &stakes); err != nil {
		return nil, fmt.Errorf("decode stakes: %w", err)
	}
	return stakes, nil
}
