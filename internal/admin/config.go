package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aman-zulfiqar/solana-swap-settlement/internal/constants"
	"github.com/gagliardetto/solana-go"
	"github.com/redis/go-redis/v9"
)

var (
	ErrNotAdmin       = errors.New("not admin")
	ErrNotInitialized = errors.New("config not initialized")
)

// Config is the global administrative account: who may administer the
// service, where protocol fees go, and the protocol-level trade fee.
type Config struct {
	Admin               solana.PublicKey `json:"admin"`
	FeeRecipient        solana.PublicKey `json:"fee_recipient"`
	Operator            solana.PublicKey `json:"operator"`
	TradeFeeBasisPoints uint16           `json:"trade_fee_basis_points"`
}

// TradeFee computes the protocol fee the trader pays to the fee
// recipient on top of the swapped amount: floor(amount*bps/10000),
// computed in split form so it cannot overflow and never exceeds the
// amount itself.
func (c *Config) TradeFee(amount uint64) uint64 {
	bps := uint64(c.TradeFeeBasisPoints)
	if bps == 0 {
		return 0
	}
	q, r := amount/constants.BasisPointDenominator, amount%constants.BasisPointDenominator
	return q*bps + r*bps/constants.BasisPointDenominator
}

// Store persists the single config account.
type Store interface {
	Get(ctx context.Context) (*Config, error)
	Put(ctx context.Context, c *Config) error
}

type RedisStore struct {
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(ctx context.Context) (*Config, error) {
	val, err := s.client.Get(ctx, constants.RedisKeyConfig).Result()
	if err == redis.Nil {
		return nil, ErrNotInitialized
	}
	if err != nil {
		return nil, fmt.Errorf("get config: %w", err)
	}

	var c Config
	if err := json.Unmarshal([]byte(val), &c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

func (s *RedisStore) Put(ctx context.Context, c *Config) error {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := s.client.Set(ctx, constants.RedisKeyConfig, b, 0).Err(); err != nil {
		return fmt.Errorf("put config: %w", err)
	}
	return nil
}
