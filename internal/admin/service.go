package admin

import (
	"context"
	"fmt"
	"sync"

	"github.com/aman-zulfiqar/solana-swap-settlement/internal/constants"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// UpdateParams carries optional config mutations; nil fields are left
// unchanged.
type UpdateParams struct {
	FeeRecipient        *solana.PublicKey
	Operator            *solana.PublicKey
	TradeFeeBasisPoints *uint16
}

// Service gates config mutation behind the admin identity check.
type Service struct {
	store  Store
	logger *logrus.Logger
}

func NewService(store Store, logger *logrus.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("config store is nil")
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{store: store, logger: logger}, nil
}

// Initialize creates the config account if it does not exist yet.
func (s *Service) Initialize(ctx context.Context, admin, feeRecipient, operator solana.PublicKey) (*Config, error) {
	if existing, err := s.store.Get(ctx); err == nil {
		return existing, nil
	}

	c := &Config{
		Admin:        admin,
		FeeRecipient: feeRecipient,
		Operator:     operator,
	}
	if err := s.store.Put(ctx, c); err != nil {
		return nil, err
	}

	s.logger.WithField("admin", admin.String()).Info("config initialized")
	return c, nil
}

// Get returns the current config.
func (s *Service) Get(ctx context.Context) (*Config, error) {
	return s.store.Get(ctx)
}

// UpdateConfig applies the given mutations. Only the admin may call it.
func (s *Service) UpdateConfig(ctx context.Context, actor solana.PublicKey, params UpdateParams) (*Config, error) {
	c, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !actor.Equals(c.Admin) {
		return nil, ErrNotAdmin
	}

	if params.FeeRecipient != nil {
		c.FeeRecipient = *params.FeeRecipient
	}
	if params.Operator != nil {
		c.Operator = *params.Operator
	}
	if params.TradeFeeBasisPoints != nil {
		if uint64(*params.TradeFeeBasisPoints) > constants.BasisPointDenominator {
			return nil, fmt.Errorf("trade fee basis points out of range")
		}
		c.TradeFeeBasisPoints = *params.TradeFeeBasisPoints
	}

	if err := s.store.Put(ctx, c); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"fee_recipient": c.FeeRecipient.String(),
		"operator":      c.Operator.String(),
		"trade_fee_bps": c.TradeFeeBasisPoints,
	}).Info("config updated")
	return c, nil
}

// TransferOwnership hands the admin role to a new identity.
func (s *Service) TransferOwnership(ctx context.Context, actor, newAdmin solana.PublicKey) (*Config, error) {
	c, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !actor.Equals(c.Admin) {
		return nil, ErrNotAdmin
	}

	c.Admin = newAdmin
	if err := s.store.Put(ctx, c); err != nil {
		return nil, err
	}

	s.logger.WithField("admin", newAdmin.String()).Info("ownership transferred")
	return c, nil
}

// MemoryStore is an in-process config store for local mode and tests.
type MemoryStore struct {
	mu  sync.RWMutex
	cfg *Config
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(ctx context.Context) (*Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cfg == nil {
		return nil, ErrNotInitialized
	}
	cp := *s.cfg
	return &cp, nil
}

func (s *MemoryStore) Put(ctx context.Context, c *Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *c
	s.cfg = &cp
	return nil
}
