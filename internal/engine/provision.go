package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/aman-zulfiqar/solana-swap-settlement/internal/admin"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/constants"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/models"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/pool"
	"github.com/gagliardetto/solana-go"
)

// CreatePoolRequest provisions a new swap pool seeded from the creator's
// balances.
type CreatePoolRequest struct {
	Creator            solana.PublicKey
	TokenAMint         solana.PublicKey
	TokenBMint         solana.PublicKey
	InitialReserveA    uint64
	InitialReserveB    uint64
	SwapFeeBasisPoints uint16
	PoolType           pool.PoolType
}

// CreatePool validates the request, funds both vault legs from the
// creator, and persists the new pool.
func (e *Engine) CreatePool(ctx context.Context, req *CreatePoolRequest) (*pool.SwapPool, error) {
	if req.SwapFeeBasisPoints > constants.MaxSwapFeeBasisPoints {
		return nil, pool.ErrInvalidSwapParams
	}
	if req.InitialReserveA < constants.MinPoolReserves || req.InitialReserveB < constants.MinPoolReserves {
		return nil, pool.ErrInvalidTokenReserve
	}

	p, err := pool.New(req.Creator, req.TokenAMint, req.TokenBMint,
		req.InitialReserveA, req.InitialReserveB, req.SwapFeeBasisPoints, req.PoolType)
	if err != nil {
		return nil, err
	}

	mu := e.poolLock(p.Address)
	mu.Lock()
	defer mu.Unlock()

	if _, err := e.pools.Get(ctx, p.Address); err == nil {
		return nil, pool.ErrPoolExists
	} else if !errors.Is(err, pool.ErrPoolNotFound) {
		return nil, err
	}

	// Seed both vaults. Initial liquidity moves fee-free; transfer fees
	// apply to swap legs only.
	authority := p.Authority()
	if err := e.ledger.TransferWithFee(ctx, req.Creator, authority, req.TokenAMint, req.InitialReserveA, 0); err != nil {
		return nil, err
	}
	if err := e.ledger.TransferWithFee(ctx, req.Creator, authority, req.TokenBMint, req.InitialReserveB, 0); err != nil {
		if rbErr := e.ledger.TransferWithFee(context.WithoutCancel(ctx), authority, req.Creator, req.TokenAMint, req.InitialReserveA, 0); rbErr != nil {
			e.logger.WithError(rbErr).WithField("pool", p.Address).
				Error("vault seeding compensation failed, manual reconciliation required")
		}
		return nil, err
	}

	if err := e.pools.Put(ctx, p); err != nil {
		return nil, fmt.Errorf("persist pool: %w", err)
	}

	if e.cache != nil {
		ev := &models.PoolCreatedEvent{
			Creator:            req.Creator.String(),
			Pool:               p.Address,
			TokenAMint:         req.TokenAMint.String(),
			TokenBMint:         req.TokenBMint.String(),
			PoolType:           string(req.PoolType),
			InitialReserveA:    req.InitialReserveA,
			InitialReserveB:    req.InitialReserveB,
			SwapFeeBasisPoints: req.SwapFeeBasisPoints,
			Timestamp:          e.now(),
		}
		if err := e.cache.PublishPoolCreated(context.WithoutCancel(ctx), ev); err != nil {
			e.logger.WithError(err).Warn("failed to publish pool creation")
		}
	}

	e.logger.WithField("pool", p.Address).Info("pool created")
	return p, nil
}

// SetPoolActive flips a pool's activation flag. Operator/admin gated:
// only the configured admin or operator identity may call it.
func (e *Engine) SetPoolActive(ctx context.Context, actor solana.PublicKey, address string, active bool) (*pool.SwapPool, error) {
	if e.admin == nil {
		return nil, fmt.Errorf("admin service not configured")
	}
	cfg, err := e.admin.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !actor.Equals(cfg.Admin) && !actor.Equals(cfg.Operator) {
		return nil, fmt.Errorf("%w: %s may not administer pools", admin.ErrNotAdmin, actor)
	}

	mu := e.poolLock(address)
	mu.Lock()
	defer mu.Unlock()

	p, err := e.pools.Get(ctx, address)
	if err != nil {
		return nil, err
	}
	if p.IsLocked {
		return nil, pool.ErrPoolNotActive
	}

	p.IsActive = active
	if err := e.pools.Put(ctx, p); err != nil {
		return nil, fmt.Errorf("persist pool: %w", err)
	}
	return p, nil
}
