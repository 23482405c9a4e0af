package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aman-zulfiqar/solana-swap-settlement/internal/admin"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/constants"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/models"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/pool"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/token"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// SwapRequest is a settlement request against one pool.
type SwapRequest struct {
	Trader           solana.PublicKey
	Pool             string // derived pool address
	AmountIn         uint64
	MinimumAmountOut uint64
	InputIsA         bool
}

// SwapReceipt describes a settled swap.
type SwapReceipt struct {
	Pool        string
	Trader      string
	AmountIn    uint64
	AmountOut   uint64
	InputIsA    bool
	OraclePrice int64
	FeeIn       uint64 // transfer fee on the inbound leg
	FeeOut      uint64 // transfer fee on the outbound leg
	ProtocolFee uint64 // protocol trade fee paid to the fee recipient
	ReserveA    uint64 // post-swap
	ReserveB    uint64 // post-swap
	Duration    time.Duration
	Timestamp   time.Time
}

// QuoteResult is the output of a dry-run swap computation.
type QuoteResult struct {
	Pool        string
	AmountIn    uint64
	AmountOut   uint64
	OraclePrice int64
	SwapFeeBps  uint16
	FeeIn       uint64
	FeeOut      uint64
	ProtocolFee uint64
	ReserveIn   uint64
	ReserveOut  uint64
	QuotedAt    time.Time
}

// protocolFee looks up the configured trade fee for an input amount.
// An uninitialized config means no protocol fee.
func (e *Engine) protocolFee(ctx context.Context, amountIn uint64) (uint64, solana.PublicKey, error) {
	if e.admin == nil {
		return 0, solana.PublicKey{}, nil
	}
	cfg, err := e.admin.Get(ctx)
	if errors.Is(err, admin.ErrNotInitialized) {
		return 0, solana.PublicKey{}, nil
	}
	if err != nil {
		return 0, solana.PublicKey{}, fmt.Errorf("config lookup: %w", err)
	}
	return cfg.TradeFee(amountIn), cfg.FeeRecipient, nil
}

// ExecuteSwap settles a swap end to end: precondition checks, lock
// acquisition, oracle pricing, the transfer legs, and the reserve
// commit. Reserves change only after every leg succeeds, and the lock
// is released on every exit path.
func (e *Engine) ExecuteSwap(ctx context.Context, req *SwapRequest) (receipt *SwapReceipt, err error) {
	start := e.now()

	// Same-pool operations are serialized here; the entity-level lock
	// below still guards against reentry through a collaborator callback.
	mu := e.poolLock(req.Pool)
	mu.Lock()
	defer mu.Unlock()

	p, err := e.pools.Get(ctx, req.Pool)
	if err != nil {
		return nil, err
	}

	if p.IsLocked {
		return nil, pool.ErrPoolNotActive
	}
	if !p.IsActive {
		return nil, pool.ErrPoolNotActive
	}

	if req.AmountIn < e.minSwapAmount {
		return nil, pool.ErrAmountTooSmall
	}
	if req.AmountIn > constants.MaxSwapInputAmount {
		return nil, pool.ErrAmountTooSmall
	}
	// A minimum-out above twice the input is not slippage protection,
	// it is a malformed request.
	if req.MinimumAmountOut > req.AmountIn*2 {
		return nil, pool.ErrInvalidSwapParams
	}

	inMint, outMint := p.Mints(req.InputIsA)

	// The protocol trade fee is paid by the trader on the input mint, on
	// top of the swapped amount.
	protoFee, feeRecipient, err := e.protocolFee(ctx, req.AmountIn)
	if err != nil {
		return nil, err
	}

	balance, err := e.ledger.Balance(ctx, req.Trader, inMint)
	if err != nil {
		return nil, fmt.Errorf("balance lookup: %w", err)
	}
	if balance < req.AmountIn+protoFee {
		return nil, pool.ErrInsufficientBalance
	}

	// The unlock must survive caller cancellation: a pool left locked is
	// permanently unusable.
	persistCtx := context.WithoutCancel(ctx)

	p.IsLocked = true
	if putErr := e.pools.Put(persistCtx, p); putErr != nil {
		return nil, fmt.Errorf("lock pool: %w", putErr)
	}

	defer func() {
		p.IsLocked = false
		if putErr := e.pools.Put(persistCtx, p); putErr != nil {
			e.logger.WithError(putErr).WithField("pool", p.Address).
				Error("failed to persist pool unlock")
			if err == nil {
				err = fmt.Errorf("unlock pool: %w", putErr)
				receipt = nil
			}
		}
	}()

	price, err := e.oracle.GetValidatedPrice(ctx)
	if err != nil {
		return nil, err
	}

	amountOut, err := p.ComputeSwapOutput(req.AmountIn, req.InputIsA, price, e.minSwapAmount)
	if err != nil {
		return nil, err
	}
	if amountOut < req.MinimumAmountOut {
		return nil, pool.ErrInsufficientAmountOut
	}

	epoch := token.EpochFromTime(e.now())
	feeIn, err := e.fees.CalculateTransferFee(inMint, req.AmountIn, epoch)
	if err != nil {
		return nil, err
	}
	feeOut, err := e.fees.CalculateTransferFee(outMint, amountOut, epoch)
	if err != nil {
		return nil, err
	}

	authority := p.Authority()

	// Inbound leg: trader -> pool vault.
	if err := e.ledger.TransferWithFee(ctx, req.Trader, authority, inMint, req.AmountIn, feeIn); err != nil {
		return nil, err
	}

	// Protocol fee leg: trader -> fee recipient. On failure the inbound
	// leg is compensated so no partial movement is observable.
	if protoFee > 0 {
		if err := e.ledger.TransferWithFee(ctx, req.Trader, feeRecipient, inMint, protoFee, 0); err != nil {
			e.compensate(persistCtx, p, req.Trader,
				leg{from: authority, mint: inMint, amount: req.AmountIn})
			return nil, err
		}
	}

	// Outbound leg: pool vault -> trader. If it fails, every settled leg
	// is compensated.
	if err := e.ledger.TransferWithFee(ctx, authority, req.Trader, outMint, amountOut, feeOut); err != nil {
		legs := []leg{{from: authority, mint: inMint, amount: req.AmountIn}}
		if protoFee > 0 {
			legs = append(legs, leg{from: feeRecipient, mint: inMint, amount: protoFee})
		}
		e.compensate(persistCtx, p, req.Trader, legs...)
		return nil, err
	}

	now := e.now()
	if err := p.ApplySwap(req.AmountIn, amountOut, req.InputIsA, now.Unix()); err != nil {
		// The liquidity bound was checked before the transfers, so a
		// failure here is an internal invariant violation.
		e.logger.WithError(err).WithField("pool", p.Address).
			Error("reserve commit rejected after successful transfers")
		return nil, err
	}

	ev := &models.SwapEvent{
		Trader:      req.Trader.String(),
		Pool:        p.Address,
		TokenAMint:  p.TokenAMint.String(),
		TokenBMint:  p.TokenBMint.String(),
		AmountIn:    req.AmountIn,
		AmountOut:   amountOut,
		InputIsA:    req.InputIsA,
		OraclePrice: price,
		SwapFeeBps:  p.SwapFeeBasisPoints,
		PoolType:    string(p.PoolType),
		Timestamp:   now,
	}
	e.emitSwap(persistCtx, ev)

	return &SwapReceipt{
		Pool:        p.Address,
		Trader:      req.Trader.String(),
		AmountIn:    req.AmountIn,
		AmountOut:   amountOut,
		InputIsA:    req.InputIsA,
		OraclePrice: price,
		FeeIn:       feeIn,
		FeeOut:      feeOut,
		ProtocolFee: protoFee,
		ReserveA:    p.ReserveA,
		ReserveB:    p.ReserveB,
		Duration:    e.now().Sub(start),
		Timestamp:   now,
	}, nil
}

// leg is a settled transfer to reverse when a later leg fails.
type leg struct {
	from   solana.PublicKey
	mint   solana.PublicKey
	amount uint64
}

// compensate returns settled legs to the trader fee-free. A failed
// reversal is logged for manual reconciliation, not retried.
func (e *Engine) compensate(ctx context.Context, p *pool.SwapPool, trader solana.PublicKey, legs ...leg) {
	for _, l := range legs {
		if rbErr := e.ledger.TransferWithFee(ctx, l.from, trader, l.mint, l.amount, 0); rbErr != nil {
			e.logger.WithError(rbErr).WithFields(logrus.Fields{
				"pool":   p.Address,
				"trader": trader.String(),
				"mint":   l.mint.String(),
			}).Error("leg compensation failed, manual reconciliation required")
		}
	}
}

// Quote computes the swap output without acquiring the lock or moving
// funds.
func (e *Engine) Quote(ctx context.Context, req *SwapRequest) (*QuoteResult, error) {
	p, err := e.pools.Get(ctx, req.Pool)
	if err != nil {
		return nil, err
	}

	price, err := e.oracle.GetValidatedPrice(ctx)
	if err != nil {
		return nil, err
	}

	amountOut, err := p.ComputeSwapOutput(req.AmountIn, req.InputIsA, price, e.minSwapAmount)
	if err != nil {
		return nil, err
	}

	inMint, outMint := p.Mints(req.InputIsA)
	epoch := token.EpochFromTime(e.now())
	feeIn, err := e.fees.CalculateTransferFee(inMint, req.AmountIn, epoch)
	if err != nil {
		return nil, err
	}
	feeOut, err := e.fees.CalculateTransferFee(outMint, amountOut, epoch)
	if err != nil {
		return nil, err
	}

	protoFee, _, err := e.protocolFee(ctx, req.AmountIn)
	if err != nil {
		return nil, err
	}

	reserveIn, reserveOut := p.Reserves(req.InputIsA)

	return &QuoteResult{
		Pool:        p.Address,
		AmountIn:    req.AmountIn,
		AmountOut:   amountOut,
		OraclePrice: price,
		SwapFeeBps:  p.SwapFeeBasisPoints,
		FeeIn:       feeIn,
		FeeOut:      feeOut,
		ProtocolFee: protoFee,
		ReserveIn:   reserveIn,
		ReserveOut:  reserveOut,
		QuotedAt:    e.now(),
	}, nil
}

// emitSwap fans a settled swap out to the cache, pub/sub and durable
// store. Best-effort: a sink failure never fails the settled swap.
func (e *Engine) emitSwap(ctx context.Context, ev *models.SwapEvent) {
	if e.cache != nil {
		if err := e.cache.AddRecentSwap(ctx, ev); err != nil {
			e.logger.WithError(err).Warn("failed to cache swap event")
		}
		if err := e.cache.PublishSwap(ctx, ev); err != nil {
			e.logger.WithError(err).Warn("failed to publish swap event")
		}
		if e.feedName != "" {
			if err := e.cache.UpdatePrice(ctx, e.feedName, ev.OraclePrice); err != nil {
				e.logger.WithError(err).Warn("failed to cache oracle price")
			}
		}
	}
	if e.store != nil {
		if err := e.store.InsertSwap(ctx, ev); err != nil {
			e.logger.WithError(err).Warn("failed to persist swap event")
		}
	}
}
