package pool

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// PoolType distinguishes internally provisioned pools from externally
// seeded ones. Descriptive only, it does not affect pricing.
type PoolType string

const (
	PoolTypeInternal PoolType = "internal"
	PoolTypeExternal PoolType = "external"
)

// Valid reports whether t is a known pool type.
func (t PoolType) Valid() bool {
	return t == PoolTypeInternal || t == PoolTypeExternal
}

// SwapPool is the settlement core's central entity: it custodies reserves
// of two tokens and is mutated exclusively by successful swaps.
type SwapPool struct {
	Address string           `json:"address"`
	Creator solana.PublicKey `json:"creator"`

	TokenAMint solana.PublicKey `json:"token_a_mint"`
	TokenBMint solana.PublicKey `json:"token_b_mint"`

	ReserveA uint64 `json:"reserve_a"`
	ReserveB uint64 `json:"reserve_b"`

	SwapFeeBasisPoints uint16   `json:"swap_fee_basis_points"`
	PoolType           PoolType `json:"pool_type"`

	IsActive bool `json:"is_active"`
	// IsLocked is the reentrancy guard: true only while a swap is in
	// flight. A second operation entering while it is set must be
	// rejected, never queued.
	IsLocked bool `json:"is_locked"`

	CreatedAt    int64 `json:"created_at"`
	LastUpdateAt int64 `json:"last_update_at"`
}

// New builds an active, unlocked pool with validated initial state.
// Reserve and fee bounds are the caller's (provisioning flow) concern.
func New(creator, tokenA, tokenB solana.PublicKey, reserveA, reserveB uint64, feeBps uint16, poolType PoolType) (*SwapPool, error) {
	if tokenA.Equals(tokenB) {
		return nil, ErrInvalidTokenMint
	}
	if reserveA == 0 || reserveB == 0 {
		return nil, ErrInvalidTokenReserve
	}
	if !poolType.Valid() {
		return nil, ErrInvalidSwapParams
	}

	now := time.Now().Unix()
	return &SwapPool{
		Address:            DeriveAddress(tokenA, tokenB),
		Creator:            creator,
		TokenAMint:         tokenA,
		TokenBMint:         tokenB,
		ReserveA:           reserveA,
		ReserveB:           reserveB,
		SwapFeeBasisPoints: feeBps,
		PoolType:           poolType,
		IsActive:           true,
		IsLocked:           false,
		CreatedAt:          now,
		LastUpdateAt:       now,
	}, nil
}

// Mints returns (inputMint, outputMint) for a swap direction.
func (p *SwapPool) Mints(inputIsA bool) (solana.PublicKey, solana.PublicKey) {
	if inputIsA {
		return p.TokenAMint, p.TokenBMint
	}
	return p.TokenBMint, p.TokenAMint
}

// Reserves returns (reserveIn, reserveOut) for a swap direction.
func (p *SwapPool) Reserves(inputIsA bool) (uint64, uint64) {
	if inputIsA {
		return p.ReserveA, p.ReserveB
	}
	return p.ReserveB, p.ReserveA
}

// ApplySwap commits reserve deltas after both transfer legs succeeded:
// reserveIn += amountIn, reserveOut -= amountOut, both checked. An
// underflow here means the earlier liquidity bound check was violated, so
// it surfaces as ErrInsufficientLiquidity rather than being clamped.
func (p *SwapPool) ApplySwap(amountIn, amountOut uint64, inputIsA bool, now int64) error {
	reserveIn, reserveOut := p.Reserves(inputIsA)

	newIn := reserveIn + amountIn
	if newIn < reserveIn {
		return ErrMathOverflow
	}
	if amountOut > reserveOut {
		return ErrInsufficientLiquidity
	}
	newOut := reserveOut - amountOut

	if inputIsA {
		p.ReserveA, p.ReserveB = newIn, newOut
	} else {
		p.ReserveB, p.ReserveA = newIn, newOut
	}
	p.LastUpdateAt = now
	return nil
}
