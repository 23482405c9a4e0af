package pool

import "errors"

// Settlement error taxonomy. Every failure a caller can observe maps to
// exactly one of these, so "retry later" (locked pool, stale price) is
// distinguishable from "will always fail" (amount too small, bad params).
var (
	ErrPoolNotActive         = errors.New("swap pool is not active")
	ErrAmountTooSmall        = errors.New("amount too small")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrInsufficientAmountOut = errors.New("insufficient amount out")
	ErrInvalidSwapParams     = errors.New("invalid swap parameters")
	ErrMathOverflow          = errors.New("math overflow")
	ErrInvalidPriceOracle    = errors.New("invalid price oracle")

	ErrInvalidTokenMint    = errors.New("invalid token mint")
	ErrInvalidTokenReserve = errors.New("invalid token reserves")
	ErrPoolNotFound        = errors.New("pool not found")
	ErrPoolExists          = errors.New("pool already exists")
)
