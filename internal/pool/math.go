package pool

import (
	"math/big"

	"github.com/aman-zulfiqar/solana-swap-settlement/internal/constants"
)

var (
	bpsDenominator = new(big.Int).SetUint64(constants.BasisPointDenominator)
	priceScale     = big.NewInt(constants.PriceScale)
)

// ComputeSwapOutput derives the output amount for a swap against this
// pool. Pricing is oracle-based, not constant-product: token A is valued
// at the oracle price and token B is treated as a 1:1 USD-denominated
// counterpart, so slippage comes only from the swap fee and rounding.
//
// minSwapAmount is injected rather than read from a package constant so
// boundary values can be exercised in tests.
func (p *SwapPool) ComputeSwapOutput(amountIn uint64, inputIsA bool, price int64, minSwapAmount uint64) (uint64, error) {
	if !p.IsActive {
		return 0, ErrPoolNotActive
	}
	if p.ReserveA == 0 || p.ReserveB == 0 {
		return 0, ErrInsufficientLiquidity
	}
	if amountIn < minSwapAmount {
		return 0, ErrAmountTooSmall
	}
	// Conservative overflow guard, not a business limit.
	if amountIn > constants.MaxSwapInputAmount {
		return 0, ErrAmountTooSmall
	}

	_, reserveOut := p.Reserves(inputIsA)

	amountInNet, err := applySwapFee(amountIn, p.SwapFeeBasisPoints)
	if err != nil {
		return 0, err
	}
	if amountInNet == 0 {
		return 0, ErrAmountTooSmall
	}

	var amountOut uint64
	if inputIsA {
		amountOut, err = convertAToB(amountInNet, price)
	} else {
		amountOut, err = convertBToA(amountInNet, price)
	}
	if err != nil {
		return 0, err
	}

	if amountOut > reserveOut {
		return 0, ErrInsufficientLiquidity
	}
	if amountOut == 0 {
		return 0, ErrAmountTooSmall
	}
	return amountOut, nil
}

// applySwapFee returns floor(amountIn * (10000 - feeBps) / 10000),
// computed in big.Int to avoid intermediate overflow.
func applySwapFee(amountIn uint64, feeBps uint16) (uint64, error) {
	if uint64(feeBps) > constants.BasisPointDenominator {
		return 0, ErrInvalidSwapParams
	}

	net := new(big.Int).SetUint64(amountIn)
	net.Mul(net, new(big.Int).SetUint64(constants.BasisPointDenominator-uint64(feeBps)))
	net.Div(net, bpsDenominator)

	if !net.IsUint64() {
		return 0, ErrMathOverflow
	}
	return net.Uint64(), nil
}

// convertAToB values token A at the oracle price:
// out = floor(amount * price / 1e8).
func convertAToB(amount uint64, price int64) (uint64, error) {
	if price <= 0 {
		return 0, ErrInvalidPriceOracle
	}

	out := new(big.Int).SetUint64(amount)
	out.Mul(out, big.NewInt(price))
	out.Div(out, priceScale)

	if !out.IsUint64() {
		return 0, ErrMathOverflow
	}
	return out.Uint64(), nil
}

// convertBToA assumes token B is 1:1 USD-pegged and converts through the
// oracle price: out = floor(amount * 1e8 / price). The peg assumption is
// a modeling choice carried over deliberately; it does not generalize to
// tokens without that property.
func convertBToA(amount uint64, price int64) (uint64, error) {
	if price <= 0 {
		return 0, ErrInvalidPriceOracle
	}

	out := new(big.Int).SetUint64(amount)
	out.Mul(out, priceScale)
	out.Div(out, big.NewInt(price))

	if !out.IsUint64() {
		return 0, ErrMathOverflow
	}
	return out.Uint64(), nil
}
