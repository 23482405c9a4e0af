package models

import "time"

// SwapEvent is the structured notification emitted after a swap settles.
type SwapEvent struct {
	Trader      string    `json:"trader"`
	Pool        string    `json:"pool"`
	TokenAMint  string    `json:"token_a_mint"`
	TokenBMint  string    `json:"token_b_mint"`
	AmountIn    uint64    `json:"amount_in"`
	AmountOut   uint64    `json:"amount_out"`
	InputIsA    bool      `json:"input_is_a"`
	OraclePrice int64     `json:"oracle_price"` // 1e8 fixed point
	SwapFeeBps  uint16    `json:"swap_fee_bps"`
	PoolType    string    `json:"pool_type"`
	Timestamp   time.Time `json:"timestamp"`
}

// PoolCreatedEvent is emitted when a new swap pool is provisioned.
type PoolCreatedEvent struct {
	Creator            string    `json:"creator"`
	Pool               string    `json:"pool"`
	TokenAMint         string    `json:"token_a_mint"`
	TokenBMint         string    `json:"token_b_mint"`
	PoolType           string    `json:"pool_type"`
	InitialReserveA    uint64    `json:"initial_reserve_a"`
	InitialReserveB    uint64    `json:"initial_reserve_b"`
	SwapFeeBasisPoints uint16    `json:"swap_fee_basis_points"`
	Timestamp          time.Time `json:"timestamp"`
}
