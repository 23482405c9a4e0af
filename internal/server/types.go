package server

// ErrorResponse represents a standardized error response format
type ErrorResponse struct {
	Error   string `json:"error"`             // Human-readable error message
	Code    int    `json:"code"`              // HTTP status code
	Details any    `json:"details,omitempty"` // Additional error details (dev mode only)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK bool `json:"ok"` // Service health status
}

// SwapExecuteRequest represents a request to settle a swap against a pool
type SwapExecuteRequest struct {
	Trader           string `json:"trader"`             // Trader identity (base58 pubkey)
	Pool             string `json:"pool"`               // Pool address (base58)
	AmountIn         uint64 `json:"amount_in"`          // Gross input amount in base units
	MinimumAmountOut uint64 `json:"minimum_amount_out"` // Slippage floor in base units
	InputIsA         bool   `json:"input_is_a"`         // Swap direction (true = token A in)
}

// SwapExecuteResponse represents the result of a settled swap
type SwapExecuteResponse struct {
	Pool        string `json:"pool"`         // Pool address (base58)
	AmountIn    uint64 `json:"amount_in"`    // Gross input amount
	AmountOut   uint64 `json:"amount_out"`   // Output amount after fees and conversion
	OraclePrice int64  `json:"oracle_price"` // Oracle price used (1e8 fixed point)
	SwapFeeBps  uint16 `json:"swap_fee_bps"` // Pool swap fee in basis points
	InputIsA    bool   `json:"input_is_a"`   // Swap direction
}

// QuoteRequest represents a read-only swap quote request
type QuoteRequest struct {
	Pool     string `json:"pool"`       // Pool address (base58)
	AmountIn uint64 `json:"amount_in"`  // Gross input amount in base units
	InputIsA bool   `json:"input_is_a"` // Swap direction (true = token A in)
}

// QuoteResponse represents a swap quote without state changes
type QuoteResponse struct {
	Pool        string `json:"pool"`         // Pool address (base58)
	AmountIn    uint64 `json:"amount_in"`    // Gross input amount
	AmountOut   uint64 `json:"amount_out"`   // Projected output amount
	OraclePrice int64  `json:"oracle_price"` // Oracle price used (1e8 fixed point)
	SwapFeeBps  uint16 `json:"swap_fee_bps"` // Pool swap fee in basis points
}

// PoolCreateRequest represents a request to provision a new pool
type PoolCreateRequest struct {
	Creator            string `json:"creator"`               // Creator identity (base58 pubkey)
	TokenAMint         string `json:"token_a_mint"`          // Token A mint (base58 pubkey)
	TokenBMint         string `json:"token_b_mint"`          // Token B mint (base58 pubkey)
	InitialReserveA    uint64 `json:"initial_reserve_a"`     // Initial token A reserve
	InitialReserveB    uint64 `json:"initial_reserve_b"`     // Initial token B reserve
	SwapFeeBasisPoints uint16 `json:"swap_fee_basis_points"` // Per-pool swap fee
	PoolType           string `json:"pool_type"`             // "internal" or "external"
}

// PoolActiveRequest represents a request to enable or disable trading on a pool
type PoolActiveRequest struct {
	Actor  string `json:"actor"`  // Caller identity (base58 pubkey)
	Active bool   `json:"active"` // Desired trading state
}

// PriceResponse represents the last validated oracle price for a feed
type PriceResponse struct {
	Feed  string `json:"feed"`  // Price feed identifier (hex)
	Price int64  `json:"price"` // Price in 1e8 fixed point
}

// AdminConfigRequest represents a partial protocol config update
type AdminConfigRequest struct {
	Actor               string  `json:"actor"`                            // Caller identity (must be admin)
	FeeRecipient        *string `json:"fee_recipient,omitempty"`          // New fee recipient (optional)
	Operator            *string `json:"operator,omitempty"`               // New operator (optional)
	TradeFeeBasisPoints *uint16 `json:"trade_fee_basis_points,omitempty"` // New trade fee (optional)
}

// AdminOwnershipRequest represents a protocol ownership transfer
type AdminOwnershipRequest struct {
	Actor    string `json:"actor"`     // Caller identity (must be admin)
	NewAdmin string `json:"new_admin"` // New admin identity (base58 pubkey)
}

// AIAskRequest represents a natural language query request
type AIAskRequest struct {
	Question string `json:"question"` // Natural language question about swap data
	Model    string `json:"model"`    // Optional AI model override
}

// AIAskResponse represents the response from an AI query
type AIAskResponse struct {
	SQL    string `json:"sql"`     // Generated SQL query
	Answer string `json:"answer"`  // Natural language answer
	TookMs int64  `json:"took_ms"` // Execution time in milliseconds
}
