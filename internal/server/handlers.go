package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aman-zulfiqar/solana-swap-settlement/internal/admin"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/ai"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/engine"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/ledger"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/oracle"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/pool"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/storage"
	"github.com/gagliardetto/solana-go"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Engine       *engine.Engine     // Settlement engine (swaps, quotes, pools)
	Cache        storage.EventCache // Redis-backed event cache
	AI           *ai.Agent          // AI agent for natural language queries
	AIBaseConfig ai.AgentConfig     // Base configuration for AI agents
	DevMode      bool               // Enable detailed error responses in development
	Logger       *logrus.Logger     // Structured logger
}

// err returns a standardized JSON error response
// In dev mode, includes additional error details for debugging
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// withTimeout creates a context with timeout, defaulting to 10 seconds if duration <= 0
func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// domainError maps settlement sentinel errors onto HTTP status codes.
// Unknown errors fall through to 500.
func (h *Handlers) domainError(c echo.Context, err error) error {
	var code int
	switch {
	case errors.Is(err, pool.ErrPoolNotFound):
		code = http.StatusNotFound
	case errors.Is(err, pool.ErrPoolExists),
		errors.Is(err, pool.ErrPoolNotActive):
		code = http.StatusConflict
	case errors.Is(err, pool.ErrAmountTooSmall),
		errors.Is(err, pool.ErrInvalidSwapParams),
		errors.Is(err, pool.ErrInvalidTokenMint),
		errors.Is(err, pool.ErrInvalidTokenReserve),
		errors.Is(err, pool.ErrMathOverflow):
		code = http.StatusBadRequest
	case errors.Is(err, pool.ErrInsufficientBalance),
		errors.Is(err, pool.ErrInsufficientLiquidity),
		errors.Is(err, pool.ErrInsufficientAmountOut):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, oracle.ErrPriceTooOld),
		errors.Is(err, oracle.ErrInvalidPriceOracle),
		errors.Is(err, pool.ErrInvalidPriceOracle):
		code = http.StatusServiceUnavailable
	case errors.Is(err, ledger.ErrTransferFailed):
		code = http.StatusBadGateway
	case errors.Is(err, admin.ErrNotAdmin):
		code = http.StatusForbidden
	case errors.Is(err, admin.ErrNotInitialized):
		code = http.StatusServiceUnavailable
	default:
		return h.err(c, http.StatusInternalServerError, "internal error", map[string]any{"err": err.Error()})
	}
	return h.err(c, code, err.Error(), nil)
}

func parsePubkey(s string) (solana.PublicKey, error) {
	return solana.PublicKeyFromBase58(strings.TrimSpace(s))
}

// Health returns a simple health check endpoint
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{OK: true})
}

// SwapExecute settles a swap against a pool and returns the receipt
func (h *Handlers) SwapExecute(c echo.Context) error {
	var req SwapExecuteRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	trader, err := parsePubkey(req.Trader)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid trader", map[string]any{"trader": "must be a base58 pubkey"})
	}
	if strings.TrimSpace(req.Pool) == "" {
		return h.err(c, http.StatusBadRequest, "invalid pool", map[string]any{"pool": "required"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	receipt, err := h.Engine.ExecuteSwap(ctx, &engine.SwapRequest{
		Trader:           trader,
		Pool:             strings.TrimSpace(req.Pool),
		AmountIn:         req.AmountIn,
		MinimumAmountOut: req.MinimumAmountOut,
		InputIsA:         req.InputIsA,
	})
	if err != nil {
		return h.domainError(c, err)
	}
	return c.JSON(http.StatusOK, receipt)
}

// Quote computes a swap outcome without touching pool state
func (h *Handlers) Quote(c echo.Context) error {
	var req QuoteRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if strings.TrimSpace(req.Pool) == "" {
		return h.err(c, http.StatusBadRequest, "invalid pool", map[string]any{"pool": "required"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	out, err := h.Engine.Quote(ctx, &engine.SwapRequest{
		Pool:     strings.TrimSpace(req.Pool),
		AmountIn: req.AmountIn,
		InputIsA: req.InputIsA,
	})
	if err != nil {
		return h.domainError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// PoolCreate provisions a new pool funded from the creator's balances
func (h *Handlers) PoolCreate(c echo.Context) error {
	var req PoolCreateRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	creator, err := parsePubkey(req.Creator)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid creator", map[string]any{"creator": "must be a base58 pubkey"})
	}
	mintA, err := parsePubkey(req.TokenAMint)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid token_a_mint", map[string]any{"token_a_mint": "must be a base58 pubkey"})
	}
	mintB, err := parsePubkey(req.TokenBMint)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid token_b_mint", map[string]any{"token_b_mint": "must be a base58 pubkey"})
	}
	poolType := pool.PoolType(strings.TrimSpace(req.PoolType))
	if poolType == "" {
		poolType = pool.PoolTypeInternal
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	out, err := h.Engine.CreatePool(ctx, &engine.CreatePoolRequest{
		Creator:            creator,
		TokenAMint:         mintA,
		TokenBMint:         mintB,
		InitialReserveA:    req.InitialReserveA,
		InitialReserveB:    req.InitialReserveB,
		SwapFeeBasisPoints: req.SwapFeeBasisPoints,
		PoolType:           poolType,
	})
	if err != nil {
		return h.domainError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

// PoolsList returns all registered pools
func (h *Handlers) PoolsList(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Engine.Pools().List(ctx)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to list pools", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// PoolsGet retrieves one pool by its derived address
func (h *Handlers) PoolsGet(c echo.Context) error {
	address := strings.TrimSpace(c.Param("address"))
	if address == "" {
		return h.err(c, http.StatusBadRequest, "invalid address", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Engine.Pools().Get(ctx, address)
	if err != nil {
		return h.domainError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// PoolSetActive enables or disables trading on a pool
// Only the protocol admin or operator may call this
func (h *Handlers) PoolSetActive(c echo.Context) error {
	address := strings.TrimSpace(c.Param("address"))
	if address == "" {
		return h.err(c, http.StatusBadRequest, "invalid address", nil)
	}
	var req PoolActiveRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	actor, err := parsePubkey(req.Actor)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid actor", map[string]any{"actor": "must be a base58 pubkey"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Engine.SetPoolActive(ctx, actor, address, req.Active)
	if err != nil {
		return h.domainError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// RecentSwaps returns the most recent settled swaps with optional limit parameter
// Accepts limit query parameter (default: 100, range: 1-200)
func (h *Handlers) RecentSwaps(c echo.Context) error {
	if h.Cache == nil {
		return h.err(c, http.StatusServiceUnavailable, "cache is not configured", nil)
	}
	limitStr := c.QueryParam("limit")
	limit := 100
	if limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "must be an integer"})
		}
		limit = n
	}
	if limit < 1 || limit > 200 {
		return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "min 1 max 200"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Cache.GetRecentSwaps(ctx, int64(limit))
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to get swaps", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// Price returns the last validated oracle price for a feed
func (h *Handlers) Price(c echo.Context) error {
	if h.Cache == nil {
		return h.err(c, http.StatusServiceUnavailable, "cache is not configured", nil)
	}
	feed := strings.TrimSpace(c.Param("feed"))
	if feed == "" {
		return h.err(c, http.StatusBadRequest, "invalid feed", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	price, err := h.Cache.GetPrice(ctx, feed)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to get price", nil)
	}
	return c.JSON(http.StatusOK, PriceResponse{Feed: feed, Price: price})
}

// AdminUpdateConfig applies a partial protocol config update
// Only the current admin may call this
func (h *Handlers) AdminUpdateConfig(c echo.Context) error {
	var req AdminConfigRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	actor, err := parsePubkey(req.Actor)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid actor", map[string]any{"actor": "must be a base58 pubkey"})
	}

	params := admin.UpdateParams{TradeFeeBasisPoints: req.TradeFeeBasisPoints}
	if req.FeeRecipient != nil {
		pk, err := parsePubkey(*req.FeeRecipient)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid fee_recipient", map[string]any{"fee_recipient": "must be a base58 pubkey"})
		}
		params.FeeRecipient = &pk
	}
	if req.Operator != nil {
		pk, err := parsePubkey(*req.Operator)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid operator", map[string]any{"operator": "must be a base58 pubkey"})
		}
		params.Operator = &pk
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Engine.Admin().UpdateConfig(ctx, actor, params)
	if err != nil {
		return h.domainError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// AdminTransferOwnership hands protocol admin rights to a new identity
func (h *Handlers) AdminTransferOwnership(c echo.Context) error {
	var req AdminOwnershipRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	actor, err := parsePubkey(req.Actor)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid actor", map[string]any{"actor": "must be a base58 pubkey"})
	}
	newAdmin, err := parsePubkey(req.NewAdmin)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid new_admin", map[string]any{"new_admin": "must be a base58 pubkey"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Engine.Admin().TransferOwnership(ctx, actor, newAdmin)
	if err != nil {
		return h.domainError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// AIAsk processes natural language questions about settlement data using AI
// Supports optional model override for one-off requests
// Returns SQL query and answer with execution time
func (h *Handlers) AIAsk(c echo.Context) error {
	if h.AI == nil {
		return h.err(c, http.StatusBadRequest, "ai is not configured", nil)
	}

	var req AIAskRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		return h.err(c, http.StatusBadRequest, "question is required", map[string]any{"question": "required"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 45*time.Second)
	defer cancel()

	start := time.Now()

	// Use default AI agent or create temporary one with custom model
	agent := h.AI
	var tmp *ai.Agent
	if m := strings.TrimSpace(req.Model); m != "" {
		cfg := h.AIBaseConfig
		cfg.Model = m
		a, err := ai.NewAgent(ctx, cfg)
		if err != nil {
			return h.err(c, http.StatusInternalServerError, "failed to create ai agent", nil)
		}
		tmp = a
		agent = a
		defer func() {
			_ = tmp.Close() // Clean up temporary agent
		}()
	}

	res, err := agent.Ask(ctx, req.Question)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "ai ask failed", map[string]any{"err": err.Error()})
	}

	return c.JSON(http.StatusOK, AIAskResponse{SQL: res.SQL, Answer: res.Answer, TookMs: time.Since(start).Milliseconds()})
}
