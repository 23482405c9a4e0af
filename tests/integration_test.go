package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/aman-zulfiqar/solana-swap-settlement/internal/admin"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/ai"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/cache"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/constants"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/engine"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/ledger"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/oracle"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/pool"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/server"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/token"
	"github.com/gagliardetto/solana-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAPIAddr = ":8092"
	testBaseURL = "http://localhost:8092"
	testAPIKey  = "test-api-key-integration"
	testPrice   = int64(150_000_000) // 1.5 in 1e8 fixed point
)

var (
	adminKey  = solana.PublicKey{0x07}
	traderKey = solana.PublicKey{0x01}
	mintA     = solana.PublicKey{0x0a}
	mintB     = solana.PublicKey{0x0b}
)

type fixture struct {
	srv    *server.Server
	ledger *ledger.MemoryLedger
}

func setupIntegrationTest(t *testing.T) (*fixture, func()) {
	// Check if Redis is available
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: redisAddr,
		DB:   2, // Use different DB for integration tests
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for integration tests: %v", err)
	}

	// Clear test DB
	_ = redisClient.FlushDB(ctx).Err()

	logger := logrus.New()
	eventCache := cache.NewRedisCacheFromClient(redisClient, logger)

	poolStore, err := pool.NewRedisStore(redisClient)
	require.NoError(t, err)
	configStore, err := admin.NewRedisStore(redisClient)
	require.NoError(t, err)
	adminSvc, err := admin.NewService(configStore, logger)
	require.NoError(t, err)

	_, err = adminSvc.Initialize(ctx, adminKey, adminKey, adminKey)
	require.NoError(t, err)

	// Static oracle so integration runs need no network
	feed, err := oracle.ParseFeedID(strings.Repeat("ab", 32))
	require.NoError(t, err)
	source := oracle.NewStaticSource()
	source.Set(oracle.PriceReading{
		Price:       testPrice,
		FeedID:      feed,
		PublishTime: time.Now(),
	})
	validator, err := oracle.NewValidator(oracle.DefaultValidatorConfig(feed), source)
	require.NoError(t, err)

	lgr := ledger.NewMemoryLedger()
	lgr.Credit(adminKey, mintA, 100_000_000)
	lgr.Credit(adminKey, mintB, 100_000_000)
	lgr.Credit(traderKey, mintA, 1_000_000)
	lgr.Credit(traderKey, mintB, 1_000_000)

	eng, err := engine.NewEngineWithDeps(engine.Deps{
		Pools:  poolStore,
		Oracle: validator,
		Fees:   token.NewRegistry(),
		Ledger: lgr,
		Admin:  adminSvc,
		Cache:  eventCache,
		Logger: logger,
	}, constants.MinimumSwapAmount, feed.String())
	require.NoError(t, err)

	handlers := &server.Handlers{
		Engine:       eng,
		Cache:        eventCache,
		AI:           nil,
		AIBaseConfig: ai.AgentConfig{},
		DevMode:      true,
		Logger:       logger,
	}

	srv, err := server.NewServer(server.ServerDeps{
		Handlers: handlers,
		Config: server.ServerConfig{
			Addr:    testAPIAddr,
			DevMode: true,
			APIKey:  testAPIKey,
		},
	})
	require.NoError(t, err)

	// Start server in background
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			t.Logf("Server error: %v", err)
		}
	}()

	// Wait for server to be ready
	time.Sleep(100 * time.Millisecond)

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(ctx)
		_ = redisClient.FlushDB(ctx).Err()
		_ = redisClient.Close()
	}

	return &fixture{srv: srv, ledger: lgr}, cleanup
}

func makeRequest(t *testing.T, method, url string, body interface{}, expectedStatus int) *http.Response {
	reqBody := &bytes.Buffer{}
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, reqBody)
	require.NoError(t, err)

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testAPIKey)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err)

	assert.Equal(t, expectedStatus, resp.StatusCode, "Expected status %d, got %d", expectedStatus, resp.StatusCode)

	return resp
}

func createTestPool(t *testing.T) string {
	payload := map[string]interface{}{
		"creator":               adminKey.String(),
		"token_a_mint":          mintA.String(),
		"token_b_mint":          mintB.String(),
		"initial_reserve_a":     10_000_000,
		"initial_reserve_b":     10_000_000,
		"swap_fee_basis_points": 30,
		"pool_type":             "internal",
	}
	resp := makeRequest(t, http.MethodPost, testBaseURL+"/v1/pools", payload, http.StatusCreated)
	defer resp.Body.Close()

	var created pool.SwapPool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotEmpty(t, created.Address)
	return created.Address
}

func TestIntegration_Health(t *testing.T) {
	_, cleanup := setupIntegrationTest(t)
	defer cleanup()

	resp := makeRequest(t, http.MethodGet, testBaseURL+"/v1/health", nil, http.StatusOK)
	defer resp.Body.Close()

	var response server.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
	assert.True(t, response.OK)
}

func TestIntegration_APIKeyRequired(t *testing.T) {
	_, cleanup := setupIntegrationTest(t)
	defer cleanup()

	req, err := http.NewRequest(http.MethodGet, testBaseURL+"/v1/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-API-Key", "wrong-key")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIntegration_SwapLifecycle(t *testing.T) {
	_, cleanup := setupIntegrationTest(t)
	defer cleanup()

	address := createTestPool(t)

	// Quote first: read-only, no state change
	quotePayload := map[string]interface{}{
		"pool":       address,
		"amount_in":  10_000,
		"input_is_a": true,
	}
	resp := makeRequest(t, http.MethodPost, testBaseURL+"/v1/quote", quotePayload, http.StatusOK)
	defer resp.Body.Close()

	var quote engine.QuoteResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&quote))
	assert.Equal(t, uint64(14_955), quote.AmountOut)
	assert.Equal(t, testPrice, quote.OraclePrice)

	// Settle the swap
	swapPayload := map[string]interface{}{
		"trader":             traderKey.String(),
		"pool":               address,
		"amount_in":          10_000,
		"minimum_amount_out": 14_000,
		"input_is_a":         true,
	}
	resp = makeRequest(t, http.MethodPost, testBaseURL+"/v1/swap", swapPayload, http.StatusOK)
	defer resp.Body.Close()

	var receipt engine.SwapReceipt
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&receipt))
	assert.Equal(t, uint64(14_955), receipt.AmountOut)

	// The pool committed the reserve deltas
	resp = makeRequest(t, http.MethodGet, testBaseURL+"/v1/pools/"+address, nil, http.StatusOK)
	defer resp.Body.Close()

	var p pool.SwapPool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	assert.Equal(t, uint64(10_010_000), p.ReserveA)
	assert.Equal(t, uint64(9_985_045), p.ReserveB)
	assert.False(t, p.IsLocked)

	// The settled swap shows up in the recent list
	resp = makeRequest(t, http.MethodGet, testBaseURL+"/v1/swaps/recent?limit=10", nil, http.StatusOK)
	defer resp.Body.Close()

	var recent struct {
		Items []map[string]interface{} `json:"items"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&recent))
	require.Len(t, recent.Items, 1)
	assert.Equal(t, address, recent.Items[0]["pool"])
}

func TestIntegration_SwapRejections(t *testing.T) {
	_, cleanup := setupIntegrationTest(t)
	defer cleanup()

	address := createTestPool(t)

	// Below the minimum input
	payload := map[string]interface{}{
		"trader":     traderKey.String(),
		"pool":       address,
		"amount_in":  999,
		"input_is_a": true,
	}
	resp := makeRequest(t, http.MethodPost, testBaseURL+"/v1/swap", payload, http.StatusBadRequest)
	resp.Body.Close()

	// Slippage floor above what the pool can deliver
	payload = map[string]interface{}{
		"trader":             traderKey.String(),
		"pool":               address,
		"amount_in":          10_000,
		"minimum_amount_out": 15_000,
		"input_is_a":         true,
	}
	resp = makeRequest(t, http.MethodPost, testBaseURL+"/v1/swap", payload, http.StatusUnprocessableEntity)
	resp.Body.Close()

	// Unknown pool
	payload = map[string]interface{}{
		"trader":     traderKey.String(),
		"pool":       "missing-pool",
		"amount_in":  10_000,
		"input_is_a": true,
	}
	resp = makeRequest(t, http.MethodPost, testBaseURL+"/v1/swap", payload, http.StatusNotFound)
	resp.Body.Close()

	// Duplicate pool creation conflicts
	dupPayload := map[string]interface{}{
		"creator":           adminKey.String(),
		"token_a_mint":      mintA.String(),
		"token_b_mint":      mintB.String(),
		"initial_reserve_a": 10_000_000,
		"initial_reserve_b": 10_000_000,
		"pool_type":         "internal",
	}
	resp = makeRequest(t, http.MethodPost, testBaseURL+"/v1/pools", dupPayload, http.StatusConflict)
	resp.Body.Close()
}

func TestIntegration_PoolLifecycle(t *testing.T) {
	_, cleanup := setupIntegrationTest(t)
	defer cleanup()

	address := createTestPool(t)

	// List shows the pool
	resp := makeRequest(t, http.MethodGet, testBaseURL+"/v1/pools", nil, http.StatusOK)
	defer resp.Body.Close()

	var list struct {
		Items []*pool.SwapPool `json:"items"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, address, list.Items[0].Address)

	// A stranger may not deactivate it
	strangerPayload := map[string]interface{}{
		"actor":  traderKey.String(),
		"active": false,
	}
	resp = makeRequest(t, http.MethodPost, testBaseURL+"/v1/pools/"+address+"/active", strangerPayload, http.StatusForbidden)
	resp.Body.Close()

	// The admin may
	adminPayload := map[string]interface{}{
		"actor":  adminKey.String(),
		"active": false,
	}
	resp = makeRequest(t, http.MethodPost, testBaseURL+"/v1/pools/"+address+"/active", adminPayload, http.StatusOK)
	resp.Body.Close()

	// Swaps against the deactivated pool conflict
	swapPayload := map[string]interface{}{
		"trader":     traderKey.String(),
		"pool":       address,
		"amount_in":  10_000,
		"input_is_a": true,
	}
	resp = makeRequest(t, http.MethodPost, testBaseURL+"/v1/swap", swapPayload, http.StatusConflict)
	resp.Body.Close()
}

func TestIntegration_AdminConfig(t *testing.T) {
	_, cleanup := setupIntegrationTest(t)
	defer cleanup()

	// Non-admin actors are rejected
	payload := map[string]interface{}{
		"actor":                  traderKey.String(),
		"trade_fee_basis_points": 25,
	}
	resp := makeRequest(t, http.MethodPost, testBaseURL+"/v1/admin/config", payload, http.StatusForbidden)
	resp.Body.Close()

	// The admin may update the protocol fee
	payload = map[string]interface{}{
		"actor":                  adminKey.String(),
		"trade_fee_basis_points": 25,
	}
	resp = makeRequest(t, http.MethodPost, testBaseURL+"/v1/admin/config", payload, http.StatusOK)
	defer resp.Body.Close()

	var cfg admin.Config
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cfg))
	assert.Equal(t, uint16(25), cfg.TradeFeeBasisPoints)

	// Ownership transfer moves admin rights
	newAdmin := solana.PublicKey{0x09}
	payload = map[string]interface{}{
		"actor":     adminKey.String(),
		"new_admin": newAdmin.String(),
	}
	resp = makeRequest(t, http.MethodPost, testBaseURL+"/v1/admin/ownership", payload, http.StatusOK)
	resp.Body.Close()

	// The old admin is now rejected
	payload = map[string]interface{}{
		"actor":                  adminKey.String(),
		"trade_fee_basis_points": 30,
	}
	resp = makeRequest(t, http.MethodPost, testBaseURL+"/v1/admin/config", payload, http.StatusForbidden)
	resp.Body.Close()
}
