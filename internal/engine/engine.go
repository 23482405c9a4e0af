package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aman-zulfiqar/solana-swap-settlement/internal/admin"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/cache"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/constants"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/ledger"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/oracle"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/pool"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/storage"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/token"
	"github.com/sirupsen/logrus"
)

// Engine is the settlement orchestrator: it owns pool state transitions
// and drives the oracle, fee and ledger collaborators for each swap.
type Engine struct {
	pools  pool.Store
	oracle *oracle.Validator
	fees   *token.Registry
	ledger ledger.Ledger
	admin  *admin.Service

	cache storage.EventCache // optional, best-effort
	store storage.EventStore // optional, best-effort

	logger *logrus.Logger
	now    func() time.Time

	// poolMu serializes operations against the same pool within this
	// process; IsLocked on the entity remains the authoritative
	// reentrancy flag.
	mu     sync.Mutex
	poolMu map[string]*sync.Mutex

	minSwapAmount uint64
	feedName      string
}

// EngineConfig holds configuration for the settlement engine
type EngineConfig struct {
	// Oracle settings
	OracleBaseURL  string
	OracleAPIKey   string
	OracleFeedID   string // hex, 32 bytes
	MaxPriceAge    time.Duration
	MinOraclePrice int64
	MaxOraclePrice int64

	// Swap limits
	MinimumSwapAmount uint64

	// Storage
	RedisAddr          string
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUsername string
	ClickHousePassword string
}

// DefaultEngineConfig returns sensible defaults
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		OracleBaseURL:     "https://hermes.pyth.network",
		MaxPriceAge:       constants.MaxPriceAge,
		MinOraclePrice:    constants.MinOraclePrice,
		MaxOraclePrice:    constants.MaxOraclePrice,
		MinimumSwapAmount: constants.MinimumSwapAmount,
		RedisAddr:         "localhost:6379",
	}
}

// Deps are the engine's injected collaborators. Used directly by tests
// and by NewEngine after it has built the production wiring.
type Deps struct {
	Pools  pool.Store
	Oracle *oracle.Validator
	Fees   *token.Registry
	Ledger ledger.Ledger
	Admin  *admin.Service
	Cache  storage.EventCache
	Store  storage.EventStore
	Logger *logrus.Logger
}

// NewEngineWithDeps wires an engine from explicit collaborators.
func NewEngineWithDeps(deps Deps, minSwapAmount uint64, feedName string) (*Engine, error) {
	if deps.Pools == nil {
		return nil, fmt.Errorf("pool store is nil")
	}
	if deps.Oracle == nil {
		return nil, fmt.Errorf("oracle validator is nil")
	}
	if deps.Ledger == nil {
		return nil, fmt.Errorf("ledger is nil")
	}
	if deps.Fees == nil {
		deps.Fees = token.NewRegistry()
	}
	if deps.Logger == nil {
		deps.Logger = logrus.New()
	}
	if minSwapAmount == 0 {
		minSwapAmount = constants.MinimumSwapAmount
	}

	return &Engine{
		pools:         deps.Pools,
		oracle:        deps.Oracle,
		fees:          deps.Fees,
		ledger:        deps.Ledger,
		admin:         deps.Admin,
		cache:         deps.Cache,
		store:         deps.Store,
		logger:        deps.Logger,
		now:           time.Now,
		poolMu:        make(map[string]*sync.Mutex),
		minSwapAmount: minSwapAmount,
		feedName:      feedName,
	}, nil
}

// NewEngine creates an engine with production wiring: Redis-backed pool
// and config stores, the Hermes oracle source, and optional ClickHouse
// history.
func NewEngine(ctx context.Context, cfg EngineConfig, lgr ledger.Ledger, logger *logrus.Logger) (*Engine, error) {
	if logger == nil {
		logger = logrus.New()
	}

	feed, err := oracle.ParseFeedID(cfg.OracleFeedID)
	if err != nil {
		return nil, fmt.Errorf("invalid oracle feed id: %w", err)
	}

	validator, err := oracle.NewValidator(oracle.ValidatorConfig{
		FeedID:   feed,
		MaxAge:   cfg.MaxPriceAge,
		MinPrice: cfg.MinOraclePrice,
		MaxPrice: cfg.MaxOraclePrice,
	}, oracle.NewHermesClient(cfg.OracleBaseURL, cfg.OracleAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create oracle validator: %w", err)
	}

	redisCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.RedisAddr})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	poolStore, err := pool.NewRedisStore(redisCache.Client())
	if err != nil {
		return nil, fmt.Errorf("failed to create pool store: %w", err)
	}

	configStore, err := admin.NewRedisStore(redisCache.Client())
	if err != nil {
		return nil, fmt.Errorf("failed to create config store: %w", err)
	}
	adminSvc, err := admin.NewService(configStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create admin service: %w", err)
	}

	var eventStore storage.EventStore
	if cfg.ClickHouseAddr != "" && cfg.ClickHouseDatabase != "" {
		ch, err := cache.NewClickHouseStore(ctx, cache.ClickHouseConfig{
			Addr:     cfg.ClickHouseAddr,
			Database: cfg.ClickHouseDatabase,
			Username: cfg.ClickHouseUsername,
			Password: cfg.ClickHousePassword,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
		}
		eventStore = ch
	}

	return NewEngineWithDeps(Deps{
		Pools:  poolStore,
		Oracle: validator,
		Fees:   token.NewRegistry(),
		Ledger: lgr,
		Admin:  adminSvc,
		Cache:  redisCache,
		Store:  eventStore,
		Logger: logger,
	}, cfg.MinimumSwapAmount, cfg.OracleFeedID)
}

// WithClock overrides the engine clock, for tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	if now != nil {
		e.now = now
	}
	return e
}

// Fees exposes the transfer fee registry for provisioning flows.
func (e *Engine) Fees() *token.Registry {
	return e.fees
}

// Admin exposes the administrative service, if configured.
func (e *Engine) Admin() *admin.Service {
	return e.admin
}

// Pools exposes the pool store for read paths.
func (e *Engine) Pools() pool.Store {
	return e.pools
}

// Cache exposes the event cache for the read API.
func (e *Engine) Cache() storage.EventCache {
	return e.cache
}

// poolLock returns the per-pool serialization mutex, creating it on
// first use.
func (e *Engine) poolLock(address string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	mu, ok := e.poolMu[address]
	if !ok {
		mu = &sync.Mutex{}
		e.poolMu[address] = mu
	}
	return mu
}

// Close cleans up engine resources.
func (e *Engine) Close() error {
	var errs []error

	if e.cache != nil {
		if err := e.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("cache close: %w", err))
		}
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("event store close: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
