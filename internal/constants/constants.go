package constants

import "time"

// Redis keys
const (
	RedisKeyRecentSwaps = "settlement:swaps:recent"
	RedisKeyPricePrefix = "settlement:price:"
	RedisKeyPoolIndex   = "settlement:pools:index"
	RedisKeyPoolPrefix  = "settlement:pools:"
	RedisKeyConfig      = "settlement:config"
)

// Redis Pub/Sub channels
const (
	PubSubChannelSwaps = "settlement:swaps:live"
	PubSubChannelPools = "settlement:pools:live"
)

// Limits
const (
	MaxRecentSwaps = 100
)

// Swap fee bounds (basis points, parts per 10000)
const (
	DefaultSwapFeeBasisPoints uint16 = 30   // 0.3%
	MaxSwapFeeBasisPoints     uint16 = 1000 // 10%
	MaxTransferFeeBasisPoints uint16 = 1000 // 10% cap on per-mint transfer fees
	BasisPointDenominator     uint64 = 10000
)

// Swap amount bounds
const (
	// MinimumSwapAmount is the smallest input the settlement core accepts,
	// in raw token units.
	MinimumSwapAmount uint64 = 1000

	// MaxSwapInputAmount is a conservative overflow guard, not a business
	// limit: inputs above u64max/2 are rejected before any arithmetic.
	MaxSwapInputAmount uint64 = ^uint64(0) / 2
)

// Pool provisioning
const (
	// MinPoolReserves is the minimum initial balance of each side required
	// to create a pool.
	MinPoolReserves uint64 = 1_000_000
)

// Price oracle
const (
	// PriceScale is the fixed-point scale of oracle prices (8 fractional
	// digits, Pyth convention).
	PriceScale int64 = 100_000_000

	// MaxPriceAge is the default staleness bound for oracle readings.
	MaxPriceAge = 300 * time.Second

	// MinOraclePrice and MaxOraclePrice bound acceptable readings in the
	// feed's fixed-point scale. Readings outside the band are treated as
	// corrupted or adversarial.
	MinOraclePrice int64 = 1_000
	MaxOraclePrice int64 = 1_000_000_000
)

// Epoch used for transfer fee schedules
const (
	EpochDuration = 48 * time.Hour
)

// Pool address derivation seed
const (
	PoolSeedPrefix = "swap_pool"
)
