package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aman-zulfiqar/solana-swap-settlement/internal/constants"
)

type Config struct {
	// API settings
	APIAddr string
	APIKey  string
	DevMode bool

	// Dev-mode ledger seeding: comma-separated owner:mint:amount entries
	DevLedgerSeed string

	// Redis settings
	RedisAddr string

	// ClickHouse settings
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUsername string
	ClickHousePassword string

	// Oracle settings
	OracleBaseURL  string
	OracleAPIKey   string
	OracleFeedID   string
	MaxPriceAge    time.Duration
	MinOraclePrice int64
	MaxOraclePrice int64

	// Swap limits
	MinimumSwapAmount uint64

	// Administrative identities (base58 public keys)
	AdminPubkey        string
	FeeRecipientPubkey string
	OperatorPubkey     string

	// AI settings
	OpenRouterAPIKey string
}

func Load() *Config {
	return &Config{
		// API
		APIAddr: getEnv("API_ADDR", ":8090"),
		APIKey:  getEnv("API_KEY", ""),
		DevMode: getBoolEnv("DEV_MODE", false),

		DevLedgerSeed: getEnv("DEV_LEDGER_SEED", ""),

		// Redis
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		// ClickHouse
		ClickHouseAddr:     getEnv("CLICKHOUSE_ADDR", ""),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "settlement"),
		ClickHouseUsername: getEnv("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),

		// Oracle
		OracleBaseURL:  getEnv("ORACLE_BASE_URL", "https://hermes.pyth.network"),
		OracleAPIKey:   getEnv("ORACLE_API_KEY", ""),
		OracleFeedID:   getEnv("ORACLE_FEED_ID", ""),
		MaxPriceAge:    getDurationEnv("MAX_PRICE_AGE", constants.MaxPriceAge),
		MinOraclePrice: getInt64Env("MIN_ORACLE_PRICE", constants.MinOraclePrice),
		MaxOraclePrice: getInt64Env("MAX_ORACLE_PRICE", constants.MaxOraclePrice),

		// Swap limits
		MinimumSwapAmount: getUint64Env("MINIMUM_SWAP_AMOUNT", constants.MinimumSwapAmount),

		// Admin identities
		AdminPubkey:        getEnv("ADMIN_PUBKEY", ""),
		FeeRecipientPubkey: getEnv("FEE_RECIPIENT_PUBKEY", ""),
		OperatorPubkey:     getEnv("OPERATOR_PUBKEY", ""),

		// AI
		OpenRouterAPIKey: getEnv("OPENROUTER_API_KEY", ""),
	}
}

func (c *Config) Validate() error {
	if c.APIAddr == "" {
		return fmt.Errorf("API_ADDR must not be empty")
	}
	if c.OracleFeedID == "" {
		return fmt.Errorf("ORACLE_FEED_ID is required")
	}
	if c.MaxPriceAge <= 0 {
		return fmt.Errorf("MAX_PRICE_AGE must be positive")
	}
	if c.MinOraclePrice <= 0 || c.MaxOraclePrice < c.MinOraclePrice {
		return fmt.Errorf("oracle price band is invalid")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getInt64Env(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			return n
		}
	}
	return defaultVal
}

func getUint64Env(key string, defaultVal uint64) uint64 {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.ParseUint(val, 10, 64); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
