package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/aman-zulfiqar/solana-swap-settlement/internal/ai"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/config"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/engine"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/ledger"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/server"
	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// env bootstrap function
func loadEnv(logger *logrus.Logger) {
	// Get the project root directory (where go.mod is)
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

// main is the entry point for the settlement API server
// It initializes all dependencies and starts the HTTP server with graceful shutdown
func main() {
	// Initialize structured logger with custom formatting
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)

	// load .env BEFORE anything reads os.Getenv
	loadEnv(logger)

	// Load and validate configuration from environment variables
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown (Ctrl+C, SIGTERM)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// The service settles against an in-process ledger. In dev mode it
	// can be pre-funded so pools and swaps work out of the box.
	lgr := ledger.NewMemoryLedger()
	if cfg.DevMode && cfg.DevLedgerSeed != "" {
		if err := lgr.Seed(cfg.DevLedgerSeed); err != nil {
			logger.WithError(err).Fatal("invalid DEV_LEDGER_SEED")
		}
		logger.Info("dev ledger seeded from DEV_LEDGER_SEED")
	}

	// Build the settlement engine with production wiring: Redis pool and
	// config stores, the Hermes oracle, optional ClickHouse history
	engCfg := engine.DefaultEngineConfig()
	engCfg.OracleBaseURL = cfg.OracleBaseURL
	engCfg.OracleAPIKey = cfg.OracleAPIKey
	engCfg.OracleFeedID = cfg.OracleFeedID
	engCfg.MaxPriceAge = cfg.MaxPriceAge
	engCfg.MinOraclePrice = cfg.MinOraclePrice
	engCfg.MaxOraclePrice = cfg.MaxOraclePrice
	engCfg.MinimumSwapAmount = cfg.MinimumSwapAmount
	engCfg.RedisAddr = cfg.RedisAddr
	engCfg.ClickHouseAddr = cfg.ClickHouseAddr
	engCfg.ClickHouseDatabase = cfg.ClickHouseDatabase
	engCfg.ClickHouseUsername = cfg.ClickHouseUsername
	engCfg.ClickHousePassword = cfg.ClickHousePassword

	eng, err := engine.NewEngine(ctx, engCfg, lgr, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to create settlement engine")
	}
	defer func() {
		_ = eng.Close()
	}()

	// Bootstrap the protocol config on first run if identities are set
	if cfg.AdminPubkey != "" {
		adminPk, err := solana.PublicKeyFromBase58(cfg.AdminPubkey)
		if err != nil {
			logger.WithError(err).Fatal("invalid ADMIN_PUBKEY")
		}
		feePk := adminPk
		if cfg.FeeRecipientPubkey != "" {
			if feePk, err = solana.PublicKeyFromBase58(cfg.FeeRecipientPubkey); err != nil {
				logger.WithError(err).Fatal("invalid FEE_RECIPIENT_PUBKEY")
			}
		}
		opPk := adminPk
		if cfg.OperatorPubkey != "" {
			if opPk, err = solana.PublicKeyFromBase58(cfg.OperatorPubkey); err != nil {
				logger.WithError(err).Fatal("invalid OPERATOR_PUBKEY")
			}
		}
		if _, err := eng.Admin().Initialize(ctx, adminPk, feePk, opPk); err != nil {
			logger.WithError(err).Fatal("failed to initialize protocol config")
		}
	}

	// Initialize AI agent for natural language queries (optional)
	var agent *ai.Agent
	aiBase := ai.AgentConfig{
		ClickHouseAddr:     cfg.ClickHouseAddr,
		ClickHouseDatabase: cfg.ClickHouseDatabase,
		ClickHouseUsername: cfg.ClickHouseUsername,
		ClickHousePassword: cfg.ClickHousePassword,
		OpenRouterAPIKey:   cfg.OpenRouterAPIKey,
		Model:              "openai/gpt-4.1-mini", // Default model for NL→SQL translation
		Logger:             logger,
	}

	// Only initialize AI if OpenRouter API key is provided
	if cfg.OpenRouterAPIKey != "" {
		a, err := ai.NewAgent(ctx, aiBase)
		if err != nil {
			logger.WithError(err).Warn("failed to initialize ai agent")
		} else {
			agent = a
			defer func() {
				_ = agent.Close() // Clean up AI resources on shutdown
			}()
		}
	}

	// Create handlers with all dependencies injected
	h := &server.Handlers{
		Engine:       eng,         // Settlement engine
		Cache:        eng.Cache(), // Redis-backed event cache
		AI:           agent,       // Optional AI agent (can be nil)
		AIBaseConfig: aiBase,      // Base AI configuration for model overrides
		DevMode:      cfg.DevMode, // Enable detailed error responses in development
		Logger:       logger,      // Structured logger
	}

	// Create HTTP server with configuration and handlers
	srv, err := server.NewServer(server.ServerDeps{
		Handlers: h,
		Config: server.ServerConfig{
			Addr:    cfg.APIAddr, // Server bind address (e.g., ":8090")
			DevMode: cfg.DevMode, // Development mode flag
			APIKey:  cfg.APIKey,  // Optional API key for authentication
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create http server")
	}

	// Setup graceful shutdown in a separate goroutine
	go func() {
		<-sigCh // Wait for shutdown signal
		logger.Info("shutting down")
		cancel()                               // Cancel context to stop ongoing operations
		_ = srv.Shutdown(context.Background()) // Gracefully shutdown HTTP server
	}()

	// Start the HTTP server
	logger.WithField("addr", cfg.APIAddr).Info("settlement api starting")
	if err := srv.Start(); err != nil {
		// "http: Server closed" is expected during graceful shutdown
		if err.Error() == "http: Server closed" {
			return
		}
		logger.WithError(err).Fatal("settlement api failed")
	}

	// Wait for server to be fully shut down
	if err := srv.WaitClosed(context.Background()); err != nil {
		fmt.Println(err)
	}
}
