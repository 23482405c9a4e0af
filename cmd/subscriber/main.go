package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aman-zulfiqar/solana-swap-settlement/internal/cache"
	"github.com/sirupsen/logrus"
)

// main tails the live settlement channel and logs every settled swap.
// Useful as a smoke test for the Pub/Sub path and as a wiring example
// for downstream consumers.
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	eventCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: redisAddr})
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}
	defer func() {
		_ = eventCache.Close()
	}()

	swaps, err := eventCache.SubscribeSwaps(ctx)
	if err != nil {
		logger.WithError(err).Fatal("failed to subscribe to settlement events")
	}

	logger.WithField("addr", redisAddr).Info("subscriber running")

	for {
		select {
		case <-sigCh:
			logger.Info("shutting down subscriber")
			return
		case ev, ok := <-swaps:
			if !ok {
				logger.Info("subscription closed")
				return
			}
			logger.WithFields(logrus.Fields{
				"pool":       ev.Pool,
				"trader":     ev.Trader,
				"amount_in":  ev.AmountIn,
				"amount_out": ev.AmountOut,
				"input_is_a": ev.InputIsA,
				"price":      ev.OraclePrice,
			}).Info("swap settled")
		}
	}
}
