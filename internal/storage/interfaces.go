package storage

import (
	"context"
	"io"

	"github.com/aman-zulfiqar/solana-swap-settlement/internal/models"
)

// EventCache defines the interface for the fast-path event sink
type EventCache interface {
	// AddRecentSwap adds a settled swap to the recent swaps list
	AddRecentSwap(ctx context.Context, swap *models.SwapEvent) error

	// GetRecentSwaps retrieves the most recent settled swaps
	GetRecentSwaps(ctx context.Context, limit int64) ([]*models.SwapEvent, error)

	// UpdatePrice caches the last validated oracle price for a feed
	UpdatePrice(ctx context.Context, feed string, price int64) error

	// GetPrice retrieves the cached oracle price for a feed
	GetPrice(ctx context.Context, feed string) (int64, error)

	// PublishSwap publishes a settled swap to the live Pub/Sub channel
	PublishSwap(ctx context.Context, swap *models.SwapEvent) error

	// PublishPoolCreated publishes a pool-creation event
	PublishPoolCreated(ctx context.Context, ev *models.PoolCreatedEvent) error

	// SubscribeSwaps subscribes to live settlement events
	SubscribeSwaps(ctx context.Context) (<-chan *models.SwapEvent, error)

	// Ping checks if the cache is reachable
	Ping(ctx context.Context) error

	// Close closes the cache connection
	io.Closer
}

// EventStore defines the interface for durable settlement history
type EventStore interface {
	// InsertSwap inserts a settled swap into the store
	InsertSwap(ctx context.Context, swap *models.SwapEvent) error

	// Ping checks if the store is reachable
	Ping(ctx context.Context) error

	// Close closes the store connection
	io.Closer
}
