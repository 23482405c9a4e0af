package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aman-zulfiqar/solana-swap-settlement/internal/constants"
	"github.com/aman-zulfiqar/solana-swap-settlement/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisCache is the fast-path event sink: recent-swap list, cached oracle
// prices, and the live Pub/Sub channel.
type RedisCache struct {
	client *redis.Client
	logger *logrus.Logger
}

type RedisConfig struct {
	Addr string
	DB   int
}

func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisCacheFromClient(client, nil), nil
}

// NewRedisCacheFromClient wraps an existing client (shared with the pool
// and config stores).
func NewRedisCacheFromClient(client *redis.Client, logger *logrus.Logger) *RedisCache {
	if logger == nil {
		logger = logrus.New()
	}
	return &RedisCache{client: client, logger: logger}
}

// Client exposes the underlying Redis client so the pool and config
// stores can share one connection.
func (r *RedisCache) Client() *redis.Client {
	return r.client
}

func (r *RedisCache) AddRecentSwap(ctx context.Context, swap *models.SwapEvent) error {
	data, err := json.Marshal(swap)
	if err != nil {
		return fmt.Errorf("marshal swap: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, constants.RedisKeyRecentSwaps, data)
	pipe.LTrim(ctx, constants.RedisKeyRecentSwaps, 0, constants.MaxRecentSwaps-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("add recent swap: %w", err)
	}
	return nil
}

func (r *RedisCache) GetRecentSwaps(ctx context.Context, limit int64) ([]*models.SwapEvent, error) {
	if limit <= 0 || limit > constants.MaxRecentSwaps {
		limit = constants.MaxRecentSwaps
	}

	vals, err := r.client.LRange(ctx, constants.RedisKeyRecentSwaps, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("get recent swaps: %w", err)
	}

	out := make([]*models.SwapEvent, 0, len(vals))
	for _, v := range vals {
		var ev models.SwapEvent
		if err := json.Unmarshal([]byte(v), &ev); err != nil {
			r.logger.WithError(err).Warn("skipping malformed cached swap")
			continue
		}
		out = append(out, &ev)
	}
	return out, nil
}

func (r *RedisCache) UpdatePrice(ctx context.Context, feed string, price int64) error {
	key := constants.RedisKeyPricePrefix + feed
	if err := r.client.Set(ctx, key, strconv.FormatInt(price, 10), 0).Err(); err != nil {
		return fmt.Errorf("update price: %w", err)
	}
	return nil
}

func (r *RedisCache) GetPrice(ctx context.Context, feed string) (int64, error) {
	val, err := r.client.Get(ctx, constants.RedisKeyPricePrefix+feed).Result()
	if err == redis.Nil {
		return 0, fmt.Errorf("no cached price for feed %s", feed)
	}
	if err != nil {
		return 0, fmt.Errorf("get price: %w", err)
	}

	price, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse cached price: %w", err)
	}
	return price, nil
}

func (r *RedisCache) PublishSwap(ctx context.Context, swap *models.SwapEvent) error {
	data, err := json.Marshal(swap)
	if err != nil {
		return fmt.Errorf("marshal swap: %w", err)
	}
	return r.client.Publish(ctx, constants.PubSubChannelSwaps, data).Err()
}

func (r *RedisCache) PublishPoolCreated(ctx context.Context, ev *models.PoolCreatedEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal pool event: %w", err)
	}
	return r.client.Publish(ctx, constants.PubSubChannelPools, data).Err()
}

// SubscribeSwaps delivers live settlement events until ctx is cancelled.
func (r *RedisCache) SubscribeSwaps(ctx context.Context) (<-chan *models.SwapEvent, error) {
	pubsub := r.client.Subscribe(ctx, constants.PubSubChannelSwaps)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe swaps: %w", err)
	}

	out := make(chan *models.SwapEvent)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev models.SwapEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					r.logger.WithError(err).Warn("skipping malformed swap message")
					continue
				}
				select {
				case out <- &ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
