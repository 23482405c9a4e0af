package pool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aman-zulfiqar/solana-swap-settlement/internal/constants"
	"github.com/redis/go-redis/v9"
)

// Store persists swap pools. Pools are created once and then mutated only
// by successful swaps or administrative flows; they are never deleted.
type Store interface {
	Get(ctx context.Context, address string) (*SwapPool, error)
	Put(ctx context.Context, p *SwapPool) error
	List(ctx context.Context) ([]*SwapPool, error)
}

// RedisStore keeps pools as JSON values under a key prefix plus a set
// index, mirroring how the rest of the service uses Redis.
type RedisStore struct {
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(ctx context.Context, address string) (*SwapPool, error) {
	val, err := s.client.Get(ctx, poolKey(address)).Result()
	if err == redis.Nil {
		return nil, ErrPoolNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pool: %w", err)
	}

	var p SwapPool
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return nil, fmt.Errorf("unmarshal pool: %w", err)
	}
	if err := VerifyAddress(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *RedisStore) Put(ctx context.Context, p *SwapPool) error {
	if err := VerifyAddress(p); err != nil {
		return err
	}

	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal pool: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, poolKey(p.Address), b, 0)
	pipe.SAdd(ctx, constants.RedisKeyPoolIndex, p.Address)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("put pool: %w", err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]*SwapPool, error) {
	addrs, err := s.client.SMembers(ctx, constants.RedisKeyPoolIndex).Result()
	if err != nil {
		return nil, fmt.Errorf("list pool index: %w", err)
	}
	if len(addrs) == 0 {
		return []*SwapPool{}, nil
	}

	keys := make([]string, 0, len(addrs))
	for _, a := range addrs {
		keys = append(keys, poolKey(a))
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget pools: %w", err)
	}

	out := make([]*SwapPool, 0, len(vals))
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var p SwapPool
		if err := json.Unmarshal([]byte(str), &p); err != nil {
			continue
		}
		out = append(out, &p)
	}
	return out, nil
}

func poolKey(address string) string {
	return constants.RedisKeyPoolPrefix + address
}
