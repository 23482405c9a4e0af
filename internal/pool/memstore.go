package pool

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store used in local mode and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	pools map[string]*SwapPool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pools: make(map[string]*SwapPool)}
}

func (s *MemoryStore) Get(ctx context.Context, address string) (*SwapPool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pools[address]
	if !ok {
		return nil, ErrPoolNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) Put(ctx context.Context, p *SwapPool) error {
	if err := VerifyAddress(p); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *p
	s.pools[p.Address] = &cp
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*SwapPool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*SwapPool, 0, len(s.pools))
	for _, p := range s.pools {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}
