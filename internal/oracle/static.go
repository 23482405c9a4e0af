package oracle

import (
	"context"
	"fmt"
	"sync"
)

// StaticSource serves a fixed reading per feed. Used in local mode and
// tests where no oracle endpoint is reachable.
type StaticSource struct {
	mu       sync.RWMutex
	readings map[FeedID]PriceReading
}

func NewStaticSource() *StaticSource {
	return &StaticSource{readings: make(map[FeedID]PriceReading)}
}

// Set installs or replaces the reading for a feed.
func (s *StaticSource) Set(reading PriceReading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings[reading.FeedID] = reading
}

func (s *StaticSource) Latest(ctx context.Context, feed FeedID) (*PriceReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.readings[feed]
	if !ok {
		return nil, fmt.Errorf("no reading for feed %s", feed)
	}
	return &r, nil
}
