package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/aman-zulfiqar/solana-swap-settlement/internal/constants"
)

// Source supplies raw price readings for a feed.
type Source interface {
	Latest(ctx context.Context, feed FeedID) (*PriceReading, error)
}

// ValidatorConfig bounds what the validator will accept. Values are
// injected rather than compiled in so tests can exercise the boundaries.
type ValidatorConfig struct {
	FeedID   FeedID
	MaxAge   time.Duration
	MinPrice int64 // inclusive, feed fixed-point scale
	MaxPrice int64 // inclusive
}

// DefaultValidatorConfig returns the production bounds for a feed.
func DefaultValidatorConfig(feed FeedID) ValidatorConfig {
	return ValidatorConfig{
		FeedID:   feed,
		MaxAge:   constants.MaxPriceAge,
		MinPrice: constants.MinOraclePrice,
		MaxPrice: constants.MaxOraclePrice,
	}
}

// Validator fetches a reading from its source and accepts it only if the
// feed identity, freshness, sign and absolute band all check out. Every
// rejection is terminal for the current swap attempt.
type Validator struct {
	cfg    ValidatorConfig
	source Source
	now    func() time.Time
}

func NewValidator(cfg ValidatorConfig, source Source) (*Validator, error) {
	if source == nil {
		return nil, fmt.Errorf("oracle source is nil")
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = constants.MaxPriceAge
	}
	return &Validator{cfg: cfg, source: source, now: time.Now}, nil
}

// WithClock overrides the wall clock, for tests.
func (v *Validator) WithClock(now func() time.Time) *Validator {
	if now != nil {
		v.now = now
	}
	return v
}

// GetValidatedPrice returns the current validated price for the
// configured feed, in 1e8 fixed point.
func (v *Validator) GetValidatedPrice(ctx context.Context) (int64, error) {
	reading, err := v.source.Latest(ctx, v.cfg.FeedID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPriceOracle, err)
	}
	return v.Validate(reading)
}

// Validate applies the full acceptance policy to a reading.
func (v *Validator) Validate(reading *PriceReading) (int64, error) {
	if reading == nil {
		return 0, fmt.Errorf("%w: nil reading", ErrInvalidPriceOracle)
	}

	// Feed identity first: a fresh, in-band price for the wrong market is
	// still the wrong price.
	if reading.FeedID != v.cfg.FeedID {
		return 0, fmt.Errorf("%w: feed mismatch, got %s want %s",
			ErrInvalidPriceOracle, reading.FeedID, v.cfg.FeedID)
	}

	if age := reading.Age(v.now()); age > v.cfg.MaxAge {
		return 0, fmt.Errorf("%w: published %s ago, max %s",
			ErrPriceTooOld, age.Truncate(time.Second), v.cfg.MaxAge)
	}

	if reading.Price <= 0 {
		return 0, fmt.Errorf("%w: non-positive price %d", ErrInvalidPriceOracle, reading.Price)
	}

	if reading.Price < v.cfg.MinPrice || reading.Price > v.cfg.MaxPrice {
		return 0, fmt.Errorf("%w: price %d outside band [%d, %d]",
			ErrInvalidPriceOracle, reading.Price, v.cfg.MinPrice, v.cfg.MaxPrice)
	}

	return reading.Price, nil
}
