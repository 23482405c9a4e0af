package oracle

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidPriceOracle covers feed identity mismatches, non-positive
	// prices and readings outside the configured sane band.
	ErrInvalidPriceOracle = errors.New("invalid price oracle")

	// ErrPriceTooOld is the staleness rejection. It is terminal for the
	// current swap attempt; retrying on a later tick is the caller's call.
	ErrPriceTooOld = errors.New("price too old")
)

// FeedID identifies a price feed (32 bytes, Pyth convention).
type FeedID [32]byte

// ParseFeedID decodes a hex-encoded feed identifier, with or without a
// leading 0x.
func ParseFeedID(s string) (FeedID, error) {
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}

	var id FeedID
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("%w: feed id is not hex", ErrInvalidPriceOracle)
	}
	if len(b) != len(id) {
		return id, fmt.Errorf("%w: feed id must be 32 bytes", ErrInvalidPriceOracle)
	}
	copy(id[:], b)
	return id, nil
}

func (id FeedID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

// PriceReading is an ephemeral oracle observation: a signed fixed-point
// price at 8 fractional digits, the feed it belongs to, and when it was
// published. Consumed once per swap, never persisted.
type PriceReading struct {
	Price       int64
	FeedID      FeedID
	PublishTime time.Time
}

// Age returns how old the reading is relative to now.
func (r *PriceReading) Age(now time.Time) time.Duration {
	return now.Sub(r.PublishTime)
}
