package oracle

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFeedHex = "0x" + strings.Repeat("ab", 32)

func testFeed(t *testing.T) FeedID {
	feed, err := ParseFeedID(testFeedHex)
	require.NoError(t, err)
	return feed
}

func newTestValidator(t *testing.T, source Source, now time.Time) *Validator {
	v, err := NewValidator(ValidatorConfig{
		FeedID:   testFeed(t),
		MaxAge:   300 * time.Second,
		MinPrice: 1_000,
		MaxPrice: 1_000_000_000,
	}, source)
	require.NoError(t, err)
	return v.WithClock(func() time.Time { return now })
}

func TestParseFeedID(t *testing.T) {
	feed, err := ParseFeedID(testFeedHex)
	require.NoError(t, err)
	assert.Equal(t, testFeedHex, feed.String())

	// 0x prefix is optional
	same, err := ParseFeedID(strings.Repeat("ab", 32))
	require.NoError(t, err)
	assert.Equal(t, feed, same)

	_, err = ParseFeedID("not-hex")
	assert.ErrorIs(t, err, ErrInvalidPriceOracle)

	_, err = ParseFeedID("abcd")
	assert.ErrorIs(t, err, ErrInvalidPriceOracle)
}

func TestValidator_AcceptsFreshReading(t *testing.T) {
	now := time.Now()
	source := NewStaticSource()
	source.Set(PriceReading{
		Price:       150_000_000,
		FeedID:      testFeed(t),
		PublishTime: now.Add(-10 * time.Second),
	})

	v := newTestValidator(t, source, now)

	price, err := v.GetValidatedPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(150_000_000), price)
}

func TestValidator_RejectsStaleReading(t *testing.T) {
	now := time.Now()
	source := NewStaticSource()
	source.Set(PriceReading{
		Price:       150_000_000,
		FeedID:      testFeed(t),
		PublishTime: now.Add(-301 * time.Second),
	})

	v := newTestValidator(t, source, now)

	_, err := v.GetValidatedPrice(context.Background())
	assert.ErrorIs(t, err, ErrPriceTooOld)

	// Exactly at the boundary is still acceptable
	source.Set(PriceReading{
		Price:       150_000_000,
		FeedID:      testFeed(t),
		PublishTime: now.Add(-300 * time.Second),
	})
	_, err = v.GetValidatedPrice(context.Background())
	assert.NoError(t, err)
}

func TestValidator_RejectsFeedMismatch(t *testing.T) {
	now := time.Now()
	other, err := ParseFeedID(strings.Repeat("cd", 32))
	require.NoError(t, err)

	source := NewStaticSource()
	source.Set(PriceReading{
		Price:       150_000_000,
		FeedID:      other,
		PublishTime: now,
	})

	// The wrong-feed reading is available under its own feed id, so
	// exercise Validate directly
	v := newTestValidator(t, source, now)
	reading, err := source.Latest(context.Background(), other)
	require.NoError(t, err)

	_, err = v.Validate(reading)
	assert.ErrorIs(t, err, ErrInvalidPriceOracle)
}

func TestValidator_RejectsNonPositivePrice(t *testing.T) {
	now := time.Now()
	v := newTestValidator(t, NewStaticSource(), now)

	for _, price := range []int64{0, -1, -150_000_000} {
		_, err := v.Validate(&PriceReading{
			Price:       price,
			FeedID:      testFeed(t),
			PublishTime: now,
		})
		assert.ErrorIs(t, err, ErrInvalidPriceOracle, "price %d must be rejected", price)
	}
}

func TestValidator_RejectsOutOfBandPrice(t *testing.T) {
	now := time.Now()
	v := newTestValidator(t, NewStaticSource(), now)

	_, err := v.Validate(&PriceReading{Price: 999, FeedID: testFeed(t), PublishTime: now})
	assert.ErrorIs(t, err, ErrInvalidPriceOracle)

	_, err = v.Validate(&PriceReading{Price: 1_000_000_001, FeedID: testFeed(t), PublishTime: now})
	assert.ErrorIs(t, err, ErrInvalidPriceOracle)

	// Band edges are inclusive
	price, err := v.Validate(&PriceReading{Price: 1_000, FeedID: testFeed(t), PublishTime: now})
	require.NoError(t, err)
	assert.Equal(t, int64(1_000), price)

	price, err = v.Validate(&PriceReading{Price: 1_000_000_000, FeedID: testFeed(t), PublishTime: now})
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000_000), price)
}

func TestValidator_SourceErrorWrapsOracle(t *testing.T) {
	v := newTestValidator(t, NewStaticSource(), time.Now())

	// Empty source yields no reading at all
	_, err := v.GetValidatedPrice(context.Background())
	assert.ErrorIs(t, err, ErrInvalidPriceOracle)
}

func TestNormalizeExponent(t *testing.T) {
	// Already at the target scale
	out, err := normalizeExponent(150_000_000, -8)
	require.NoError(t, err)
	assert.Equal(t, int64(150_000_000), out)

	// Coarser exponents are scaled up
	out, err = normalizeExponent(150, -2)
	require.NoError(t, err)
	assert.Equal(t, int64(150_000_000), out)

	// Finer exponents are scaled down with truncation
	out, err = normalizeExponent(1_500_000_005, -9)
	require.NoError(t, err)
	assert.Equal(t, int64(150_000_000), out)

	// Rescale overflow is rejected, not wrapped
	_, err = normalizeExponent(1<<62, 0)
	assert.ErrorIs(t, err, ErrInvalidPriceOracle)
}
