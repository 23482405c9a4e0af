package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// HermesClient fetches the latest price update for a feed from a Pyth
// Hermes-compatible HTTP endpoint.
type HermesClient struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewHermesClient(baseURL, apiKey string) *HermesClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "https://hermes.pyth.network"
	}
	return &HermesClient{
		BaseURL: baseURL,
		APIKey:  strings.TrimSpace(apiKey),
		HTTP: &http.Client{
			Timeout: 12 * time.Second,
		},
	}
}

type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	b := strings.TrimSpace(string(e.Body))
	if b == "" {
		return fmt.Sprintf("hermes http %d", e.StatusCode)
	}
	return fmt.Sprintf("hermes http %d: %s", e.StatusCode, b)
}

type hermesResponse struct {
	Parsed []struct {
		ID    string `json:"id"`
		Price struct {
			Price       string `json:"price"`
			Expo        int32  `json:"expo"`
			PublishTime int64  `json:"publish_time"`
		} `json:"price"`
	} `json:"parsed"`
}

// Latest implements Source against the /v2/updates/price/latest endpoint.
func (c *HermesClient) Latest(ctx context.Context, feed FeedID) (*PriceReading, error) {
	q := url.Values{}
	q.Set("ids[]", feed.String())

	u := c.BaseURL + "/v2/updates/price/latest?" + q.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("accept", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("x-api-key", c.APIKey)
	}

	res, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: res.StatusCode, Body: body}
	}

	var out hermesResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode hermes response: %w", err)
	}
	if len(out.Parsed) == 0 {
		return nil, fmt.Errorf("hermes returned no price update for %s", feed)
	}

	p := out.Parsed[0]
	id, err := ParseFeedID(p.ID)
	if err != nil {
		return nil, err
	}

	raw, err := strconv.ParseInt(p.Price.Price, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse hermes price %q: %w", p.Price.Price, err)
	}

	price, err := normalizeExponent(raw, p.Price.Expo)
	if err != nil {
		return nil, err
	}

	return &PriceReading{
		Price:       price,
		FeedID:      id,
		PublishTime: time.Unix(p.Price.PublishTime, 0),
	}, nil
}

// normalizeExponent rescales a feed price to the core's 1e8 fixed point.
// Pyth feeds publish at expo -8 almost universally; other exponents are
// rescaled with overflow checks rather than trusted.
func normalizeExponent(raw int64, expo int32) (int64, error) {
	const targetExpo = -8

	switch {
	case expo == targetExpo:
		return raw, nil
	case expo > targetExpo:
		shift := expo - targetExpo
		for i := int32(0); i < shift; i++ {
			if raw > math.MaxInt64/10 || raw < math.MinInt64/10 {
				return 0, fmt.Errorf("%w: price exponent rescale overflow", ErrInvalidPriceOracle)
			}
			raw *= 10
		}
		return raw, nil
	default:
		shift := targetExpo - expo
		for i := int32(0); i < shift; i++ {
			raw /= 10
		}
		return raw, nil
	}
}
