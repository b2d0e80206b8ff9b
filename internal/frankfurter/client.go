// Package frankfurter provides a client for the Frankfurter exchange rate API.
package frankfurter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/theirongolddev/goalplan/internal/model"
)

const (
	requestTimeout = 12 * time.Second
	maxBodySize    = 4 << 20 // 4 MB
	dateLayout     = "2006-01-02"
)

var (
	// ErrUnknownCurrency indicates the API does not quote the requested pair.
	ErrUnknownCurrency = errors.New("frankfurter: unknown currency")
	// ErrRateLimited indicates the API rate limit was hit.
	ErrRateLimited = errors.New("frankfurter: rate limited")
	// ErrNoData indicates a well-formed response without the requested rate.
	ErrNoData = errors.New("frankfurter: no rate in response")
)

// Client fetches spot and historical rates. It satisfies forecast.RateSource.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	now     func() time.Time
}

// NewClient creates a client for the given API base URL.
// A nil logger disables logging.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  logger.With(zap.String("caller", "frankfurter.Client")),
		now:     time.Now,
	}
}

// CurrentRate returns the latest base->target rate. Same-currency requests
// return 1 without a network call.
func (c *Client) CurrentRate(ctx context.Context, base, target model.Currency) (float64, error) {
	if base == target {
		return 1, nil
	}

	q := url.Values{"from": {string(base)}, "to": {string(target)}}
	body, err := c.get(ctx, "/latest", q)
	if err != nil {
		return 0, err
	}

	var raw LatestResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return 0, fmt.Errorf("frankfurter: parsing latest: %w", err)
	}
	rate, ok := raw.Rates[string(target)]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("%w: %s/%s", ErrNoData, base, target)
	}
	return rate, nil
}

// HistoricalRates returns daily base->target rates over the trailing
// windowMonths, sorted by date ascending.
func (c *Client) HistoricalRates(ctx context.Context, base, target model.Currency, windowMonths int) ([]model.RateSample, error) {
	if windowMonths < 1 {
		windowMonths = 1
	}
	end := c.now().UTC()
	start := end.AddDate(0, -windowMonths, 0)
	return c.Range(ctx, base, target, start, end)
}

// Range returns base->target rates between start and end inclusive, sorted by date.
// Same-currency requests return nil without a network call.
func (c *Client) Range(ctx context.Context, base, target model.Currency, start, end time.Time) ([]model.RateSample, error) {
	if base == target {
		return nil, nil
	}

	path := fmt.Sprintf("/%s..%s", start.Format(dateLayout), end.Format(dateLayout))
	q := url.Values{"from": {string(base)}, "to": {string(target)}}
	body, err := c.get(ctx, path, q)
	if err != nil {
		return nil, err
	}

	var raw RangeResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("frankfurter: parsing range: %w", err)
	}
	return parseRange(raw, target)
}

// parseRange flattens the date-keyed map into samples sorted by date.
// Days without a quote for target are skipped.
func parseRange(raw RangeResponse, target model.Currency) ([]model.RateSample, error) {
	out := make([]model.RateSample, 0, len(raw.Rates))
	for day, rates := range raw.Rates {
		rate, ok := rates[string(target)]
		if !ok {
			continue
		}
		d, err := time.Parse(dateLayout, day)
		if err != nil {
			return nil, fmt.Errorf("frankfurter: parsing date %q: %w", day, err)
		}
		out = append(out, model.RateSample{Date: d, Rate: rate})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// get performs a GET request and returns the response body.
func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("frankfurter: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "github.com/theirongolddev/goalplan/1.0")

	start := time.Now()
	resp, err := c.http.Do(req)
	c.logger.Debug("request", zap.String("path", path), zap.Duration("duration", time.Since(start)))
	if err != nil {
		return nil, fmt.Errorf("frankfurter: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("frankfurter: reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusUnprocessableEntity:
		var e errorResponse
		_ = json.Unmarshal(body, &e)
		if e.Message == "" {
			e.Message = q.Get("from") + "/" + q.Get("to")
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownCurrency, e.Message)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.logger.Warn("unexpected status", zap.Int("status", resp.StatusCode), zap.String("path", path))
		return nil, fmt.Errorf("frankfurter: unexpected status %d", resp.StatusCode)
	}
	return body, nil
}
