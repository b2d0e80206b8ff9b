// Package pipeline wires the rate source to the local cache and refreshes cached pairs.
package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/theirongolddev/goalplan/internal/forecast"
	"github.com/theirongolddev/goalplan/internal/model"
	"github.com/theirongolddev/goalplan/internal/store"
)

// CachedSource is a read-through cache in front of an upstream RateSource.
// Entries younger than the TTL are served locally. When the upstream fails,
// an expired entry is served instead and the failure is logged.
type CachedSource struct {
	upstream forecast.RateSource
	cache    *store.Cache
	ttl      time.Duration
	noRead   bool
	logger   *zap.Logger
	now      func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

// CacheOption configures a CachedSource.
type CacheOption func(*CachedSource)

// WithoutReads always goes upstream but still records fresh values.
func WithoutReads() CacheOption {
	return func(s *CachedSource) { s.noRead = true }
}

// WithLogger sets the logger for cache decisions.
func WithLogger(l *zap.Logger) CacheOption {
	return func(s *CachedSource) {
		if l != nil {
			s.logger = l.With(zap.String("caller", "pipeline.CachedSource"))
		}
	}
}

// NewCachedSource wraps upstream with cache. A ttl <= 0 disables cache reads.
func NewCachedSource(upstream forecast.RateSource, cache *store.Cache, ttl time.Duration, opts ...CacheOption) *CachedSource {
	s := &CachedSource{
		upstream: upstream,
		cache:    cache,
		ttl:      ttl,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if ttl <= 0 {
		s.noRead = true
	}
	return s
}

func (s *CachedSource) fresh(fetchedAt time.Time) bool {
	return !s.noRead && s.now().Sub(fetchedAt) < s.ttl
}

// CurrentRate serves the spot rate from cache when fresh.
func (s *CachedSource) CurrentRate(ctx context.Context, base, target model.Currency) (float64, error) {
	if base == target {
		return 1, nil
	}

	cached, cacheErr := s.cache.SpotRate(base, target)
	if cacheErr == nil && s.fresh(cached.FetchedAt) {
		s.hits.Add(1)
		return cached.Rate, nil
	}
	s.misses.Add(1)

	rate, err := s.upstream.CurrentRate(ctx, base, target)
	if err != nil {
		if cacheErr == nil && servesStale(ctx, err) {
			s.logger.Warn("serving stale spot rate",
				zap.String("pair", string(base)+"/"+string(target)),
				zap.Time("fetched_at", cached.FetchedAt),
				zap.Error(err))
			return cached.Rate, nil
		}
		return 0, err
	}

	if err := s.cache.SaveSpotRate(base, target, rate, s.now()); err != nil {
		s.logger.Warn("caching spot rate", zap.Error(err))
	}
	return rate, nil
}

// HistoricalRates serves the trailing series from cache when fresh.
func (s *CachedSource) HistoricalRates(ctx context.Context, base, target model.Currency, windowMonths int) ([]model.RateSample, error) {
	if base == target {
		return nil, nil
	}

	cached, cacheErr := s.cache.History(base, target, windowMonths)
	if cacheErr == nil && s.fresh(cached.FetchedAt) {
		s.hits.Add(1)
		return cached.Samples, nil
	}
	s.misses.Add(1)

	samples, err := s.upstream.HistoricalRates(ctx, base, target, windowMonths)
	if err != nil {
		if cacheErr == nil && servesStale(ctx, err) {
			s.logger.Warn("serving stale history",
				zap.String("pair", string(base)+"/"+string(target)),
				zap.Time("fetched_at", cached.FetchedAt),
				zap.Error(err))
			return cached.Samples, nil
		}
		return nil, err
	}

	if err := s.cache.SaveHistory(base, target, windowMonths, samples, s.now()); err != nil {
		s.logger.Warn("caching history", zap.Error(err))
	}
	return samples, nil
}

// Hits returns how many lookups were served from cache.
func (s *CachedSource) Hits() int64 { return s.hits.Load() }

// Misses returns how many lookups went upstream.
func (s *CachedSource) Misses() int64 { return s.misses.Load() }

// CacheDir returns the platform-appropriate cache directory.
// GOALPLAN_CACHE_DIR overrides it.
func CacheDir() string {
	if dir := os.Getenv("GOALPLAN_CACHE_DIR"); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "goalplan")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "goalplan")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "goalplan.db")
}

// servesStale reports whether an upstream failure may fall back to a cached
// entry. A cancelled or expired request gets the error, never stale data.
func servesStale(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
