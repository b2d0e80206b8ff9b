package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/goalplan/internal/model"
	"github.com/theirongolddev/goalplan/internal/store"
)

type countingSource struct {
	mu      sync.Mutex
	rate    float64
	history []model.RateSample
	err     error
	current int
	hist    int
}

func (c *countingSource) CurrentRate(_ context.Context, _, _ model.Currency) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current++
	return c.rate, c.err
}

func (c *countingSource) HistoricalRates(_ context.Context, _, _ model.Currency, _ int) ([]model.RateSample, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hist++
	return c.history, c.err
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestCache(t *testing.T) *store.Cache {
	t.Helper()
	c, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func newTestSource(t *testing.T, up *countingSource, ttl time.Duration, opts ...CacheOption) (*CachedSource, *clock) {
	t.Helper()
	clk := &clock{t: time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)}
	s := NewCachedSource(up, newTestCache(t), ttl, opts...)
	s.now = clk.now
	return s, clk
}

func TestCachedSource_ServesFreshEntries(t *testing.T) {
	up := &countingSource{rate: 0.9}
	s, clk := newTestSource(t, up, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		rate, err := s.CurrentRate(ctx, "USD", "EUR")
		if err != nil {
			t.Fatalf("CurrentRate: %v", err)
		}
		if rate != 0.9 {
			t.Errorf("rate = %v, want 0.9", rate)
		}
	}
	if up.current != 1 {
		t.Errorf("upstream calls = %d, want 1", up.current)
	}
	if s.Hits() != 2 || s.Misses() != 1 {
		t.Errorf("hits/misses = %d/%d, want 2/1", s.Hits(), s.Misses())
	}

	clk.t = clk.t.Add(2 * time.Hour)
	up.rate = 0.95
	rate, err := s.CurrentRate(ctx, "USD", "EUR")
	if err != nil {
		t.Fatalf("CurrentRate: %v", err)
	}
	if rate != 0.95 || up.current != 2 {
		t.Errorf("after expiry rate = %v calls = %d, want 0.95 and 2", rate, up.current)
	}
}

func TestCachedSource_History(t *testing.T) {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	up := &countingSource{history: []model.RateSample{{Date: day, Rate: 1.1}, {Date: day.AddDate(0, 0, 1), Rate: 1.2}}}
	s, _ := newTestSource(t, up, time.Hour)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got, err := s.HistoricalRates(ctx, "GBP", "EUR", 6)
		if err != nil {
			t.Fatalf("HistoricalRates: %v", err)
		}
		if len(got) != 2 || got[1].Rate != 1.2 {
			t.Errorf("samples = %+v", got)
		}
	}
	if up.hist != 1 {
		t.Errorf("upstream calls = %d, want 1", up.hist)
	}
}

func TestCachedSource_StaleOnError(t *testing.T) {
	up := &countingSource{rate: 0.9}
	s, clk := newTestSource(t, up, time.Hour)
	ctx := context.Background()

	if _, err := s.CurrentRate(ctx, "USD", "EUR"); err != nil {
		t.Fatalf("CurrentRate: %v", err)
	}

	clk.t = clk.t.Add(48 * time.Hour)
	up.err = errors.New("offline")
	rate, err := s.CurrentRate(ctx, "USD", "EUR")
	if err != nil {
		t.Fatalf("CurrentRate with stale entry: %v", err)
	}
	if rate != 0.9 {
		t.Errorf("rate = %v, want stale 0.9", rate)
	}

	if _, err := s.CurrentRate(ctx, "USD", "INR"); err == nil {
		t.Error("expected error with no cached entry")
	}
}

func TestCachedSource_DeadlineSkipsStale(t *testing.T) {
	up := &countingSource{rate: 0.9, history: []model.RateSample{{Date: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), Rate: 0.9}}}
	s, clk := newTestSource(t, up, time.Hour)

	if _, err := s.CurrentRate(context.Background(), "USD", "EUR"); err != nil {
		t.Fatalf("CurrentRate: %v", err)
	}
	if _, err := s.HistoricalRates(context.Background(), "USD", "EUR", 6); err != nil {
		t.Fatalf("HistoricalRates: %v", err)
	}
	clk.t = clk.t.Add(48 * time.Hour)

	t.Run("expired request", func(t *testing.T) {
		ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
		defer cancel()
		up.err = context.DeadlineExceeded

		if _, err := s.CurrentRate(ctx, "USD", "EUR"); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("CurrentRate err = %v, want DeadlineExceeded", err)
		}
		if _, err := s.HistoricalRates(ctx, "USD", "EUR", 6); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("HistoricalRates err = %v, want DeadlineExceeded", err)
		}
	})

	t.Run("upstream deadline", func(t *testing.T) {
		up.err = fmt.Errorf("fetching rates: %w", context.DeadlineExceeded)

		if _, err := s.CurrentRate(context.Background(), "USD", "EUR"); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("CurrentRate err = %v, want DeadlineExceeded", err)
		}
	})
}

func TestCachedSource_WithoutReads(t *testing.T) {
	up := &countingSource{rate: 0.9}
	s, _ := newTestSource(t, up, time.Hour, WithoutReads())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := s.CurrentRate(ctx, "USD", "EUR"); err != nil {
			t.Fatalf("CurrentRate: %v", err)
		}
	}
	if up.current != 2 {
		t.Errorf("upstream calls = %d, want 2", up.current)
	}
	if q, err := s.cache.SpotRate("USD", "EUR"); err != nil || q.Rate != 0.9 {
		t.Errorf("cached = %+v, %v; want value still recorded", q, err)
	}
}

func TestCachedSource_SameCurrency(t *testing.T) {
	up := &countingSource{err: errors.New("must not be called")}
	s, _ := newTestSource(t, up, time.Hour)

	rate, err := s.CurrentRate(context.Background(), "EUR", "EUR")
	if err != nil || rate != 1 {
		t.Errorf("CurrentRate = %v, %v; want 1, nil", rate, err)
	}
	if up.current != 0 {
		t.Errorf("upstream calls = %d, want 0", up.current)
	}
}

func TestRefresh(t *testing.T) {
	up := &countingSource{rate: 0.9, history: []model.RateSample{{Date: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), Rate: 0.91}}}
	s, _ := newTestSource(t, up, time.Hour)

	pairs, err := ParsePairs([]string{"USD/EUR", "inr-eur", "EUR/EUR"})
	if err != nil {
		t.Fatalf("ParsePairs: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("pairs = %v, want same-currency pair dropped", pairs)
	}

	var mu sync.Mutex
	var last int
	res := s.Refresh(context.Background(), pairs, 6, func(cur, total int) {
		mu.Lock()
		defer mu.Unlock()
		if cur > last {
			last = cur
		}
		if total != 2 {
			t.Errorf("total = %d, want 2", total)
		}
	})

	if res.Failed != 0 {
		t.Fatalf("failed = %d, want 0: %+v", res.Failed, res.Pairs)
	}
	if last != 2 {
		t.Errorf("progress reached %d, want 2", last)
	}
	for _, pr := range res.Pairs {
		if pr.Rate != 0.9 || pr.Samples != 1 {
			t.Errorf("pair result = %+v", pr)
		}
	}

	stats, err := s.cache.RateStats()
	if err != nil {
		t.Fatalf("RateStats: %v", err)
	}
	if stats.SpotPairs != 2 || stats.HistoryPairs != 2 {
		t.Errorf("stats = %+v, want 2 spot and 2 history pairs", stats)
	}
}

func TestRefresh_CountsFailures(t *testing.T) {
	up := &countingSource{err: errors.New("boom")}
	s, _ := newTestSource(t, up, time.Hour)

	res := s.Refresh(context.Background(), []Pair{{Base: "USD", Target: "EUR"}}, 6, nil)
	if res.Failed != 1 || res.Pairs[0].Err == nil {
		t.Errorf("result = %+v, want one failure", res)
	}
}

func TestParsePairs_Invalid(t *testing.T) {
	if _, err := ParsePairs([]string{"USD/JPY"}); err == nil {
		t.Error("expected error for unsupported currency")
	}
}

func TestCachePath_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GOALPLAN_CACHE_DIR", dir)
	if got := CachePath(); got != filepath.Join(dir, "goalplan.db") {
		t.Errorf("CachePath = %q", got)
	}
}
