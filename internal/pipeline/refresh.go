package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/theirongolddev/goalplan/internal/config"
	"github.com/theirongolddev/goalplan/internal/model"
)

// Pair is a base->target currency pair.
type Pair struct {
	Base   model.Currency
	Target model.Currency
}

func (p Pair) String() string {
	return string(p.Base) + "/" + string(p.Target)
}

// ParsePairs parses "USD/EUR" style strings, skipping same-currency pairs.
func ParsePairs(raw []string) ([]Pair, error) {
	pairs := make([]Pair, 0, len(raw))
	for _, s := range raw {
		base, target, ok := config.ParsePair(s)
		if !ok {
			return nil, fmt.Errorf("invalid currency pair %q", s)
		}
		if base == target {
			continue
		}
		pairs = append(pairs, Pair{Base: base, Target: target})
	}
	return pairs, nil
}

// ProgressFunc is called during a refresh to report progress.
// current is the number of pairs processed so far, total is the total count.
type ProgressFunc func(current, total int)

// PairResult is the outcome of refreshing one pair.
type PairResult struct {
	Pair    Pair
	Rate    float64
	Samples int
	Err     error
}

// RefreshResult holds the output of a refresh run.
type RefreshResult struct {
	Pairs    []PairResult
	Failed   int
	Duration time.Duration
}

// Refresh fetches every pair from upstream, bypassing cache reads, and
// records the results. It uses a bounded worker pool.
func (s *CachedSource) Refresh(ctx context.Context, pairs []Pair, windowMonths int, progressFn ProgressFunc) *RefreshResult {
	start := s.now()
	result := &RefreshResult{Pairs: make([]PairResult, len(pairs))}
	if len(pairs) == 0 {
		return result
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(pairs) {
		numWorkers = len(pairs)
	}

	work := make(chan int, len(pairs))
	for i := range pairs {
		work <- i
	}
	close(work)

	var wg sync.WaitGroup
	var processed atomic.Int64

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				result.Pairs[idx] = s.refreshPair(ctx, pairs[idx], windowMonths)
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n), len(pairs))
				}
			}
		}()
	}

	wg.Wait()

	for _, pr := range result.Pairs {
		if pr.Err != nil {
			result.Failed++
		}
	}
	result.Duration = s.now().Sub(start)
	return result
}

func (s *CachedSource) refreshPair(ctx context.Context, p Pair, windowMonths int) PairResult {
	pr := PairResult{Pair: p}

	rate, err := s.upstream.CurrentRate(ctx, p.Base, p.Target)
	if err != nil {
		pr.Err = fmt.Errorf("current rate %s: %w", p, err)
		return pr
	}
	samples, err := s.upstream.HistoricalRates(ctx, p.Base, p.Target, windowMonths)
	if err != nil {
		pr.Err = fmt.Errorf("historical rates %s: %w", p, err)
		return pr
	}

	now := s.now()
	if err := s.cache.SaveSpotRate(p.Base, p.Target, rate, now); err != nil {
		pr.Err = fmt.Errorf("caching %s: %w", p, err)
		return pr
	}
	if err := s.cache.SaveHistory(p.Base, p.Target, windowMonths, samples, now); err != nil {
		pr.Err = fmt.Errorf("caching %s history: %w", p, err)
		return pr
	}

	pr.Rate = rate
	pr.Samples = len(samples)
	return pr
}
