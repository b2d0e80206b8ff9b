// Package server provides the long-running planning API with scheduled rate refreshes.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/theirongolddev/goalplan/internal/config"
	"github.com/theirongolddev/goalplan/internal/forecast"
	"github.com/theirongolddev/goalplan/internal/pipeline"
	"github.com/theirongolddev/goalplan/internal/planner"
	"github.com/theirongolddev/goalplan/internal/store"
)

// Config controls the server runtime behavior.
type Config struct {
	Addr            string
	WatchPairs      []pipeline.Pair
	WindowMonths    int
	FetchTimeout    time.Duration
	RefreshSchedule string
	EventsBuffer    int
	Advisor         config.AdvisorConfig
	SavePlans       bool
}

// Refresher re-fetches watched pairs from upstream and records them.
// *pipeline.CachedSource implements it.
type Refresher interface {
	Refresh(ctx context.Context, pairs []pipeline.Pair, windowMonths int, progressFn pipeline.ProgressFunc) *pipeline.RefreshResult
}

// Deps are the collaborators a Service needs. Only Source is required.
type Deps struct {
	Source    forecast.RateSource
	Refresher Refresher
	Store     *store.Cache
	Logger    *zap.Logger
}

// PairRate is the latest known rate for a watched pair.
type PairRate struct {
	Pair    string  `json:"pair"`
	Rate    float64 `json:"rate"`
	Samples int     `json:"samples,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// RateChange is one watched pair's move between refreshes.
type RateChange struct {
	Pair      string  `json:"pair"`
	From      float64 `json:"from"`
	To        float64 `json:"to"`
	ChangePct float64 `json:"change_pct"`
}

// Event is emitted on refreshes that change rates and on new plans.
type Event struct {
	ID        int64        `json:"id"`
	Type      string       `json:"type"`
	Timestamp time.Time    `json:"timestamp"`
	Rates     []PairRate   `json:"rates,omitempty"`
	Changes   []RateChange `json:"changes,omitempty"`
	Plan      *PlanSummary `json:"plan,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time  `json:"started_at"`
	LastRefreshAt   time.Time  `json:"last_refresh_at"`
	RefreshSchedule string     `json:"refresh_schedule"`
	RefreshCount    int64      `json:"refresh_count"`
	WindowMonths    int        `json:"window_months"`
	Rates           []PairRate `json:"rates"`
	LastError       string     `json:"last_error,omitempty"`
	EventCount      int        `json:"event_count"`
	SubscriberCount int        `json:"subscriber_count"`
	PlanCount       int        `json:"plan_count"`
}

// Service provides the server runtime and HTTP API.
type Service struct {
	cfg     Config
	deps    Deps
	planner *planner.Planner
	logger  *zap.Logger

	mu            sync.RWMutex
	startedAt     time.Time
	lastRefreshAt time.Time
	refreshCount  int64
	lastError     string
	rates         []PairRate
	nextEventID   int64
	events        []Event
	planCount     int

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new service with the provided config.
func New(cfg Config, deps Deps) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.WindowMonths < 1 {
		cfg.WindowMonths = 6
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 12 * time.Second
	}
	if cfg.RefreshSchedule == "" {
		cfg.RefreshSchedule = "@every 6h"
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Service{
		cfg:  cfg,
		deps: deps,
		planner: planner.New(deps.Source, planner.Options{
			WindowMonths: cfg.WindowMonths,
			FetchTimeout: cfg.FetchTimeout,
			Advisor:      cfg.Advisor,
		}),
		logger:    deps.Logger.With(zap.String("caller", "server.Service")),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run starts HTTP endpoints and scheduled refreshes until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	sched := cron.New()
	if _, err := sched.AddFunc(s.cfg.RefreshSchedule, func() { s.refreshOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", s.cfg.RefreshSchedule, err)
	}

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.logger.Info("listening", zap.String("addr", s.cfg.Addr), zap.String("refresh", s.cfg.RefreshSchedule))

	// Seed rates so status is useful immediately.
	s.refreshOnce(ctx)
	sched.Start()

	select {
	case <-ctx.Done():
		<-sched.Stop().Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		sched.Stop()
		return fmt.Errorf("http server: %w", err)
	}
}

func (s *Service) refreshOnce(ctx context.Context) {
	if len(s.cfg.WatchPairs) == 0 {
		return
	}

	start := time.Now()
	curr := s.fetchWatched(ctx)
	now := time.Now()

	var failed []string
	for _, pr := range curr {
		if pr.Error != "" {
			failed = append(failed, pr.Pair+": "+pr.Error)
		}
	}

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.rates
	first := s.refreshCount == 0

	s.rates = curr
	s.lastRefreshAt = now
	s.refreshCount++
	s.lastError = ""
	if len(failed) > 0 {
		s.lastError = failed[0]
	}

	if first {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "rates", Timestamp: now, Rates: curr}
		publish = true
	} else if changes := diffRates(prev, curr); len(changes) > 0 {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "rate_change", Timestamp: now, Rates: curr, Changes: changes}
		publish = true
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}

	if len(failed) > 0 {
		s.logger.Warn("refresh incomplete", zap.Strings("failed", failed), zap.Duration("duration", time.Since(start)))
	} else {
		s.logger.Info("refresh", zap.Int("pairs", len(curr)), zap.Duration("duration", time.Since(start)))
	}
}

// fetchWatched re-reads every watched pair, through the Refresher when set.
func (s *Service) fetchWatched(ctx context.Context) []PairRate {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	out := make([]PairRate, len(s.cfg.WatchPairs))

	if s.deps.Refresher != nil {
		res := s.deps.Refresher.Refresh(ctx, s.cfg.WatchPairs, s.cfg.WindowMonths, nil)
		for i, pr := range res.Pairs {
			out[i] = PairRate{Pair: pr.Pair.String(), Rate: pr.Rate, Samples: pr.Samples}
			if pr.Err != nil {
				out[i].Error = pr.Err.Error()
			}
		}
		return out
	}

	for i, p := range s.cfg.WatchPairs {
		out[i] = PairRate{Pair: p.String()}
		rate, err := s.deps.Source.CurrentRate(ctx, p.Base, p.Target)
		if err != nil {
			out[i].Error = err.Error()
			continue
		}
		out[i].Rate = rate
	}
	return out
}

// diffRates reports pairs whose rate moved. Pairs that failed in either
// refresh are skipped.
func diffRates(prev, curr []PairRate) []RateChange {
	before := make(map[string]float64, len(prev))
	for _, p := range prev {
		if p.Error == "" {
			before[p.Pair] = p.Rate
		}
	}

	var changes []RateChange
	for _, c := range curr {
		if c.Error != "" {
			continue
		}
		from, ok := before[c.Pair]
		if !ok || from == c.Rate {
			continue
		}
		rc := RateChange{Pair: c.Pair, From: from, To: c.Rate}
		if from != 0 {
			rc.ChangePct = (c.Rate - from) / from * 100
		}
		changes = append(changes, rc)
	}
	return changes
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rates := make([]PairRate, len(s.rates))
	copy(rates, s.rates)

	return Status{
		StartedAt:       s.startedAt,
		LastRefreshAt:   s.lastRefreshAt,
		RefreshSchedule: s.cfg.RefreshSchedule,
		RefreshCount:    s.refreshCount,
		WindowMonths:    s.cfg.WindowMonths,
		Rates:           rates,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
		PlanCount:       s.planCount,
	}
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
