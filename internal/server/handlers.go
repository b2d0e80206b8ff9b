package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/theirongolddev/goalplan/internal/config"
	"github.com/theirongolddev/goalplan/internal/forecast"
	"github.com/theirongolddev/goalplan/internal/model"
	"github.com/theirongolddev/goalplan/internal/planner"
	"github.com/theirongolddev/goalplan/internal/store"
)

const (
	defaultRateHorizon = 12
	maxRateHorizon     = 600
	maxWindowMonths    = 60
	maxPlanBody        = 64 << 10
	requestTimeout     = 30 * time.Second
)

// Router returns the HTTP handler for the API.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		// Long-lived; must not inherit the request timeout.
		r.Get("/stream", s.handleStream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))
			r.Get("/status", s.handleStatus)
			r.Get("/currencies", s.handleCurrencies)
			r.Get("/rates/{base}/{target}", s.handleRates)
			r.Post("/plans", s.handleCreatePlan)
			r.Get("/plans", s.handleListPlans)
			r.Get("/plans/{id}", s.handleGetPlan)
			r.Get("/events", s.handleEvents)
		})
	})
	return r
}

// intParam parses an optional positive query parameter.
func intParam(raw string, def, maxVal int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxVal {
		return 0, fmt.Errorf("must be between 1 and %d", maxVal)
	}
	return n, nil
}

func (s *Service) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleCurrencies(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, currencyViews())
}

func (s *Service) handleRates(w http.ResponseWriter, r *http.Request) {
	base := config.NormalizeCurrency(chi.URLParam(r, "base"))
	target := config.NormalizeCurrency(chi.URLParam(r, "target"))
	for _, c := range []model.Currency{base, target} {
		if !config.IsSupported(c) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported currency %q", c), false)
			return
		}
	}

	q := r.URL.Query()
	horizon, err := intParam(q.Get("months"), defaultRateHorizon, maxRateHorizon)
	if err != nil {
		writeError(w, http.StatusBadRequest, "months "+err.Error(), false)
		return
	}
	window, err := intParam(q.Get("window"), s.cfg.WindowMonths, maxWindowMonths)
	if err != nil {
		writeError(w, http.StatusBadRequest, "window "+err.Error(), false)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.FetchTimeout)
	defer cancel()

	snap, err := forecast.Snapshot(ctx, s.deps.Source, base, target, horizon, window)
	if err != nil {
		s.logger.Warn("rate lookup failed", zap.String("pair", string(base)+"/"+string(target)), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, err.Error(), true)
		return
	}
	writeJSON(w, http.StatusOK, rateView(snap))
}

func (s *Service) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var in model.PlanInputs
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPlanBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), false)
		return
	}
	in.InitialCurrency = config.NormalizeCurrency(string(in.InitialCurrency))
	in.MonthlyCurrency = config.NormalizeCurrency(string(in.MonthlyCurrency))
	in.GoalCurrency = config.NormalizeCurrency(string(in.GoalCurrency))

	p, err := s.planner.Plan(r.Context(), in)
	switch {
	case errors.Is(err, planner.ErrInvalidPlanInputs):
		writeError(w, http.StatusBadRequest, err.Error(), false)
		return
	case planner.IsRetryable(err):
		s.logger.Warn("plan failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, err.Error(), true)
		return
	case err != nil:
		s.logger.Error("plan failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error(), false)
		return
	}

	if s.cfg.SavePlans && s.deps.Store != nil {
		if err := s.deps.Store.SavePlan(p); err != nil {
			s.logger.Warn("saving plan", zap.String("plan_id", p.ID), zap.Error(err))
		}
	}

	s.logger.Info("plan",
		zap.String("plan_id", p.ID),
		zap.String("goal_currency", string(p.Inputs.GoalCurrency)),
		zap.String("monthly_currency", string(p.Inputs.MonthlyCurrency)),
		zap.Int("horizon_months", p.Inputs.HorizonMonths),
	)

	sum := summarize(p)
	s.mu.Lock()
	s.planCount++
	s.nextEventID++
	ev := Event{ID: s.nextEventID, Type: "plan", Timestamp: p.CreatedAt, Plan: &sum}
	s.mu.Unlock()
	s.publishEvent(ev)

	writeJSON(w, http.StatusCreated, planResponse(p))
}

func (s *Service) handleListPlans(w http.ResponseWriter, r *http.Request) {
	out := []PlanSummary{}
	if s.deps.Store == nil {
		writeJSON(w, http.StatusOK, out)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer", false)
			return
		}
		limit = n
	}

	plans, err := s.deps.Store.ListPlans(limit)
	if err != nil {
		s.logger.Error("listing plans", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list plans", false)
		return
	}
	for _, p := range plans {
		out = append(out, summaryFromStore(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Service) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store == nil {
		writeError(w, http.StatusNotFound, "plan history is disabled", false)
		return
	}

	p, err := s.deps.Store.GetPlan(chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "plan not found", false)
		return
	case errors.Is(err, store.ErrAmbiguousID):
		writeError(w, http.StatusBadRequest, err.Error(), false)
		return
	case err != nil:
		s.logger.Error("loading plan", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load plan", false)
		return
	}
	writeJSON(w, http.StatusOK, planResponse(p))
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current rates immediately.
	writeSSE(w, Event{
		Type:      "rates",
		Timestamp: time.Now(),
		Rates:     s.snapshotStatus().Rates,
	})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}
