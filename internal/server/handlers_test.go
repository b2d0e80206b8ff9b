package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/goalplan/internal/config"
	"github.com/theirongolddev/goalplan/internal/store"
)

func testService(t *testing.T, src *fakeSource, withStore bool) *Service {
	t.Helper()

	deps := Deps{Source: src}
	if withStore {
		c, err := store.Open(filepath.Join(t.TempDir(), "goalplan.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = c.Close() })
		deps.Store = c
	}
	return New(Config{Advisor: config.DefaultAdvisor(), SavePlans: true, FetchTimeout: time.Second}, deps)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

const eurPlan = `{
	"goal_amount": 1200,
	"horizon_months": 12,
	"annual_rate_percent": 0,
	"initial_investment": 0,
	"initial_currency": "eur",
	"monthly_currency": "EUR",
	"goal_currency": "EUR"
}`

func TestHealthz(t *testing.T) {
	s := testService(t, &fakeSource{}, false)
	rec := do(t, s.Router(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestCurrencies(t *testing.T) {
	s := testService(t, &fakeSource{}, false)
	rec := do(t, s.Router(), http.MethodGet, "/v1/currencies", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []CurrencyView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, len(config.Currencies))
	assert.EqualValues(t, "USD", got[0].Code)
	assert.Equal(t, "$", got[0].Symbol)
}

func TestRates(t *testing.T) {
	s := testService(t, &fakeSource{rates: map[string]float64{"USD/EUR": 0.9}}, false)
	h := s.Router()

	rec := do(t, h, http.MethodGet, "/v1/rates/usd/eur?months=3&window=3", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view RateView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.EqualValues(t, "USD", view.Base)
	assert.Equal(t, 0.9, view.CurrentRate)
	assert.Len(t, view.Curve, 3)
	assert.True(t, view.Degenerate, "empty history must fall back to a flat curve")

	rec = do(t, h, http.MethodGet, "/v1/rates/USD/EUR", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Len(t, view.Curve, defaultRateHorizon)
}

func TestRates_BadRequests(t *testing.T) {
	s := testService(t, &fakeSource{}, false)
	h := s.Router()

	for _, path := range []string{
		"/v1/rates/XYZ/EUR",
		"/v1/rates/USD/EUR?months=0",
		"/v1/rates/USD/EUR?months=abc",
		"/v1/rates/USD/EUR?months=601",
		"/v1/rates/USD/EUR?window=61",
	} {
		rec := do(t, h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.False(t, decodeError(t, rec).Retryable, path)
	}
}

func TestRates_UpstreamFailure(t *testing.T) {
	s := testService(t, &fakeSource{err: errors.New("upstream down")}, false)
	rec := do(t, s.Router(), http.MethodGet, "/v1/rates/INR/EUR", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.True(t, decodeError(t, rec).Retryable)
}

func TestCreatePlan(t *testing.T) {
	s := testService(t, &fakeSource{}, true)
	h := s.Router()

	rec := do(t, h, http.MethodPost, "/v1/plans", eurPlan)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp PlanResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.ID)
	assert.True(t, resp.MonthlyContribution.Equal(decimal.NewFromInt(100)), "monthly = %s", resp.MonthlyContribution)
	assert.True(t, resp.FinalValue.Equal(decimal.NewFromInt(1200)), "final = %s", resp.FinalValue)
	assert.EqualValues(t, "EUR", resp.Inputs.InitialCurrency)
	assert.Len(t, resp.TrajectoryGoal, 12)
	assert.NotEmpty(t, resp.Suggestions)

	st := s.snapshotStatus()
	assert.Equal(t, 1, st.PlanCount)
	assert.Equal(t, 1, st.EventCount)

	s.mu.RLock()
	ev := s.events[0]
	s.mu.RUnlock()
	assert.Equal(t, "plan", ev.Type)
	require.NotNil(t, ev.Plan)
	assert.Equal(t, resp.ID, ev.Plan.ID)

	// Saved plans are listed and retrievable by prefix.
	rec = do(t, h, http.MethodGet, "/v1/plans", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []PlanSummary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, resp.ID, list[0].ID)

	rec = do(t, h, http.MethodGet, "/v1/plans/"+resp.ID[:8], "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got PlanResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, resp.ID, got.ID)

	rec = do(t, h, http.MethodGet, "/v1/plans/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreatePlan_Errors(t *testing.T) {
	tests := []struct {
		name      string
		src       *fakeSource
		body      string
		status    int
		retryable bool
	}{
		{"malformed json", &fakeSource{}, `{"goal_amount":`, http.StatusBadRequest, false},
		{"unknown field", &fakeSource{}, `{"goal": 5}`, http.StatusBadRequest, false},
		{"invalid inputs", &fakeSource{}, strings.Replace(eurPlan, `"horizon_months": 12`, `"horizon_months": 0`, 1), http.StatusBadRequest, false},
		{"unsupported currency", &fakeSource{}, strings.Replace(eurPlan, `"goal_currency": "EUR"`, `"goal_currency": "XYZ"`, 1), http.StatusBadRequest, false},
		{
			"rates unavailable",
			&fakeSource{err: errors.New("upstream down")},
			strings.Replace(eurPlan, `"monthly_currency": "EUR"`, `"monthly_currency": "USD"`, 1),
			http.StatusServiceUnavailable, true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testService(t, tt.src, false)
			rec := do(t, s.Router(), http.MethodPost, "/v1/plans", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.retryable, body.Retryable)
			assert.NotEmpty(t, body.Error)
			assert.Equal(t, 0, s.snapshotStatus().PlanCount)
		})
	}
}

func TestPlans_WithoutStore(t *testing.T) {
	s := testService(t, &fakeSource{}, false)
	h := s.Router()

	rec := do(t, h, http.MethodGet, "/v1/plans", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = do(t, h, http.MethodGet, "/v1/plans/abc", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusAndEvents(t *testing.T) {
	s := testService(t, &fakeSource{}, false)
	s.publishEvent(Event{ID: 7, Type: "plan"})
	h := s.Router()

	rec := do(t, h, http.MethodGet, "/v1/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var st Status
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&st))
	assert.Equal(t, 1, st.EventCount)
	assert.Equal(t, "@every 6h", st.RefreshSchedule)

	rec = do(t, h, http.MethodGet, "/v1/events", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var events []Event
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&events))
	require.Len(t, events, 1)
	assert.Equal(t, int64(7), events[0].ID)
}

func TestStream(t *testing.T) {
	s := testService(t, &fakeSource{}, false)
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	sc := bufio.NewScanner(resp.Body)
	nextEvent := func() string {
		for sc.Scan() {
			if name, ok := strings.CutPrefix(sc.Text(), "event: "); ok {
				return name
			}
		}
		return ""
	}

	require.Equal(t, "rates", nextEvent())

	// The subscriber is registered before the first event is written.
	s.publishEvent(Event{ID: 1, Type: "plan"})
	assert.Equal(t, "plan", nextEvent())
}
