package frankfurter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL+"/", nil)
	c.now = func() time.Time { return time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC) }
	return c
}

func TestCurrentRate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/latest" {
			t.Errorf("path = %q, want /latest", r.URL.Path)
		}
		if got := r.URL.Query().Get("from"); got != "USD" {
			t.Errorf("from = %q, want USD", got)
		}
		if got := r.URL.Query().Get("to"); got != "EUR" {
			t.Errorf("to = %q, want EUR", got)
		}
		_, _ = w.Write([]byte(`{"amount":1.0,"base":"USD","date":"2025-07-14","rates":{"EUR":0.8571}}`))
	})

	rate, err := c.CurrentRate(context.Background(), "USD", "EUR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate != 0.8571 {
		t.Errorf("rate = %v, want 0.8571", rate)
	}
}

func TestCurrentRate_SameCurrencyNoRequest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("unexpected request")
	})

	rate, err := c.CurrentRate(context.Background(), "EUR", "EUR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate != 1 {
		t.Errorf("rate = %v, want 1", rate)
	}

	hist, err := c.HistoricalRates(context.Background(), "EUR", "EUR", 6)
	if err != nil || hist != nil {
		t.Errorf("HistoricalRates = %v, %v; want nil, nil", hist, err)
	}
}

func TestCurrentRate_MissingTarget(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"amount":1.0,"base":"USD","rates":{}}`))
	})

	if _, err := c.CurrentRate(context.Background(), "USD", "EUR"); !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
}

func TestHistoricalRates_SortedWindow(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2025-01-15..2025-07-15" {
			t.Errorf("path = %q, want six-month window", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"amount":1.0,"base":"USD","start_date":"2025-01-15","end_date":"2025-07-15","rates":{
			"2025-03-03":{"EUR":0.95},
			"2025-01-15":{"EUR":0.97},
			"2025-07-14":{"EUR":0.86},
			"2025-05-01":{"GBP":0.75}
		}}`))
	})

	got, err := c.HistoricalRates(context.Background(), "USD", "EUR", 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{0.97, 0.95, 0.86}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Rate != w {
			t.Errorf("sample[%d].Rate = %v, want %v", i, got[i].Rate, w)
		}
		if i > 0 && !got[i].Date.After(got[i-1].Date) {
			t.Errorf("samples not ascending at %d", i)
		}
	}
}

func TestGet_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, ``, ErrRateLimited},
		{"not found", http.StatusNotFound, `{"message":"not found"}`, ErrUnknownCurrency},
		{"unprocessable", http.StatusUnprocessableEntity, `{"message":"invalid currency"}`, ErrUnknownCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			if _, err := c.CurrentRate(context.Background(), "USD", "XXX"); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGet_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.CurrentRate(context.Background(), "USD", "EUR")
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("err = %v, want unexpected status 502", err)
	}
}

func TestGet_ContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.CurrentRate(ctx, "USD", "EUR"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}
