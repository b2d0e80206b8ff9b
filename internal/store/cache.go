// Package store provides a SQLite-backed cache for exchange rates and saved plans.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/goalplan/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

const (
	// Fixed width so stored timestamps sort lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
	dayLayout  = "2006-01-02"
)

var (
	// ErrNotFound indicates no matching row.
	ErrNotFound = errors.New("store: not found")
	// ErrAmbiguousID indicates a plan ID prefix matched more than one plan.
	ErrAmbiguousID = errors.New("store: ambiguous plan id")
)

// Cache provides SQLite-backed rate and plan storage.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}
	// One writer at a time; refresh workers share the handle.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// SpotQuote is a cached spot rate.
type SpotQuote struct {
	Rate      float64
	FetchedAt time.Time
}

// SpotRate returns the cached spot rate for a pair, or ErrNotFound.
func (c *Cache) SpotRate(base, target model.Currency) (SpotQuote, error) {
	var q SpotQuote
	var fetched string
	err := c.db.QueryRow(`SELECT rate, fetched_at FROM spot_rates WHERE base = ? AND target = ?`,
		string(base), string(target)).Scan(&q.Rate, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return SpotQuote{}, ErrNotFound
	}
	if err != nil {
		return SpotQuote{}, err
	}
	q.FetchedAt, _ = time.Parse(timeLayout, fetched)
	return q, nil
}

// SaveSpotRate stores the spot rate for a pair, replacing any previous value.
func (c *Cache) SaveSpotRate(base, target model.Currency, rate float64, fetchedAt time.Time) error {
	_, err := c.db.Exec(`INSERT OR REPLACE INTO spot_rates (base, target, rate, fetched_at)
		VALUES (?, ?, ?, ?)`, string(base), string(target), rate, fetchedAt.UTC().Format(timeLayout))
	return err
}

// HistoryEntry is a cached historical series.
type HistoryEntry struct {
	Samples   []model.RateSample
	FetchedAt time.Time
}

// History returns the cached series for a pair and window, or ErrNotFound.
func (c *Cache) History(base, target model.Currency, windowMonths int) (HistoryEntry, error) {
	var e HistoryEntry
	var fetched string
	err := c.db.QueryRow(`SELECT fetched_at FROM rate_history
		WHERE base = ? AND target = ? AND window_months = ?`,
		string(base), string(target), windowMonths).Scan(&fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return HistoryEntry{}, ErrNotFound
	}
	if err != nil {
		return HistoryEntry{}, err
	}
	e.FetchedAt, _ = time.Parse(timeLayout, fetched)

	rows, err := c.db.Query(`SELECT day, rate FROM rate_samples
		WHERE base = ? AND target = ? AND window_months = ?
		ORDER BY day`, string(base), string(target), windowMonths)
	if err != nil {
		return HistoryEntry{}, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var day string
		var s model.RateSample
		if err := rows.Scan(&day, &s.Rate); err != nil {
			return HistoryEntry{}, err
		}
		s.Date, _ = time.Parse(dayLayout, day)
		e.Samples = append(e.Samples, s)
	}
	return e, rows.Err()
}

// SaveHistory replaces the cached series for a pair and window.
func (c *Cache) SaveHistory(base, target model.Currency, windowMonths int, samples []model.RateSample, fetchedAt time.Time) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Cascades to rate_samples
	_, err = tx.Exec(`DELETE FROM rate_history WHERE base = ? AND target = ? AND window_months = ?`,
		string(base), string(target), windowMonths)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`INSERT INTO rate_history (base, target, window_months, sample_count, fetched_at)
		VALUES (?, ?, ?, ?, ?)`,
		string(base), string(target), windowMonths, len(samples), fetchedAt.UTC().Format(timeLayout))
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO rate_samples (base, target, window_months, day, rate)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, s := range samples {
		if _, err := stmt.Exec(string(base), string(target), windowMonths, s.Date.Format(dayLayout), s.Rate); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RateStats summarizes the rate cache.
type RateStats struct {
	SpotPairs    int
	HistoryPairs int
	Samples      int
}

// RateStats counts cached rate rows.
func (c *Cache) RateStats() (RateStats, error) {
	var s RateStats
	err := c.db.QueryRow(`SELECT
		(SELECT COUNT(*) FROM spot_rates),
		(SELECT COUNT(*) FROM rate_history),
		(SELECT COUNT(*) FROM rate_samples)`).Scan(&s.SpotPairs, &s.HistoryPairs, &s.Samples)
	return s, err
}

// PlanSummary is the listing view of a saved plan.
type PlanSummary struct {
	ID                  string
	CreatedAt           time.Time
	GoalAmount          float64
	GoalCurrency        model.Currency
	MonthlyCurrency     model.Currency
	HorizonMonths       int
	MonthlyContribution float64
	FinalValue          float64
}

// SavePlan stores a complete plan.
func (c *Cache) SavePlan(p *model.Plan) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}

	_, err = c.db.Exec(`INSERT OR REPLACE INTO plans
		(plan_id, created_at, goal_amount, goal_currency, monthly_currency, horizon_months,
		 monthly_contribution, final_value, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.CreatedAt.UTC().Format(timeLayout), p.Inputs.GoalAmount,
		string(p.Inputs.GoalCurrency), string(p.Inputs.MonthlyCurrency), p.Inputs.HorizonMonths,
		p.Result.MonthlyContribution, p.Result.FinalProjectedValue, string(payload),
	)
	return err
}

// ListPlans returns saved plans newest first. limit <= 0 returns all.
func (c *Cache) ListPlans(limit int) ([]PlanSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := c.db.Query(`SELECT
		plan_id, created_at, goal_amount, goal_currency, monthly_currency,
		horizon_months, monthly_contribution, final_value
		FROM plans ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []PlanSummary
	for rows.Next() {
		var s PlanSummary
		var created, goalCur, monthlyCur string
		if err := rows.Scan(&s.ID, &created, &s.GoalAmount, &goalCur, &monthlyCur,
			&s.HorizonMonths, &s.MonthlyContribution, &s.FinalValue); err != nil {
			return nil, err
		}
		s.CreatedAt, _ = time.Parse(timeLayout, created)
		s.GoalCurrency = model.Currency(goalCur)
		s.MonthlyCurrency = model.Currency(monthlyCur)
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetPlan loads a plan by full ID or unique prefix.
func (c *Cache) GetPlan(idOrPrefix string) (*model.Plan, error) {
	if idOrPrefix == "" {
		return nil, ErrNotFound
	}

	rows, err := c.db.Query(`SELECT payload FROM plans WHERE plan_id = ? OR plan_id LIKE ? || '%' LIMIT 2`,
		idOrPrefix, idOrPrefix)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var payloads []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		payloads = append(payloads, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(payloads) {
	case 0:
		return nil, ErrNotFound
	case 1:
	default:
		return nil, fmt.Errorf("%w: %q", ErrAmbiguousID, idOrPrefix)
	}

	var p model.Plan
	if err := json.Unmarshal([]byte(payloads[0]), &p); err != nil {
		return nil, fmt.Errorf("decoding plan: %w", err)
	}
	return &p, nil
}

// ClearPlans deletes every saved plan and returns how many were removed.
func (c *Cache) ClearPlans() (int64, error) {
	res, err := c.db.Exec("DELETE FROM plans")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// PlanCount returns the number of saved plans.
func (c *Cache) PlanCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM plans").Scan(&count)
	return count, err
}
