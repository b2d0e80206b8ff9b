package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS spot_rates (
    base                 TEXT NOT NULL,
    target               TEXT NOT NULL,
    rate                 REAL NOT NULL,
    fetched_at           TEXT NOT NULL,
    PRIMARY KEY (base, target)
);

CREATE TABLE IF NOT EXISTS rate_history (
    base                 TEXT NOT NULL,
    target               TEXT NOT NULL,
    window_months        INTEGER NOT NULL,
    sample_count         INTEGER NOT NULL,
    fetched_at           TEXT NOT NULL,
    PRIMARY KEY (base, target, window_months)
);

CREATE TABLE IF NOT EXISTS rate_samples (
    base                 TEXT NOT NULL,
    target               TEXT NOT NULL,
    window_months        INTEGER NOT NULL,
    day                  TEXT NOT NULL,
    rate                 REAL NOT NULL,
    PRIMARY KEY (base, target, window_months, day),
    FOREIGN KEY (base, target, window_months)
        REFERENCES rate_history(base, target, window_months) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS plans (
    plan_id              TEXT PRIMARY KEY,
    created_at           TEXT NOT NULL,
    goal_amount          REAL NOT NULL,
    goal_currency        TEXT NOT NULL,
    monthly_currency     TEXT NOT NULL,
    horizon_months       INTEGER NOT NULL,
    monthly_contribution REAL NOT NULL,
    final_value          REAL NOT NULL,
    payload              TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_plans_created ON plans(created_at);
`
