package storage

// Schema creates every table. Dates are stored as YYYY-MM-DD text and
// timestamps as RFC 3339 text; nested values are JSON.
const Schema = `
CREATE TABLE IF NOT EXISTS metric_samples (
    id            TEXT PRIMARY KEY,
    user_id       TEXT NOT NULL,
    metric_type   TEXT NOT NULL,
    value         REAL NOT NULL,
    unit          TEXT NOT NULL DEFAULT '',
    recorded_date TEXT NOT NULL,
    recorded_time TEXT NOT NULL DEFAULT '',
    is_goal       INTEGER NOT NULL DEFAULT 0,
    notes         TEXT NOT NULL DEFAULT '',
    created_at    TEXT NOT NULL,
    updated_at    TEXT NOT NULL
);

-- one measurement per user, metric and day; goals are exempt
CREATE UNIQUE INDEX IF NOT EXISTS ux_metric_samples_day
    ON metric_samples(user_id, metric_type, recorded_date) WHERE is_goal = 0;
CREATE INDEX IF NOT EXISTS idx_metric_samples_history
    ON metric_samples(user_id, metric_type, recorded_date, recorded_time);

CREATE TABLE IF NOT EXISTS recipes (
    id             TEXT PRIMARY KEY,
    name           TEXT NOT NULL,
    cuisine        TEXT NOT NULL DEFAULT '',
    category       TEXT NOT NULL,
    difficulty     INTEGER NOT NULL DEFAULT 0,
    total_time     INTEGER NOT NULL DEFAULT 0,
    average_rating REAL NOT NULL DEFAULT 0,
    data           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_recipes_category ON recipes(category, average_rating);

CREATE TABLE IF NOT EXISTS dietary_preferences (
    user_id    TEXT PRIMARY KEY,
    data       TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS meal_plans (
    id            TEXT PRIMARY KEY,
    user_id       TEXT NOT NULL,
    name          TEXT NOT NULL,
    start_date    TEXT NOT NULL,
    end_date      TEXT NOT NULL,
    duration_days INTEGER NOT NULL,
    status        TEXT NOT NULL
                  CHECK(status IN ('draft', 'generating', 'active', 'completed', 'archived')),
    targets       TEXT NOT NULL,
    meal_types    TEXT NOT NULL,
    constraints   TEXT NOT NULL,
    metadata      TEXT NOT NULL,
    created_at    TEXT NOT NULL,
    updated_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_meal_plans_user ON meal_plans(user_id, start_date);

CREATE TABLE IF NOT EXISTS meal_plan_meals (
    id             TEXT PRIMARY KEY,
    meal_plan_id   TEXT NOT NULL REFERENCES meal_plans(id) ON DELETE CASCADE,
    recipe_id      TEXT NOT NULL DEFAULT '',
    recipe_name    TEXT NOT NULL DEFAULT '',
    date           TEXT NOT NULL,
    meal_type      TEXT NOT NULL,
    servings       REAL NOT NULL,
    planned_macros TEXT NOT NULL,
    is_meal_prep   INTEGER NOT NULL DEFAULT 0,
    prep_date      TEXT NULL,
    status         TEXT NOT NULL
                   CHECK(status IN ('planned', 'prepped', 'completed', 'skipped', 'substituted')),
    notes          TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_meal_plan_meals_plan ON meal_plan_meals(meal_plan_id, date);
`
