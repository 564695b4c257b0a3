package store

const schema = `
CREATE TABLE IF NOT EXISTS kol_types (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    name          TEXT NOT NULL,
    min_followers INTEGER NOT NULL DEFAULT 0,
    max_followers INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS kols (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    name            TEXT NOT NULL,
    niche           TEXT NOT NULL DEFAULT '',
    age_range       TEXT NOT NULL DEFAULT '',
    engagement_rate REAL NOT NULL DEFAULT 0,
    reach           REAL NOT NULL DEFAULT 0,
    audience_male   REAL NOT NULL DEFAULT 0,
    audience_female REAL NOT NULL DEFAULT 0,
    rate_card       REAL NOT NULL DEFAULT 0,
    followers       INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_kols_niche ON kols(niche);
CREATE INDEX IF NOT EXISTS idx_kols_followers ON kols(followers);

CREATE TABLE IF NOT EXISTS campaigns (
    id                INTEGER PRIMARY KEY AUTOINCREMENT,
    name              TEXT NOT NULL,
    kol_type_id       INTEGER NOT NULL REFERENCES kol_types(id),
    budget            REAL NOT NULL DEFAULT 0,
    target_niche      TEXT NOT NULL DEFAULT '',
    target_engagement REAL NOT NULL DEFAULT 0,
    target_reach      REAL NOT NULL DEFAULT 0,
    target_gender     TEXT NOT NULL DEFAULT 'female',
    target_gender_min REAL NOT NULL DEFAULT 0,
    target_age_range  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS performance_reports (
    id          TEXT PRIMARY KEY,
    campaign_id INTEGER NOT NULL REFERENCES campaigns(id),
    kol_id      INTEGER NOT NULL REFERENCES kols(id),
    likes       INTEGER NOT NULL DEFAULT 0,
    comments    INTEGER NOT NULL DEFAULT 0,
    shares      INTEGER NOT NULL DEFAULT 0,
    saves       INTEGER NOT NULL DEFAULT 0,
    reach       INTEGER NOT NULL DEFAULT 0,
    cost        REAL NOT NULL DEFAULT 0,
    engagement  INTEGER NOT NULL DEFAULT 0,
    er          REAL NOT NULL DEFAULT 0,
    cpe         REAL NOT NULL DEFAULT 0,
    s_i         REAL NOT NULL DEFAULT 0,
    final_score REAL NOT NULL DEFAULT 0,
    ranking     INTEGER NOT NULL DEFAULT 0,
    created_at  DATETIME NOT NULL,
    updated_at  DATETIME NOT NULL,
    UNIQUE(campaign_id, kol_id)
);

CREATE INDEX IF NOT EXISTS idx_reports_campaign ON performance_reports(campaign_id);
CREATE INDEX IF NOT EXISTS idx_reports_kol ON performance_reports(kol_id);
`
