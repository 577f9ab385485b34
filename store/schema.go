package store

// Schema is the complete SQLite schema, applied on every Open. Every
// statement is idempotent, so opening an existing database is safe.
//
// Monetary amounts and quantities are stored as decimal TEXT: reading a
// value back and re-storing it is byte-identical, which keeps replayed
// rebuilds deterministic. Days are ISO "YYYY-MM-DD" strings, which sort
// chronologically as text.
const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	kind       TEXT NOT NULL,
	currency   TEXT NOT NULL,
	balance    TEXT NOT NULL DEFAULT '0',
	inception  TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS assets (
	id       TEXT PRIMARY KEY,
	symbol   TEXT NOT NULL UNIQUE,
	name     TEXT NOT NULL DEFAULT '',
	currency TEXT NOT NULL,
	tags     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS transactions (
	id         TEXT PRIMARY KEY,
	day        TEXT NOT NULL,
	kind       TEXT NOT NULL,
	account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
	asset_id   TEXT REFERENCES assets(id) ON DELETE SET NULL,
	quantity   TEXT NOT NULL DEFAULT '0',
	price      TEXT NOT NULL DEFAULT '0',
	fee        TEXT NOT NULL DEFAULT '0',
	total      TEXT NOT NULL,
	note       TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS transactions_by_day ON transactions(day, id);

CREATE TABLE IF NOT EXISTS price_history (
	symbol TEXT NOT NULL,
	day    TEXT NOT NULL,
	close  REAL NOT NULL,
	PRIMARY KEY (symbol, day)
);

CREATE TABLE IF NOT EXISTS portfolio_snapshots (
	day            TEXT PRIMARY KEY,
	currency       TEXT NOT NULL,
	total_equity   TEXT NOT NULL,
	total_cash     TEXT NOT NULL,
	total_market   TEXT NOT NULL,
	total_invested TEXT NOT NULL,
	holdings_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS rebuild_lock (
	id        INTEGER PRIMARY KEY CHECK (id = 1),
	locked    INTEGER NOT NULL DEFAULT 0,
	locked_at TEXT NOT NULL DEFAULT ''
);
INSERT OR IGNORE INTO rebuild_lock (id, locked) VALUES (1, 0);
`
