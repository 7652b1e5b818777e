package store

// Schema creates the ledger, portfolio and realized-gain collections.
// origin_id is NULL for user transactions, so the unique index only binds
// synthetic legs: one leg per originating sale.
const Schema = `
CREATE TABLE IF NOT EXISTS transactions (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	owner TEXT NOT NULL,
	symbol TEXT NOT NULL,
	kind TEXT NOT NULL,
	quantity TEXT NOT NULL,
	price TEXT NOT NULL,
	total TEXT NOT NULL,
	time DATETIME NOT NULL,
	payment_method TEXT NOT NULL DEFAULT '',
	payment_currency TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	synthetic INTEGER NOT NULL DEFAULT 0,
	origin_id TEXT
);

CREATE INDEX IF NOT EXISTS idx_transactions_owner_time ON transactions(owner, time, seq);
CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_origin ON transactions(origin_id);

CREATE TABLE IF NOT EXISTS portfolios (
	owner TEXT PRIMARY KEY,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS holdings (
	owner TEXT NOT NULL,
	position INTEGER NOT NULL,
	symbol TEXT NOT NULL,
	quantity TEXT NOT NULL,
	average_price TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	origin TEXT NOT NULL,
	PRIMARY KEY (owner, symbol)
);

CREATE TABLE IF NOT EXISTS realized_gains (
	id TEXT PRIMARY KEY,
	owner TEXT NOT NULL,
	transaction_id TEXT NOT NULL UNIQUE,
	symbol TEXT NOT NULL,
	currency TEXT NOT NULL,
	quantity TEXT NOT NULL,
	cost_basis_per_unit TEXT NOT NULL,
	sale_price TEXT NOT NULL,
	cost_basis TEXT NOT NULL,
	proceeds TEXT NOT NULL,
	gain TEXT NOT NULL,
	gain_percent TEXT NOT NULL,
	time DATETIME NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_realized_gains_owner_time ON realized_gains(owner, time);
`
