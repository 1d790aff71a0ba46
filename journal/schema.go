// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	item TEXT NOT NULL,
	side TEXT NOT NULL,
	size REAL NOT NULL,
	price_open REAL NOT NULL,
	price_close REAL NOT NULL,
	time_open INTEGER NOT NULL,
	time_close INTEGER NOT NULL,
	pnl REAL NOT NULL,
	label TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	item TEXT NOT NULL,
	time INTEGER NOT NULL,
	value REAL NOT NULL,
	close_latest REAL NOT NULL,
	pos_size REAL NOT NULL,
	cash_avail REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	strategy TEXT NOT NULL,
	items TEXT NOT NULL,
	capital REAL NOT NULL,
	started_at INTEGER NOT NULL,
	stopped_at INTEGER NOT NULL,
	trades INTEGER NOT NULL,
	net_pnl REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_item_close ON trades(item, time_close);
CREATE INDEX IF NOT EXISTS idx_equity_item_time ON equity(item, time);
`
