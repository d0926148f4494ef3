package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	id TEXT PRIMARY KEY,
	date DATETIME NOT NULL,
	market TEXT NOT NULL,
	trade_type TEXT NOT NULL DEFAULT '',
	entry_price REAL NOT NULL,
	units REAL NOT NULL,
	remaining_units REAL NOT NULL,
	position_size REAL NOT NULL,
	status TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sales (
	id TEXT PRIMARY KEY,
	trade_id TEXT NOT NULL REFERENCES trades(id),
	date DATETIME NOT NULL,
	units_sold REAL NOT NULL,
	exit_price REAL NOT NULL,
	profit_loss REAL NOT NULL,
	profit_loss_pct REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sales_trade ON sales(trade_id);
`
