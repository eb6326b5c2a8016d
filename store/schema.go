// store/schema.go
package store

// TransactionsSchema holds cash ledger rows.
const TransactionsSchema = `
CREATE TABLE IF NOT EXISTS transactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	description TEXT NOT NULL,
	amount REAL NOT NULL,
	date TEXT NOT NULL
);
`

// StocksSchema holds the watchlist. Symbols are unique.
const StocksSchema = `
CREATE TABLE IF NOT EXISTS stocks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	symbol TEXT NOT NULL UNIQUE
);
`

// PortfolioSchema holds one row per purchase lot.
const PortfolioSchema = `
CREATE TABLE IF NOT EXISTS portfolio (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	symbol TEXT NOT NULL,
	shares REAL NOT NULL,
	cost_basis REAL NOT NULL,
	purchase_date TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_portfolio_symbol_date ON portfolio(symbol, purchase_date);
`

// Schema is every table of finance.db.
const Schema = TransactionsSchema + StocksSchema + PortfolioSchema
