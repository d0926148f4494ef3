package journal

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/rustyeddy/tradesizer/trade"
)

const tradeColumns = `id, date, market, trade_type, entry_price, units, remaining_units, position_size, status`

const saleColumns = `id, trade_id, date, units_sold, exit_price, profit_loss, profit_loss_pct`

// SQLite is a Store backed by a SQLite database file.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	j, err := OpenSQLite(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// OpenSQLite wraps an already opened database and applies the schema.
func OpenSQLite(db *sql.DB) (*SQLite, error) {
	// one connection serializes the read-modify-write of Sell
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(Schema); err != nil {
		return nil, errors.Wrap(err, "apply schema")
	}
	return &SQLite{db: db}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(s scanner) (trade.Trade, error) {
	var t trade.Trade
	var status string
	err := s.Scan(
		&t.ID,
		&t.Date,
		&t.Market,
		&t.TradeType,
		&t.EntryPrice,
		&t.Units,
		&t.RemainingUnits,
		&t.PositionSize,
		&status,
	)
	t.Status = trade.Status(status)
	return t, err
}

func scanSale(s scanner) (trade.Sale, error) {
	var sale trade.Sale
	err := s.Scan(
		&sale.ID,
		&sale.TradeID,
		&sale.Date,
		&sale.UnitsSold,
		&sale.ExitPrice,
		&sale.ProfitLoss,
		&sale.ProfitLossPct,
	)
	return sale, err
}

func (j *SQLite) AddTrade(ctx context.Context, t trade.Trade) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO trades (`+tradeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Date.UTC(), t.Market, t.TradeType, t.EntryPrice,
		t.Units, t.RemainingUnits, t.PositionSize, string(t.Status),
	)
	return errors.Wrapf(err, "insert trade %s", t.ID)
}

func (j *SQLite) Trade(ctx context.Context, id string) (trade.Trade, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+tradeColumns+` FROM trades WHERE id = ?`, id)
	t, err := scanTrade(row)
	if err == sql.ErrNoRows {
		return trade.Trade{}, errors.Wrapf(ErrNotFound, "trade %q", id)
	}
	if err != nil {
		return trade.Trade{}, errors.Wrapf(err, "load trade %s", id)
	}
	return t, nil
}

func (j *SQLite) Trades(ctx context.Context) ([]trade.Trade, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT `+tradeColumns+` FROM trades ORDER BY date ASC, id ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "list trades")
	}
	defer rows.Close()

	out := []trade.Trade{}
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan trade")
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list trades")
	}
	return out, nil
}

// Sell runs fn against the stored trade inside a transaction and persists
// both the updated trade and the sale.
func (j *SQLite) Sell(ctx context.Context, id string, fn SellFunc) (trade.Sale, error) {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return trade.Sale{}, errors.Wrap(err, "begin sale")
	}
	defer func() { _ = tx.Rollback() }()

	t, err := scanTrade(tx.QueryRowContext(ctx, `SELECT `+tradeColumns+` FROM trades WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return trade.Sale{}, errors.Wrapf(ErrNotFound, "trade %q", id)
	}
	if err != nil {
		return trade.Sale{}, errors.Wrapf(err, "load trade %s", id)
	}

	sale, err := fn(&t)
	if err != nil {
		return trade.Sale{}, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE trades SET remaining_units = ?, position_size = ?, status = ?
		WHERE id = ?`,
		t.RemainingUnits, t.PositionSize, string(t.Status), t.ID,
	); err != nil {
		return trade.Sale{}, errors.Wrapf(err, "update trade %s", t.ID)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sales (`+saleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sale.ID, sale.TradeID, sale.Date.UTC(), sale.UnitsSold,
		sale.ExitPrice, sale.ProfitLoss, sale.ProfitLossPct,
	); err != nil {
		return trade.Sale{}, errors.Wrapf(err, "insert sale %s", sale.ID)
	}

	if err := tx.Commit(); err != nil {
		return trade.Sale{}, errors.Wrap(err, "commit sale")
	}
	return sale, nil
}

func (j *SQLite) Sales(ctx context.Context, tradeID string) ([]trade.Sale, error) {
	return j.querySales(ctx, `SELECT `+saleColumns+` FROM sales WHERE trade_id = ? ORDER BY date ASC, id ASC`, tradeID)
}

func (j *SQLite) AllSales(ctx context.Context) ([]trade.Sale, error) {
	return j.querySales(ctx, `SELECT `+saleColumns+` FROM sales ORDER BY date ASC, id ASC`)
}

func (j *SQLite) querySales(ctx context.Context, query string, args ...any) ([]trade.Sale, error) {
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list sales")
	}
	defer rows.Close()

	out := []trade.Sale{}
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan sale")
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list sales")
	}
	return out, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
