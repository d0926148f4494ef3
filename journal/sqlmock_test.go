package journal

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pkg/errors"
	"github.com/rustyeddy/tradesizer/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockSQLite(t *testing.T) (*SQLite, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS trades").WillReturnResult(sqlmock.NewResult(0, 0))
	j, err := OpenSQLite(db)
	require.NoError(t, err)
	return j, mock
}

var tradeCols = []string{"id", "date", "market", "trade_type", "entry_price", "units", "remaining_units", "position_size", "status"}

func TestSQLiteSchemaFailure(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("read-only"))
	_, err = OpenSQLite(db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply schema")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteAddTradeFailure(t *testing.T) {
	t.Parallel()

	j, mock := newMockSQLite(t)
	mock.ExpectExec("INSERT INTO trades").WillReturnError(errors.New("disk full"))

	err := j.AddTrade(context.Background(), trade.New("A", "AAPL", "", 1, 1, t0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert trade A")
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteSellRollsBackOnUpdateFailure(t *testing.T) {
	t.Parallel()

	j, mock := newMockSQLite(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM trades WHERE id").
		WithArgs("A").
		WillReturnRows(sqlmock.NewRows(tradeCols).
			AddRow("A", t0, "AAPL", "", 100.0, 10.0, 10.0, 1000.0, "Open"))
	mock.ExpectExec("UPDATE trades").WillReturnError(errors.New("locked"))
	mock.ExpectRollback()

	_, err := j.Sell(context.Background(), "A", sellAll(2, 110, "S1", t0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "update trade A")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteSellRejectedByFunc(t *testing.T) {
	t.Parallel()

	j, mock := newMockSQLite(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM trades WHERE id").
		WithArgs("A").
		WillReturnRows(sqlmock.NewRows(tradeCols).
			AddRow("A", t0, "AAPL", "", 100.0, 10.0, 1.0, 100.0, "Open"))
	mock.ExpectRollback()

	_, err := j.Sell(context.Background(), "A", sellAll(2, 110, "S1", t0))
	assert.ErrorIs(t, err, ErrInvalid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteSellNotFound(t *testing.T) {
	t.Parallel()

	j, mock := newMockSQLite(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM trades WHERE id").
		WithArgs("X").
		WillReturnRows(sqlmock.NewRows(tradeCols))
	mock.ExpectRollback()

	_, err := j.Sell(context.Background(), "X", sellAll(1, 1, "S1", t0))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteTradesQueryFailure(t *testing.T) {
	t.Parallel()

	j, mock := newMockSQLite(t)
	mock.ExpectQuery("SELECT .* FROM trades ORDER BY").WillReturnError(errors.New("boom"))

	svc := NewService(j, nil)
	_, err := svc.Summary(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "summary trades")
	assert.NoError(t, mock.ExpectationsWereMet())
}
