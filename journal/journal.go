// Package journal persists trades and their partial sales and exposes the
// operations behind the journal endpoints.
package journal

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rustyeddy/tradesizer/trade"
)

var (
	// ErrNotFound is returned for an unknown trade id.
	ErrNotFound = errors.New("trade not found")

	// ErrInvalid is returned for a request the journal refuses, such as
	// selling more units than remain.
	ErrInvalid = errors.New("invalid request")
)

// SellFunc applies a sale to the loaded trade and returns the sale record.
// Returning an error aborts the sale without changing the store.
type SellFunc func(t *trade.Trade) (trade.Sale, error)

// Store is the persistence behind the journal. Implementations serialize
// Sell so that remaining units never go negative.
type Store interface {
	AddTrade(ctx context.Context, t trade.Trade) error
	Trade(ctx context.Context, id string) (trade.Trade, error)
	Trades(ctx context.Context) ([]trade.Trade, error)
	Sell(ctx context.Context, id string, fn SellFunc) (trade.Sale, error)
	Sales(ctx context.Context, tradeID string) ([]trade.Sale, error)
	AllSales(ctx context.Context) ([]trade.Sale, error)
	Close() error
}
