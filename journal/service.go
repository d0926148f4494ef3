package journal

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rustyeddy/tradesizer/pkg/id"
	"github.com/rustyeddy/tradesizer/trade"
	"go.uber.org/zap"
)

// NewTrade is the request to open a trade.
type NewTrade struct {
	Market     string
	TradeType  string
	EntryPrice float64
	Units      float64
}

// Service implements the journal operations on top of a Store.
type Service struct {
	store Store
	log   *zap.Logger

	Now   func() time.Time
	NewID func(at time.Time) string
}

// NewService returns a Service over store. A nil logger disables logging.
func NewService(store Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store: store,
		log:   log.Named("journal"),
		Now:   func() time.Time { return time.Now().UTC() },
		NewID: id.NewAt,
	}
}

func positive(x float64) bool {
	return x > 0 && !math.IsInf(x, 0) && !math.IsNaN(x)
}

// AddTrade records a new open trade and returns it.
func (s *Service) AddTrade(ctx context.Context, req NewTrade) (trade.Trade, error) {
	market := strings.ToUpper(strings.TrimSpace(req.Market))
	switch {
	case market == "":
		return trade.Trade{}, errors.Wrap(ErrInvalid, "market is required")
	case !positive(req.EntryPrice):
		return trade.Trade{}, errors.Wrap(ErrInvalid, "entry price must be positive")
	case !positive(trade.RoundUnits(req.Units)):
		return trade.Trade{}, errors.Wrap(ErrInvalid, "units must be positive")
	}

	now := s.Now()
	t := trade.New(s.NewID(now), market, strings.ToLower(req.TradeType), req.EntryPrice, req.Units, now)
	if err := s.store.AddTrade(ctx, t); err != nil {
		return trade.Trade{}, errors.Wrap(err, "add trade")
	}
	s.log.Info("trade added",
		zap.String("id", t.ID),
		zap.String("market", t.Market),
		zap.Float64("units", t.Units),
		zap.Float64("entry", t.EntryPrice))
	return t, nil
}

// SellUnits closes units of trade id at exit.
func (s *Service) SellUnits(ctx context.Context, tradeID string, units, exit float64) (trade.Sale, error) {
	units = trade.RoundUnits(units)
	switch {
	case !positive(units):
		return trade.Sale{}, errors.Wrap(ErrInvalid, "units must be positive")
	case !positive(exit):
		return trade.Sale{}, errors.Wrap(ErrInvalid, "exit price must be positive")
	}

	sale, err := s.store.Sell(ctx, tradeID, func(t *trade.Trade) (trade.Sale, error) {
		if units > t.RemainingUnits {
			return trade.Sale{}, errors.Wrapf(ErrInvalid,
				"cannot sell %g units, only %g remaining", units, t.RemainingUnits)
		}
		now := s.Now()
		return t.Sell(s.NewID(now), units, exit, now), nil
	})
	if err != nil {
		return trade.Sale{}, errors.Wrapf(err, "sell %s", tradeID)
	}
	s.log.Info("units sold",
		zap.String("trade", tradeID),
		zap.String("sale", sale.ID),
		zap.Float64("units", sale.UnitsSold),
		zap.Float64("pl", sale.ProfitLoss))
	return sale, nil
}

// CloseTrade sells every remaining unit of trade id at exit.
func (s *Service) CloseTrade(ctx context.Context, tradeID string, exit float64) (trade.Sale, error) {
	if !positive(exit) {
		return trade.Sale{}, errors.Wrap(ErrInvalid, "exit price must be positive")
	}

	sale, err := s.store.Sell(ctx, tradeID, func(t *trade.Trade) (trade.Sale, error) {
		if !t.IsOpen() {
			return trade.Sale{}, errors.Wrap(ErrInvalid, "trade is already closed")
		}
		now := s.Now()
		return t.Sell(s.NewID(now), t.RemainingUnits, exit, now), nil
	})
	if err != nil {
		return trade.Sale{}, errors.Wrapf(err, "close %s", tradeID)
	}
	s.log.Info("trade closed",
		zap.String("trade", tradeID),
		zap.String("sale", sale.ID),
		zap.Float64("pl", sale.ProfitLoss))
	return sale, nil
}

// Trades returns every trade in insertion order.
func (s *Service) Trades(ctx context.Context) ([]trade.Trade, error) {
	ts, err := s.store.Trades(ctx)
	return ts, errors.Wrap(err, "list trades")
}

// Trade returns one trade.
func (s *Service) Trade(ctx context.Context, tradeID string) (trade.Trade, error) {
	return s.store.Trade(ctx, tradeID)
}

// SalesHistory returns the sales of a trade, oldest first.
func (s *Service) SalesHistory(ctx context.Context, tradeID string) ([]trade.Sale, error) {
	if _, err := s.store.Trade(ctx, tradeID); err != nil {
		return nil, err
	}
	sales, err := s.store.Sales(ctx, tradeID)
	return sales, errors.Wrapf(err, "sales of %s", tradeID)
}

// AllSales returns every sale in the journal, oldest first.
func (s *Service) AllSales(ctx context.Context) ([]trade.Sale, error) {
	sales, err := s.store.AllSales(ctx)
	return sales, errors.Wrap(err, "list sales")
}

// Summary aggregates the whole journal.
func (s *Service) Summary(ctx context.Context) (trade.Summary, error) {
	ts, err := s.store.Trades(ctx)
	if err != nil {
		return trade.Summary{}, errors.Wrap(err, "summary trades")
	}
	sales, err := s.store.AllSales(ctx)
	if err != nil {
		return trade.Summary{}, errors.Wrap(err, "summary sales")
	}
	return trade.Summarize(ts, sales), nil
}

// OpenTrades counts trades with units remaining.
func (s *Service) OpenTrades(ctx context.Context) (int, error) {
	ts, err := s.store.Trades(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "count open trades")
	}
	n := 0
	for _, t := range ts {
		if t.IsOpen() {
			n++
		}
	}
	return n, nil
}

// Close closes the underlying store.
func (s *Service) Close() error {
	return s.store.Close()
}
