package web

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rustyeddy/tradesizer/internal/cache"
	"github.com/rustyeddy/tradesizer/journal"
	"github.com/rustyeddy/tradesizer/risk"
	"github.com/rustyeddy/tradesizer/trade"
	"go.uber.org/zap"
)

type calculateRequest struct {
	CapitalTotal   float64 `json:"capitalTotal" validate:"gt=0"`
	RiskPercentage float64 `json:"riskPercentage" validate:"gte=0,lte=100"`
	EntryPrice     float64 `json:"entryPrice" validate:"gt=0"`
	ExitPrice      float64 `json:"exitPrice" validate:"gt=0,ltfield=EntryPrice"`
	BaseCurrency   string  `json:"baseCurrency" validate:"omitempty,alpha,len=3"`
}

type calculateResponse struct {
	risk.Result
	BaseCurrency string           `json:"baseCurrency,omitempty"`
	Violations   []risk.Violation `json:"violations,omitempty"`
}

type addTradeRequest struct {
	Market     string  `json:"market" validate:"required,market"`
	EntryPrice float64 `json:"entryPrice" validate:"gt=0"`
	Units      float64 `json:"units" validate:"gt=0"`
	TradeType  string  `json:"tradeType" validate:"omitempty,oneof=buy sell"`
}

type sellRequest struct {
	Units     float64 `json:"units" validate:"gt=0"`
	ExitPrice float64 `json:"exitPrice" validate:"gt=0"`
}

type closeRequest struct {
	ExitPrice float64 `json:"exitPrice" validate:"gt=0"`
}

type tradesResponse struct {
	Trades []trade.Trade `json:"trades"`
}

type salesResponse struct {
	Trades       []trade.Trade `json:"trades,omitempty"`
	SalesHistory []trade.Sale  `json:"salesHistory"`
}

// --- Helpers ---

func (s *Server) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, apiError{Error: msg})
}

func (s *Server) internalError(c *gin.Context, where string, err error) {
	s.log.Error("internal_error",
		zap.String("request_id", c.GetString("request_id")),
		zap.String("where", where),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, apiError{Error: "internal server error"})
}

// fail maps journal and risk errors onto status codes.
func (s *Server) fail(c *gin.Context, where string, err error) {
	switch {
	case errors.Is(err, journal.ErrNotFound):
		c.JSON(http.StatusNotFound, apiError{Error: "trade not found"})
	case errors.Is(err, journal.ErrInvalid), errors.Is(err, risk.ErrInvalidInput):
		s.badRequest(c, err.Error())
	default:
		s.internalError(c, where, err)
	}
}

// bind decodes the JSON body into req and validates it.
func (s *Server) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		s.badRequest(c, "invalid JSON body")
		return false
	}
	if err := s.validate.Struct(req); err != nil {
		s.badRequest(c, validationMessage(err))
		return false
	}
	return true
}

func (s *Server) invalidate(tradeID string) {
	if s.cache == nil {
		return
	}
	keys := []string{cache.KeySummary, cache.KeySummaryHTML, cache.KeyTrades}
	if tradeID != "" {
		keys = append(keys, cache.SalesKey(tradeID))
	}
	s.cache.Invalidate(keys...)
}

// generation must be read before the journal so a mutation that lands
// mid-read keeps the stale result out of the cache.
func (s *Server) generation() uint64 {
	if s.cache == nil {
		return 0
	}
	return s.cache.Generation()
}

func (s *Server) store(gen uint64, key string, val any) {
	if s.cache == nil {
		return
	}
	if !s.cache.SetAt(gen, key, val) {
		s.log.Debug("skipped stale cache fill", zap.String("key", key))
	}
}

func (s *Server) allTrades(c *gin.Context) ([]trade.Trade, error) {
	if ts, ok := cache.Lookup[[]trade.Trade](s.cache, cache.KeyTrades); ok {
		return ts, nil
	}
	gen := s.generation()
	ts, err := s.journal.Trades(c.Request.Context())
	if err != nil {
		return nil, err
	}
	s.store(gen, cache.KeyTrades, ts)
	return ts, nil
}

func (s *Server) sales(c *gin.Context, tradeID string) ([]trade.Sale, error) {
	key := cache.SalesKey(tradeID)
	if sales, ok := cache.Lookup[[]trade.Sale](s.cache, key); ok {
		return sales, nil
	}
	gen := s.generation()
	sales, err := s.journal.SalesHistory(c.Request.Context(), tradeID)
	if err != nil {
		return nil, err
	}
	s.store(gen, key, sales)
	return sales, nil
}

func (s *Server) summary(c *gin.Context) (trade.Summary, error) {
	if sum, ok := cache.Lookup[trade.Summary](s.cache, cache.KeySummary); ok {
		return sum, nil
	}
	gen := s.generation()
	sum, err := s.journal.Summary(c.Request.Context())
	if err != nil {
		return trade.Summary{}, err
	}
	s.store(gen, cache.KeySummary, sum)
	return sum, nil
}

// --- Handlers ---

func (s *Server) calculate(c *gin.Context) {
	var req calculateRequest
	if !s.bind(c, &req) {
		return
	}

	in := risk.Inputs{
		Capital: req.CapitalTotal,
		RiskPct: req.RiskPercentage,
		Entry:   req.EntryPrice,
		Exit:    req.ExitPrice,
	}
	res, err := risk.Calculate(in)
	if err != nil {
		s.fail(c, "Calculate", err)
		return
	}

	open, err := s.journal.OpenTrades(c.Request.Context())
	if err != nil {
		s.internalError(c, "OpenTrades", err)
		return
	}
	d := risk.Evaluate(s.policy, in, res, open)

	c.JSON(http.StatusOK, calculateResponse{
		Result:       res,
		BaseCurrency: strings.ToUpper(req.BaseCurrency),
		Violations:   d.Violations,
	})
}

func (s *Server) addTrade(c *gin.Context) {
	var req addTradeRequest
	if !s.bind(c, &req) {
		return
	}

	_, err := s.journal.AddTrade(c.Request.Context(), journal.NewTrade{
		Market:     req.Market,
		TradeType:  req.TradeType,
		EntryPrice: req.EntryPrice,
		Units:      req.Units,
	})
	if err != nil {
		s.fail(c, "AddTrade", err)
		return
	}
	s.invalidate("")

	ts, err := s.journal.Trades(c.Request.Context())
	if err != nil {
		s.internalError(c, "Trades", err)
		return
	}
	c.JSON(http.StatusOK, tradesResponse{Trades: ts})
}

func (s *Server) sellUnits(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	var req sellRequest
	if !s.bind(c, &req) {
		return
	}

	_, err := s.journal.SellUnits(c.Request.Context(), id, req.Units, req.ExitPrice)
	if err != nil {
		s.fail(c, "SellUnits", err)
		return
	}
	s.respondAfterSale(c, id)
}

func (s *Server) closeTrade(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	var req closeRequest
	if !s.bind(c, &req) {
		return
	}

	_, err := s.journal.CloseTrade(c.Request.Context(), id, req.ExitPrice)
	if err != nil {
		s.fail(c, "CloseTrade", err)
		return
	}
	s.respondAfterSale(c, id)
}

func (s *Server) respondAfterSale(c *gin.Context, id string) {
	s.invalidate(id)

	ts, err := s.journal.Trades(c.Request.Context())
	if err != nil {
		s.internalError(c, "Trades", err)
		return
	}
	sales, err := s.journal.SalesHistory(c.Request.Context(), id)
	if err != nil {
		s.fail(c, "SalesHistory", err)
		return
	}
	c.JSON(http.StatusOK, salesResponse{Trades: ts, SalesHistory: sales})
}

func (s *Server) salesHistory(c *gin.Context) {
	sales, err := s.sales(c, strings.TrimSpace(c.Param("id")))
	if err != nil {
		s.fail(c, "SalesHistory", err)
		return
	}
	c.JSON(http.StatusOK, salesResponse{SalesHistory: sales})
}

func (s *Server) trades(c *gin.Context) {
	ts, err := s.allTrades(c)
	if err != nil {
		s.internalError(c, "Trades", err)
		return
	}
	c.JSON(http.StatusOK, tradesResponse{Trades: ts})
}

func (s *Server) summaryJSON(c *gin.Context) {
	sum, err := s.summary(c)
	if err != nil {
		s.internalError(c, "Summary", err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (s *Server) summaryHTML(c *gin.Context) {
	if page, ok := cache.Lookup[string](s.cache, cache.KeySummaryHTML); ok {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
		return
	}

	gen := s.generation()
	sum, err := s.summary(c)
	if err != nil {
		s.internalError(c, "Summary", err)
		return
	}
	ts, err := s.allTrades(c)
	if err != nil {
		s.internalError(c, "Trades", err)
		return
	}

	var buf bytes.Buffer
	if err := s.renderSummary(&buf, sum, ts); err != nil {
		s.internalError(c, "renderSummary", err)
		return
	}
	s.store(gen, cache.KeySummaryHTML, buf.String())
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
