// Package web is the HTTP service behind the calculator and the trade
// journal.
package web

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rustyeddy/tradesizer/internal/cache"
	"github.com/rustyeddy/tradesizer/journal"
	"github.com/rustyeddy/tradesizer/numfmt"
	"github.com/rustyeddy/tradesizer/risk"
	"go.uber.org/zap"
)

// RequestIDHeader carries the per-request id.
const RequestIDHeader = "X-Request-ID"

// Options configures a Server.
type Options struct {
	Policy     risk.Policy
	Display    numfmt.Display
	CORSOrigin string
	Cache      *cache.Cache
	Logger     *zap.Logger
}

type Server struct {
	R *gin.Engine

	journal  *journal.Service
	policy   risk.Policy
	display  numfmt.Display
	cache    *cache.Cache
	log      *zap.Logger
	validate *validator.Validate
	tmpl     *template.Template
}

type apiError struct {
	Error string `json:"error"`
}

// NewServer wires the router, journal service, cache and middleware.
func NewServer(svc *journal.Service, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	display := opts.Display
	if display.Policy.Name == "" {
		display = numfmt.Display{Policy: numfmt.ES, Currency: "USD"}
	}

	tmpl, err := parseTemplates(display)
	if err != nil {
		return nil, err
	}

	g := gin.New()

	s := &Server{
		R:        g,
		journal:  svc,
		policy:   opts.Policy,
		display:  display,
		cache:    opts.Cache,
		log:      logger.Named("http"),
		validate: newValidator(),
		tmpl:     tmpl,
	}

	g.Use(requestID())
	g.Use(s.logRequests())
	g.Use(gin.Recovery())
	g.Use(cors(opts.CORSOrigin))

	g.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	g.POST("/calculate", s.calculate)
	g.POST("/add_trade", s.addTrade)
	g.POST("/sell_units/:id", s.sellUnits)
	g.POST("/close_trade/:id", s.closeTrade)
	g.GET("/get_sales_history/:id", s.salesHistory)
	g.GET("/trades", s.trades)
	g.GET("/api/summary", s.summaryJSON)
	g.GET("/summary", s.summaryHTML)

	return s, nil
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.R
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.R,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("http listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("http_request",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func cors(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if origin == "" {
			c.Next()
			return
		}
		h := c.Writer.Header()
		h.Set("Vary", "Origin")
		h.Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Max-Age", "86400")
		if origin == "*" {
			h.Set("Access-Control-Allow-Origin", "*")
		} else if o := c.GetHeader("Origin"); o != "" && o == origin {
			h.Set("Access-Control-Allow-Origin", origin)
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
