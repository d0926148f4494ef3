package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rustyeddy/tradesizer/internal/cache"
	"github.com/rustyeddy/tradesizer/internal/logging"
	"github.com/rustyeddy/tradesizer/internal/web"
	"github.com/rustyeddy/tradesizer/journal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the calculator and journal HTTP service",
	Long: `Serve exposes the calculator and the journal over HTTP:

  POST /calculate             position size for capital, risk and prices
  POST /add_trade             record a trade
  POST /sell_units/:id        sell part of a trade
  POST /close_trade/:id       sell everything left
  GET  /get_sales_history/:id sales of a trade
  GET  /trades                all trades
  GET  /summary               HTML summary (JSON at /api/summary)

Example:
  tradesizer serve --addr :8080 --db ./journal.db`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveAddr   string
	serveDBPath string
	serveMemory bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (overrides server.addr)")
	serveCmd.Flags().StringVarP(&serveDBPath, "db", "d", "", "SQLite journal path (overrides journal.db_path)")
	serveCmd.Flags().BoolVar(&serveMemory, "memory", false, "keep the journal in memory only")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveDBPath != "" {
		cfg.Journal.Type, cfg.Journal.DBPath = "sqlite", serveDBPath
	}
	if serveMemory {
		cfg.Journal.Type = "memory"
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	svc := journal.NewService(store, log)
	defer svc.Close()

	ttl, err := cfg.Server.CacheTTLDuration()
	if err != nil {
		return fmt.Errorf("cache ttl: %w", err)
	}
	var c *cache.Cache
	if ttl > 0 {
		if c, err = cache.New(1024, ttl); err != nil {
			return fmt.Errorf("cache: %w", err)
		}
		defer c.Close()
	}

	srv, err := web.NewServer(svc, web.Options{
		Policy:     cfg.Risk,
		Display:    displayFor(cfg),
		CORSOrigin: cfg.Server.CORSOrigin,
		Cache:      c,
		Logger:     log,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("journal opened",
		zap.String("type", cfg.Journal.Type),
		zap.String("db", cfg.Journal.DBPath),
		zap.Duration("cache_ttl", ttl))
	return srv.Run(ctx, cfg.Server.Addr)
}
