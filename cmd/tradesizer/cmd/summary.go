package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/rustyeddy/tradesizer/internal/logging"
	"github.com/rustyeddy/tradesizer/numfmt"
	"github.com/rustyeddy/tradesizer/refresh"
	"github.com/rustyeddy/tradesizer/submit"
	"github.com/rustyeddy/tradesizer/trade"
	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the journal summary",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

var tradesWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the summary as it changes",
	Long: `Watch polls the /summary page and prints the summary section each
time it is fetched. Press Ctrl-C to stop.

Example:
  tradesizer trades watch --interval 30s`,
	Args: cobra.NoArgs,
	RunE: runTradesWatch,
}

var (
	watchInterval time.Duration
	watchOnce     bool
)

func init() {
	rootCmd.AddCommand(summaryCmd)
	tradesCmd.AddCommand(tradesWatchCmd)

	tradesWatchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "poll interval (default server.refresh)")
	tradesWatchCmd.Flags().BoolVar(&watchOnce, "once", false, "fetch once and exit")
}

func runSummary(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sum, err := newClient(cfg).Summary(cmd.Context())
	if err != nil {
		return fmt.Errorf("summary: %s", submit.Message(displayFor(cfg).Policy, err))
	}
	printSummary(cmd.OutOrStdout(), displayFor(cfg), sum)
	return nil
}

func printSummary(w io.Writer, d numfmt.Display, s trade.Summary) {
	fmt.Fprintf(w, "Trades:          %d (%d open, %d closed)\n", s.TotalTrades, s.OpenTrades, s.ClosedTrades)
	fmt.Fprintf(w, "Total P/L:       %s\n", plStyle(s.TotalProfitLoss).Render(d.Money(s.TotalProfitLoss)))
	fmt.Fprintf(w, "Average P/L:     %s\n", plStyle(s.AvgProfitLossPercent).Render(d.Percent(s.AvgProfitLossPercent)))
	fmt.Fprintf(w, "Win rate:        %s\n", d.Percent(s.WinRate))
	fmt.Fprintf(w, "Invested:        %s\n", d.Money(s.TotalInvested))
	fmt.Fprintf(w, "Open positions:  %s\n", d.Money(s.CurrentPositionsValue))
	fmt.Fprintf(w, "Largest:         %s\n", d.Money(s.LargestPosition))
	fmt.Fprintf(w, "Average size:    %s\n", d.Money(s.AvgPositionSize))
	if s.BestPerforming != nil {
		fmt.Fprintf(w, "Best:            %s\n", s.BestPerforming.Market)
	}
	if s.WorstPerforming != nil {
		fmt.Fprintf(w, "Worst:           %s\n", s.WorstPerforming.Market)
	}
	for _, m := range s.TradesByMarket {
		fmt.Fprintf(w, "  %-12s %3d  %s\n", m.Market, m.Count, d.Money(m.TotalPosition))
	}
}

func runTradesWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	interval := watchInterval
	if interval == 0 {
		if interval, err = cfg.Server.RefreshDuration(); err != nil {
			return err
		}
	}

	// No dialogs exist in a terminal stream, so nothing defers a fragment.
	out := cmd.OutOrStdout()
	r := refresh.New(
		refresh.SummaryFetcher(newClient(cfg).SummaryHTML),
		nil,
		func(fragment string) {
			fmt.Fprintf(out, "-- %s\n%s\n", time.Now().Format(time.TimeOnly), fragment)
		},
		interval, log)

	if watchOnce {
		return r.Tick(cmd.Context())
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
