package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/rustyeddy/tradesizer/config"
	"github.com/rustyeddy/tradesizer/journal"
	"github.com/rustyeddy/tradesizer/trade"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Read the trade journal database directly",
	Long: `Read and export journal records straight from the SQLite database,
without a running service.

Subcommands:
  show    - Show one trade, or all of them, as Org mode
  export  - Write trades or sales as CSV, or the journal as Org mode

Examples:
  tradesizer journal show 01HX...
  tradesizer journal export --format csv --output trades.csv
  tradesizer journal export --format csv --sales`,
}

var journalShowCmd = &cobra.Command{
	Use:   "show [trade-id]",
	Short: "Show trades as Org mode",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runJournalShow,
}

var journalExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the journal",
	Args:  cobra.NoArgs,
	RunE:  runJournalExport,
}

var (
	journalDBPath string
	exportFormat  string
	exportOutput  string
	exportSales   bool
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalShowCmd)
	journalCmd.AddCommand(journalExportCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "", "path to SQLite journal DB (overrides journal.db_path)")

	journalExportCmd.Flags().StringVarP(&exportFormat, "format", "F", "csv", "csv or org")
	journalExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	journalExportCmd.Flags().BoolVar(&exportSales, "sales", false, "csv: export sales instead of trades")
}

func openJournal() (*journal.Service, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if journalDBPath != "" {
		cfg.Journal = config.JournalConfig{Type: "sqlite", DBPath: journalDBPath}
	}
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	return journal.NewService(store, nil), nil
}

func runJournalShow(cmd *cobra.Command, args []string) error {
	svc, err := openJournal()
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	if len(args) == 1 {
		t, err := svc.Trade(ctx, args[0])
		if err != nil {
			return fmt.Errorf("get trade: %w", err)
		}
		sales, err := svc.SalesHistory(ctx, t.ID)
		if err != nil {
			return fmt.Errorf("get sales: %w", err)
		}
		fmt.Fprintln(out, journal.FormatTradeOrg(t, sales))
		return nil
	}

	trades, sales, err := everything(cmd, svc)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, journal.FormatJournalOrg(trades, sales))
	return nil
}

func everything(cmd *cobra.Command, svc *journal.Service) ([]trade.Trade, []trade.Sale, error) {
	trades, err := svc.Trades(cmd.Context())
	if err != nil {
		return nil, nil, fmt.Errorf("query trades: %w", err)
	}
	sales, err := svc.AllSales(cmd.Context())
	if err != nil {
		return nil, nil, fmt.Errorf("query sales: %w", err)
	}
	return trades, sales, nil
}

func runJournalExport(cmd *cobra.Command, args []string) error {
	svc, err := openJournal()
	if err != nil {
		return err
	}
	defer svc.Close()

	var w io.Writer = cmd.OutOrStdout()
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	trades, sales, err := everything(cmd, svc)
	if err != nil {
		return err
	}

	switch exportFormat {
	case "csv":
		if exportSales {
			return journal.WriteSalesCSV(w, sales)
		}
		return journal.WriteTradesCSV(w, trades)
	case "org":
		_, err := fmt.Fprintln(w, journal.FormatJournalOrg(trades, sales))
		return err
	default:
		return fmt.Errorf("unknown format %q (supported: csv, org)", exportFormat)
	}
}
