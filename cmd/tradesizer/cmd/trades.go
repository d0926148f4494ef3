package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rustyeddy/tradesizer/client"
	"github.com/rustyeddy/tradesizer/form"
	"github.com/rustyeddy/tradesizer/numfmt"
	"github.com/rustyeddy/tradesizer/submit"
	"github.com/rustyeddy/tradesizer/table"
	"github.com/rustyeddy/tradesizer/trade"
	"github.com/spf13/cobra"
)

var tradesCmd = &cobra.Command{
	Use:   "trades",
	Short: "Record, sell and list journal trades",
	Long: `Work with the journal kept by a running tradesizer service.

Subcommands:
  add      - Record a new trade
  sell     - Sell part of a trade
  close    - Sell everything left of a trade
  list     - Show trades, filtered and sorted
  history  - Show the sales of a trade
  watch    - Follow the summary as it changes

Examples:
  tradesizer trades add --market BTC-USD --entry 42.000 --units 0,25
  tradesizer trades sell 01HX... --units 0,1 --exit 45.000
  tradesizer trades list --sort "Position Size" --desc`,
}

var tradesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a new trade",
	Args:  cobra.NoArgs,
	RunE:  runTradesAdd,
}

var tradesSellCmd = &cobra.Command{
	Use:   "sell <trade-id>",
	Short: "Sell part of a trade",
	Long: `Sell units of an open trade at an exit price. The units are checked
against what remains of the trade before anything is sent.`,
	Args: cobra.ExactArgs(1),
	RunE: runTradesSell,
}

var tradesCloseCmd = &cobra.Command{
	Use:   "close <trade-id>",
	Short: "Sell everything left of a trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradesClose,
}

var tradesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show trades",
	Args:  cobra.NoArgs,
	RunE:  runTradesList,
}

var tradesHistoryCmd = &cobra.Command{
	Use:   "history <trade-id>",
	Short: "Show the sales of a trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradesHistory,
}

var (
	addMarket string
	addEntry  string
	addUnits  string
	addType   string

	sellUnits string
	sellExit  string

	closeExit string

	listFilter string
	listSort   string
	listDesc   bool
	listHTML   bool
)

func init() {
	rootCmd.AddCommand(tradesCmd)
	tradesCmd.AddCommand(tradesAddCmd)
	tradesCmd.AddCommand(tradesSellCmd)
	tradesCmd.AddCommand(tradesCloseCmd)
	tradesCmd.AddCommand(tradesListCmd)
	tradesCmd.AddCommand(tradesHistoryCmd)

	tradesAddCmd.Flags().StringVarP(&addMarket, "market", "m", "", "market symbol, e.g. AAPL or BTC-USD (required)")
	tradesAddCmd.Flags().StringVarP(&addEntry, "entry", "e", "", "entry price (required)")
	tradesAddCmd.Flags().StringVarP(&addUnits, "units", "u", "", "units bought (required)")
	tradesAddCmd.Flags().StringVarP(&addType, "type", "t", "", "trade type: buy or sell")

	tradesSellCmd.Flags().StringVarP(&sellUnits, "units", "u", "", "units to sell (required)")
	tradesSellCmd.Flags().StringVarP(&sellExit, "exit", "x", "", "exit price (required)")

	tradesCloseCmd.Flags().StringVarP(&closeExit, "exit", "x", "", "exit price (required)")

	tradesListCmd.Flags().StringVarP(&listFilter, "filter", "f", "", "show trades with a field containing this text")
	tradesListCmd.Flags().StringVarP(&listSort, "sort", "s", table.ColDate, "column to sort by")
	tradesListCmd.Flags().BoolVar(&listDesc, "desc", false, "sort descending")
	tradesListCmd.Flags().BoolVar(&listHTML, "html", false, "write the table as HTML")
}

// submitForm runs a submit controller for f and prints failures the way the
// web banner would show them.
func submitForm[T any](cmd *cobra.Command, f *form.Form, v *form.Validator, send submit.Sender[T], done func(T)) error {
	s := submit.New[T](f, v, send)
	s.OnSuccess = done
	s.OnError = func(msg string) { fmt.Fprintln(cmd.ErrOrStderr(), msg) }

	_, err := s.Submit(cmd.Context())
	if errors.Is(err, submit.ErrInvalid) {
		fmt.Fprint(cmd.ErrOrStderr(), fieldErrors(f))
	}
	return err
}

func runTradesAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	d := displayFor(cfg)
	cl := newClient(cfg)

	f := form.TradeForm()
	v := form.NewValidator(d.Policy)
	fill(f, v, map[string]string{
		"market":     addMarket,
		"entryPrice": addEntry,
		"units":      addUnits,
		"tradeType":  strings.ToLower(addType),
	})

	return submitForm(cmd, f, v,
		func(ctx context.Context, p submit.Payload) ([]trade.Trade, error) {
			return cl.AddTrade(ctx, p)
		},
		func(trades []trade.Trade) {
			tbl := table.New(d)
			tbl.Replace(trades)
			renderRows(cmd.OutOrStdout(), tbl.Render("", table.SortState{Column: table.ColDate, Direction: table.Desc}))
		})
}

// loadTable fetches the trade list into a table controller.
func loadTable(ctx context.Context, cl *client.Client, d numfmt.Display) (*table.Controller, error) {
	trades, err := cl.Trades(ctx)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	tbl := table.New(d)
	tbl.Replace(trades)
	return tbl, nil
}

func runTradesSell(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	d := displayFor(cfg)
	cl := newClient(cfg)

	tbl, err := loadTable(cmd.Context(), cl, d)
	if err != nil {
		return err
	}
	id := args[0]
	tbl.OpenDialog(table.ActionSell, id)
	defer tbl.CloseDialog()

	f := form.SaleForm()
	v := form.SaleValidator(form.NewValidator(d.Policy),
		tbl.RemainingFor(func() string { return f.Value("saleTradeId") }))
	fill(f, v, map[string]string{
		"saleTradeId":   id,
		"saleUnits":     sellUnits,
		"saleExitPrice": sellExit,
	})

	return submitForm(cmd, f, v,
		func(ctx context.Context, p submit.Payload) (client.SaleResult, error) {
			return cl.SellUnits(ctx, p.String("tradeId"), p.Float("units"), p.Float("exitPrice"))
		},
		func(res client.SaleResult) {
			printSales(cmd.OutOrStdout(), d, res.SalesHistory)
		})
}

func runTradesClose(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	d := displayFor(cfg)
	cl := newClient(cfg)

	f := form.CloseForm()
	v := form.CloseValidator(form.NewValidator(d.Policy))
	fill(f, v, map[string]string{
		"closeTradeId":   args[0],
		"status":         string(trade.StatusClosed),
		"closeExitPrice": closeExit,
	})

	return submitForm(cmd, f, v,
		func(ctx context.Context, p submit.Payload) (client.SaleResult, error) {
			return cl.CloseTrade(ctx, p.String("tradeId"), p.Float("exitPrice"))
		},
		func(res client.SaleResult) {
			printSales(cmd.OutOrStdout(), d, res.SalesHistory)
		})
}

func runTradesList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	d := displayFor(cfg)

	tbl, err := loadTable(cmd.Context(), newClient(cfg), d)
	if err != nil {
		return err
	}

	s := table.SortState{Column: listSort, Direction: table.Asc}
	if listDesc {
		s.Direction = table.Desc
	}
	rows := tbl.Render(listFilter, s)
	if listHTML {
		return table.WriteHTML(cmd.OutOrStdout(), rows)
	}
	renderRows(cmd.OutOrStdout(), rows)
	return nil
}

func runTradesHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	d := displayFor(cfg)

	sales, err := newClient(cfg).SalesHistory(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("sales history: %s", submit.Message(d.Policy, err))
	}
	printSales(cmd.OutOrStdout(), d, sales)
	return nil
}

func printSales(w io.Writer, d numfmt.Display, sales []trade.Sale) {
	if len(sales) == 0 {
		fmt.Fprintln(w, "No sales")
		return
	}
	for _, s := range sales {
		fmt.Fprintf(w, "%s  %s units @ %s  P/L %s (%s)\n",
			s.Date.Local().Format("2006-01-02 15:04"),
			d.Units(s.UnitsSold),
			d.Money(s.ExitPrice),
			plStyle(s.ProfitLoss).Render(d.Money(s.ProfitLoss)),
			plStyle(s.ProfitLossPct).Render(d.Percent(s.ProfitLossPct)))
	}
}
