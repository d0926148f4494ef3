package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rustyeddy/tradesizer/client"
	"github.com/rustyeddy/tradesizer/form"
	"github.com/rustyeddy/tradesizer/numfmt"
	"github.com/rustyeddy/tradesizer/risk"
	"github.com/rustyeddy/tradesizer/submit"
	"github.com/spf13/cobra"
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Size a position from capital, risk and stop",
	Long: `Calc computes the capital at risk, the risk per unit, the position
size in units and the total position value.

Values are typed in the display locale. With es-ES, "10.000" is ten
thousand and "0,5" is one half.

Examples:
  tradesizer calc --capital 10.000 --risk 2 --entry 100 --exit 90
  tradesizer calc --locale en-US --capital 25,000 --risk 1.5 --entry 1.0850 --exit 1.0800 --offline
  tradesizer calc -i`,
	Args: cobra.NoArgs,
	RunE: runCalc,
}

var (
	calcCapital  string
	calcRisk     string
	calcEntry    string
	calcExit     string
	calcCurrency string
	calcOffline  bool
	calcPrompt   bool
)

func init() {
	rootCmd.AddCommand(calcCmd)

	calcCmd.Flags().StringVar(&calcCapital, "capital", "", "total capital (required)")
	calcCmd.Flags().StringVar(&calcRisk, "risk", "", "risk percentage, default from risk.default_risk_pct")
	calcCmd.Flags().StringVar(&calcEntry, "entry", "", "entry price (required)")
	calcCmd.Flags().StringVar(&calcExit, "exit", "", "stop price, below entry (required)")
	calcCmd.Flags().StringVar(&calcCurrency, "currency", "", "base currency, default from display.currency")
	calcCmd.Flags().BoolVar(&calcOffline, "offline", false, "compute locally instead of calling the service")
	calcCmd.Flags().BoolVarP(&calcPrompt, "interactive", "i", false, "prompt for values not given as flags")
}

func runCalc(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	d := displayFor(cfg)

	riskPct := calcRisk
	if riskPct == "" {
		riskPct = d.Policy.FromFloat(cfg.Risk.DefaultRiskPct, 1)
	}
	currency := calcCurrency
	if currency == "" {
		currency = d.Currency
	}

	f := form.CalculatorForm()
	v := form.CalculatorValidator(form.NewValidator(d.Policy))
	fill(f, v, map[string]string{
		"capitalTotal":   calcCapital,
		"riskPercentage": riskPct,
		"entryPrice":     calcEntry,
		"exitPrice":      calcExit,
		"baseCurrency":   currency,
	})
	if calcPrompt {
		if err := prompt(f, v); err != nil {
			return err
		}
	}

	send := func(ctx context.Context, p submit.Payload) (client.CalculateResult, error) {
		return newClient(cfg).Calculate(ctx, p)
	}
	if calcOffline {
		send = func(_ context.Context, p submit.Payload) (client.CalculateResult, error) {
			return calculateLocal(cfg.Risk, p)
		}
	}

	out := cmd.OutOrStdout()
	s := submit.New[client.CalculateResult](f, v, send)
	s.KeepOnSuccess = true
	s.OnError = func(msg string) { fmt.Fprintln(cmd.ErrOrStderr(), msg) }
	s.OnSuccess = func(res client.CalculateResult) { printCalculation(out, d, res) }

	if _, err := s.Submit(cmd.Context()); err != nil {
		if errors.Is(err, submit.ErrInvalid) {
			fmt.Fprint(cmd.ErrOrStderr(), fieldErrors(f))
		}
		return err
	}
	return nil
}

func calculateLocal(p risk.Policy, pl submit.Payload) (client.CalculateResult, error) {
	in := risk.Inputs{
		Capital: pl.Float("capitalTotal"),
		RiskPct: pl.Float("riskPercentage"),
		Entry:   pl.Float("entryPrice"),
		Exit:    pl.Float("exitPrice"),
	}
	res, err := risk.Calculate(in)
	if err != nil {
		return client.CalculateResult{}, err
	}
	dec := risk.Evaluate(p, in, res, 0)
	return client.CalculateResult{
		Result:       res,
		BaseCurrency: pl.String("baseCurrency"),
		Violations:   dec.Violations,
	}, nil
}

func printCalculation(w io.Writer, d numfmt.Display, res client.CalculateResult) {
	if res.BaseCurrency != "" {
		d.Currency = res.BaseCurrency
	}
	fmt.Fprintf(w, "Capital at risk:      %s\n", d.Money(res.CapitalAtRisk))
	fmt.Fprintf(w, "Risk per unit:        %s\n", d.Money(res.RiskPerUnit))
	fmt.Fprintf(w, "Position size:        %s units\n", d.Units(res.PositionSize))
	fmt.Fprintf(w, "Total position value: %s\n", d.Money(res.TotalPositionValue))
	for _, v := range res.Violations {
		fmt.Fprintf(w, "! %s: %s\n", v.Code, v.Msg)
	}
}
