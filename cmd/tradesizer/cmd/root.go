package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/rustyeddy/tradesizer/client"
	"github.com/rustyeddy/tradesizer/config"
	"github.com/rustyeddy/tradesizer/form"
	"github.com/rustyeddy/tradesizer/input"
	"github.com/rustyeddy/tradesizer/journal"
	"github.com/rustyeddy/tradesizer/numfmt"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tradesizer",
	Short: "Position sizing calculator and trade journal",
	Long: `Tradesizer sizes positions from account risk and keeps a journal of
trades and their partial sales.

It provides:
  - A position-size calculator (capital, risk %, entry and stop)
  - A trade journal with partial sales and realised P/L
  - An HTTP service with an HTML summary page
  - Export of the journal to CSV and Org mode

Numbers are typed and shown in the configured locale (es-ES by default).`,
	SilenceUsage: true,
}

var (
	cfgFile     string
	urlOverride string
	localeFlag  string
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&urlOverride, "url", "", "service base URL (overrides server.url)")
	rootCmd.PersistentFlags().StringVar(&localeFlag, "locale", "", "number locale, es-ES or en-US (overrides display.locale)")
}

// loadConfig reads the config file and environment, then applies the
// persistent flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile, nil)
	if err != nil {
		return nil, err
	}
	if urlOverride != "" {
		cfg.Server.URL = urlOverride
	}
	if localeFlag != "" {
		if _, err := numfmt.Lookup(localeFlag); err != nil {
			return nil, err
		}
		cfg.Display.Locale = localeFlag
	}
	return cfg, nil
}

func displayFor(cfg *config.Config) numfmt.Display {
	d, err := numfmt.NewDisplay(cfg.Display.Locale, cfg.Display.Currency)
	if err != nil {
		return numfmt.Display{Policy: cfg.Display.Policy(), Currency: cfg.Display.Currency}
	}
	return d
}

func newClient(cfg *config.Config) *client.Client {
	return client.New(cfg.Server.URL, nil)
}

func openStore(cfg *config.Config) (journal.Store, error) {
	switch cfg.Journal.Type {
	case "memory":
		return journal.NewMemory(), nil
	case "sqlite", "":
		j, err := journal.NewSQLite(cfg.Journal.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
		return j, nil
	default:
		return nil, fmt.Errorf("unknown journal type %q", cfg.Journal.Type)
	}
}

// fill types values into the form the way a user would: pasted into the
// field, then blurred. Empty values are skipped.
func fill(f *form.Form, v *form.Validator, values map[string]string) {
	ctrls := input.BindAll(f, v)
	for id, val := range values {
		c, ok := ctrls[id]
		if !ok || val == "" {
			continue
		}
		c.Paste(val, 0, len([]rune(c.Field().Value)))
		c.Blur()
	}
}

// fieldErrors renders the invalid fields of f, one per line.
func fieldErrors(f *form.Form) string {
	var b strings.Builder
	for _, e := range f.Errors() {
		fmt.Fprintf(&b, "  %s\n", e.Error())
	}
	return b.String()
}
