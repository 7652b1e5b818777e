package cmd

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rustyeddy/holdings/config"
	"github.com/rustyeddy/holdings/store"
	"github.com/rustyeddy/holdings/tracker"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "holdings",
	Short: "Ledger-replay portfolio tracker with FIFO, LIFO and average-cost gains",
	Long: `Holdings records acquisitions and disposals in a ledger and rebuilds
every portfolio by replaying that ledger.

It provides tools for:
  - Recording purchases, airdrops, farming rewards and sales
  - Importing and exporting the ledger as CSV
  - Showing holdings at cost and at current prices
  - Reporting realized gains by asset and by period
  - Comparing FIFO, LIFO and average-cost gains

Settings come from a YAML (or JSON) file, .env and HOLDINGS_* variables.`,
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

var (
	cfgFile  string
	dbFlag   string
	ownerArg string

	cfg    *config.Config
	logger *slog.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "path to SQLite database (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&ownerArg, "owner", "u", "", "portfolio owner (overrides config)")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if dbFlag != "" {
		c.Database.Path = dbFlag
	}
	if ownerArg != "" {
		c.Owner = ownerArg
	}

	level, err := c.LogLevel()
	if err != nil {
		return err
	}
	logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	cfg = c
	return nil
}

// openTracker opens the configured database. The caller runs the returned
// close func when done.
func openTracker() (*tracker.Tracker, func(), error) {
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	prices, err := cfg.PriceSource()
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("load prices: %w", err)
	}

	tr := tracker.New(st, tracker.Options{
		Stable: cfg.Stable(),
		Prices: prices,
		Logger: logger,
	})
	return tr, func() { _ = st.Close() }, nil
}

// parseTime accepts RFC3339 or a bare YYYY-MM-DD date in UTC.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad time %q: want RFC3339 or YYYY-MM-DD", s)
	}
	return t, nil
}

func parseDecimal(name, s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("bad --%s: %w", name, err)
	}
	return v, nil
}
