package cmd

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/holdings/costbasis"
	"github.com/rustyeddy/holdings/gains"
	"github.com/rustyeddy/holdings/report"
	"github.com/spf13/cobra"
)

var gainsCmd = &cobra.Command{
	Use:   "gains",
	Short: "Report realized gains",
	Long: `Report realized gains.

The stored gain records come from sales paid in a stable-value currency and
always use the average cost at the time of the sale. The historical report
matches every sale against its lots with the selected method instead, so the
two can disagree under FIFO or LIFO.

Subcommands:
  list       - Gain records
  total      - Totals with profitable/unprofitable counts
  assets     - Totals per asset
  period     - Totals per day, week, month or year
  historical - FIFO, LIFO or average-cost matching over the full ledger

Examples:
  holdings gains list --symbol BTC --from 2024-01-01
  holdings gains period --by month
  holdings gains historical --method lifo`,
}

var gainsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List gain records",
	Args:  cobra.NoArgs,
	RunE:  runGainsList,
}

var gainsTotalCmd = &cobra.Command{
	Use:   "total",
	Short: "Summarize gain records",
	Args:  cobra.NoArgs,
	RunE:  runGainsTotal,
}

var gainsAssetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Summarize gain records per asset",
	Args:  cobra.NoArgs,
	RunE:  runGainsAssets,
}

var gainsPeriodCmd = &cobra.Command{
	Use:   "period",
	Short: "Summarize gain records per period",
	Args:  cobra.NoArgs,
	RunE:  runGainsPeriod,
}

var gainsHistoricalCmd = &cobra.Command{
	Use:   "historical",
	Short: "Match sales against lots with a cost-basis method",
	Args:  cobra.NoArgs,
	RunE:  runGainsHistorical,
}

var (
	gainsSymbol   string
	gainsCurrency string
	gainsFrom     string
	gainsTo       string
	gainsBy       string
	gainsMethod   string
)

func init() {
	rootCmd.AddCommand(gainsCmd)
	gainsCmd.AddCommand(gainsListCmd, gainsTotalCmd, gainsAssetsCmd, gainsPeriodCmd, gainsHistoricalCmd)

	gainsCmd.PersistentFlags().StringVarP(&gainsSymbol, "symbol", "s", "", "only this asset")
	gainsCmd.PersistentFlags().StringVar(&gainsCurrency, "currency", "", "only sales paid in this currency")
	gainsCmd.PersistentFlags().StringVar(&gainsFrom, "from", "", "start time, inclusive")
	gainsCmd.PersistentFlags().StringVar(&gainsTo, "to", "", "end time, exclusive")

	gainsPeriodCmd.Flags().StringVar(&gainsBy, "by", "month", "period: day, week, month or year")
	gainsHistoricalCmd.Flags().StringVarP(&gainsMethod, "method", "m", "", "fifo, lifo or average (default from config)")
}

func gainsFilter() (gains.Filter, error) {
	f := gains.Filter{
		Symbol:   strings.ToUpper(gainsSymbol),
		Currency: strings.ToUpper(gainsCurrency),
	}
	var err error
	if f.From, err = parseTime(gainsFrom); err != nil {
		return f, err
	}
	if f.To, err = parseTime(gainsTo); err != nil {
		return f, err
	}
	return f, nil
}

func runGainsList(cmd *cobra.Command, args []string) error {
	f, err := gainsFilter()
	if err != nil {
		return err
	}

	tr, closeDB, err := openTracker()
	if err != nil {
		return err
	}
	defer closeDB()

	records, err := tr.GetRealizedGains(cmd.Context(), cfg.Owner, f)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No realized gains.")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.FormatGainsOrg(records))
	return nil
}

func runGainsTotal(cmd *cobra.Command, args []string) error {
	f, err := gainsFilter()
	if err != nil {
		return err
	}

	tr, closeDB, err := openTracker()
	if err != nil {
		return err
	}
	defer closeDB()

	total, err := tr.GetRealizedGainTotal(cmd.Context(), cfg.Owner, f)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.FormatTotalOrg(cfg.Owner, total))
	return nil
}

func runGainsAssets(cmd *cobra.Command, args []string) error {
	f, err := gainsFilter()
	if err != nil {
		return err
	}

	tr, closeDB, err := openTracker()
	if err != nil {
		return err
	}
	defer closeDB()

	assets, err := tr.GetRealizedGainsByAsset(cmd.Context(), cfg.Owner, f)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.FormatAssetTotalsOrg(cfg.Owner, assets))
	return nil
}

func runGainsPeriod(cmd *cobra.Command, args []string) error {
	b, err := gains.ParseBucket(gainsBy)
	if err != nil {
		return err
	}
	f, err := gainsFilter()
	if err != nil {
		return err
	}

	tr, closeDB, err := openTracker()
	if err != nil {
		return err
	}
	defer closeDB()

	periods, err := tr.GetRealizedGainsByPeriod(cmd.Context(), cfg.Owner, b, f)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.FormatPeriodTotalsOrg(cfg.Owner, b, periods))
	return nil
}

func runGainsHistorical(cmd *cobra.Command, args []string) error {
	m, err := cfg.Method()
	if err != nil {
		return err
	}
	if gainsMethod != "" {
		if m, err = costbasis.ParseMethod(gainsMethod); err != nil {
			return err
		}
	}

	tr, closeDB, err := openTracker()
	if err != nil {
		return err
	}
	defer closeDB()

	rep, err := tr.GetRealizedGainsHistorical(cmd.Context(), cfg.Owner, m)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.FormatCostBasisOrg(cfg.Owner, rep))
	return nil
}
