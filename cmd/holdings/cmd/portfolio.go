package cmd

import (
	"fmt"

	"github.com/rustyeddy/holdings/gains"
	"github.com/rustyeddy/holdings/report"
	"github.com/spf13/cobra"
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Show the owner's derived holdings",
	Long: `Show holdings rebuilt from the ledger.

Subcommands:
  show    - Holdings at average cost
  value   - Holdings at current prices
  recalc  - Force a full replay of the ledger
  history - Approximate value at the end of each period, at current prices

Examples:
  holdings portfolio show
  holdings portfolio value
  holdings portfolio history --by month`,
}

var portfolioShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Holdings at average cost",
	Args:  cobra.NoArgs,
	RunE:  runPortfolioShow,
}

var portfolioValueCmd = &cobra.Command{
	Use:   "value",
	Short: "Holdings at current prices",
	Args:  cobra.NoArgs,
	RunE:  runPortfolioValue,
}

var portfolioRecalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "Rebuild holdings from the full ledger",
	Args:  cobra.NoArgs,
	RunE:  runPortfolioRecalc,
}

var portfolioHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Approximate portfolio value per period",
	Args:  cobra.NoArgs,
	RunE:  runPortfolioHistory,
}

var portfolioHistoryBy string

func init() {
	rootCmd.AddCommand(portfolioCmd)
	portfolioCmd.AddCommand(portfolioShowCmd, portfolioValueCmd, portfolioRecalcCmd, portfolioHistoryCmd)

	portfolioHistoryCmd.Flags().StringVar(&portfolioHistoryBy, "by", "month", "period: day, week, month or year")
}

func runPortfolioShow(cmd *cobra.Command, args []string) error {
	tr, closeDB, err := openTracker()
	if err != nil {
		return err
	}
	defer closeDB()

	p, err := tr.GetPortfolio(cmd.Context(), cfg.Owner)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.FormatPortfolioOrg(p))
	return nil
}

func runPortfolioValue(cmd *cobra.Command, args []string) error {
	tr, closeDB, err := openTracker()
	if err != nil {
		return err
	}
	defer closeDB()

	v, err := tr.GetPortfolioValue(cmd.Context(), cfg.Owner)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.FormatValuationOrg(v))
	return nil
}

func runPortfolioRecalc(cmd *cobra.Command, args []string) error {
	tr, closeDB, err := openTracker()
	if err != nil {
		return err
	}
	defer closeDB()

	p, err := tr.RecalculatePortfolio(cmd.Context(), cfg.Owner)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.FormatPortfolioOrg(p))
	return nil
}

func runPortfolioHistory(cmd *cobra.Command, args []string) error {
	b, err := gains.ParseBucket(portfolioHistoryBy)
	if err != nil {
		return err
	}

	tr, closeDB, err := openTracker()
	if err != nil {
		return err
	}
	defer closeDB()

	points, err := tr.GetPortfolioHistory(cmd.Context(), cfg.Owner, b)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.FormatHistoryOrg(cfg.Owner, b, points))
	return nil
}
