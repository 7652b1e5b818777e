package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/rustyeddy/holdings/ledger"
	"github.com/rustyeddy/holdings/report"
	"github.com/spf13/cobra"
)

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Record and inspect ledger transactions",
	Long: `Record, edit and list ledger transactions. Every change rebuilds the
owner's portfolio from the full ledger.

Examples:
  holdings tx add --kind purchase --symbol BTC --qty 0.5 --price 40000
  holdings tx add --kind sale --symbol BTC --qty 0.1 --price 60000 --pay crypto --currency USDT
  holdings tx edit <id> --price 61000
  holdings tx rm <id>
  holdings tx list --symbol BTC
  holdings tx import ledger.csv`,
}

var txAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Append a transaction",
	Args:  cobra.NoArgs,
	RunE:  runTxAdd,
}

var txEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change fields of a transaction",
	Args:  cobra.ExactArgs(1),
	RunE:  runTxEdit,
}

var txRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a transaction",
	Args:  cobra.ExactArgs(1),
	RunE:  runTxRm,
}

var txShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one transaction",
	Args:  cobra.ExactArgs(1),
	RunE:  runTxShow,
}

var txListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the owner's transactions in replay order",
	Args:  cobra.NoArgs,
	RunE:  runTxList,
}

var txImportCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Append every transaction of a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE:  runTxImport,
}

var txExportCmd = &cobra.Command{
	Use:   "export [file.csv]",
	Short: "Write the owner's transactions as CSV",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTxExport,
}

// txFields holds the flags shared by add and edit.
type txFields struct {
	kind, symbol, qty, price, total, at string
	pay, currency, category, notes      string
}

var (
	txAdd  txFields
	txEdit txFields

	txListSymbol    string
	txListKind      string
	txListFrom      string
	txListTo        string
	txListSynthetic bool
)

func bindTxFields(cmd *cobra.Command, f *txFields) {
	cmd.Flags().StringVarP(&f.kind, "kind", "k", "", "purchase, airdrop, farming or sale")
	cmd.Flags().StringVarP(&f.symbol, "symbol", "s", "", "asset symbol")
	cmd.Flags().StringVarP(&f.qty, "qty", "q", "", "quantity")
	cmd.Flags().StringVarP(&f.price, "price", "p", "", "unit price")
	cmd.Flags().StringVar(&f.total, "total", "", "total value (default qty × price)")
	cmd.Flags().StringVarP(&f.at, "time", "t", "", "RFC3339 time or YYYY-MM-DD (default now)")
	cmd.Flags().StringVar(&f.pay, "pay", "", "payment method: crypto or fiat")
	cmd.Flags().StringVar(&f.currency, "currency", "", "payment currency, e.g. USDT")
	cmd.Flags().StringVar(&f.category, "category", "", "free-form category")
	cmd.Flags().StringVar(&f.notes, "notes", "", "free-form notes")
}

func init() {
	rootCmd.AddCommand(txCmd)
	txCmd.AddCommand(txAddCmd, txEditCmd, txRmCmd, txShowCmd, txListCmd, txImportCmd, txExportCmd)

	bindTxFields(txAddCmd, &txAdd)
	txAddCmd.MarkFlagRequired("kind")
	txAddCmd.MarkFlagRequired("symbol")
	txAddCmd.MarkFlagRequired("qty")

	bindTxFields(txEditCmd, &txEdit)

	txListCmd.Flags().StringVarP(&txListSymbol, "symbol", "s", "", "only this symbol")
	txListCmd.Flags().StringVarP(&txListKind, "kind", "k", "", "only this kind")
	txListCmd.Flags().StringVar(&txListFrom, "from", "", "start time, inclusive")
	txListCmd.Flags().StringVar(&txListTo, "to", "", "end time, exclusive")
	txListCmd.Flags().BoolVar(&txListSynthetic, "synthetic", false, "include generated conversion legs")
}

func (f txFields) transaction(owner string) (ledger.Transaction, error) {
	kind, err := ledger.ParseKind(f.kind)
	if err != nil {
		return ledger.Transaction{}, err
	}
	tx := ledger.Transaction{
		Owner:           owner,
		Symbol:          f.symbol,
		Kind:            kind,
		PaymentMethod:   ledger.PaymentMethod(f.pay),
		PaymentCurrency: f.currency,
		Category:        f.category,
		Notes:           f.notes,
	}
	if tx.Quantity, err = parseDecimal("qty", f.qty); err != nil {
		return ledger.Transaction{}, err
	}
	if tx.Price, err = parseDecimal("price", f.price); err != nil {
		return ledger.Transaction{}, err
	}
	if tx.Total, err = parseDecimal("total", f.total); err != nil {
		return ledger.Transaction{}, err
	}
	if tx.Time, err = parseTime(f.at); err != nil {
		return ledger.Transaction{}, err
	}
	return tx, nil
}

// patch builds a Patch from the flags set on cmd.
func (f txFields) patch(cmd *cobra.Command) (ledger.Patch, error) {
	var p ledger.Patch
	set := cmd.Flags().Changed

	if set("kind") {
		k, err := ledger.ParseKind(f.kind)
		if err != nil {
			return p, err
		}
		p.Kind = &k
	}
	if set("symbol") {
		p.Symbol = &f.symbol
	}
	if set("qty") {
		v, err := parseDecimal("qty", f.qty)
		if err != nil {
			return p, err
		}
		p.Quantity = &v
	}
	if set("price") {
		v, err := parseDecimal("price", f.price)
		if err != nil {
			return p, err
		}
		p.Price = &v
	}
	if set("total") {
		v, err := parseDecimal("total", f.total)
		if err != nil {
			return p, err
		}
		p.Total = &v
	}
	if set("time") {
		v, err := parseTime(f.at)
		if err != nil {
			return p, err
		}
		p.Time = &v
	}
	if set("pay") {
		m := ledger.PaymentMethod(f.pay)
		p.PaymentMethod = &m
	}
	if set("currency") {
		p.PaymentCurrency = &f.currency
	}
	if set("category") {
		p.Category = &f.category
	}
	if set("notes") {
		p.Notes = &f.notes
	}
	return p, nil
}

func runTxAdd(cmd *cobra.Command, args []string) error {
	tx, err := txAdd.transaction(cfg.Owner)
	if err != nil {
		return err
	}

	tr, closeDB, err := openTracker()
	if err != nil {
		return err
	}
	defer closeDB()

	stored, err := tr.AppendTransaction(cmd.Context(), tx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.FormatTransactionOrg(stored))
	return nil
}

func runTxEdit(cmd *cobra.Command, args []string) error {
	p, err := txEdit.patch(cmd)
	if err != nil {
		return err
	}
	if p.IsEmpty() {
		return fmt.Errorf("nothing to change: set at least one field flag")
	}

	tr, closeDB, err := openTracker()
	if err != nil {
		return err
	}
	defer closeDB()

	updated, err := tr.UpdateTransaction(cmd.Context(), args[0], p)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.FormatTransactionOrg(updated))
	return nil
}

func runTxRm(cmd *cobra.Command, args []string) error {
	tr, closeDB, err := openTracker()
	if err != nil {
		return err
	}
	defer closeDB()

	if err := tr.DeleteTransaction(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %s\n", args[0])
	return nil
}

func runTxShow(cmd *cobra.Command, args []string) error {
	tr, closeDB, err := openTracker()
	if err != nil {
		return err
	}
	defer closeDB()

	tx, err := tr.GetTransaction(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.FormatTransactionOrg(tx))
	return nil
}

func runTxList(cmd *cobra.Command, args []string) error {
	f := ledger.Filter{
		Owner:            cfg.Owner,
		Symbol:           txListSymbol,
		IncludeSynthetic: txListSynthetic,
	}
	if txListKind != "" {
		k, err := ledger.ParseKind(txListKind)
		if err != nil {
			return err
		}
		f.Kind = k
	}
	var err error
	if f.From, err = parseTime(txListFrom); err != nil {
		return err
	}
	if f.To, err = parseTime(txListTo); err != nil {
		return err
	}

	tr, closeDB, err := openTracker()
	if err != nil {
		return err
	}
	defer closeDB()

	txs, err := tr.ListTransactions(cmd.Context(), f)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.FormatTransactionsOrg(cfg.Owner, txs))
	return nil
}

func runTxImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open %s: %w", args[0], err)
	}
	defer f.Close()

	txs, err := ledger.ReadCSV(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	tr, closeDB, err := openTracker()
	if err != nil {
		return err
	}
	defer closeDB()

	for i, tx := range txs {
		if tx.Owner == "" {
			tx.Owner = cfg.Owner
		}
		if _, err := tr.AppendTransaction(cmd.Context(), tx); err != nil {
			return fmt.Errorf("row %d: %w (%d imported)", i+1, err, i)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d transactions from %s\n", len(txs), args[0])
	return nil
}

func runTxExport(cmd *cobra.Command, args []string) error {
	tr, closeDB, err := openTracker()
	if err != nil {
		return err
	}
	defer closeDB()

	txs, err := tr.ListTransactions(cmd.Context(), ledger.Filter{Owner: cfg.Owner})
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if len(args) == 1 {
		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("create %s: %w", args[0], err)
		}
		defer f.Close()
		w = f
	}
	return ledger.WriteCSV(w, txs)
}
