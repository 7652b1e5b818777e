package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CSVHeader is the column layout used by WriteCSV and expected by ReadCSV.
var CSVHeader = []string{
	"id", "owner", "symbol", "kind", "quantity", "price", "total", "time",
	"payment_method", "payment_currency", "category", "notes",
}

// WriteCSV writes txs with a header row.
func WriteCSV(w io.Writer, txs []Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, t := range txs {
		err := cw.Write([]string{
			t.ID,
			t.Owner,
			t.Symbol,
			t.Kind.String(),
			t.Quantity.String(),
			t.Price.String(),
			t.Total.String(),
			t.Time.UTC().Format(time.RFC3339Nano),
			string(t.PaymentMethod),
			t.PaymentCurrency,
			t.Category,
			t.Notes,
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses rows written by WriteCSV. Columns are matched by header
// name; symbol, kind and quantity are required, the rest may be absent.
// Empty numeric cells read as zero.
func ReadCSV(r io.Reader) ([]Transaction, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range []string{"symbol", "kind", "quantity"} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("read header: missing column %q", name)
		}
	}

	var out []Transaction
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		cell := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		num := func(name string) (decimal.Decimal, error) {
			s := cell(name)
			if s == "" {
				return decimal.Zero, nil
			}
			v, err := decimal.NewFromString(s)
			if err != nil {
				return decimal.Zero, fmt.Errorf("line %d: %s: %w", line, name, err)
			}
			return v, nil
		}

		t := Transaction{
			ID:              cell("id"),
			Owner:           cell("owner"),
			Symbol:          cell("symbol"),
			PaymentMethod:   PaymentMethod(cell("payment_method")),
			PaymentCurrency: cell("payment_currency"),
			Category:        cell("category"),
			Notes:           cell("notes"),
		}
		if t.Kind, err = ParseKind(cell("kind")); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if t.Quantity, err = num("quantity"); err != nil {
			return nil, err
		}
		if t.Price, err = num("price"); err != nil {
			return nil, err
		}
		if t.Total, err = num("total"); err != nil {
			return nil, err
		}
		if s := cell("time"); s != "" {
			if t.Time, err = time.Parse(time.RFC3339Nano, s); err != nil {
				return nil, fmt.Errorf("line %d: time: %w", line, err)
			}
		}
		out = append(out, t)
	}
	return out, nil
}
