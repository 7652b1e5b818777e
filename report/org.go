// Package report renders ledgers, portfolios and gain reports as Org-mode
// text suitable for pasting into a journal.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/holdings/costbasis"
	"github.com/rustyeddy/holdings/gains"
	"github.com/rustyeddy/holdings/ledger"
	"github.com/rustyeddy/holdings/portfolio"
	"github.com/rustyeddy/holdings/tracker"
	"github.com/shopspring/decimal"
)

func money(v decimal.Decimal) string { return v.StringFixed(2) }

func pct(v decimal.Decimal) string { return v.StringFixed(2) + "%" }

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}

// table writes an Org table with a rule under the header row.
func table(b *strings.Builder, header []string, rows [][]string) {
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat("---+", len(header)-1) + "---|\n")
	for _, r := range rows {
		b.WriteString("| " + strings.Join(r, " | ") + " |\n")
	}
}

// FormatTransactionsOrg renders a ledger as a table.
func FormatTransactionsOrg(owner string, txs []ledger.Transaction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "* Ledger: %s\n", owner)
	rows := make([][]string, 0, len(txs))
	for _, t := range txs {
		kind := t.Kind.String()
		if t.Synthetic {
			kind += "*"
		}
		rows = append(rows, []string{
			shortID(t.ID), stamp(t.Time), kind, t.Symbol,
			t.Quantity.String(), t.Price.String(), t.Total.String(),
			strings.TrimSpace(string(t.PaymentMethod) + " " + t.PaymentCurrency),
		})
	}
	table(&b, []string{"ID", "Time", "Kind", "Symbol", "Quantity", "Price", "Total", "Paid"}, rows)
	return b.String()
}

// FormatTransactionOrg renders one transaction with its facts in a
// PROPERTIES drawer.
func FormatTransactionOrg(t ledger.Transaction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** %s %s %s (%s)\n", strings.ToUpper(t.Kind.String()), t.Quantity, t.Symbol, shortID(t.ID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":ID: %s\n", t.ID)
	fmt.Fprintf(&b, ":OWNER: %s\n", t.Owner)
	fmt.Fprintf(&b, ":SYMBOL: %s\n", t.Symbol)
	fmt.Fprintf(&b, ":KIND: %s\n", t.Kind)
	fmt.Fprintf(&b, ":QUANTITY: %s\n", t.Quantity)
	fmt.Fprintf(&b, ":PRICE: %s\n", t.Price)
	fmt.Fprintf(&b, ":TOTAL: %s\n", t.Total)
	fmt.Fprintf(&b, ":TIME: %s\n", stamp(t.Time))
	if t.PaymentMethod != ledger.PaymentNone {
		fmt.Fprintf(&b, ":PAYMENT: %s %s\n", t.PaymentMethod, t.PaymentCurrency)
	}
	if t.Category != "" {
		fmt.Fprintf(&b, ":CATEGORY: %s\n", t.Category)
	}
	if t.Synthetic {
		fmt.Fprintf(&b, ":ORIGIN: %s\n", t.OriginID)
	}
	b.WriteString(":END:\n")
	if t.Notes != "" {
		b.WriteString("\n" + t.Notes + "\n")
	}
	return b.String()
}

// FormatPortfolioOrg renders holdings at cost.
func FormatPortfolioOrg(p portfolio.Portfolio) string {
	var b strings.Builder
	fmt.Fprintf(&b, "* Portfolio: %s\n", p.Owner)
	if !p.UpdatedAt.IsZero() {
		fmt.Fprintf(&b, "Updated: %s\n\n", stamp(p.UpdatedAt))
	}
	rows := make([][]string, 0, len(p.Holdings))
	for _, h := range p.Holdings {
		rows = append(rows, []string{
			h.Symbol, h.Quantity.String(), h.AveragePrice.String(), money(h.CostBasis()), string(h.Origin), h.Category,
		})
	}
	table(&b, []string{"Symbol", "Quantity", "Avg Price", "Cost", "Origin", "Category"}, rows)
	return b.String()
}

// FormatValuationOrg renders holdings at market prices. Unpriced holdings
// are marked and excluded from the totals.
func FormatValuationOrg(v portfolio.Valuation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "* Valuation: %s\n", v.Owner)
	rows := make([][]string, 0, len(v.Holdings)+1)
	for _, h := range v.Holdings {
		if !h.Priced {
			rows = append(rows, []string{h.Symbol, h.Quantity.String(), "n/a", "n/a", money(h.Cost), "n/a", "n/a"})
			continue
		}
		rows = append(rows, []string{
			h.Symbol, h.Quantity.String(), h.Price.String(), money(h.Value), money(h.Cost),
			money(h.Unrealized), pct(h.UnrealizedPercent),
		})
	}
	rows = append(rows, []string{
		"Total", "", "", money(v.TotalValue), money(v.TotalCost), money(v.Unrealized), pct(v.UnrealizedPercent),
	})
	table(&b, []string{"Symbol", "Quantity", "Price", "Value", "Cost", "Unrealized", "%"}, rows)
	return b.String()
}

// FormatGainOrg renders one realized gain record.
func FormatGainOrg(g gains.RealizedGain) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** Gain: %s %s (%s)\n", g.Symbol, money(g.Gain), shortID(g.TransactionID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":ID: %s\n", g.ID)
	fmt.Fprintf(&b, ":TRANSACTION_ID: %s\n", g.TransactionID)
	fmt.Fprintf(&b, ":SYMBOL: %s\n", g.Symbol)
	fmt.Fprintf(&b, ":CURRENCY: %s\n", g.Currency)
	fmt.Fprintf(&b, ":QUANTITY: %s\n", g.Quantity)
	fmt.Fprintf(&b, ":COST_PER_UNIT: %s\n", g.CostBasisPerUnit)
	fmt.Fprintf(&b, ":SALE_PRICE: %s\n", g.SalePrice)
	fmt.Fprintf(&b, ":COST_BASIS: %s\n", money(g.CostBasis))
	fmt.Fprintf(&b, ":PROCEEDS: %s\n", money(g.Proceeds))
	fmt.Fprintf(&b, ":GAIN: %s\n", money(g.Gain))
	fmt.Fprintf(&b, ":GAIN_PERCENT: %s\n", pct(g.GainPercent))
	fmt.Fprintf(&b, ":TIME: %s\n", stamp(g.Time))
	b.WriteString(":END:\n")
	return b.String()
}

// FormatGainsOrg renders multiple records separated by blank lines.
func FormatGainsOrg(records []gains.RealizedGain) string {
	var b strings.Builder
	for i, g := range records {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatGainOrg(g))
	}
	return b.String()
}

func totalRow(label string, t gains.Total) []string {
	return []string{
		label, fmt.Sprint(t.Count), fmt.Sprint(t.Profitable), fmt.Sprint(t.Unprofitable),
		money(t.Proceeds), money(t.CostBasis), money(t.Gain), pct(t.GainPercent),
	}
}

var totalHeader = []string{"", "Sales", "Profitable", "Unprofitable", "Proceeds", "Cost", "Gain", "%"}

// FormatTotalOrg renders a single summary.
func FormatTotalOrg(owner string, t gains.Total) string {
	var b strings.Builder
	fmt.Fprintf(&b, "* Realized gains: %s\n", owner)
	table(&b, totalHeader, [][]string{totalRow("Total", t)})
	fmt.Fprintf(&b, "\nProfitable: %s  Unprofitable: %s\n", pct(t.ProfitablePercent), pct(t.UnprofitablePercent))
	return b.String()
}

func FormatAssetTotalsOrg(owner string, assets []gains.AssetTotal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "* Realized gains by asset: %s\n", owner)
	rows := make([][]string, 0, len(assets))
	for _, a := range assets {
		rows = append(rows, totalRow(a.Symbol, a.Total))
	}
	table(&b, totalHeader, rows)
	return b.String()
}

func FormatPeriodTotalsOrg(owner string, b gains.Bucket, periods []gains.PeriodTotal) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "* Realized gains by %s: %s\n", b, owner)
	rows := make([][]string, 0, len(periods))
	for _, p := range periods {
		rows = append(rows, totalRow(p.Start.Format(time.DateOnly), p.Total))
	}
	table(&sb, totalHeader, rows)
	return sb.String()
}

// FormatCostBasisOrg renders a lot-matching report, one section per asset.
func FormatCostBasisOrg(owner string, r costbasis.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "* Realized gains (%s): %s\n", strings.ToUpper(r.Method.String()), owner)
	fmt.Fprintf(&b, "Proceeds: %s  Cost: %s  Gain: %s\n",
		money(r.TotalProceeds), money(r.TotalCostBasis), money(r.TotalGain))

	for _, a := range r.Assets {
		fmt.Fprintf(&b, "\n** %s\n", a.Symbol)
		fmt.Fprintf(&b, "Acquired: %s  Sold: %s  Remaining: %s  Gain: %s\n\n",
			a.TotalAcquired, a.TotalSold, a.Remaining, money(a.RealizedGain))

		rows := make([][]string, 0, len(a.Sales)+len(a.Skipped))
		for _, s := range a.Sales {
			rows = append(rows, []string{
				stamp(s.Time), shortID(s.TransactionID), s.Quantity.String(),
				s.CostBasisPerUnit.StringFixed(4), money(s.Proceeds), money(s.Gain), pct(s.GainPercent),
			})
		}
		for _, s := range a.Skipped {
			rows = append(rows, []string{
				stamp(s.Time), shortID(s.TransactionID), s.Quantity.String(),
				"skipped", "", "", "only " + s.Available.String() + " held",
			})
		}
		table(&b, []string{"Time", "Sale", "Quantity", "Cost/Unit", "Proceeds", "Gain", "%"}, rows)
	}
	return b.String()
}

// FormatHistoryOrg renders the approximate value at the end of each bucket.
func FormatHistoryOrg(owner string, b gains.Bucket, points []tracker.HistoryPoint) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "* Portfolio history by %s: %s\n", b, owner)
	sb.WriteString("Valued at current prices.\n\n")
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		v := p.Valuation
		rows = append(rows, []string{
			p.Start.Format(time.DateOnly), money(v.TotalValue), money(v.TotalCost),
			money(v.Unrealized), pct(v.UnrealizedPercent),
		})
	}
	table(&sb, []string{"Period", "Value", "Cost", "Unrealized", "%"}, rows)
	return sb.String()
}
