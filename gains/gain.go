// Package gains holds realized gain records, derived from sales settled in a
// stable-value currency, and the aggregate views over them.
package gains

import (
	"time"

	"github.com/rustyeddy/holdings/ledger"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RealizedGain is the derived record of one qualifying sale.
type RealizedGain struct {
	ID               string          `json:"id"`
	Owner            string          `json:"owner"`
	TransactionID    string          `json:"transaction_id"`
	Symbol           string          `json:"symbol"`
	Currency         string          `json:"currency"`
	Quantity         decimal.Decimal `json:"quantity"`
	CostBasisPerUnit decimal.Decimal `json:"cost_basis_per_unit"`
	SalePrice        decimal.Decimal `json:"sale_price"`
	CostBasis        decimal.Decimal `json:"cost_basis"`
	Proceeds         decimal.Decimal `json:"proceeds"`
	Gain             decimal.Decimal `json:"gain"`
	GainPercent      decimal.Decimal `json:"gain_percent"`
	Time             time.Time       `json:"time"`
	Category         string          `json:"category,omitempty"`
	Notes            string          `json:"notes,omitempty"`
}

// Compute builds the record for sale valued at the average cost of the
// holding when the sale happened. The caller assigns the ID.
func Compute(sale ledger.Transaction, averageCost decimal.Decimal) RealizedGain {
	cost := sale.Quantity.Mul(averageCost)
	proceeds := sale.Proceeds()
	gain := proceeds.Sub(cost)

	var pct decimal.Decimal
	if !cost.IsZero() {
		pct = gain.Div(cost).Mul(hundred)
	}

	return RealizedGain{
		Owner:            sale.Owner,
		TransactionID:    sale.ID,
		Symbol:           sale.Symbol,
		Currency:         sale.PaymentCurrency,
		Quantity:         sale.Quantity,
		CostBasisPerUnit: averageCost,
		SalePrice:        sale.Price,
		CostBasis:        cost,
		Proceeds:         proceeds,
		Gain:             gain,
		GainPercent:      pct,
		Time:             sale.Time,
		Category:         sale.Category,
		Notes:            sale.Notes,
	}
}

// Filter selects gain records. Zero fields match everything.
type Filter struct {
	Owner    string
	Symbol   string
	Currency string
	From     time.Time // inclusive
	To       time.Time // exclusive
}

func (f Filter) Match(g RealizedGain) bool {
	if f.Owner != "" && g.Owner != f.Owner {
		return false
	}
	if f.Symbol != "" && g.Symbol != f.Symbol {
		return false
	}
	if f.Currency != "" && g.Currency != f.Currency {
		return false
	}
	if !f.From.IsZero() && g.Time.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !g.Time.Before(f.To) {
		return false
	}
	return true
}
