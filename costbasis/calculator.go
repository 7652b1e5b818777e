// Package costbasis matches disposals against prior acquisitions to compute
// realized gains for reporting. It is read-only and independent from the
// gain records kept by the tracker.
package costbasis

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/rustyeddy/holdings/ledger"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// SaleResult is the outcome of matching one sale.
type SaleResult struct {
	TransactionID    string          `json:"transaction_id"`
	Symbol           string          `json:"symbol"`
	Time             time.Time       `json:"time"`
	Method           Method          `json:"method"`
	Quantity         decimal.Decimal `json:"quantity"`
	SalePrice        decimal.Decimal `json:"sale_price"`
	Proceeds         decimal.Decimal `json:"proceeds"`
	CostBasis        decimal.Decimal `json:"cost_basis"`
	CostBasisPerUnit decimal.Decimal `json:"cost_basis_per_unit"`
	Gain             decimal.Decimal `json:"gain"`
	GainPercent      decimal.Decimal `json:"gain_percent"`
}

// SkippedSale is a sale larger than the quantity acquired before it.
type SkippedSale struct {
	TransactionID string          `json:"transaction_id"`
	Time          time.Time       `json:"time"`
	Quantity      decimal.Decimal `json:"quantity"`
	Available     decimal.Decimal `json:"available"`
}

// AssetSummary aggregates the matched sales of one asset.
type AssetSummary struct {
	Symbol        string          `json:"symbol"`
	TotalAcquired decimal.Decimal `json:"total_acquired"`
	TotalSold     decimal.Decimal `json:"total_sold"`
	Remaining     decimal.Decimal `json:"remaining"`
	RealizedGain  decimal.Decimal `json:"realized_gain"`
	Sales         []SaleResult    `json:"sales"`
	Skipped       []SkippedSale   `json:"skipped,omitempty"`
}

// Report is the result of a calculation over an owner's history.
type Report struct {
	Method         Method          `json:"method"`
	Assets         []AssetSummary  `json:"assets"`
	TotalProceeds  decimal.Decimal `json:"total_proceeds"`
	TotalCostBasis decimal.Decimal `json:"total_cost_basis"`
	TotalGain      decimal.Decimal `json:"total_gain"`
}

// Asset returns the summary for symbol.
func (r Report) Asset(symbol string) (AssetSummary, bool) {
	for _, a := range r.Assets {
		if a.Symbol == symbol {
			return a, true
		}
	}
	return AssetSummary{}, false
}

// Calculator computes realized gains under a selectable Method.
type Calculator struct {
	logger *slog.Logger
}

func NewCalculator(logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{logger: logger}
}

type assetState struct {
	summary AssetSummary
	inv     inventory
}

// Calculate processes txs in chronological order, ties broken by insertion
// sequence. Lots come from Purchase and Airdrop events; a sale exceeding the
// available quantity is skipped with a warning.
func (c *Calculator) Calculate(txs []ledger.Transaction, m Method) (Report, error) {
	switch m {
	case FIFO, LIFO, Average:
	default:
		return Report{}, fmt.Errorf("calculate: unsupported method %d", int(m))
	}

	ordered := append([]ledger.Transaction(nil), txs...)
	ledger.Sort(ordered)

	states := map[string]*assetState{}
	state := func(sym string) *assetState {
		s, ok := states[sym]
		if !ok {
			s = &assetState{summary: AssetSummary{Symbol: sym}, inv: newInventory(m)}
			states[sym] = s
		}
		return s
	}

	for _, t := range ordered {
		switch t.Kind {
		case ledger.Purchase, ledger.Airdrop:
			s := state(t.Symbol)
			price := t.Price
			if t.Kind.IsZeroCost() {
				price = decimal.Zero
			}
			s.inv.add(Lot{Quantity: t.Quantity, Price: price, Time: t.Time})
			s.summary.TotalAcquired = s.summary.TotalAcquired.Add(t.Quantity)

		case ledger.Farming:
			// Farming rewards are not lot-tracked.

		case ledger.Sale:
			s := state(t.Symbol)
			avail := s.inv.available()
			if avail.LessThan(t.Quantity) {
				c.logger.Warn("skipping sale with insufficient lots",
					"id", t.ID, "symbol", t.Symbol, "method", m.String(),
					"sold", t.Quantity.String(), "available", avail.String())
				s.summary.Skipped = append(s.summary.Skipped, SkippedSale{
					TransactionID: t.ID,
					Time:          t.Time,
					Quantity:      t.Quantity,
					Available:     avail,
				})
				continue
			}

			cost := s.inv.consume(t.Quantity)
			proceeds := t.Proceeds()
			gain := proceeds.Sub(cost)

			res := SaleResult{
				TransactionID: t.ID,
				Symbol:        t.Symbol,
				Time:          t.Time,
				Method:        m,
				Quantity:      t.Quantity,
				SalePrice:     t.Price,
				Proceeds:      proceeds,
				CostBasis:     cost,
				Gain:          gain,
			}
			if t.Quantity.IsPositive() {
				res.CostBasisPerUnit = cost.Div(t.Quantity)
			}
			if !cost.IsZero() {
				res.GainPercent = gain.Div(cost).Mul(hundred)
			}

			s.summary.Sales = append(s.summary.Sales, res)
			s.summary.TotalSold = s.summary.TotalSold.Add(t.Quantity)
			s.summary.RealizedGain = s.summary.RealizedGain.Add(gain)
		}
	}

	rep := Report{Method: m, Assets: make([]AssetSummary, 0, len(states))}
	for _, s := range states {
		s.summary.Remaining = s.inv.available()
		for _, sale := range s.summary.Sales {
			rep.TotalProceeds = rep.TotalProceeds.Add(sale.Proceeds)
			rep.TotalCostBasis = rep.TotalCostBasis.Add(sale.CostBasis)
		}
		rep.TotalGain = rep.TotalGain.Add(s.summary.RealizedGain)
		rep.Assets = append(rep.Assets, s.summary)
	}
	slices.SortFunc(rep.Assets, func(a, b AssetSummary) int {
		return strings.Compare(a.Symbol, b.Symbol)
	})
	return rep, nil
}
