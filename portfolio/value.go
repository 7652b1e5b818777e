package portfolio

import (
	"context"
	"log/slog"
	"time"

	"github.com/rustyeddy/holdings/ledger"
	"github.com/rustyeddy/holdings/market"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// HoldingValue is a holding priced at the current market price.
type HoldingValue struct {
	Holding
	Priced            bool            `json:"priced"`
	Price             decimal.Decimal `json:"price"`
	Value             decimal.Decimal `json:"value"`
	Cost              decimal.Decimal `json:"cost"`
	Unrealized        decimal.Decimal `json:"unrealized"`
	UnrealizedPercent decimal.Decimal `json:"unrealized_percent"`
}

// Valuation is a portfolio priced at current market prices. Totals only
// include priced holdings.
type Valuation struct {
	Owner             string          `json:"owner"`
	AsOf              time.Time       `json:"as_of"`
	Holdings          []HoldingValue  `json:"holdings"`
	TotalValue        decimal.Decimal `json:"total_value"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	Unrealized        decimal.Decimal `json:"unrealized"`
	UnrealizedPercent decimal.Decimal `json:"unrealized_percent"`
}

// Percent returns part/whole*100, or zero when whole is zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// Value prices every holding of p. Stable-value currencies are valued at 1
// without consulting prices. A symbol the source cannot price is logged and
// reported unpriced.
func Value(ctx context.Context, p Portfolio, prices market.PriceSource, stable ledger.StableRegistry, logger *slog.Logger) (Valuation, error) {
	if logger == nil {
		logger = slog.Default()
	}

	v := Valuation{
		Owner:    p.Owner,
		AsOf:     p.UpdatedAt,
		Holdings: make([]HoldingValue, 0, len(p.Holdings)),
	}

	for _, h := range p.Holdings {
		if err := ctx.Err(); err != nil {
			return Valuation{}, err
		}

		hv := HoldingValue{Holding: h, Cost: h.CostBasis()}

		switch {
		case stable != nil && stable.IsStableValue(h.Symbol):
			hv.Price, hv.Priced = one, true
		case prices != nil:
			price, err := prices.Price(ctx, h.Symbol)
			if err != nil {
				logger.Warn("holding left unpriced", "owner", p.Owner, "symbol", h.Symbol, "err", err)
				break
			}
			hv.Price, hv.Priced = price, true
		}

		if hv.Priced {
			hv.Value = h.Quantity.Mul(hv.Price)
			hv.Unrealized = hv.Value.Sub(hv.Cost)
			hv.UnrealizedPercent = Percent(hv.Unrealized, hv.Cost)

			v.TotalValue = v.TotalValue.Add(hv.Value)
			v.TotalCost = v.TotalCost.Add(hv.Cost)
		}
		v.Holdings = append(v.Holdings, hv)
	}

	v.Unrealized = v.TotalValue.Sub(v.TotalCost)
	v.UnrealizedPercent = Percent(v.Unrealized, v.TotalCost)
	return v, nil
}
