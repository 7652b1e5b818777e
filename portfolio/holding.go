// Package portfolio rebuilds an owner's holdings by replaying the ledger.
package portfolio

import (
	"time"

	"github.com/shopspring/decimal"
)

// Origin classifies how a holding first came into the portfolio.
type Origin string

const (
	OriginPurchased  Origin = "purchased"
	OriginAirdropped Origin = "airdropped"
	OriginFarmed     Origin = "farmed"
	OriginStable     Origin = "stable"
)

// Holding is one derived per-asset row. Quantity may be negative when
// disposals exceed recorded acquisitions.
type Holding struct {
	Symbol       string          `json:"symbol"`
	Quantity     decimal.Decimal `json:"quantity"`
	AveragePrice decimal.Decimal `json:"average_price"`
	Category     string          `json:"category,omitempty"`
	Origin       Origin          `json:"origin"`
}

// CostBasis is the quantity carried at its average price.
func (h Holding) CostBasis() decimal.Decimal {
	return h.Quantity.Mul(h.AveragePrice)
}

// Portfolio is the aggregate produced by a reconstruction. It is always
// replaced wholesale, never edited field by field.
type Portfolio struct {
	Owner     string    `json:"owner"`
	Holdings  []Holding `json:"holdings"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Holding returns the holding for symbol.
func (p Portfolio) Holding(symbol string) (Holding, bool) {
	for _, h := range p.Holdings {
		if h.Symbol == symbol {
			return h, true
		}
	}
	return Holding{}, false
}
