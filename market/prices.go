// Package market holds the collaborators the accounting core consumes for
// valuation: a current-price source and the stable-value currency registry.
package market

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ErrNoPrice is returned when a source has no quote for a symbol.
var ErrNoPrice = errors.New("no price")

// PriceSource returns the current price of a symbol in the unit of account.
type PriceSource interface {
	Price(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// StaticPrices is an in-memory PriceSource, filled from configuration or a
// price file.
type StaticPrices struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
}

func NewStaticPrices(prices map[string]float64) *StaticPrices {
	sp := &StaticPrices{prices: make(map[string]decimal.Decimal, len(prices))}
	for sym, p := range prices {
		sp.prices[strings.ToUpper(sym)] = decimal.NewFromFloat(p)
	}
	return sp
}

// LoadPriceFile reads a YAML mapping of symbol to price.
func LoadPriceFile(path string) (*StaticPrices, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read price file: %w", err)
	}

	raw := map[string]string{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse price file: %w", err)
	}

	sp := &StaticPrices{prices: make(map[string]decimal.Decimal, len(raw))}
	for sym, s := range raw {
		p, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("price for %s: %w", sym, err)
		}
		sp.prices[strings.ToUpper(sym)] = p
	}
	return sp, nil
}

// Set replaces the price of symbol.
func (sp *StaticPrices) Set(symbol string, price decimal.Decimal) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.prices[strings.ToUpper(symbol)] = price
}

func (sp *StaticPrices) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	sp.mu.RLock()
	defer sp.mu.RUnlock()

	p, ok := sp.prices[strings.ToUpper(symbol)]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w for %q", ErrNoPrice, symbol)
	}
	return p, nil
}
