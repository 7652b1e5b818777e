package market

import (
	"slices"
	"strings"
)

// DefaultStableCurrencies are the currencies treated as pegged 1:1 when no
// configuration overrides them.
var DefaultStableCurrencies = []string{"USDT", "USDC", "DAI", "BUSD", "TUSD", "USDP", "FDUSD"}

// StableSet is a static stable-value currency registry.
type StableSet map[string]struct{}

func NewStableSet(symbols ...string) StableSet {
	s := make(StableSet, len(symbols))
	for _, sym := range symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym != "" {
			s[sym] = struct{}{}
		}
	}
	return s
}

func (s StableSet) IsStableValue(symbol string) bool {
	_, ok := s[strings.ToUpper(symbol)]
	return ok
}

// Symbols returns the registered currencies in sorted order.
func (s StableSet) Symbols() []string {
	out := make([]string, 0, len(s))
	for sym := range s {
		out = append(out, sym)
	}
	slices.Sort(out)
	return out
}
