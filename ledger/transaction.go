// Package ledger holds the transaction events that are the single source of
// truth for an owner's holdings.
package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the closed set of ledger event kinds.
type Kind int

const (
	Purchase Kind = iota + 1
	Airdrop
	Farming
	Sale
)

func (k Kind) String() string {
	switch k {
	case Purchase:
		return "purchase"
	case Airdrop:
		return "airdrop"
	case Farming:
		return "farming"
	case Sale:
		return "sale"
	default:
		return "unknown"
	}
}

// ParseKind parses the lower-case name of a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "purchase", "buy":
		return Purchase, nil
	case "airdrop":
		return Airdrop, nil
	case "farming", "farm":
		return Farming, nil
	case "sale", "sell":
		return Sale, nil
	default:
		return 0, fmt.Errorf("unknown transaction kind: %q", s)
	}
}

// IsAcquisition reports whether the kind adds units to a holding.
func (k Kind) IsAcquisition() bool {
	return k == Purchase || k == Airdrop || k == Farming
}

// IsZeroCost reports whether the kind always carries no price.
func (k Kind) IsZeroCost() bool {
	return k == Airdrop || k == Farming
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// PaymentMethod describes how a transaction was settled.
type PaymentMethod string

const (
	PaymentNone   PaymentMethod = ""
	PaymentCrypto PaymentMethod = "crypto"
	PaymentFiat   PaymentMethod = "fiat"
)

// StableRegistry answers whether a currency is pegged 1:1 to the unit of account.
type StableRegistry interface {
	IsStableValue(symbol string) bool
}

// Transaction is a single ledger event.
type Transaction struct {
	ID              string          `json:"id"`
	Seq             int64           `json:"seq"`
	Owner           string          `json:"owner"`
	Symbol          string          `json:"symbol"`
	Kind            Kind            `json:"kind"`
	Quantity        decimal.Decimal `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	Total           decimal.Decimal `json:"total"`
	Time            time.Time       `json:"time"`
	PaymentMethod   PaymentMethod   `json:"payment_method,omitempty"`
	PaymentCurrency string          `json:"payment_currency,omitempty"`
	Category        string          `json:"category,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Synthetic       bool            `json:"synthetic,omitempty"`
	OriginID        string          `json:"origin_id,omitempty"`
}

// ConvertsToStable reports whether t is a Sale whose proceeds were received in
// a stable-value currency. Such sales spawn a conversion leg and a realized
// gain record.
func (t Transaction) ConvertsToStable(reg StableRegistry) bool {
	return t.Kind == Sale &&
		t.PaymentMethod == PaymentCrypto &&
		t.PaymentCurrency != "" &&
		reg != nil && reg.IsStableValue(t.PaymentCurrency)
}

// Proceeds is the value received by a Sale.
func (t Transaction) Proceeds() decimal.Decimal {
	if t.Total.IsPositive() {
		return t.Total
	}
	return t.Quantity.Mul(t.Price)
}

// Patch carries the fields of an update. Nil fields are left unchanged.
type Patch struct {
	Symbol          *string
	Kind            *Kind
	Quantity        *decimal.Decimal
	Price           *decimal.Decimal
	Total           *decimal.Decimal
	Time            *time.Time
	PaymentMethod   *PaymentMethod
	PaymentCurrency *string
	Category        *string
	Notes           *string
}

// Apply returns a copy of t with the patch fields set. Changing price or
// quantity without an explicit total recomputes the total.
func (p Patch) Apply(t Transaction) Transaction {
	if p.Symbol != nil {
		t.Symbol = *p.Symbol
	}
	if p.Kind != nil {
		t.Kind = *p.Kind
	}
	if p.Quantity != nil {
		t.Quantity = *p.Quantity
	}
	if p.Price != nil {
		t.Price = *p.Price
	}
	switch {
	case p.Total != nil:
		t.Total = *p.Total
	case p.Quantity != nil || p.Price != nil:
		t.Total = decimal.Zero
	}
	if p.Time != nil {
		t.Time = *p.Time
	}
	if p.PaymentMethod != nil {
		t.PaymentMethod = *p.PaymentMethod
	}
	if p.PaymentCurrency != nil {
		t.PaymentCurrency = *p.PaymentCurrency
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	return t
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

// Filter selects ledger transactions. Zero fields match everything.
type Filter struct {
	Owner            string
	Symbol           string
	Kind             Kind
	From             time.Time // inclusive
	To               time.Time // exclusive
	IncludeSynthetic bool
}
