package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalid is matched by every ValidationError.
	ErrInvalid = errors.New("invalid transaction")

	// ErrSyntheticImmutable is returned when a caller tries to change a
	// system-generated conversion leg.
	ErrSyntheticImmutable = errors.New("synthetic transactions cannot be modified")
)

// ValidationError lists the problems found in a transaction.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalid, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// Normalize validates t and returns the canonical form that gets persisted:
// symbols upper-cased, zero-cost kinds stripped of price and total, a missing
// total derived from quantity and price, a missing time set to now.
func Normalize(t Transaction, now time.Time) (Transaction, error) {
	var problems []string

	t.Owner = strings.TrimSpace(t.Owner)
	t.Symbol = strings.ToUpper(strings.TrimSpace(t.Symbol))
	t.PaymentCurrency = strings.ToUpper(strings.TrimSpace(t.PaymentCurrency))
	t.PaymentMethod = PaymentMethod(strings.ToLower(strings.TrimSpace(string(t.PaymentMethod))))

	if t.Owner == "" {
		problems = append(problems, "owner is required")
	}
	if t.Symbol == "" {
		problems = append(problems, "symbol is required")
	}

	switch t.Kind {
	case Purchase, Sale:
	case Airdrop, Farming:
		t.Price = decimal.Zero
		t.Total = decimal.Zero
	default:
		problems = append(problems, fmt.Sprintf("unsupported kind %d", int(t.Kind)))
	}

	switch {
	case t.Quantity.IsNegative():
		problems = append(problems, "quantity must not be negative")
	case t.Quantity.IsZero():
		problems = append(problems, "quantity is required")
	}
	if t.Price.IsNegative() {
		problems = append(problems, "price must not be negative")
	}
	if t.Total.IsNegative() {
		problems = append(problems, "total must not be negative")
	}

	switch t.PaymentMethod {
	case PaymentNone, PaymentCrypto, PaymentFiat:
	default:
		problems = append(problems, fmt.Sprintf("unknown payment method %q", t.PaymentMethod))
	}

	if len(problems) > 0 {
		return t, &ValidationError{Problems: problems}
	}

	if t.Total.IsZero() && !t.Kind.IsZeroCost() {
		t.Total = t.Quantity.Mul(t.Price)
	}
	if t.Time.IsZero() {
		t.Time = now
	}
	t.Time = t.Time.UTC()

	return t, nil
}
