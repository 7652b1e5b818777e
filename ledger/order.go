package ledger

import (
	"cmp"
	"slices"
)

// Sort orders transactions for replay: ascending time, ties broken by the
// insertion sequence so that repeated replays see the same order.
func Sort(txs []Transaction) {
	slices.SortStableFunc(txs, func(a, b Transaction) int {
		if c := a.Time.Compare(b.Time); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
}

// Replayable returns the user-originated transactions of txs in replay order.
// Synthetic legs are dropped: their effect is applied by the sale that spawned them.
func Replayable(txs []Transaction) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if t.Synthetic {
			continue
		}
		out = append(out, t)
	}
	Sort(out)
	return out
}

// Match reports whether t is selected by f.
func (f Filter) Match(t Transaction) bool {
	if f.Owner != "" && t.Owner != f.Owner {
		return false
	}
	if f.Symbol != "" && t.Symbol != f.Symbol {
		return false
	}
	if f.Kind != 0 && t.Kind != f.Kind {
		return false
	}
	if !f.From.IsZero() && t.Time.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !t.Time.Before(f.To) {
		return false
	}
	if t.Synthetic && !f.IncludeSynthetic {
		return false
	}
	return true
}
