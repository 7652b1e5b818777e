package costbasis

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot is a single acquisition batch still held.
type Lot struct {
	Quantity decimal.Decimal
	Price    decimal.Decimal
	Time     time.Time
}

// inventory tracks the units of one asset available for matching.
type inventory interface {
	add(Lot)
	available() decimal.Decimal
	// consume removes qty units and returns their cost. Callers check
	// available first.
	consume(qty decimal.Decimal) decimal.Decimal
}

func newInventory(m Method) inventory {
	switch m {
	case LIFO:
		return &lots{newestFirst: true}
	case Average:
		return &pool{}
	default:
		return &lots{}
	}
}

// lots matches against discrete acquisition batches, splitting a batch when
// a sale only needs part of it.
type lots struct {
	held        []Lot
	newestFirst bool
}

func (l *lots) add(lot Lot) {
	l.held = append(l.held, lot)
}

func (l *lots) available() decimal.Decimal {
	var q decimal.Decimal
	for _, lot := range l.held {
		q = q.Add(lot.Quantity)
	}
	return q
}

func (l *lots) consume(qty decimal.Decimal) decimal.Decimal {
	var cost decimal.Decimal

	for qty.IsPositive() && len(l.held) > 0 {
		i := 0
		if l.newestFirst {
			i = len(l.held) - 1
		}
		cur := &l.held[i]

		if cur.Quantity.GreaterThan(qty) {
			// Partial sale from this lot
			cost = cost.Add(qty.Mul(cur.Price))
			cur.Quantity = cur.Quantity.Sub(qty)
			return cost
		}

		// Full sale of this lot
		cost = cost.Add(cur.Quantity.Mul(cur.Price))
		qty = qty.Sub(cur.Quantity)
		if l.newestFirst {
			l.held = l.held[:i]
		} else {
			l.held = l.held[1:]
		}
	}
	return cost
}

// pool collapses every acquisition into one aggregate position.
type pool struct {
	qty  decimal.Decimal
	cost decimal.Decimal
}

func (p *pool) add(lot Lot) {
	p.qty = p.qty.Add(lot.Quantity)
	p.cost = p.cost.Add(lot.Quantity.Mul(lot.Price))
}

func (p *pool) available() decimal.Decimal {
	return p.qty
}

func (p *pool) consume(qty decimal.Decimal) decimal.Decimal {
	if p.qty.IsZero() {
		return decimal.Zero
	}
	if qty.Equal(p.qty) {
		cost := p.cost
		p.qty, p.cost = decimal.Zero, decimal.Zero
		return cost
	}
	cost := p.cost.Mul(qty).Div(p.qty)
	p.cost = p.cost.Sub(cost)
	p.qty = p.qty.Sub(qty)
	return cost
}
