package portfolio

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/rustyeddy/holdings/ledger"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// Result is the outcome of a replay.
type Result struct {
	Holdings []Holding

	// Legs holds one synthetic conversion leg per sale whose proceeds were
	// received in a stable-value currency, in replay order. Legs have no ID;
	// the store keys them by OriginID.
	Legs []ledger.Transaction

	// SaleCosts maps each replayed sale to the average cost of its asset
	// immediately before the sale was applied.
	SaleCosts map[string]decimal.Decimal

	// Sanitized lists the symbols whose average price was reset to zero.
	Sanitized []string
}

// Reconstructor replays ledger events into holdings using average-cost
// semantics.
type Reconstructor struct {
	stable ledger.StableRegistry
	logger *slog.Logger
}

func NewReconstructor(stable ledger.StableRegistry, logger *slog.Logger) *Reconstructor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconstructor{stable: stable, logger: logger}
}

// position is a holding under replay. finite is false once the average
// price has gone through a division by zero; like an IEEE NaN or Inf it
// poisons every later weighted average until a sign-transition reset.
type position struct {
	Holding
	finite bool
}

type book struct {
	order []string
	bySym map[string]*position
}

func newBook() *book {
	return &book{bySym: make(map[string]*position)}
}

func (b *book) get(sym string) (*position, bool) {
	p, ok := b.bySym[sym]
	return p, ok
}

func (b *book) add(p *position) {
	b.order = append(b.order, p.Symbol)
	b.bySym[p.Symbol] = p
}

// Replay rebuilds the holdings of owner from its full history. Synthetic legs
// and other owners' events in txs are ignored.
func (r *Reconstructor) Replay(owner string, txs []ledger.Transaction) Result {
	return r.replay(owner, txs, time.Time{})
}

// ReplayUntil is Replay restricted to events at or before cutoff.
func (r *Reconstructor) ReplayUntil(owner string, txs []ledger.Transaction, cutoff time.Time) Result {
	return r.replay(owner, txs, cutoff)
}

func (r *Reconstructor) replay(owner string, txs []ledger.Transaction, cutoff time.Time) Result {
	b := newBook()
	res := Result{SaleCosts: make(map[string]decimal.Decimal)}

	for _, t := range ledger.Replayable(txs) {
		if t.Owner != owner {
			continue
		}
		if !cutoff.IsZero() && t.Time.After(cutoff) {
			break
		}

		switch t.Kind {
		case ledger.Purchase, ledger.Airdrop, ledger.Farming:
			acquire(b, t)
		case ledger.Sale:
			res.SaleCosts[t.ID] = costBefore(b, t.Symbol)
			dispose(b, t)
			if t.ConvertsToStable(r.stable) {
				convert(b, t)
				res.Legs = append(res.Legs, ConversionLeg(t))
			}
		default:
			r.logger.Warn("skipping transaction of unknown kind",
				"owner", owner, "id", t.ID, "kind", int(t.Kind))
		}
	}

	res.Holdings = make([]Holding, 0, len(b.order))
	for _, sym := range b.order {
		p := b.bySym[sym]
		if !p.finite || p.AveragePrice.IsNegative() {
			r.logger.Warn("reset average price after replay",
				"owner", owner, "symbol", sym,
				"finite", p.finite, "average", p.AveragePrice.String())
			p.AveragePrice = decimal.Zero
			res.Sanitized = append(res.Sanitized, sym)
		}
		res.Holdings = append(res.Holdings, p.Holding)
	}
	return res
}

func originOf(k ledger.Kind) Origin {
	switch k {
	case ledger.Airdrop:
		return OriginAirdropped
	case ledger.Farming:
		return OriginFarmed
	default:
		return OriginPurchased
	}
}

func acquire(b *book, t ledger.Transaction) {
	price := t.Price
	if t.Kind.IsZeroCost() {
		price = decimal.Zero
	}

	p, ok := b.get(t.Symbol)
	if !ok {
		b.add(&position{
			Holding: Holding{
				Symbol:       t.Symbol,
				Quantity:     t.Quantity,
				AveragePrice: price,
				Category:     t.Category,
				Origin:       originOf(t.Kind),
			},
			finite: true,
		})
		return
	}

	qty := p.Quantity.Add(t.Quantity)
	if p.finite {
		if qty.IsZero() {
			p.finite = false
		} else {
			cost := p.Quantity.Mul(p.AveragePrice).Add(t.Quantity.Mul(price))
			p.AveragePrice = cost.Div(qty)
		}
	}
	p.Quantity = qty
	if p.Category == "" {
		p.Category = t.Category
	}
}

func dispose(b *book, t ledger.Transaction) {
	p, ok := b.get(t.Symbol)
	if !ok {
		b.add(&position{
			Holding: Holding{
				Symbol:       t.Symbol,
				Quantity:     t.Quantity.Neg(),
				AveragePrice: decimal.Zero,
				Category:     t.Category,
				Origin:       OriginPurchased,
			},
			finite: true,
		})
		return
	}

	before := p.Quantity
	p.Quantity = p.Quantity.Sub(t.Quantity)
	if before.IsPositive() && p.Quantity.IsNegative() {
		p.AveragePrice = t.Price
		p.finite = true
	}
}

// convert credits the stable-value currency received by a sale at 1:1.
func convert(b *book, t ledger.Transaction) {
	proceeds := t.Proceeds()

	p, ok := b.get(t.PaymentCurrency)
	if !ok {
		b.add(&position{
			Holding: Holding{
				Symbol:       t.PaymentCurrency,
				Quantity:     proceeds,
				AveragePrice: one,
				Origin:       OriginStable,
			},
			finite: true,
		})
		return
	}
	p.Quantity = p.Quantity.Add(proceeds)
	p.AveragePrice = one
	p.finite = true
}

func costBefore(b *book, sym string) decimal.Decimal {
	p, ok := b.get(sym)
	if !ok || !p.finite || p.AveragePrice.IsNegative() {
		return decimal.Zero
	}
	return p.AveragePrice
}

// ConversionLeg builds the audit-only acquisition recording the stable-value
// currency received by sale.
func ConversionLeg(sale ledger.Transaction) ledger.Transaction {
	proceeds := sale.Proceeds()
	return ledger.Transaction{
		Owner:         sale.Owner,
		Symbol:        sale.PaymentCurrency,
		Kind:          ledger.Purchase,
		Quantity:      proceeds,
		Price:         one,
		Total:         proceeds,
		Time:          sale.Time,
		PaymentMethod: ledger.PaymentCrypto,
		Category:      sale.Category,
		Notes:         fmt.Sprintf("received from sale of %s %s", sale.Quantity.String(), sale.Symbol),
		Synthetic:     true,
		OriginID:      sale.ID,
	}
}
