// Package tracker is the service callers use to record ledger events and
// query the derived portfolio and realized gains.
//
// Every mutation runs as one store.Unit: the ledger write, the full replay of
// the owner's history, the synthetic-leg sync, the portfolio rewrite and any
// gain record change commit together or not at all. Mutations for the same
// owner are serialized; different owners run in parallel.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rustyeddy/holdings/costbasis"
	"github.com/rustyeddy/holdings/gains"
	"github.com/rustyeddy/holdings/internal/id"
	"github.com/rustyeddy/holdings/ledger"
	"github.com/rustyeddy/holdings/market"
	"github.com/rustyeddy/holdings/portfolio"
	"github.com/rustyeddy/holdings/store"
)

// Store opens atomic units. *store.SQLite implements it.
type Store interface {
	Begin(ctx context.Context) (store.Unit, error)
}

// Options configures a Tracker. Zero fields get defaults.
type Options struct {
	Stable ledger.StableRegistry
	Prices market.PriceSource
	Logger *slog.Logger
	Now    func() time.Time
}

type Tracker struct {
	store  Store
	stable ledger.StableRegistry
	prices market.PriceSource
	logger *slog.Logger
	now    func() time.Time
	ids    *id.Generator

	recon *portfolio.Reconstructor
	calc  *costbasis.Calculator
	locks *ownerLocks
}

func New(st Store, opts Options) *Tracker {
	if opts.Stable == nil {
		opts.Stable = market.NewStableSet(market.DefaultStableCurrencies...)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Tracker{
		store:  st,
		stable: opts.Stable,
		prices: opts.Prices,
		logger: opts.Logger,
		now:    func() time.Time { return opts.Now().UTC() },
		ids:    id.NewGenerator(opts.Now),
		recon:  portfolio.NewReconstructor(opts.Stable, opts.Logger),
		calc:   costbasis.NewCalculator(opts.Logger),
		locks:  newOwnerLocks(),
	}
}

// mutate runs fn in a fresh unit while holding owner's lock.
func (t *Tracker) mutate(ctx context.Context, op, owner string, fn func(u store.Unit) error) error {
	unlock := t.locks.lock(owner)
	defer unlock()

	u, err := t.store.Begin(ctx)
	if err != nil {
		return &AbortError{Op: op, Err: err}
	}
	defer u.Rollback()

	if err := fn(u); err != nil {
		return classify(op, err)
	}
	if err := u.Commit(); err != nil {
		return &AbortError{Op: op, Err: err}
	}
	return nil
}

// read runs fn in a unit that is always rolled back.
func (t *Tracker) read(ctx context.Context, op string, fn func(u store.Unit) error) error {
	u, err := t.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer u.Rollback()

	if err := fn(u); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// rebuild replays owner's history inside u and persists the result: the
// synthetic legs are synced by origin sale and the portfolio is replaced.
func (t *Tracker) rebuild(ctx context.Context, u store.Unit, owner string) (portfolio.Portfolio, portfolio.Result, error) {
	txs, err := u.ListTransactions(ctx, ledger.Filter{Owner: owner})
	if err != nil {
		return portfolio.Portfolio{}, portfolio.Result{}, err
	}

	res := t.recon.Replay(owner, txs)

	keep := make([]string, 0, len(res.Legs))
	for _, leg := range res.Legs {
		leg.ID = t.ids.New()
		if err := u.UpsertLeg(ctx, leg); err != nil {
			return portfolio.Portfolio{}, portfolio.Result{}, err
		}
		keep = append(keep, leg.OriginID)
	}
	if err := u.DeleteLegsExcept(ctx, owner, keep); err != nil {
		return portfolio.Portfolio{}, portfolio.Result{}, err
	}

	p := portfolio.Portfolio{
		Owner:     owner,
		Holdings:  res.Holdings,
		UpdatedAt: t.now(),
	}
	if err := u.SavePortfolio(ctx, p); err != nil {
		return portfolio.Portfolio{}, portfolio.Result{}, err
	}

	t.logger.Debug("portfolio rebuilt",
		"owner", owner, "events", len(txs), "holdings", len(p.Holdings), "legs", len(res.Legs))
	return p, res, nil
}

// recordGain writes the gain record of sale when it qualifies.
func (t *Tracker) recordGain(ctx context.Context, u store.Unit, sale ledger.Transaction, res portfolio.Result) error {
	if !sale.ConvertsToStable(t.stable) {
		return nil
	}
	g := gains.Compute(sale, res.SaleCosts[sale.ID])
	g.ID = t.ids.New()
	return u.InsertGain(ctx, g)
}

func (t *Tracker) validate(tx ledger.Transaction) (ledger.Transaction, error) {
	if tx.Synthetic || tx.OriginID != "" {
		return tx, &ledger.ValidationError{Problems: []string{"synthetic transactions are generated, not recorded"}}
	}
	return ledger.Normalize(tx, t.now())
}

// AppendTransaction validates and records tx, then rebuilds the owner's
// portfolio. The stored transaction is returned with its ID and Seq set.
func (t *Tracker) AppendTransaction(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	const op = "append transaction"

	tx, err := t.validate(tx)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("%s: %w", op, err)
	}
	if tx.ID == "" {
		tx.ID = t.ids.New()
	}

	err = t.mutate(ctx, op, tx.Owner, func(u store.Unit) error {
		if err := u.InsertTransaction(ctx, &tx); err != nil {
			return err
		}
		_, res, err := t.rebuild(ctx, u, tx.Owner)
		if err != nil {
			return err
		}
		return t.recordGain(ctx, u, tx, res)
	})
	if err != nil {
		return ledger.Transaction{}, err
	}

	t.logger.Info("transaction recorded",
		"owner", tx.Owner, "id", tx.ID, "kind", tx.Kind.String(), "symbol", tx.Symbol,
		"quantity", tx.Quantity.String())
	return tx, nil
}

// UpdateTransaction applies patch to the stored transaction id and rebuilds
// the owner's portfolio. The gain record of the sale is regenerated.
func (t *Tracker) UpdateTransaction(ctx context.Context, txID string, patch ledger.Patch) (ledger.Transaction, error) {
	const op = "update transaction"

	owner, err := t.ownerOf(ctx, op, txID)
	if err != nil {
		return ledger.Transaction{}, err
	}

	var updated ledger.Transaction
	err = t.mutate(ctx, op, owner, func(u store.Unit) error {
		cur, err := u.GetTransaction(ctx, txID)
		if err != nil {
			return err
		}
		if cur.Synthetic {
			return fmt.Errorf("transaction %s: %w", txID, ledger.ErrSyntheticImmutable)
		}

		next, err := ledger.Normalize(patch.Apply(cur), t.now())
		if err != nil {
			return err
		}
		if err := u.UpdateTransaction(ctx, next); err != nil {
			return err
		}

		_, res, err := t.rebuild(ctx, u, owner)
		if err != nil {
			return err
		}
		if err := u.DeleteGainByTransaction(ctx, txID); err != nil {
			return err
		}
		if err := t.recordGain(ctx, u, next, res); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return ledger.Transaction{}, err
	}

	t.logger.Info("transaction updated", "owner", owner, "id", txID)
	return updated, nil
}

// DeleteTransaction removes the transaction id, its gain record and, through
// the rebuild, its synthetic leg.
func (t *Tracker) DeleteTransaction(ctx context.Context, txID string) error {
	const op = "delete transaction"

	owner, err := t.ownerOf(ctx, op, txID)
	if err != nil {
		return err
	}

	err = t.mutate(ctx, op, owner, func(u store.Unit) error {
		cur, err := u.GetTransaction(ctx, txID)
		if err != nil {
			return err
		}
		if cur.Synthetic {
			return fmt.Errorf("transaction %s: %w", txID, ledger.ErrSyntheticImmutable)
		}
		if err := u.DeleteTransaction(ctx, txID); err != nil {
			return err
		}
		if err := u.DeleteGainByTransaction(ctx, txID); err != nil {
			return err
		}
		_, _, err = t.rebuild(ctx, u, owner)
		return err
	})
	if err != nil {
		return err
	}

	t.logger.Info("transaction deleted", "owner", owner, "id", txID)
	return nil
}

func (t *Tracker) ownerOf(ctx context.Context, op, txID string) (string, error) {
	var owner string
	err := t.read(ctx, op, func(u store.Unit) error {
		tx, err := u.GetTransaction(ctx, txID)
		if err != nil {
			return err
		}
		owner = tx.Owner
		return nil
	})
	return owner, err
}

// RecalculatePortfolio forces a full replay of owner's history.
func (t *Tracker) RecalculatePortfolio(ctx context.Context, owner string) (portfolio.Portfolio, error) {
	var p portfolio.Portfolio
	err := t.mutate(ctx, "recalculate portfolio", owner, func(u store.Unit) error {
		var err error
		p, _, err = t.rebuild(ctx, u, owner)
		return err
	})
	return p, err
}

func (t *Tracker) GetTransaction(ctx context.Context, txID string) (ledger.Transaction, error) {
	var tx ledger.Transaction
	err := t.read(ctx, "get transaction", func(u store.Unit) error {
		var err error
		tx, err = u.GetTransaction(ctx, txID)
		return err
	})
	return tx, err
}

// ListTransactions returns the transactions selected by f in replay order.
func (t *Tracker) ListTransactions(ctx context.Context, f ledger.Filter) ([]ledger.Transaction, error) {
	var txs []ledger.Transaction
	err := t.read(ctx, "list transactions", func(u store.Unit) error {
		var err error
		txs, err = u.ListTransactions(ctx, f)
		return err
	})
	return txs, err
}

// GetPortfolio returns the last reconstructed portfolio of owner. An owner
// without history has an empty portfolio.
func (t *Tracker) GetPortfolio(ctx context.Context, owner string) (portfolio.Portfolio, error) {
	var p portfolio.Portfolio
	err := t.read(ctx, "get portfolio", func(u store.Unit) error {
		var err error
		p, err = u.GetPortfolio(ctx, owner)
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return portfolio.Portfolio{Owner: owner, Holdings: []portfolio.Holding{}}, nil
	}
	return p, err
}

// GetPortfolioValue prices owner's portfolio at current market prices.
func (t *Tracker) GetPortfolioValue(ctx context.Context, owner string) (portfolio.Valuation, error) {
	p, err := t.GetPortfolio(ctx, owner)
	if err != nil {
		return portfolio.Valuation{}, err
	}
	return portfolio.Value(ctx, p, t.prices, t.stable, t.logger)
}
