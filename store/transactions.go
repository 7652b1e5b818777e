package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rustyeddy/holdings/ledger"
)

const txColumns = `seq, id, owner, symbol, kind, quantity, price, total, time,
	payment_method, payment_currency, category, notes, synthetic, origin_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (ledger.Transaction, error) {
	var (
		t      ledger.Transaction
		kind   string
		method string
		origin sql.NullString
	)
	err := s.Scan(
		&t.Seq,
		&t.ID,
		&t.Owner,
		&t.Symbol,
		&kind,
		&t.Quantity,
		&t.Price,
		&t.Total,
		&t.Time,
		&method,
		&t.PaymentCurrency,
		&t.Category,
		&t.Notes,
		&t.Synthetic,
		&origin,
	)
	if err != nil {
		return ledger.Transaction{}, err
	}
	k, err := ledger.ParseKind(kind)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("transaction %s: %w", t.ID, err)
	}
	t.Kind = k
	t.PaymentMethod = ledger.PaymentMethod(method)
	t.OriginID = origin.String
	t.Time = t.Time.UTC()
	return t, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// InsertTransaction stores t and sets its Seq.
func (u *Tx) InsertTransaction(ctx context.Context, t *ledger.Transaction) error {
	res, err := u.tx.ExecContext(ctx, `
		INSERT INTO transactions
		(id, owner, symbol, kind, quantity, price, total, time,
		 payment_method, payment_currency, category, notes, synthetic, origin_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Owner, t.Symbol, t.Kind.String(), t.Quantity, t.Price, t.Total, t.Time.UTC(),
		string(t.PaymentMethod), t.PaymentCurrency, t.Category, t.Notes, t.Synthetic, nullable(t.OriginID),
	)
	if err != nil {
		return fmt.Errorf("insert transaction %s: %w", t.ID, err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert transaction %s: %w", t.ID, err)
	}
	t.Seq = seq
	return nil
}

// UpdateTransaction rewrites every mutable field of the stored row with t.ID.
// Seq, owner and the synthetic markers never change.
func (u *Tx) UpdateTransaction(ctx context.Context, t ledger.Transaction) error {
	res, err := u.tx.ExecContext(ctx, `
		UPDATE transactions SET
			symbol = ?, kind = ?, quantity = ?, price = ?, total = ?, time = ?,
			payment_method = ?, payment_currency = ?, category = ?, notes = ?
		WHERE id = ?`,
		t.Symbol, t.Kind.String(), t.Quantity, t.Price, t.Total, t.Time.UTC(),
		string(t.PaymentMethod), t.PaymentCurrency, t.Category, t.Notes, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update transaction %s: %w", t.ID, err)
	}
	return expectRow(res, "transaction", t.ID)
}

func (u *Tx) DeleteTransaction(ctx context.Context, id string) error {
	res, err := u.tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	return expectRow(res, "transaction", id)
}

func (u *Tx) GetTransaction(ctx context.Context, id string) (ledger.Transaction, error) {
	row := u.tx.QueryRowContext(ctx, `SELECT `+txColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.Transaction{}, fmt.Errorf("transaction %q: %w", id, ErrNotFound)
		}
		return ledger.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return t, nil
}

// ListTransactions returns the transactions selected by f in replay order.
func (u *Tx) ListTransactions(ctx context.Context, f ledger.Filter) ([]ledger.Transaction, error) {
	var (
		where []string
		args  []any
	)
	if f.Owner != "" {
		where = append(where, "owner = ?")
		args = append(args, f.Owner)
	}
	if f.Symbol != "" {
		where = append(where, "symbol = ?")
		args = append(args, f.Symbol)
	}
	if f.Kind != 0 {
		where = append(where, "kind = ?")
		args = append(args, f.Kind.String())
	}
	if !f.IncludeSynthetic {
		where = append(where, "synthetic = 0")
	}

	q := `SELECT ` + txColumns + ` FROM transactions`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY time ASC, seq ASC`

	rows, err := u.tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []ledger.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}
		// Time bounds are checked on the parsed value.
		if !f.Match(t) {
			continue
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	ledger.Sort(out)
	return out, nil
}

// UpsertLeg inserts leg, or rewrites the existing leg with the same OriginID.
func (u *Tx) UpsertLeg(ctx context.Context, leg ledger.Transaction) error {
	if leg.OriginID == "" {
		return fmt.Errorf("upsert leg %s: missing origin", leg.ID)
	}
	_, err := u.tx.ExecContext(ctx, `
		INSERT INTO transactions
		(id, owner, symbol, kind, quantity, price, total, time,
		 payment_method, payment_currency, category, notes, synthetic, origin_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)
		ON CONFLICT(origin_id) DO UPDATE SET
			owner = excluded.owner,
			symbol = excluded.symbol,
			kind = excluded.kind,
			quantity = excluded.quantity,
			price = excluded.price,
			total = excluded.total,
			time = excluded.time,
			payment_method = excluded.payment_method,
			payment_currency = excluded.payment_currency,
			category = excluded.category,
			notes = excluded.notes`,
		leg.ID, leg.Owner, leg.Symbol, leg.Kind.String(), leg.Quantity, leg.Price, leg.Total, leg.Time.UTC(),
		string(leg.PaymentMethod), leg.PaymentCurrency, leg.Category, leg.Notes, leg.OriginID,
	)
	if err != nil {
		return fmt.Errorf("upsert leg for %s: %w", leg.OriginID, err)
	}
	return nil
}

func (u *Tx) DeleteLegsExcept(ctx context.Context, owner string, keep []string) error {
	q := `DELETE FROM transactions WHERE owner = ? AND synthetic = 1`
	args := []any{owner}
	if len(keep) > 0 {
		q += ` AND origin_id NOT IN (?` + strings.Repeat(", ?", len(keep)-1) + `)`
		for _, id := range keep {
			args = append(args, id)
		}
	}
	if _, err := u.tx.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("delete stale legs of %s: %w", owner, err)
	}
	return nil
}

func expectRow(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: %w", what, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", what, id, ErrNotFound)
	}
	return nil
}
