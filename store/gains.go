package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rustyeddy/holdings/gains"
)

func (u *Tx) InsertGain(ctx context.Context, g gains.RealizedGain) error {
	_, err := u.tx.ExecContext(ctx, `
		INSERT INTO realized_gains
		(id, owner, transaction_id, symbol, currency, quantity, cost_basis_per_unit,
		 sale_price, cost_basis, proceeds, gain, gain_percent, time, category, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Owner, g.TransactionID, g.Symbol, g.Currency, g.Quantity, g.CostBasisPerUnit,
		g.SalePrice, g.CostBasis, g.Proceeds, g.Gain, g.GainPercent, g.Time.UTC(), g.Category, g.Notes,
	)
	if err != nil {
		return fmt.Errorf("insert gain for %s: %w", g.TransactionID, err)
	}
	return nil
}

// DeleteGainByTransaction removes the record derived from txID, if any.
func (u *Tx) DeleteGainByTransaction(ctx context.Context, txID string) error {
	if _, err := u.tx.ExecContext(ctx, `DELETE FROM realized_gains WHERE transaction_id = ?`, txID); err != nil {
		return fmt.Errorf("delete gain for %s: %w", txID, err)
	}
	return nil
}

// ListGains returns the records selected by f, oldest first.
func (u *Tx) ListGains(ctx context.Context, f gains.Filter) ([]gains.RealizedGain, error) {
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
	if f.Currency != "" {
		where = append(where, "currency = ?")
		args = append(args, f.Currency)
	}

	q := `
		SELECT id, owner, transaction_id, symbol, currency, quantity, cost_basis_per_unit,
		       sale_price, cost_basis, proceeds, gain, gain_percent, time, category, notes
		FROM realized_gains`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY time ASC, id ASC`

	rows, err := u.tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list gains: %w", err)
	}
	defer rows.Close()

	var out []gains.RealizedGain
	for rows.Next() {
		var g gains.RealizedGain
		if err := rows.Scan(
			&g.ID,
			&g.Owner,
			&g.TransactionID,
			&g.Symbol,
			&g.Currency,
			&g.Quantity,
			&g.CostBasisPerUnit,
			&g.SalePrice,
			&g.CostBasis,
			&g.Proceeds,
			&g.Gain,
			&g.GainPercent,
			&g.Time,
			&g.Category,
			&g.Notes,
		); err != nil {
			return nil, fmt.Errorf("list gains: %w", err)
		}
		g.Time = g.Time.UTC()
		if !f.Match(g) {
			continue
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list gains: %w", err)
	}
	return out, nil
}
