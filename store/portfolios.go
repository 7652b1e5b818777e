package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rustyeddy/holdings/portfolio"
)

// SavePortfolio replaces the stored portfolio of p.Owner.
func (u *Tx) SavePortfolio(ctx context.Context, p portfolio.Portfolio) error {
	if _, err := u.tx.ExecContext(ctx, `DELETE FROM holdings WHERE owner = ?`, p.Owner); err != nil {
		return fmt.Errorf("save portfolio %s: %w", p.Owner, err)
	}

	for i, h := range p.Holdings {
		_, err := u.tx.ExecContext(ctx, `
			INSERT INTO holdings
			(owner, position, symbol, quantity, average_price, category, origin)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.Owner, i, h.Symbol, h.Quantity, h.AveragePrice, h.Category, string(h.Origin),
		)
		if err != nil {
			return fmt.Errorf("save portfolio %s: holding %s: %w", p.Owner, h.Symbol, err)
		}
	}

	_, err := u.tx.ExecContext(ctx, `
		INSERT INTO portfolios (owner, updated_at) VALUES (?, ?)
		ON CONFLICT(owner) DO UPDATE SET updated_at = excluded.updated_at`,
		p.Owner, p.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save portfolio %s: %w", p.Owner, err)
	}
	return nil
}

// GetPortfolio returns the stored portfolio of owner, holdings in the order
// they were saved.
func (u *Tx) GetPortfolio(ctx context.Context, owner string) (portfolio.Portfolio, error) {
	p := portfolio.Portfolio{Owner: owner}

	err := u.tx.QueryRowContext(ctx,
		`SELECT updated_at FROM portfolios WHERE owner = ?`, owner,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return portfolio.Portfolio{}, fmt.Errorf("portfolio %q: %w", owner, ErrNotFound)
		}
		return portfolio.Portfolio{}, fmt.Errorf("get portfolio %s: %w", owner, err)
	}
	p.UpdatedAt = p.UpdatedAt.UTC()

	rows, err := u.tx.QueryContext(ctx, `
		SELECT symbol, quantity, average_price, category, origin
		FROM holdings
		WHERE owner = ?
		ORDER BY position ASC`, owner)
	if err != nil {
		return portfolio.Portfolio{}, fmt.Errorf("get portfolio %s: %w", owner, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			h      portfolio.Holding
			origin string
		)
		if err := rows.Scan(&h.Symbol, &h.Quantity, &h.AveragePrice, &h.Category, &origin); err != nil {
			return portfolio.Portfolio{}, fmt.Errorf("get portfolio %s: %w", owner, err)
		}
		h.Origin = portfolio.Origin(origin)
		p.Holdings = append(p.Holdings, h)
	}
	if err := rows.Err(); err != nil {
		return portfolio.Portfolio{}, fmt.Errorf("get portfolio %s: %w", owner, err)
	}
	return p, nil
}
