// Package store persists the ledger, the derived portfolios and the realized
// gain records in SQLite. Every write goes through a Unit, one database
// transaction spanning all three collections.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rustyeddy/holdings/gains"
	"github.com/rustyeddy/holdings/ledger"
	"github.com/rustyeddy/holdings/portfolio"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// Unit is an open atomic unit of work. Nothing it writes is visible to other
// units until Commit; Rollback discards everything.
type Unit interface {
	InsertTransaction(ctx context.Context, t *ledger.Transaction) error
	UpdateTransaction(ctx context.Context, t ledger.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	GetTransaction(ctx context.Context, id string) (ledger.Transaction, error)
	ListTransactions(ctx context.Context, f ledger.Filter) ([]ledger.Transaction, error)

	// UpsertLeg stores a synthetic leg keyed by its OriginID. An existing
	// leg keeps its ID and sequence.
	UpsertLeg(ctx context.Context, leg ledger.Transaction) error
	// DeleteLegsExcept removes the owner's synthetic legs whose origin is
	// not in keep.
	DeleteLegsExcept(ctx context.Context, owner string, keep []string) error

	SavePortfolio(ctx context.Context, p portfolio.Portfolio) error
	GetPortfolio(ctx context.Context, owner string) (portfolio.Portfolio, error)

	InsertGain(ctx context.Context, g gains.RealizedGain) error
	DeleteGainByTransaction(ctx context.Context, txID string) error
	ListGains(ctx context.Context, f gains.Filter) ([]gains.RealizedGain, error)

	Commit() error
	Rollback() error
}

// SQLite is the SQLite-backed store.
type SQLite struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema. ":memory:" opens a private in-memory database.
func Open(path string) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_txlock=immediate&_journal_mode=WAL", path)
	if path == ":memory:" {
		dsn = "file::memory:?_txlock=immediate"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Begin opens a Unit.
func (s *SQLite) Begin(ctx context.Context) (Unit, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	return &Tx{tx: tx}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// Tx is the SQLite Unit.
type Tx struct {
	tx *sql.Tx
}

func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Rollback aborts the unit. Rolling back a finished unit is a no-op.
func (t *Tx) Rollback() error {
	err := t.tx.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}
