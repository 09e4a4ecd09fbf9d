package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Stores bundles one repo per resource, all bound to the same connection or
// transaction.
type Stores struct {
	Trips    TripRepo
	Roster   RosterRepo
	Requests JoinRequestRepo
	Messages MessageRepo
}

// NewStores binds every repo to db.
func NewStores(db db) Stores {
	return Stores{
		Trips:    NewTripRepo(db),
		Roster:   NewRosterRepo(db),
		Requests: NewJoinRequestRepo(db),
		Messages: NewMessageRepo(db),
	}
}

// Transactor hands out repos either directly (for reads) or bound to a single
// transaction (for multi-step writes that must be all-or-nothing).
type Transactor interface {
	// Stores returns repos that run each statement on its own.
	Stores() Stores

	// WithinTx runs fn with repos bound to one transaction. The transaction
	// commits if fn returns nil and rolls back otherwise; fn's error is
	// returned unchanged so callers can still match it with errors.Is.
	WithinTx(ctx context.Context, fn func(Stores) error) error
}

// beginner is satisfied by *pgxpool.Pool and pgx.Tx. Beginning on a pgx.Tx
// opens a savepoint, so tests that run inside a rolled-back transaction still
// work.
type beginner interface {
	db
	Begin(ctx context.Context) (pgx.Tx, error)
}

type pgTransactor struct {
	db     beginner
	stores Stores
}

// NewTransactor constructs a Transactor backed by the provided connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTransactor(db beginner) Transactor {
	return &pgTransactor{db: db, stores: NewStores(db)}
}

func (t *pgTransactor) Stores() Stores {
	return t.stores
}

func (t *pgTransactor) WithinTx(ctx context.Context, fn func(Stores) error) error {
	var fnErr error
	err := pgx.BeginFunc(ctx, t.db, func(tx pgx.Tx) error {
		fnErr = fn(NewStores(tx))
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return fmt.Errorf("repo.Transactor.WithinTx: %w", err)
	}
	return nil
}
