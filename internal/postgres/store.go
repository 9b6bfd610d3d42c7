package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/awebbr/sistema-vendas/internal/sales"
)

// querier is the subset both *pgxpool.Pool and pgx.Tx satisfy, so the
// same entity stores serve plain and transactional access.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements sales.Store on Postgres. Inside WithinTx, product
// lookups take a row lock (FOR UPDATE) so concurrent ledger mutations
// over the same stock serialize at the database.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Customers() sales.CustomerStore { return customerStore{q: s.pool} }
func (s *Store) Products() sales.ProductStore   { return productStore{q: s.pool} }
func (s *Store) Orders() sales.OrderStore       { return orderStore{q: s.pool} }

func (s *Store) WithinTx(ctx context.Context, fn func(tx sales.Tx) error) error {
	pgtx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = pgtx.Rollback(ctx) }()

	if err := fn(txStores{q: pgtx}); err != nil {
		return err
	}
	if err := pgtx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type txStores struct{ q pgx.Tx }

func (t txStores) Customers() sales.CustomerStore { return customerStore{q: t.q} }
func (t txStores) Products() sales.ProductStore   { return productStore{q: t.q, forUpdate: true} }
func (t txStores) Orders() sales.OrderStore       { return orderStore{q: t.q, forUpdate: true} }
