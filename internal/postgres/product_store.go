package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/awebbr/sistema-vendas/internal/sales"
)

type productStore struct {
	q querier
	// forUpdate locks product rows read inside a ledger transaction.
	forUpdate bool
}

func (s productStore) FindByID(ctx context.Context, id int64) (*sales.Product, error) {
	q := `SELECT product_id, name, price::text, stock, created_at, updated_at
		FROM products WHERE product_id = $1`
	if s.forUpdate {
		q += ` FOR UPDATE`
	}

	var (
		p     sales.Product
		price string
	)
	err := s.q.QueryRow(ctx, q, id).Scan(
		&p.ID, &p.Name, &price, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sales.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parse price of product %d: %w", id, err)
	}
	return &p, nil
}

func (s productStore) FindAll(ctx context.Context) ([]sales.Product, error) {
	rows, err := s.q.Query(ctx,
		`SELECT product_id, name, price::text, stock, created_at, updated_at
		FROM products ORDER BY product_id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []sales.Product
	for rows.Next() {
		var (
			p     sales.Product
			price string
		)
		if err := rows.Scan(&p.ID, &p.Name, &price, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse price of product %d: %w", p.ID, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s productStore) Save(ctx context.Context, p *sales.Product) error {
	if p.ID == 0 {
		err := s.q.QueryRow(ctx, `
			INSERT INTO products (name, price, stock)
			VALUES ($1, $2::numeric, $3)
			RETURNING product_id, created_at, updated_at`,
			p.Name, p.Price.String(), p.Stock,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert product: %w", err)
		}
		return nil
	}

	tag, err := s.q.Exec(ctx, `
		UPDATE products
		SET name = $2, price = $3::numeric, stock = $4, updated_at = now()
		WHERE product_id = $1`,
		p.ID, p.Name, p.Price.String(), p.Stock)
	if err != nil {
		return fmt.Errorf("update product %d: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return sales.ErrProductNotFound
	}
	return nil
}

func (s productStore) DeleteByID(ctx context.Context, id int64) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM products WHERE product_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return sales.ErrProductNotFound
	}
	return nil
}
