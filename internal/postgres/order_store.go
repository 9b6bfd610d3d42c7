package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/awebbr/sistema-vendas/internal/sales"
)

type orderStore struct {
	q         querier
	forUpdate bool
}

func (s orderStore) FindByID(ctx context.Context, id int64) (*sales.Order, error) {
	q := `SELECT order_id, customer_id, total::text, status, created_at, updated_at
		FROM orders WHERE order_id = $1`
	if s.forUpdate {
		q += ` FOR UPDATE`
	}

	var (
		o      sales.Order
		total  string
		status string
	)
	err := s.q.QueryRow(ctx, q, id).Scan(
		&o.ID, &o.CustomerID, &total, &status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sales.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	o.Status = sales.Status(status)
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("parse total of order %d: %w", id, err)
	}

	lines, err := s.linesFor(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Lines = lines[o.ID]
	return &o, nil
}

func (s orderStore) FindAll(ctx context.Context) ([]sales.Order, error) {
	return s.list(ctx,
		`SELECT order_id, customer_id, total::text, status, created_at, updated_at
		FROM orders ORDER BY order_id`)
}

func (s orderStore) FindByStatus(ctx context.Context, status sales.Status) ([]sales.Order, error) {
	return s.list(ctx,
		`SELECT order_id, customer_id, total::text, status, created_at, updated_at
		FROM orders WHERE status = $1 ORDER BY order_id`, string(status))
}

func (s orderStore) list(ctx context.Context, q string, args ...any) ([]sales.Order, error) {
	rows, err := s.q.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var (
		out []sales.Order
		ids []int64
	)
	for rows.Next() {
		var (
			o      sales.Order
			total  string
			status string
		)
		if err := rows.Scan(&o.ID, &o.CustomerID, &total, &status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Status = sales.Status(status)
		if o.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("parse total of order %d: %w", o.ID, err)
		}
		out = append(out, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	lines, err := s.linesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Lines = lines[out[i].ID]
	}
	return out, nil
}

func (s orderStore) linesFor(ctx context.Context, orderIDs []int64) (map[int64][]sales.OrderLine, error) {
	rows, err := s.q.Query(ctx,
		`SELECT line_id, order_id, product_id, quantity, unit_price::text
		FROM order_lines WHERE order_id = ANY($1) ORDER BY line_id`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()

	out := map[int64][]sales.OrderLine{}
	for rows.Next() {
		var (
			ln      sales.OrderLine
			orderID int64
			price   string
		)
		if err := rows.Scan(&ln.ID, &orderID, &ln.ProductID, &ln.Quantity, &price); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		if ln.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse unit price of line %d: %w", ln.ID, err)
		}
		out[orderID] = append(out[orderID], ln)
	}
	return out, rows.Err()
}

// Save inserts a new order or updates an existing one, reconciling the
// line set: removed lines are deleted, new lines (id 0) inserted.
// Existing lines never change, only appear or disappear.
func (s orderStore) Save(ctx context.Context, o *sales.Order) error {
	if o.ID == 0 {
		err := s.q.QueryRow(ctx, `
			INSERT INTO orders (customer_id, total, status)
			VALUES ($1, $2::numeric, $3)
			RETURNING order_id, created_at, updated_at`,
			o.CustomerID, o.Total.String(), string(o.Status),
		).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
	} else {
		tag, err := s.q.Exec(ctx, `
			UPDATE orders
			SET total = $2::numeric, status = $3, updated_at = now()
			WHERE order_id = $1`,
			o.ID, o.Total.String(), string(o.Status))
		if err != nil {
			return fmt.Errorf("update order %d: %w", o.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return sales.ErrOrderNotFound
		}
	}

	kept := make([]int64, 0, len(o.Lines))
	for _, ln := range o.Lines {
		if ln.ID != 0 {
			kept = append(kept, ln.ID)
		}
	}
	if _, err := s.q.Exec(ctx,
		`DELETE FROM order_lines WHERE order_id = $1 AND NOT (line_id = ANY($2))`,
		o.ID, kept); err != nil {
		return fmt.Errorf("prune order lines %d: %w", o.ID, err)
	}

	for i := range o.Lines {
		if o.Lines[i].ID != 0 {
			continue
		}
		err := s.q.QueryRow(ctx, `
			INSERT INTO order_lines (order_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4::numeric)
			RETURNING line_id`,
			o.ID, o.Lines[i].ProductID, o.Lines[i].Quantity, o.Lines[i].UnitPrice.String(),
		).Scan(&o.Lines[i].ID)
		if err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}
	return nil
}

func (s orderStore) DeleteByID(ctx context.Context, id int64) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM orders WHERE order_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return sales.ErrOrderNotFound
	}
	return nil
}
