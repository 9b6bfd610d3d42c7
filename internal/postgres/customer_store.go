package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/awebbr/sistema-vendas/internal/sales"
)

type customerStore struct {
	q querier
}

const customerColumns = `customer_id, name, email, cpf, phone, street,
	COALESCE(number, ''), COALESCE(complement, ''), district, city, state,
	postal_code, password_hash, created_at`

func scanCustomer(row pgx.Row, c *sales.Customer) error {
	return row.Scan(&c.ID, &c.Name, &c.Email, &c.CPF, &c.Phone, &c.Street,
		&c.Number, &c.Complement, &c.District, &c.City, &c.State,
		&c.PostalCode, &c.PasswordHash, &c.CreatedAt)
}

func (s customerStore) FindByID(ctx context.Context, id int64) (*sales.Customer, error) {
	var c sales.Customer
	row := s.q.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE customer_id = $1`, id)
	if err := scanCustomer(row, &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sales.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("get customer %d: %w", id, err)
	}
	return &c, nil
}

func (s customerStore) FindByEmail(ctx context.Context, email string) (*sales.Customer, error) {
	var c sales.Customer
	row := s.q.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE lower(email) = lower($1)`, email)
	if err := scanCustomer(row, &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sales.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("get customer by email: %w", err)
	}
	return &c, nil
}

func (s customerStore) ExistsByCPF(ctx context.Context, cpf string) (bool, error) {
	var exists bool
	err := s.q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM customers WHERE cpf = $1)`, cpf).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check cpf: %w", err)
	}
	return exists, nil
}

func (s customerStore) FindAll(ctx context.Context) ([]sales.Customer, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY customer_id`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var out []sales.Customer
	for rows.Next() {
		var c sales.Customer
		if err := scanCustomer(rows, &c); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s customerStore) Save(ctx context.Context, c *sales.Customer) error {
	if c.ID == 0 {
		err := s.q.QueryRow(ctx, `
			INSERT INTO customers
				(name, email, cpf, phone, street, number, complement,
				 district, city, state, postal_code, password_hash)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
			RETURNING customer_id, created_at`,
			c.Name, c.Email, c.CPF, c.Phone, c.Street, c.Number, c.Complement,
			c.District, c.City, c.State, c.PostalCode, c.PasswordHash,
		).Scan(&c.ID, &c.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert customer: %w", err)
		}
		return nil
	}

	tag, err := s.q.Exec(ctx, `
		UPDATE customers SET
			name = $2, email = $3, cpf = $4, phone = $5, street = $6,
			number = $7, complement = $8, district = $9, city = $10,
			state = $11, postal_code = $12, password_hash = $13
		WHERE customer_id = $1`,
		c.ID, c.Name, c.Email, c.CPF, c.Phone, c.Street, c.Number,
		c.Complement, c.District, c.City, c.State, c.PostalCode, c.PasswordHash)
	if err != nil {
		return fmt.Errorf("update customer %d: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return sales.ErrCustomerNotFound
	}
	return nil
}

func (s customerStore) DeleteByID(ctx context.Context, id int64) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM customers WHERE customer_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return sales.ErrCustomerNotFound
	}
	return nil
}
