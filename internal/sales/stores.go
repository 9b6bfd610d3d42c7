package sales

import "context"

// Store contracts for the three aggregates. Save assigns an id on first
// insert; FindByID returns the package sentinel for a missing row.

type CustomerStore interface {
	FindByID(ctx context.Context, id int64) (*Customer, error)
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	ExistsByCPF(ctx context.Context, cpf string) (bool, error)
	FindAll(ctx context.Context) ([]Customer, error)
	Save(ctx context.Context, c *Customer) error
	DeleteByID(ctx context.Context, id int64) error
}

type ProductStore interface {
	FindByID(ctx context.Context, id int64) (*Product, error)
	FindAll(ctx context.Context) ([]Product, error)
	Save(ctx context.Context, p *Product) error
	DeleteByID(ctx context.Context, id int64) error
}

type OrderStore interface {
	FindByID(ctx context.Context, id int64) (*Order, error)
	FindAll(ctx context.Context) ([]Order, error)
	FindByStatus(ctx context.Context, status Status) ([]Order, error)
	Save(ctx context.Context, o *Order) error
	DeleteByID(ctx context.Context, id int64) error
}

// Tx bundles the three stores behind one transaction.
type Tx interface {
	Customers() CustomerStore
	Products() ProductStore
	Orders() OrderStore
}

// Store adds the atomic unit of work on top of plain access. WithinTx
// commits only when fn returns nil; any error rolls everything back.
type Store interface {
	Tx
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}
