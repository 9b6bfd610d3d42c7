// Package memstore is an in-memory sales.Store with copy-on-write
// transactions. It backs the test suites and local runs without
// Postgres; a WithinTx body works on a private copy of the data and
// the copy replaces the live state only when the body returns nil.
package memstore

import (
	"context"
	"strings"
	"sync"

	"github.com/awebbr/sistema-vendas/internal/sales"
)

type state struct {
	customers map[int64]sales.Customer
	products  map[int64]sales.Product
	orders    map[int64]sales.Order

	nextCustomerID int64
	nextProductID  int64
	nextOrderID    int64
	nextLineID     int64
}

func newState() *state {
	return &state{
		customers: map[int64]sales.Customer{},
		products:  map[int64]sales.Product{},
		orders:    map[int64]sales.Order{},
	}
}

func (st *state) clone() *state {
	cp := &state{
		customers:      make(map[int64]sales.Customer, len(st.customers)),
		products:       make(map[int64]sales.Product, len(st.products)),
		orders:         make(map[int64]sales.Order, len(st.orders)),
		nextCustomerID: st.nextCustomerID,
		nextProductID:  st.nextProductID,
		nextOrderID:    st.nextOrderID,
		nextLineID:     st.nextLineID,
	}
	for id, c := range st.customers {
		cp.customers[id] = c
	}
	for id, p := range st.products {
		cp.products[id] = p
	}
	for id, o := range st.orders {
		o.Lines = append([]sales.OrderLine(nil), o.Lines...)
		cp.orders[id] = o
	}
	return cp
}

type Store struct {
	mu sync.Mutex
	st *state
}

func New() *Store {
	return &Store{st: newState()}
}

func (s *Store) Customers() sales.CustomerStore { return lockedCustomers{s} }
func (s *Store) Products() sales.ProductStore   { return lockedProducts{s} }
func (s *Store) Orders() sales.OrderStore       { return lockedOrders{s} }

func (s *Store) WithinTx(ctx context.Context, fn func(tx sales.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := s.st.clone()
	if err := fn(txView{cp}); err != nil {
		return err
	}
	s.st = cp
	return nil
}

// txView gives uncommitted access to the cloned state.
type txView struct{ st *state }

func (v txView) Customers() sales.CustomerStore { return customers{v.st} }
func (v txView) Products() sales.ProductStore   { return products{v.st} }
func (v txView) Orders() sales.OrderStore       { return orders{v.st} }

// ---- customers ----

type customers struct{ st *state }

func (c customers) FindByID(ctx context.Context, id int64) (*sales.Customer, error) {
	cu, ok := c.st.customers[id]
	if !ok {
		return nil, sales.ErrCustomerNotFound
	}
	return &cu, nil
}

func (c customers) FindByEmail(ctx context.Context, email string) (*sales.Customer, error) {
	for _, cu := range c.st.customers {
		if strings.EqualFold(cu.Email, email) {
			cu := cu
			return &cu, nil
		}
	}
	return nil, sales.ErrCustomerNotFound
}

func (c customers) ExistsByCPF(ctx context.Context, cpf string) (bool, error) {
	for _, cu := range c.st.customers {
		if cu.CPF == cpf {
			return true, nil
		}
	}
	return false, nil
}

func (c customers) FindAll(ctx context.Context) ([]sales.Customer, error) {
	out := make([]sales.Customer, 0, len(c.st.customers))
	for _, cu := range c.st.customers {
		out = append(out, cu)
	}
	return out, nil
}

func (c customers) Save(ctx context.Context, cu *sales.Customer) error {
	if cu.ID == 0 {
		c.st.nextCustomerID++
		cu.ID = c.st.nextCustomerID
	}
	c.st.customers[cu.ID] = *cu
	return nil
}

func (c customers) DeleteByID(ctx context.Context, id int64) error {
	if _, ok := c.st.customers[id]; !ok {
		return sales.ErrCustomerNotFound
	}
	delete(c.st.customers, id)
	return nil
}

// ---- products ----

type products struct{ st *state }

func (p products) FindByID(ctx context.Context, id int64) (*sales.Product, error) {
	pr, ok := p.st.products[id]
	if !ok {
		return nil, sales.ErrProductNotFound
	}
	return &pr, nil
}

func (p products) FindAll(ctx context.Context) ([]sales.Product, error) {
	out := make([]sales.Product, 0, len(p.st.products))
	for _, pr := range p.st.products {
		out = append(out, pr)
	}
	return out, nil
}

func (p products) Save(ctx context.Context, pr *sales.Product) error {
	if pr.ID == 0 {
		p.st.nextProductID++
		pr.ID = p.st.nextProductID
	}
	p.st.products[pr.ID] = *pr
	return nil
}

func (p products) DeleteByID(ctx context.Context, id int64) error {
	if _, ok := p.st.products[id]; !ok {
		return sales.ErrProductNotFound
	}
	delete(p.st.products, id)
	return nil
}

// ---- orders ----

type orders struct{ st *state }

func (o orders) FindByID(ctx context.Context, id int64) (*sales.Order, error) {
	or, ok := o.st.orders[id]
	if !ok {
		return nil, sales.ErrOrderNotFound
	}
	or.Lines = append([]sales.OrderLine(nil), or.Lines...)
	return &or, nil
}

func (o orders) FindAll(ctx context.Context) ([]sales.Order, error) {
	out := make([]sales.Order, 0, len(o.st.orders))
	for _, or := range o.st.orders {
		or.Lines = append([]sales.OrderLine(nil), or.Lines...)
		out = append(out, or)
	}
	return out, nil
}

func (o orders) FindByStatus(ctx context.Context, status sales.Status) ([]sales.Order, error) {
	var out []sales.Order
	for _, or := range o.st.orders {
		if or.Status == status {
			or.Lines = append([]sales.OrderLine(nil), or.Lines...)
			out = append(out, or)
		}
	}
	return out, nil
}

func (o orders) Save(ctx context.Context, or *sales.Order) error {
	if or.ID == 0 {
		o.st.nextOrderID++
		or.ID = o.st.nextOrderID
	}
	for i := range or.Lines {
		if or.Lines[i].ID == 0 {
			o.st.nextLineID++
			or.Lines[i].ID = o.st.nextLineID
		}
	}
	cp := *or
	cp.Lines = append([]sales.OrderLine(nil), or.Lines...)
	o.st.orders[cp.ID] = cp
	return nil
}

func (o orders) DeleteByID(ctx context.Context, id int64) error {
	if _, ok := o.st.orders[id]; !ok {
		return sales.ErrOrderNotFound
	}
	delete(o.st.orders, id)
	return nil
}

// ---- locked direct access outside a transaction ----

type lockedCustomers struct{ s *Store }

func (l lockedCustomers) FindByID(ctx context.Context, id int64) (*sales.Customer, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return customers{l.s.st}.FindByID(ctx, id)
}

func (l lockedCustomers) FindByEmail(ctx context.Context, email string) (*sales.Customer, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return customers{l.s.st}.FindByEmail(ctx, email)
}

func (l lockedCustomers) ExistsByCPF(ctx context.Context, cpf string) (bool, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return customers{l.s.st}.ExistsByCPF(ctx, cpf)
}

func (l lockedCustomers) FindAll(ctx context.Context) ([]sales.Customer, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return customers{l.s.st}.FindAll(ctx)
}

func (l lockedCustomers) Save(ctx context.Context, cu *sales.Customer) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return customers{l.s.st}.Save(ctx, cu)
}

func (l lockedCustomers) DeleteByID(ctx context.Context, id int64) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return customers{l.s.st}.DeleteByID(ctx, id)
}

type lockedProducts struct{ s *Store }

func (l lockedProducts) FindByID(ctx context.Context, id int64) (*sales.Product, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return products{l.s.st}.FindByID(ctx, id)
}

func (l lockedProducts) FindAll(ctx context.Context) ([]sales.Product, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return products{l.s.st}.FindAll(ctx)
}

func (l lockedProducts) Save(ctx context.Context, pr *sales.Product) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return products{l.s.st}.Save(ctx, pr)
}

func (l lockedProducts) DeleteByID(ctx context.Context, id int64) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return products{l.s.st}.DeleteByID(ctx, id)
}

type lockedOrders struct{ s *Store }

func (l lockedOrders) FindByID(ctx context.Context, id int64) (*sales.Order, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return orders{l.s.st}.FindByID(ctx, id)
}

func (l lockedOrders) FindAll(ctx context.Context) ([]sales.Order, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return orders{l.s.st}.FindAll(ctx)
}

func (l lockedOrders) FindByStatus(ctx context.Context, status sales.Status) ([]sales.Order, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return orders{l.s.st}.FindByStatus(ctx, status)
}

func (l lockedOrders) Save(ctx context.Context, or *sales.Order) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return orders{l.s.st}.Save(ctx, or)
}

func (l lockedOrders) DeleteByID(ctx context.Context, id int64) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return orders{l.s.st}.DeleteByID(ctx, id)
}
