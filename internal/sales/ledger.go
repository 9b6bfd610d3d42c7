package sales

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Ledger owns the order lifecycle: line mutations, the stock they move,
// and the derived total. Every mutating call runs as one unit of work;
// a striped per-order mutex serializes concurrent mutations so two
// AddItem calls cannot race the same stock row.
type Ledger struct {
	store Store
	locks [64]sync.Mutex
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

func (l *Ledger) orderLock(orderID int64) *sync.Mutex {
	return &l.locks[uint64(orderID)%uint64(len(l.locks))]
}

// CreateOrder opens an ACTIVE order for an existing customer. No stock
// effect, total starts at zero.
func (l *Ledger) CreateOrder(ctx context.Context, customerID int64) (*Order, error) {
	var out *Order
	err := l.store.WithinTx(ctx, func(tx Tx) error {
		if _, err := tx.Customers().FindByID(ctx, customerID); err != nil {
			return err
		}
		now := time.Now().UTC()
		o := &Order{
			CustomerID: customerID,
			Status:     StatusActive,
			Total:      decimal.Zero,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := tx.Orders().Save(ctx, o); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AddItem appends a line with the product's current price, deducts
// stock, and recomputes the total. Preconditions are checked in order;
// the first failure aborts with no side effects.
func (l *Ledger) AddItem(ctx context.Context, orderID, productID int64, quantity int) error {
	mu := l.orderLock(orderID)
	mu.Lock()
	defer mu.Unlock()

	return l.store.WithinTx(ctx, func(tx Tx) error {
		o, err := tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		p, err := tx.Products().FindByID(ctx, productID)
		if err != nil {
			return err
		}
		if o.Status != StatusActive {
			return ErrOrderNotActive
		}
		if quantity > p.Stock {
			return fmt.Errorf("%w for product %s", ErrInsufficientStock, p.Name)
		}
		if quantity <= 0 {
			return ErrInvalidQuantity
		}

		o.Lines = append(o.Lines, OrderLine{
			ProductID: p.ID,
			Quantity:  quantity,
			UnitPrice: p.Price,
		})
		p.Stock -= quantity
		o.Total = recalcTotal(o.Lines)
		o.UpdatedAt = time.Now().UTC()

		if err := tx.Orders().Save(ctx, o); err != nil {
			return err
		}
		return tx.Products().Save(ctx, p)
	})
}

// RemoveItem drops a line from an ACTIVE order and puts the line's
// quantity back on the product's stock, whatever the price is today.
func (l *Ledger) RemoveItem(ctx context.Context, orderID, lineID int64) error {
	mu := l.orderLock(orderID)
	mu.Lock()
	defer mu.Unlock()

	return l.store.WithinTx(ctx, func(tx Tx) error {
		o, err := tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if o.Status != StatusActive {
			return ErrOrderNotActive
		}

		idx := -1
		for i, ln := range o.Lines {
			if ln.ID == lineID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrItemNotFound
		}
		removed := o.Lines[idx]

		p, err := tx.Products().FindByID(ctx, removed.ProductID)
		if err != nil {
			return err
		}
		p.Stock += removed.Quantity

		o.Lines = append(o.Lines[:idx], o.Lines[idx+1:]...)
		o.Total = recalcTotal(o.Lines)
		o.UpdatedAt = time.Now().UTC()

		if err := tx.Orders().Save(ctx, o); err != nil {
			return err
		}
		return tx.Products().Save(ctx, p)
	})
}

// CancelOrder returns every line's quantity to stock and marks the
// order CANCELLED. There is deliberately no status guard here: the
// system has always allowed cancelling finalized or already-cancelled
// orders, and that behavior is kept. The total is left as it was.
func (l *Ledger) CancelOrder(ctx context.Context, orderID int64) error {
	mu := l.orderLock(orderID)
	mu.Lock()
	defer mu.Unlock()

	return l.store.WithinTx(ctx, func(tx Tx) error {
		o, err := tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		for _, ln := range o.Lines {
			p, err := tx.Products().FindByID(ctx, ln.ProductID)
			if err != nil {
				return err
			}
			p.Stock += ln.Quantity
			if err := tx.Products().Save(ctx, p); err != nil {
				return err
			}
		}
		o.Status = StatusCancelled
		o.UpdatedAt = time.Now().UTC()
		return tx.Orders().Save(ctx, o)
	})
}

// FinalizeOrder closes a non-empty, non-cancelled order. Stock was
// already committed line by line, so only the status and a final total
// recompute are written.
func (l *Ledger) FinalizeOrder(ctx context.Context, orderID int64) error {
	mu := l.orderLock(orderID)
	mu.Lock()
	defer mu.Unlock()

	return l.store.WithinTx(ctx, func(tx Tx) error {
		o, err := tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if o.Status == StatusCancelled {
			return ErrOrderCancelled
		}
		if len(o.Lines) == 0 {
			return ErrEmptyOrder
		}
		o.Total = recalcTotal(o.Lines)
		o.Status = StatusFinalized
		o.UpdatedAt = time.Now().UTC()
		return tx.Orders().Save(ctx, o)
	})
}

func (l *Ledger) FindByID(ctx context.Context, orderID int64) (*Order, error) {
	return l.store.Orders().FindByID(ctx, orderID)
}

func (l *Ledger) ListAll(ctx context.Context) ([]Order, error) {
	return l.store.Orders().FindAll(ctx)
}

func (l *Ledger) ListByStatus(ctx context.Context, status Status) ([]Order, error) {
	return l.store.Orders().FindByStatus(ctx, status)
}

// recalcTotal derives the order total from its lines. The total is
// never written directly anywhere else.
func recalcTotal(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, ln := range lines {
		total = total.Add(ln.Subtotal())
	}
	return total
}
