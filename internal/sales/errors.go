package sales

import "errors"

var (
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrItemNotFound      = errors.New("item not found in order")
	ErrOrderNotActive    = errors.New("cannot modify a cancelled/finalized order")
	ErrOrderCancelled    = errors.New("cannot finalize a cancelled order")
	ErrEmptyOrder        = errors.New("cannot finalize an order with no items")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrDuplicateEmail    = errors.New("e-mail already registered")
	ErrDuplicateCPF      = errors.New("cpf already registered")
)

// IsNotFound reports whether err is one of the record-absent errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrItemNotFound)
}
