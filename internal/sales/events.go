package sales

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated   = "OrderCreated"
	EventItemAdded      = "OrderItemAdded"
	EventItemRemoved    = "OrderItemRemoved"
	EventOrderFinalized = "OrderFinalized"
	EventOrderCancelled = "OrderCancelled"
)

// Envelope wraps every published event. Monetary amounts travel as
// decimal strings, never floats.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID    int64 `json:"order_id"`
	CustomerID int64 `json:"customer_id"`
}

type LineChangePayload struct {
	OrderID   int64  `json:"order_id"`
	LineID    int64  `json:"line_id"`
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Total     string `json:"total"` // order total after the change
}

type OrderFinalizedPayload struct {
	OrderID    int64  `json:"order_id"`
	CustomerID int64  `json:"customer_id"`
	Total      string `json:"total"`
	LineCount  int    `json:"line_count"`
}

type StockRestore struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type OrderCancelledPayload struct {
	OrderID   int64          `json:"order_id"`
	Restocked []StockRestore `json:"restocked,omitempty"`
}
