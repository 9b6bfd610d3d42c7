package redisx

import "time"

const (
	// Product cache: product:{product_id} -> JSON (or "notfound")
	KeyProduct = "product:%d"

	// Product list cache: single key for the full catalog
	KeyProductsAll = "products:all"

	// Order snapshot cache: order:{order_id} -> JSON
	KeyOrder = "order:%d"

	// Session token: session:{token} -> customer_id
	KeySession = "session:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Daily sales counters, keyed by yyyy-mm-dd
	KeyRevenueDay    = "sales:revenue:%s"
	KeyFinalizedDay  = "sales:finalized:%s"
	KeyCancelledDay  = "sales:cancelled:%s"

	// Low stock flag per product
	KeyLowStock = "stock:low:%d"
)

var (
	TTLProductCache = 5 * time.Minute
	TTLOrderCache   = 5 * time.Minute
	TTLNotFound     = 1 * time.Minute
	TTLDedup        = 48 * time.Hour
	TTLLowStock     = 24 * time.Hour
)
