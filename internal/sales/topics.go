package sales

import "strconv"

const (
	TopicOrderCreated   = "pedido.created"
	TopicItemAdded      = "pedido.item.added"
	TopicItemRemoved    = "pedido.item.removed"
	TopicOrderFinalized = "pedido.finalized"
	TopicOrderCancelled = "pedido.cancelled"
)

// Partition key = order id, so all events of one order keep their order.
func PartitionKey(orderID int64) []byte {
	return []byte(strconv.FormatInt(orderID, 10))
}
