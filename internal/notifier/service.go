// Package notifier consumes order lifecycle events and keeps the
// lightweight operational read side: daily revenue/cancellation
// counters in Redis and low-stock flags checked after every item add.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	kafkax "github.com/awebbr/sistema-vendas/internal/kafka"
	"github.com/awebbr/sistema-vendas/internal/redisx"
	"github.com/awebbr/sistema-vendas/internal/sales"
)

type Service struct {
	Products          sales.ProductStore
	Redis             *redis.Client
	ServiceName       string
	LowStockThreshold int
}

// HandleEvent is the consumer handler for all order topics.
func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	var env sales.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// dedup by event id: redeliveries must not double-count
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if seen, _ := redisx.Exists(ctx, s.Redis, dkey); seen {
		return nil
	}

	var err error
	switch env.EventType {
	case sales.EventOrderFinalized:
		err = s.onFinalized(ctx, env)
	case sales.EventOrderCancelled:
		err = s.onCancelled(ctx, env)
	case sales.EventItemAdded:
		err = s.onItemAdded(ctx, env)
	default:
		// created/removed events carry nothing to aggregate
	}
	if err != nil {
		return err
	}

	return s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
}

func day(t time.Time) string { return t.UTC().Format("2006-01-02") }

func (s *Service) onFinalized(ctx context.Context, env sales.Envelope) error {
	p, err := kafkax.UnwrapPayload[sales.OrderFinalizedPayload](env.Payload)
	if err != nil {
		return err
	}
	d := day(env.OccurredAt)

	total, err := decimal.NewFromString(p.Total)
	if err != nil {
		return fmt.Errorf("parse total %q: %w", p.Total, err)
	}
	pipe := s.Redis.Pipeline()
	pipe.IncrByFloat(ctx, fmt.Sprintf(redisx.KeyRevenueDay, d), total.InexactFloat64())
	pipe.Incr(ctx, fmt.Sprintf(redisx.KeyFinalizedDay, d))
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	log.Printf("order %d finalized: total=%s", p.OrderID, p.Total)
	return nil
}

func (s *Service) onCancelled(ctx context.Context, env sales.Envelope) error {
	p, err := kafkax.UnwrapPayload[sales.OrderCancelledPayload](env.Payload)
	if err != nil {
		return err
	}
	if err := s.Redis.Incr(ctx, fmt.Sprintf(redisx.KeyCancelledDay, day(env.OccurredAt))).Err(); err != nil {
		return err
	}
	log.Printf("order %d cancelled: %d lines restocked", p.OrderID, len(p.Restocked))
	return nil
}

// onItemAdded re-reads the product and flags it when stock fell under
// the threshold.
func (s *Service) onItemAdded(ctx context.Context, env sales.Envelope) error {
	p, err := kafkax.UnwrapPayload[sales.LineChangePayload](env.Payload)
	if err != nil {
		return err
	}
	product, err := s.Products.FindByID(ctx, p.ProductID)
	if err != nil {
		// product may have been deleted since; nothing to flag
		return nil
	}
	if product.Stock >= s.LowStockThreshold {
		return nil
	}
	key := fmt.Sprintf(redisx.KeyLowStock, product.ID)
	if err := s.Redis.Set(ctx, key, product.Stock, redisx.TTLLowStock).Err(); err != nil {
		return err
	}
	log.Printf("low stock: product %d (%s) down to %d", product.ID, product.Name, product.Stock)
	return nil
}
