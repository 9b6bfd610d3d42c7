package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/awebbr/sistema-vendas/internal/kafka"
	"github.com/awebbr/sistema-vendas/internal/redisx"
	"github.com/awebbr/sistema-vendas/internal/sales"
)

// Publisher is what the handlers need from the kafka producer.
type Publisher interface {
	Publish(topic string, key, value []byte, headers ...kafkago.Header)
}

type OrdersHandler struct {
	Ledger   *sales.Ledger
	Producer Publisher     // optional
	Redis    *redis.Client // optional order snapshot cache
	Service  string
}

type CreateOrderReq struct {
	CustomerID int64 `json:"customer_id"`
}

type AddItemReq struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

func (h *OrdersHandler) Register(r *chi.Mux, guard func(http.Handler) http.Handler) {
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Group(func(r chi.Router) {
		if guard != nil {
			r.Use(guard)
		}
		r.Post("/orders", h.createOrder)
		r.Post("/orders/{id}/items", h.addItem)
		r.Delete("/orders/{id}/items/{lineID}", h.removeItem)
		r.Post("/orders/{id}/finalize", h.finalizeOrder)
		r.Post("/orders/{id}/cancel", h.cancelOrder)
	})
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.CustomerID == 0 {
		writeError(w, http.StatusBadRequest, "missing customer_id")
		return
	}

	o, err := h.Ledger.CreateOrder(r.Context(), req.CustomerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.publish(r, sales.TopicOrderCreated, sales.EventOrderCreated, o.ID,
		sales.OrderCreatedPayload{OrderID: o.ID, CustomerID: o.CustomerID})
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) addItem(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	var req AddItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.Ledger.AddItem(r.Context(), orderID, req.ProductID, req.Quantity); err != nil {
		writeDomainError(w, err)
		return
	}
	h.dropSnapshot(r, orderID)

	o, err := h.Ledger.FindByID(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if n := len(o.Lines); n > 0 {
		ln := o.Lines[n-1]
		h.publish(r, sales.TopicItemAdded, sales.EventItemAdded, o.ID, sales.LineChangePayload{
			OrderID:   o.ID,
			LineID:    ln.ID,
			ProductID: ln.ProductID,
			Quantity:  ln.Quantity,
			UnitPrice: ln.UnitPrice.String(),
			Total:     o.Total.String(),
		})
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	lineID, err := pathID(r, "lineID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid line id")
		return
	}

	// remember the line for the event before it is gone
	var removed *sales.OrderLine
	if o, err := h.Ledger.FindByID(r.Context(), orderID); err == nil {
		for _, ln := range o.Lines {
			if ln.ID == lineID {
				ln := ln
				removed = &ln
				break
			}
		}
	}

	if err := h.Ledger.RemoveItem(r.Context(), orderID, lineID); err != nil {
		writeDomainError(w, err)
		return
	}
	h.dropSnapshot(r, orderID)

	o, err := h.Ledger.FindByID(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if removed != nil {
		h.publish(r, sales.TopicItemRemoved, sales.EventItemRemoved, o.ID, sales.LineChangePayload{
			OrderID:   o.ID,
			LineID:    removed.ID,
			ProductID: removed.ProductID,
			Quantity:  removed.Quantity,
			UnitPrice: removed.UnitPrice.String(),
			Total:     o.Total.String(),
		})
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) finalizeOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	if err := h.Ledger.FinalizeOrder(r.Context(), orderID); err != nil {
		writeDomainError(w, err)
		return
	}
	h.dropSnapshot(r, orderID)

	o, err := h.Ledger.FindByID(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.publish(r, sales.TopicOrderFinalized, sales.EventOrderFinalized, o.ID, sales.OrderFinalizedPayload{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		Total:      o.Total.String(),
		LineCount:  len(o.Lines),
	})
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var restocked []sales.StockRestore
	if o, err := h.Ledger.FindByID(r.Context(), orderID); err == nil {
		for _, ln := range o.Lines {
			restocked = append(restocked, sales.StockRestore{ProductID: ln.ProductID, Quantity: ln.Quantity})
		}
	}

	if err := h.Ledger.CancelOrder(r.Context(), orderID); err != nil {
		writeDomainError(w, err)
		return
	}
	h.dropSnapshot(r, orderID)

	h.publish(r, sales.TopicOrderCancelled, sales.EventOrderCancelled, orderID, sales.OrderCancelledPayload{
		OrderID:   orderID,
		Restocked: restocked,
	})

	o, err := h.Ledger.FindByID(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	key := fmt.Sprintf(redisx.KeyOrder, orderID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(r.Context(), key).Result(); err == nil && s != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(s))
			return
		}
	}

	o, err := h.Ledger.FindByID(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if h.Redis != nil {
		if b, err := json.Marshal(o); err == nil {
			_ = h.Redis.Set(r.Context(), key, b, redisx.TTLOrderCache).Err()
		}
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := sales.ParseStatus(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown status "+raw)
			return
		}
		orders, err := h.Ledger.ListByStatus(r.Context(), status)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, orders)
		return
	}

	orders, err := h.Ledger.ListAll(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrdersHandler) dropSnapshot(r *http.Request, orderID int64) {
	if h.Redis == nil {
		return
	}
	_ = h.Redis.Del(r.Context(), fmt.Sprintf(redisx.KeyOrder, orderID)).Err()
}

func (h *OrdersHandler) publish(r *http.Request, topic, eventType string, orderID int64, payload any) {
	if h.Producer == nil {
		return
	}
	ev := sales.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: strconv.FormatInt(orderID, 10),
		Payload:       kafkax.MustMarshal(payload),
	}
	h.Producer.Publish(topic, sales.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
