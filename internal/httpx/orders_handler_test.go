package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/awebbr/sistema-vendas/internal/memstore"
	"github.com/awebbr/sistema-vendas/internal/sales"
)

type fakePublisher struct {
	mu     sync.Mutex
	topics []string
	types  []string
}

func (f *fakePublisher) Publish(topic string, key, value []byte, headers ...kafkago.Header) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topic)
	var env sales.Envelope
	_ = json.Unmarshal(value, &env)
	f.types = append(f.types, env.EventType)
}

func newOrdersServer(t *testing.T) (*httptest.Server, *memstore.Store, *fakePublisher) {
	t.Helper()
	store := memstore.New()
	pub := &fakePublisher{}
	h := &OrdersHandler{
		Ledger:   sales.NewLedger(store),
		Producer: pub,
		Service:  "vendas-api-test",
	}
	r := NewRouter()
	h.Register(r, nil)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, store, pub
}

func seed(t *testing.T, store *memstore.Store) (customerID, productID int64) {
	t.Helper()
	ctx := context.Background()
	c := &sales.Customer{Name: "Carla", Email: "carla@example.com", CPF: "12345678901"}
	if err := store.Customers().Save(ctx, c); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	p := &sales.Product{Name: "Notebook", Price: decimal.RequireFromString("3500.00"), Stock: 4}
	if err := store.Products().Save(ctx, p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return c.ID, p.ID
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decodeOrder(t *testing.T, resp *http.Response) sales.Order {
	t.Helper()
	defer resp.Body.Close()
	var o sales.Order
	if err := json.NewDecoder(resp.Body).Decode(&o); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	return o
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	srv, store, pub := newOrdersServer(t)
	customerID, productID := seed(t, store)

	resp := doJSON(t, http.MethodPost, srv.URL+"/orders", CreateOrderReq{CustomerID: customerID})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status = %d, want 201", resp.StatusCode)
	}
	o := decodeOrder(t, resp)

	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/orders/%d/items", srv.URL, o.ID),
		AddItemReq{ProductID: productID, Quantity: 2})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add item: status = %d, want 200", resp.StatusCode)
	}
	withItem := decodeOrder(t, resp)
	if len(withItem.Lines) != 1 || !withItem.Total.Equal(decimal.RequireFromString("7000.00")) {
		t.Fatalf("unexpected order after add: %+v (total %s)", withItem, withItem.Total)
	}

	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/orders/%d/finalize", srv.URL, o.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("finalize: status = %d, want 200", resp.StatusCode)
	}
	final := decodeOrder(t, resp)
	if final.Status != sales.StatusFinalized {
		t.Errorf("status = %s, want FINALIZED", final.Status)
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	want := []string{sales.EventOrderCreated, sales.EventItemAdded, sales.EventOrderFinalized}
	if len(pub.types) != len(want) {
		t.Fatalf("published %v, want %v", pub.types, want)
	}
	for i := range want {
		if pub.types[i] != want[i] {
			t.Errorf("event[%d] = %s, want %s", i, pub.types[i], want[i])
		}
	}
}

func TestOrderErrorMapping(t *testing.T) {
	srv, store, _ := newOrdersServer(t)
	customerID, productID := seed(t, store)

	// unknown order
	resp := doJSON(t, http.MethodPost, srv.URL+"/orders/999/items", AddItemReq{ProductID: productID, Quantity: 1})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown order: status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/orders", CreateOrderReq{CustomerID: customerID})
	o := decodeOrder(t, resp)

	// unknown product
	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/orders/%d/items", srv.URL, o.ID), AddItemReq{ProductID: 999, Quantity: 1})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown product: status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()

	// stock shortage
	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/orders/%d/items", srv.URL, o.ID), AddItemReq{ProductID: productID, Quantity: 99})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("insufficient stock: status = %d, want 422", resp.StatusCode)
	}
	resp.Body.Close()

	// empty finalize
	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/orders/%d/finalize", srv.URL, o.ID), nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("empty finalize: status = %d, want 409", resp.StatusCode)
	}
	resp.Body.Close()

	// bad status filter
	resp = doJSON(t, http.MethodGet, srv.URL+"/orders?status=SHIPPED", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad status filter: status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestListOrdersByStatus(t *testing.T) {
	srv, store, _ := newOrdersServer(t)
	customerID, productID := seed(t, store)

	resp := doJSON(t, http.MethodPost, srv.URL+"/orders", CreateOrderReq{CustomerID: customerID})
	a := decodeOrder(t, resp)
	resp = doJSON(t, http.MethodPost, srv.URL+"/orders", CreateOrderReq{CustomerID: customerID})
	b := decodeOrder(t, resp)

	doJSON(t, http.MethodPost, fmt.Sprintf("%s/orders/%d/items", srv.URL, b.ID),
		AddItemReq{ProductID: productID, Quantity: 1}).Body.Close()
	doJSON(t, http.MethodPost, fmt.Sprintf("%s/orders/%d/cancel", srv.URL, b.ID), nil).Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/orders?status=ACTIVE", nil)
	defer resp.Body.Close()
	var active []sales.Order
	if err := json.NewDecoder(resp.Body).Decode(&active); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(active) != 1 || active[0].ID != a.ID {
		t.Errorf("active = %+v, want just order %d", active, a.ID)
	}
}

func TestCancelRestocksOverHTTP(t *testing.T) {
	srv, store, pub := newOrdersServer(t)
	customerID, productID := seed(t, store)

	resp := doJSON(t, http.MethodPost, srv.URL+"/orders", CreateOrderReq{CustomerID: customerID})
	o := decodeOrder(t, resp)
	doJSON(t, http.MethodPost, fmt.Sprintf("%s/orders/%d/items", srv.URL, o.ID),
		AddItemReq{ProductID: productID, Quantity: 3}).Body.Close()

	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/orders/%d/cancel", srv.URL, o.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel: status = %d, want 200", resp.StatusCode)
	}
	cancelled := decodeOrder(t, resp)
	if cancelled.Status != sales.StatusCancelled {
		t.Errorf("status = %s, want CANCELLED", cancelled.Status)
	}

	p, err := store.Products().FindByID(context.Background(), productID)
	if err != nil {
		t.Fatalf("find product: %v", err)
	}
	if p.Stock != 4 {
		t.Errorf("stock = %d, want 4 (restored)", p.Stock)
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	last := pub.types[len(pub.types)-1]
	if last != sales.EventOrderCancelled {
		t.Errorf("last event = %s, want %s", last, sales.EventOrderCancelled)
	}
}
