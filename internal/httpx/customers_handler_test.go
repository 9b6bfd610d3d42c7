package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/awebbr/sistema-vendas/internal/auth"
	"github.com/awebbr/sistema-vendas/internal/memstore"
	"github.com/awebbr/sistema-vendas/internal/sales"
)

func newCustomersServer(t *testing.T) (*httptest.Server, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	h := &CustomersHandler{
		Store:    store.Customers(),
		Auth:     auth.NewService(store.Customers(), nil, time.Hour, 4),
		Validate: validator.New(),
	}
	r := NewRouter()
	h.Register(r, nil)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, store
}

func validCustomerReq() CustomerReq {
	return CustomerReq{
		Name:       "Ana Souza",
		Email:      "ana@example.com",
		CPF:        "12345678901",
		Phone:      "11999990000",
		Street:     "Rua das Flores",
		Number:     "42",
		District:   "Centro",
		City:       "Sao Paulo",
		State:      "SP",
		PostalCode: "01000-000",
		Password:   "s3cret!",
	}
}

func TestCreateCustomer(t *testing.T) {
	srv, store := newCustomersServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/customers", validCustomerReq())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if _, leaked := body["password_hash"]; leaked {
		t.Error("password hash leaked in response")
	}

	c, err := store.Customers().FindByEmail(context.Background(), "ana@example.com")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if c.PasswordHash == "" || c.PasswordHash == "s3cret!" {
		t.Errorf("password stored as %q, want bcrypt hash", c.PasswordHash)
	}
}

func TestCreateCustomerValidation(t *testing.T) {
	srv, _ := newCustomersServer(t)

	cases := map[string]func(*CustomerReq){
		"missing name": func(r *CustomerReq) { r.Name = "" },
		"bad email":    func(r *CustomerReq) { r.Email = "not-an-email" },
		"short cpf":    func(r *CustomerReq) { r.CPF = "123" },
		"alpha cpf":    func(r *CustomerReq) { r.CPF = "1234567890a" },
		"long state":   func(r *CustomerReq) { r.State = "SAO" },
		"short pass":   func(r *CustomerReq) { r.Password = "abc" },
	}
	for name, mutate := range cases {
		req := validCustomerReq()
		mutate(&req)
		resp := doJSON(t, http.MethodPost, srv.URL+"/customers", req)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestCreateCustomerDuplicates(t *testing.T) {
	srv, _ := newCustomersServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/customers", validCustomerReq())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first create: status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	dup := validCustomerReq()
	dup.CPF = "98765432100"
	resp = doJSON(t, http.MethodPost, srv.URL+"/customers", dup)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate email: status = %d, want 409", resp.StatusCode)
	}
	resp.Body.Close()

	dup = validCustomerReq()
	dup.Email = "other@example.com"
	resp = doJSON(t, http.MethodPost, srv.URL+"/customers", dup)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate cpf: status = %d, want 409", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestGetAndDeleteCustomer(t *testing.T) {
	srv, store := newCustomersServer(t)

	c := &sales.Customer{Name: "Bruno", Email: "bruno@example.com", CPF: "11122233344"}
	if err := store.Customers().Save(context.Background(), c); err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp := doJSON(t, http.MethodGet, srv.URL+"/customers/9999", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing customer: status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodDelete, srv.URL+"/customers/1", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete: status = %d, want 204", resp.StatusCode)
	}
	resp.Body.Close()

	if _, err := store.Customers().FindByID(context.Background(), 1); err == nil {
		t.Error("customer still present after delete")
	}
}
