package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/awebbr/sistema-vendas/internal/auth"
	"github.com/awebbr/sistema-vendas/internal/memstore"
	"github.com/awebbr/sistema-vendas/internal/sales"
)

type fakeSessions struct {
	byToken map[string]int64
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{byToken: make(map[string]int64)}
}

func (f *fakeSessions) Put(ctx context.Context, token string, customerID int64, ttl time.Duration) error {
	f.byToken[token] = customerID
	return nil
}

func (f *fakeSessions) Get(ctx context.Context, token string) (int64, error) {
	id, ok := f.byToken[token]
	if !ok {
		return 0, auth.ErrSessionNotFound
	}
	return id, nil
}

func (f *fakeSessions) Del(ctx context.Context, token string) error {
	delete(f.byToken, token)
	return nil
}

func newService(t *testing.T) (*auth.Service, *fakeSessions, int64) {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()
	sessions := newFakeSessions()
	svc := auth.NewService(store.Customers(), sessions, time.Hour, 4)

	hash, err := svc.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	c := &sales.Customer{Name: "Ana", Email: "ana@example.com", CPF: "12345678901", PasswordHash: hash}
	if err := store.Customers().Save(ctx, c); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return svc, sessions, c.ID
}

func TestLoginAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _, customerID := newService(t)

	token, err := svc.Login(ctx, "ana@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Fatal("empty session token")
	}

	id, err := svc.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if id != customerID {
		t.Errorf("authenticated as %d, want %d", id, customerID)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc, sessions, _ := newService(t)

	if _, err := svc.Login(ctx, "ana@example.com", "wrong"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "correct horse"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("unknown email: err = %v, want ErrInvalidCredentials", err)
	}
	if len(sessions.byToken) != 0 {
		t.Errorf("%d sessions issued for failed logins", len(sessions.byToken))
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	token, err := svc.Login(ctx, "ana@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(ctx, token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Authenticate(ctx, token); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Errorf("after logout: err = %v, want ErrSessionNotFound", err)
	}
}

func TestAuthenticateEmptyToken(t *testing.T) {
	svc, _, _ := newService(t)
	if _, err := svc.Authenticate(context.Background(), ""); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}
