// Package auth implements login sessions for the sales API: bcrypt
// password verification against the customer record and opaque session
// tokens held in Redis with a TTL.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/awebbr/sistema-vendas/internal/sales"
)

var (
	ErrInvalidCredentials = errors.New("invalid e-mail or password")
	ErrSessionNotFound    = errors.New("session not found")
)

// UserStore resolves login e-mails to customer records.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*sales.Customer, error)
}

// SessionStore keeps token -> customer id with expiry.
type SessionStore interface {
	Put(ctx context.Context, token string, customerID int64, ttl time.Duration) error
	Get(ctx context.Context, token string) (int64, error)
	Del(ctx context.Context, token string) error
}

type Service struct {
	users    UserStore
	sessions SessionStore
	ttl      time.Duration
	cost     int
}

func NewService(users UserStore, sessions SessionStore, ttl time.Duration, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{users: users, sessions: sessions, ttl: ttl, cost: bcryptCost}
}

func (s *Service) HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Login checks the password and issues a fresh session token. A missing
// customer and a wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	c, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sales.ErrCustomerNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	token := uuid.NewString()
	if err := s.sessions.Put(ctx, token, c.ID, s.ttl); err != nil {
		return "", err
	}
	return token, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Del(ctx, token)
}

// Authenticate resolves a session token to the customer id that owns it.
func (s *Service) Authenticate(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, ErrSessionNotFound
	}
	return s.sessions.Get(ctx, token)
}
