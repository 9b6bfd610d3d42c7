package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/awebbr/sistema-vendas/internal/auth"
	"github.com/awebbr/sistema-vendas/internal/sales"
)

func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeDomainError maps ledger errors onto status codes: absent records
// are 404, state violations 409, stock shortage 422.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case sales.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, sales.ErrInsufficientStock):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, sales.ErrOrderNotActive),
		errors.Is(err, sales.ErrOrderCancelled),
		errors.Is(err, sales.ErrEmptyOrder):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, sales.ErrInvalidQuantity),
		errors.Is(err, sales.ErrDuplicateEmail),
		errors.Is(err, sales.ErrDuplicateCPF):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// sessionToken pulls the token from Authorization: Bearer or the
// X-Session-Token header.
func sessionToken(r *http.Request) string {
	const bearer = "Bearer "
	if h := r.Header.Get("Authorization"); len(h) > len(bearer) && h[:len(bearer)] == bearer {
		return h[len(bearer):]
	}
	return r.Header.Get("X-Session-Token")
}

// RequireSession guards mutating routes behind a valid login session.
func RequireSession(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := svc.Authenticate(r.Context(), sessionToken(r)); err != nil {
				writeError(w, http.StatusUnauthorized, "login required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
