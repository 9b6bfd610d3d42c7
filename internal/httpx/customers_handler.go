package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/awebbr/sistema-vendas/internal/auth"
	"github.com/awebbr/sistema-vendas/internal/sales"
)

type CustomersHandler struct {
	Store    sales.CustomerStore
	Auth     *auth.Service
	Validate *validator.Validate
}

// CustomerReq mirrors the registration form: full Brazilian address,
// 11-digit numeric CPF, two-letter state code.
type CustomerReq struct {
	Name       string `json:"name" validate:"required,max=150"`
	Email      string `json:"email" validate:"required,email,max=100"`
	CPF        string `json:"cpf" validate:"required,len=11,numeric"`
	Phone      string `json:"phone" validate:"required,max=20"`
	Street     string `json:"street" validate:"required"`
	Number     string `json:"number"`
	Complement string `json:"complement"`
	District   string `json:"district" validate:"required"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required,len=2"`
	PostalCode string `json:"postal_code" validate:"required"`
	Password   string `json:"password" validate:"required,min=6"`
}

func (h *CustomersHandler) Register(r *chi.Mux, guard func(http.Handler) http.Handler) {
	r.Post("/customers", h.create) // open: registration
	r.Group(func(r chi.Router) {
		if guard != nil {
			r.Use(guard)
		}
		r.Get("/customers", h.list)
		r.Get("/customers/{id}", h.get)
		r.Delete("/customers/{id}", h.delete)
	})
}

func (h *CustomersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CustomerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.Store.FindByEmail(r.Context(), req.Email); err == nil {
		writeError(w, http.StatusConflict, sales.ErrDuplicateEmail.Error())
		return
	}
	if exists, err := h.Store.ExistsByCPF(r.Context(), req.CPF); err != nil {
		writeDomainError(w, err)
		return
	} else if exists {
		writeError(w, http.StatusConflict, sales.ErrDuplicateCPF.Error())
		return
	}

	hash, err := h.Auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	c := &sales.Customer{
		Name:         req.Name,
		Email:        req.Email,
		CPF:          req.CPF,
		Phone:        req.Phone,
		Street:       req.Street,
		Number:       req.Number,
		Complement:   req.Complement,
		District:     req.District,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		PasswordHash: hash,
	}
	if err := h.Store.Save(r.Context(), c); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CustomersHandler) list(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Store.FindAll(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

func (h *CustomersHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	c, err := h.Store.FindByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CustomersHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	if err := h.Store.DeleteByID(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
