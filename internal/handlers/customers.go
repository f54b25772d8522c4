package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carhire/apiserver/internal/services"
	"github.com/carhire/apiserver/types"
)

// CustomerHandler serves account records to administrators and to the
// customers themselves. Accounts are created through the auth routes.
type CustomerHandler struct {
	customers *services.CustomerService
	accounts  *services.AccountService
}

func NewCustomerHandler(customers *services.CustomerService, accounts *services.AccountService) *CustomerHandler {
	return &CustomerHandler{customers: customers, accounts: accounts}
}

// CustomerRouter registers customer routes. Every route requires
// authentication; self is checked against the {customerID} parameter.
func CustomerRouter(r chi.Router, customers *services.CustomerService, accounts *services.AccountService, rentals *RentalHandler, gate *Gate) {
	handler := NewCustomerHandler(customers, accounts)

	r.Use(gate.RequireAuth)
	r.With(gate.RequireAdmin).Get("/", handler.List)
	r.Route("/{customerID}", func(r chi.Router) {
		r.With(gate.RequireSelfOrAdmin("customerID")).Get("/", handler.Get)
		r.With(gate.RequireAdmin).Put("/", handler.Update)
		r.With(gate.RequireAdmin).Delete("/", handler.Delete)
		r.With(gate.RequireSelfOrAdmin("customerID")).Get("/bookings", rentals.ListCustomerBookings)
		r.With(gate.RequireSelfOrAdmin("customerID")).Get("/reservations", rentals.ListCustomerReservations)
	})
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.customers.List(r.Context(), offset, limit)
	if err != nil {
		writeServiceError(w, r, err, "customer", "list customers")
		return
	}
	if items == nil {
		items = []types.Customer{}
	}
	writeJSON(w, http.StatusOK, ListResponse[types.Customer]{Items: items, Page: page, Limit: limit, Total: total})
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "customerID", "customer")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	customer, err := h.customers.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "customer", "fetch customer")
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

// Update edits a customer's profile fields. Email, role and verification
// state cannot be changed here.
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "customerID", "customer")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req services.ProfileInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	customer, err := h.accounts.UpdateProfile(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err, "customer", "update customer")
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "customerID", "customer")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.customers.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "customer", "delete customer")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
