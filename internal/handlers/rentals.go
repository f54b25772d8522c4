package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carhire/apiserver/internal/services"
	"github.com/carhire/apiserver/types"
)

// RentalHandler serves the booking and reservation reads that span records.
type RentalHandler struct {
	bookings     *services.BookingService
	reservations *services.ReservationService
}

func NewRentalHandler(bookings *services.BookingService, reservations *services.ReservationService) *RentalHandler {
	return &RentalHandler{bookings: bookings, reservations: reservations}
}

// BookingRouter registers booking routes. Customers may read their own
// bookings; everything else requires admin.
func BookingRouter(r chi.Router, rentals *RentalHandler, authed, admin Middlewares) {
	r.With(admin...).Get("/with-payments", rentals.ListBookingsWithPayments)
	NewResourceHandler[types.Booking](rentals.bookings, "booking").
		OwnedBy(func(b types.Booking) int { return b.CustomerID }).
		Mount(r, Access{List: admin, Get: authed, Write: admin}, nil)
}

// ReservationRouter registers reservation routes with the same rules as bookings.
func ReservationRouter(r chi.Router, rentals *RentalHandler, authed, admin Middlewares) {
	NewResourceHandler[types.Reservation](rentals.reservations, "reservation").
		OwnedBy(func(res types.Reservation) int { return res.CustomerID }).
		Mount(r, Access{List: admin, Get: authed, Write: admin}, nil)
}

func (h *RentalHandler) ListBookingsWithPayments(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.bookings.ListWithPayments(r.Context(), offset, limit)
	if err != nil {
		writeServiceError(w, r, err, "booking", "list bookings")
		return
	}
	if items == nil {
		items = []types.BookingWithPayments{}
	}
	writeJSON(w, http.StatusOK, ListResponse[types.BookingWithPayments]{Items: items, Page: page, Limit: limit, Total: len(items)})
}

func (h *RentalHandler) ListCustomerBookings(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "customerID", "customer")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.bookings.ListByCustomer(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "booking", "list bookings")
		return
	}
	if items == nil {
		items = []types.Booking{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *RentalHandler) ListCustomerReservations(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "customerID", "customer")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.reservations.ListByCustomer(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "reservation", "list reservations")
		return
	}
	if items == nil {
		items = []types.Reservation{}
	}
	writeJSON(w, http.StatusOK, items)
}
