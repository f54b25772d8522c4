package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Middlewares is an ordered middleware chain.
type Middlewares []func(http.Handler) http.Handler

// Access lists the middleware guarding each kind of resource route.
type Access struct {
	List  Middlewares
	Get   Middlewares
	Write Middlewares
}

// CRUDService is the service contract served by ResourceHandler.
type CRUDService[T any] interface {
	List(ctx context.Context, offset, limit int) ([]T, int, error)
	Get(ctx context.Context, id int) (T, error)
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, id int, item T) (T, error)
	Delete(ctx context.Context, id int) error
}

// ResourceHandler serves list, get, create, update and delete for one resource.
type ResourceHandler[T any] struct {
	svc   CRUDService[T]
	name  string
	param string
	// owner, when set, returns the customer a record belongs to. Non-admin
	// callers may only read their own records.
	owner func(T) int
}

func NewResourceHandler[T any](svc CRUDService[T], name string) *ResourceHandler[T] {
	return &ResourceHandler[T]{svc: svc, name: name, param: name + "ID"}
}

// OwnedBy restricts single-record reads by non-admins to their own records.
func (h *ResourceHandler[T]) OwnedBy(owner func(T) int) *ResourceHandler[T] {
	h.owner = owner
	return h
}

// Mount registers the CRUD routes on r. item, when non-nil, adds routes
// under the record path.
func (h *ResourceHandler[T]) Mount(r chi.Router, access Access, item func(r chi.Router)) {
	r.With(access.List...).Get("/", h.List)
	r.With(access.Write...).Post("/", h.Create)
	r.Route("/{"+h.param+"}", func(r chi.Router) {
		r.With(access.Get...).Get("/", h.Get)
		r.With(access.Write...).Put("/", h.Update)
		r.With(access.Write...).Delete("/", h.Delete)
		if item != nil {
			item(r)
		}
	})
}

func (h *ResourceHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.svc.List(r.Context(), offset, limit)
	if err != nil {
		writeServiceError(w, r, err, h.name, "list "+h.name+"s")
		return
	}
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, ListResponse[T]{Items: items, Page: page, Limit: limit, Total: total})
}

func (h *ResourceHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, h.param, h.name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.name, "fetch "+h.name)
		return
	}
	if h.owner != nil {
		caller, ok := customerFromContext(r.Context())
		if !ok || (!caller.IsAdmin() && caller.ID != h.owner(item)) {
			writeError(w, http.StatusNotFound, h.name+" not found")
			return
		}
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ResourceHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	var item T
	if err := decodeJSON(w, r, &item); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.svc.Create(r.Context(), item)
	if err != nil {
		writeServiceError(w, r, err, h.name, "create "+h.name)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ResourceHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, h.param, h.name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var item T
	if err := decodeJSON(w, r, &item); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.svc.Update(r.Context(), id, item)
	if err != nil {
		writeServiceError(w, r, err, h.name, "update "+h.name)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ResourceHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, h.param, h.name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, h.name, "delete "+h.name)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
