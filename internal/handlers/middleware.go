package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/carhire/apiserver/internal/auth"
	"github.com/carhire/apiserver/internal/logging"
	"github.com/carhire/apiserver/internal/store"
	"github.com/carhire/apiserver/types"
)

type contextKey string

const contextCustomerKey contextKey = "customer"

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

// AccountLoader fetches the account a token refers to.
type AccountLoader interface {
	Me(ctx context.Context, id int) (types.Customer, error)
}

// Gate authenticates requests and checks roles.
type Gate struct {
	tokens   TokenVerifier
	accounts AccountLoader
}

func NewGate(tokens TokenVerifier, accounts AccountLoader) *Gate {
	return &Gate{tokens: tokens, accounts: accounts}
}

// RequireAuth verifies the bearer token and loads the current account into
// the request context. The account is re-read on every request so a role
// change or deletion takes effect immediately.
func (g *Gate) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := bearerToken(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		claims, err := g.tokens.Verify(tokenString)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		customer, err := g.accounts.Me(r.Context(), claims.AccountID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			logging.FromContext(r.Context()).ErrorContext(r.Context(), "load account", "customer_id", claims.AccountID, "err", err)
			writeError(w, http.StatusInternalServerError, "failed to load account")
			return
		}

		ctx := withCustomer(r.Context(), customer)
		ctx = logging.WithContext(ctx, logging.FromContext(ctx).With("customer_id", customer.ID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must run after RequireAuth.
func (g *Gate) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		customer, ok := customerFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !customer.IsAdmin() {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSelfOrAdmin lets through admins and the customer whose id is in the
// named URL parameter. It must run after RequireAuth.
func (g *Gate) RequireSelfOrAdmin(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			customer, ok := customerFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			id, err := parseID(r, param, "customer")
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			if customer.ID != id && !customer.IsAdmin() {
				writeError(w, http.StatusForbidden, "admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func withCustomer(ctx context.Context, customer types.Customer) context.Context {
	return context.WithValue(ctx, contextCustomerKey, customer)
}

func customerFromContext(ctx context.Context) (types.Customer, bool) {
	customer, ok := ctx.Value(contextCustomerKey).(types.Customer)
	return customer, ok
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
