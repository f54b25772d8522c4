package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/carhire/apiserver/internal/handlers"
	"github.com/carhire/apiserver/internal/logging"
	"github.com/carhire/apiserver/internal/ratelimit"
	"github.com/carhire/apiserver/internal/services"
	"github.com/carhire/apiserver/types"
)

// Services is everything the router dispatches to.
type Services struct {
	Accounts     *services.AccountService
	Tokens       handlers.TokenVerifier
	Customers    *services.CustomerService
	Locations    *services.ResourceService[types.Location]
	Cars         *services.CarService
	Reservations *services.ReservationService
	Bookings     *services.BookingService
	Payments     *services.ResourceService[types.Payment]
	Maintenance  *services.ResourceService[types.Maintenance]
	Insurance    *services.ResourceService[types.Insurance]
}

type RouterOptions struct {
	Logger *slog.Logger
	// AuthLimiter throttles /auth per client address. Nil disables it.
	AuthLimiter          *ratelimit.Memory
	AdminCreateProtected bool
	RequestTimeout       time.Duration
}

// NewRouter builds the HTTP routing tree.
func NewRouter(svcs Services, opts RouterOptions) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	gate := handlers.NewGate(svcs.Tokens, svcs.Accounts)
	authed := handlers.Middlewares{gate.RequireAuth}
	admin := handlers.Middlewares{gate.RequireAuth, gate.RequireAdmin}
	rentals := handlers.NewRentalHandler(svcs.Bookings, svcs.Reservations)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		logging.HTTPMiddleware(logger),
		middleware.Recoverer,
		middleware.Timeout(timeout),
	)
	router.Get("/healthz", handlers.Healthz)

	router.Route("/auth", func(r chi.Router) {
		if opts.AuthLimiter != nil {
			r.Use(ratelimit.Middleware(opts.AuthLimiter, ratelimit.ClientIP))
		}
		var adminGate func(http.Handler) http.Handler
		if opts.AdminCreateProtected {
			adminGate = func(next http.Handler) http.Handler {
				return gate.RequireAuth(gate.RequireAdmin(next))
			}
		}
		handlers.AuthRouter(r, svcs.Accounts, gate, adminGate)
	})
	router.Route("/customers", func(r chi.Router) {
		handlers.CustomerRouter(r, svcs.Customers, svcs.Accounts, rentals, gate)
	})
	router.Route("/locations", func(r chi.Router) {
		handlers.NewResourceHandler[types.Location](svcs.Locations, "location").
			Mount(r, handlers.Access{Write: admin}, nil)
	})
	router.Route("/cars", func(r chi.Router) {
		handlers.CarRouter(r, svcs.Cars, admin)
	})
	router.Route("/reservations", func(r chi.Router) {
		handlers.ReservationRouter(r, rentals, authed, admin)
	})
	router.Route("/bookings", func(r chi.Router) {
		handlers.BookingRouter(r, rentals, authed, admin)
	})
	router.Route("/payments", func(r chi.Router) {
		handlers.NewResourceHandler[types.Payment](svcs.Payments, "payment").
			Mount(r, handlers.Access{List: admin, Get: authed, Write: admin}, nil)
	})
	router.Route("/maintenance", func(r chi.Router) {
		handlers.NewResourceHandler[types.Maintenance](svcs.Maintenance, "maintenance").
			Mount(r, handlers.Access{List: admin, Get: admin, Write: admin}, nil)
	})
	router.Route("/insurance", func(r chi.Router) {
		handlers.NewResourceHandler[types.Insurance](svcs.Insurance, "insurance").
			Mount(r, handlers.Access{List: admin, Get: admin, Write: admin}, nil)
	})

	return router
}
