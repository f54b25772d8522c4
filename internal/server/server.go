package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carhire/apiserver/config"
	"github.com/carhire/apiserver/internal/auth"
	"github.com/carhire/apiserver/internal/db"
	"github.com/carhire/apiserver/internal/mq"
	"github.com/carhire/apiserver/internal/notify"
	"github.com/carhire/apiserver/internal/ratelimit"
	"github.com/carhire/apiserver/internal/services"
	"github.com/carhire/apiserver/internal/storage"
	"github.com/carhire/apiserver/internal/store"
)

// Server wraps the HTTP server and the connections it owns.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	closers    []func() error
}

// New connects to the database and the configured backends and builds the
// HTTP server. A missing JWT secret is fatal.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	if err != nil {
		return nil, fmt.Errorf("JWT_SECRET is required: %w", err)
	}

	s := &Server{logger: logger}
	ok := false
	defer func() {
		if !ok {
			s.closeAll()
		}
	}()

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, dbConn.Close)

	notifier, err := s.openNotifier(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	attempts, err := s.openAttemptPolicy(ctx, cfg)
	if err != nil {
		return nil, err
	}
	images, err := openImages(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	svcs, err := newServices(dbConn, tokens, notifier, attempts, images, cfg.Auth)
	if err != nil {
		return nil, err
	}

	var authLimiter *ratelimit.Memory
	if cfg.Auth.IPRatePerMinute > 0 {
		authLimiter = ratelimit.NewMemory(cfg.Auth.IPRatePerMinute, time.Minute, cfg.Auth.IPBurst)
	}

	router := NewRouter(svcs, RouterOptions{
		Logger:               logger,
		AuthLimiter:          authLimiter,
		AdminCreateProtected: cfg.Auth.AdminCreateProtected,
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ok = true
	return s, nil
}

func newServices(
	dbConn *sql.DB,
	tokens *auth.TokenIssuer,
	notifier notify.Dispatcher,
	attempts ratelimit.Limiter,
	images services.ImageStore,
	cfg config.AuthConfig,
) (Services, error) {
	customers := store.NewCustomerRepository(dbConn)
	bookings := store.NewBookingRepository(dbConn)
	reservations := store.NewReservationRepository(dbConn)

	accounts, err := services.NewAccountService(services.AccountDeps{
		Repo:          customers,
		Hasher:        auth.NewBcryptHasher(cfg.BcryptCost),
		Codes:         auth.NewCodeGenerator(nil),
		Tokens:        tokens,
		Notifier:      notifier,
		Attempts:      attempts,
		TokenTTL:      cfg.TokenTTL,
		LoginTokenTTL: cfg.LoginTokenTTL,
		PhoneRegion:   cfg.PhoneRegion,
	})
	if err != nil {
		return Services{}, err
	}

	return Services{
		Accounts:     accounts,
		Tokens:       tokens,
		Customers:    services.NewCustomerService(customers),
		Locations:    services.NewLocationService(store.NewLocationRepository(dbConn)),
		Cars:         services.NewCarService(store.NewCarRepository(dbConn), images),
		Reservations: services.NewReservationService(reservations),
		Bookings:     services.NewBookingService(bookings),
		Payments:     services.NewPaymentService(store.NewPaymentRepository(dbConn)),
		Maintenance:  services.NewMaintenanceService(store.NewMaintenanceRepository(dbConn)),
		Insurance:    services.NewInsuranceService(store.NewInsuranceRepository(dbConn)),
	}, nil
}

// openNotifier publishes emails to the broker for the relay, or logs them
// when no broker is configured.
func (s *Server) openNotifier(ctx context.Context, cfg config.Config, logger *slog.Logger) (notify.Dispatcher, error) {
	queue, err := mq.Open(ctx, cfg.MQ)
	if errors.Is(err, mq.ErrDisabled) {
		logger.Info("message queue disabled, emails are logged only")
		return notify.NewLogDispatcher(logger), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open message queue: %w", err)
	}
	s.closers = append(s.closers, queue.Close)
	return notify.NewQueueDispatcher(queue, cfg.MQ.NotificationChannel, logger), nil
}

func (s *Server) openAttemptPolicy(ctx context.Context, cfg config.Config) (ratelimit.Limiter, error) {
	switch cfg.Verify.Backend {
	case "none":
		return ratelimit.Unlimited{}, nil
	case "", "memory":
		return ratelimit.NewMemory(cfg.Verify.Max, cfg.Verify.Window, cfg.Verify.Max), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		s.closers = append(s.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return ratelimit.NewRedis(client, cfg.Verify.Max, cfg.Verify.Window, "carhire:attempts:"), nil
	default:
		return nil, fmt.Errorf("unknown verify limit backend %q", cfg.Verify.Backend)
	}
}

func openImages(ctx context.Context, cfg config.Config, logger *slog.Logger) (services.ImageStore, error) {
	st, err := storage.Open(ctx, cfg.Storage)
	if errors.Is(err, storage.ErrDisabled) {
		logger.Info("object storage disabled, car images are unavailable")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open object storage: %w", err)
	}
	return st, nil
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then closes the owned connections.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.closeAll()
	return err
}

func (s *Server) closeAll() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Warn("close resource", "err", err)
		}
	}
	s.closers = nil
}
