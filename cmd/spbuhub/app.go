package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nkiryanov/spbuhub/internal/db"
	"github.com/nkiryanov/spbuhub/internal/handlers"
	"github.com/nkiryanov/spbuhub/internal/handlers/middleware"
	"github.com/nkiryanov/spbuhub/internal/logger"
	"github.com/nkiryanov/spbuhub/internal/repository/postgres"
	"github.com/nkiryanov/spbuhub/internal/service/auth"
	"github.com/nkiryanov/spbuhub/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/spbuhub/internal/service/catalog"
	"github.com/nkiryanov/spbuhub/internal/service/expirer"
	"github.com/nkiryanov/spbuhub/internal/service/payment"
	"github.com/nkiryanov/spbuhub/internal/service/review"
	"github.com/nkiryanov/spbuhub/internal/service/transaction"
	"github.com/nkiryanov/spbuhub/internal/service/user"
	"github.com/nkiryanov/spbuhub/internal/service/wishlist"
)

const (
	shutdownTimeout      = 5 * time.Second
	rateLimiterIdleAfter = 10 * time.Minute
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	pool        *pgxpool.Pool
	rateLimiter *middleware.RateLimiter
	expirer     *expirer.Expirer
	logger      logger.Logger
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	storage := postgres.NewStorage(pool)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Initialize services
	tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: c.SecretKey})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}
	authService, err := auth.NewService(auth.Config{}, tokenManager, storage)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	var gateway payment.Gateway = payment.Simulated{}
	if c.PaymentGatewayAddr != "" {
		gateway = payment.NewClient(c.PaymentGatewayAddr, logger)
	} else {
		logger.Warn("Payment gateway address not set, payments are simulated")
	}
	transactionService := transaction.NewService(storage, gateway, transaction.NewMetrics(registry), logger)

	var pendingExpirer *expirer.Expirer
	if c.PendingTTL > 0 {
		pendingExpirer = expirer.New(expirer.Config{TTL: c.PendingTTL}, transactionService, logger)
	}

	rateLimiter := middleware.NewRateLimiter(c.AuthRateLimit, int(math.Ceil(c.AuthRateLimit)), logger)

	router := handlers.NewRouter(
		handlers.Config{
			AllowedOrigins:  c.AllowedOrigins,
			AuthRateLimiter: rateLimiter,
			Metrics:         middleware.NewMetrics(registry),
			Gatherer:        registry,
		},
		handlers.Services{
			Auth:        authService,
			User:        user.NewService(storage),
			Catalog:     catalog.NewService(storage),
			Review:      review.NewService(storage),
			Wishlist:    wishlist.NewService(storage),
			Transaction: transactionService,
			Health:      pool,
		},
		logger,
	)

	return &ServerApp{
		ListenAddr:  c.ListenAddr,
		Handler:     router,
		pool:        pool,
		rateLimiter: rateLimiter,
		expirer:     pendingExpirer,
		logger:      logger,
	}, nil
}

// Run starts http server and background workers, closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	defer s.pool.Close()

	httpServer := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	s.rateLimiter.StartCleanup(srvCtx, rateLimiterIdleAfter)

	expirerStopped := make(chan struct{})
	if s.expirer != nil {
		expirerStopped = s.expirer.Run(srvCtx)
	} else {
		close(expirerStopped)
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed
	<-expirerStopped

	return err
}
