package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/AMICLONE1/powernetpro/internal/db"
	"github.com/AMICLONE1/powernetpro/internal/handlers"
	"github.com/AMICLONE1/powernetpro/internal/logger"
	"github.com/AMICLONE1/powernetpro/internal/repository/postgres"
	"github.com/AMICLONE1/powernetpro/internal/service/auth"
	"github.com/AMICLONE1/powernetpro/internal/service/bill"
	"github.com/AMICLONE1/powernetpro/internal/service/credit"
	"github.com/AMICLONE1/powernetpro/internal/service/discom"
	"github.com/AMICLONE1/powernetpro/internal/service/generation"
	"github.com/AMICLONE1/powernetpro/internal/service/payment"
	"github.com/AMICLONE1/powernetpro/internal/service/settlement"
	"github.com/AMICLONE1/powernetpro/internal/service/subscription"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	generation *generation.Processor
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger := logger.New(c.Environment, c.LogLevel)

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize gateway clients
	discomClient := discom.NewClient(c.DiscomAddr, logger)
	gateway := payment.NewGateway(c.PaymentAddr, c.PaymentSecret, logger)

	// Initialize services
	authService, err := auth.NewService(auth.Config{SecretKey: c.SecretKey}, storage.User(), storage.Refresh())
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	settler := settlement.NewService(storage)
	billService := bill.NewService(storage, settler, discomClient, gateway)
	creditService := credit.NewService(storage.Credit())
	subService := subscription.NewService(storage.Subscription(), discomClient)

	mux := handlers.NewRouter(
		authService,
		billService,
		creditService,
		subService,
		logger,
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		generation: generation.New(discomClient, storage, logger, generation.Opts{}),
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	// Start the generation loop crediting active subscriptions
	generationStopped := s.generation.Process(srvCtx)

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			// Consider to use logger dependency
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		// Consider to use logger dependency
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server")
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed
	<-generationStopped

	return err
}
