package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nvoropaev/authkeeper/internal/db"
	"github.com/nvoropaev/authkeeper/internal/handlers"
	"github.com/nvoropaev/authkeeper/internal/logger"
	"github.com/nvoropaev/authkeeper/internal/repository/postgres"
	"github.com/nvoropaev/authkeeper/internal/service/auth"
	"github.com/nvoropaev/authkeeper/internal/service/auth/tokenmanager"
	"github.com/nvoropaev/authkeeper/internal/service/cleanup"
	"github.com/nvoropaev/authkeeper/internal/service/todo"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger  logger.Logger
	janitor *cleanup.Janitor
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

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	tokenManager, err := tokenmanager.New(tokenmanager.Config{
		SecretKey:  c.SecretKey,
		AccessTTL:  c.AccessTTL,
		RefreshTTL: c.RefreshTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	authService, err := auth.NewService(auth.Config{
		Hasher: auth.BcryptHasher{Cost: c.BcryptCost},
		Policy: auth.PasswordPolicy{
			MinLength:  c.PasswordMinLength,
			MinClasses: c.PasswordMinClasses,
		},
	}, tokenManager, storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	gate, err := auth.NewGate(tokenManager, storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating authorization gate. Err: %w", err)
	}

	sessionManager, err := auth.NewSessionManager(tokenManager, storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating session manager. Err: %w", err)
	}

	todoService, err := todo.NewService(storage.Todo())
	if err != nil {
		return nil, fmt.Errorf("error while creating todo service. Err: %w", err)
	}

	janitor := cleanup.New(c.PurgeInterval, storage.Revocation(), logger)

	mux := handlers.NewRouter(
		authService,
		gate,
		sessionManager,
		todoService,
		logger,
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		logger:     logger,
		janitor:    janitor,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
// The revocation janitor runs alongside and stops with the server
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	janitorStopped := s.janitor.Run(srvCtx)

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "addr", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed
	<-janitorStopped

	return err
}
