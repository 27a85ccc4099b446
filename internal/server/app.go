// Package server initializes and runs the API server: it wires the database,
// the token issuer, the services and the HTTP endpoint, and handles graceful
// shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Xcceleran-do/mindplex-api/internal/logging"
	"github.com/Xcceleran-do/mindplex-api/internal/server/auth"
	"github.com/Xcceleran-do/mindplex-api/internal/server/config"
	"github.com/Xcceleran-do/mindplex-api/internal/server/httpapi"
	"github.com/Xcceleran-do/mindplex-api/internal/server/repositories/repomanager"
	"github.com/Xcceleran-do/mindplex-api/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	store  *repomanager.PostgresRepositoryManager
	router http.Handler
}

func NewApp(cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	store, err := repomanager.NewPostgresRepositoryManager(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	issuer, err := auth.NewTokenIssuer([]byte(cfg.SecretKey), cfg.TokenIssuer, cfg.TokenAudience, cfg.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("token issuer init error: %w", err)
	}

	sessions := services.NewSessionService(store, issuer, logger, cfg)
	users := services.NewUserService(store, sessions, logger, cfg)

	router := httpapi.NewRouter(httpapi.NewHandler(users, sessions, logger), issuer)

	return &App{config: cfg, logger: logger, store: store, router: router}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	if err := app.store.RunMigrations(ctx); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	defer app.store.Close()

	srv := &http.Server{
		Addr:    app.config.EndpointAddrHTTP,
		Handler: app.router,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "starting http server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
