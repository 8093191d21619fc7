// Package app assembles the HTTP application: configuration, logger,
// store, services and router, plus the server lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/supersonicwisd1/result-processing-system/internal/auth"
	"github.com/supersonicwisd1/result-processing-system/internal/config"
	"github.com/supersonicwisd1/result-processing-system/internal/extract"
	"github.com/supersonicwisd1/result-processing-system/internal/infrastructure"
	"github.com/supersonicwisd1/result-processing-system/internal/services"
	"github.com/supersonicwisd1/result-processing-system/internal/store"
	transporthttp "github.com/supersonicwisd1/result-processing-system/internal/transport/http"
)

// Application owns the long-lived components of the server process.
type Application struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store
	server *http.Server
}

// New builds the application from the configuration file at configPath
// (empty means defaults plus environment).
func New(configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := infrastructure.InitLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	st, err := store.Open(cfg.Storage.DatabasePath, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	authSvc := auth.NewService(st, cfg.Auth, logger)
	resultSvc := services.NewResultService(st, extract.Options{
		LegacyYearPrefix: cfg.Extract.LegacyYearPrefix,
	}, logger)

	router := transporthttp.NewRouter(cfg, authSvc, resultSvc, logger)

	return &Application{
		cfg:    cfg,
		logger: logger,
		store:  st,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}, nil
}

// Run starts the HTTP server and blocks until SIGINT/SIGTERM, then shuts
// down gracefully within the configured timeout.
func (a *Application) Run() error {
	defer a.store.Close()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case sig := <-stop:
		a.logger.Info("shutting down", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
