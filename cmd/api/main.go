package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ArowuTest/luckyticket-backend/api/routes"
	"github.com/ArowuTest/luckyticket-backend/internal/config"
	"github.com/ArowuTest/luckyticket-backend/internal/handlers"
	"github.com/ArowuTest/luckyticket-backend/internal/logging"
	"github.com/ArowuTest/luckyticket-backend/internal/metrics"
	"github.com/ArowuTest/luckyticket-backend/internal/services"
	"github.com/ArowuTest/luckyticket-backend/internal/storage"
	"github.com/ArowuTest/luckyticket-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	gin.SetMode(cfg.Server.Mode)

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(registry)
	if err != nil {
		logger.Error("failed to register metrics", "error", err)
		_ = backend.Close(ctx)
		os.Exit(1)
	}

	tokens := jwt.NewTokenService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiresIn)*time.Second)

	authService := services.NewAuthService(backend.Users, tokens, logger)
	ticketService := services.NewTicketService(backend.Tickets, backend.Users, cfg.Tickets,
		services.WithMetrics(m),
		services.WithLogger(logger),
	)

	router := routes.SetupRouter(cfg, routes.HandlerDependencies{
		AuthHandler:   handlers.NewAuthHandler(authService),
		TicketHandler: handlers.NewTicketHandler(ticketService),
		Tokens:        tokens,
		Logger:        logger,
		Gatherer:      registry,
		Ping:          backend.Ping,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("server starting", "port", cfg.Server.Port, "storage", cfg.Storage.Driver)
	if err := serve(ctx, srv, backend.Close, logger); err != nil {
		logger.Error("server stopped", "error", err)
		stop()
		os.Exit(1)
	}
	logger.Info("server exiting")
}

// serve runs srv until ctx is done or the listener fails, then shuts the server down and
// closes storage. Both exits take the same path.
func serve(ctx context.Context, srv *http.Server, closeStorage func(context.Context) error, logger *slog.Logger) error {
	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down server")
	case err := <-serverErr:
		runErr = fmt.Errorf("listen: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if err := closeStorage(shutdownCtx); err != nil {
		logger.Error("error closing storage", "error", err)
	}
	return runErr
}
