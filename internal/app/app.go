package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/painradar/painradar-backend/internal/adapter/postgres"
	searchrepo "github.com/painradar/painradar-backend/internal/adapter/postgres/search"
	"github.com/painradar/painradar-backend/internal/adapter/redisstore"
	"github.com/painradar/painradar-backend/internal/adapter/worker"
	"github.com/painradar/painradar-backend/internal/cache"
	"github.com/painradar/painradar-backend/internal/config"
	"github.com/painradar/painradar-backend/internal/ratelimit"
	"github.com/painradar/painradar-backend/internal/service/search"
	"github.com/painradar/painradar-backend/internal/transport/middleware"
	"github.com/painradar/painradar-backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, wires the
// adapters and services, and serves HTTP until ctx is canceled, then shuts
// the server down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	redisClient, err := redisstore.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close() //nolint:errcheck
	if !redisClient.Configured() {
		// The limiter fails closed without a counter store, which would
		// deny every submission. Refuse to start instead.
		return errors.New("redis url is required for the api server")
	}

	repo := searchrepo.New(pool)
	resultCache := cache.New(redisClient, cfg.Search.CacheTTL, logger)
	limiter := ratelimit.New(redisClient, logger)
	workerClient := worker.NewClient(cfg.Search, logger)

	searchService := search.NewService(
		logger, repo, resultCache, limiter, workerClient,
		cfg.Search, cfg.RateLimit,
	)

	searchHandler := rest.NewSearchHandler(searchService, logger)
	healthHandler := rest.NewHealthHandler(pool, redisClient, BuildVersion())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/search", searchHandler.Submit)
	mux.HandleFunc("GET /api/search/{id}", searchHandler.Status)
	mux.HandleFunc("GET /live", healthHandler.Live)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /health", healthHandler.Health)

	handler := middleware.Chain(
		middleware.RequestID,
		middleware.ClientIP,
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
	)(mux)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down",
		slog.Duration("timeout", cfg.Server.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
