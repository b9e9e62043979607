// Package server builds the horary service and its HTTP handler from
// configuration. Both binaries share it.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/horary/internal/adapters/http/api"
	"github.com/okian/horary/internal/adapters/http/swagger"
	"github.com/okian/horary/internal/adapters/repository"
	service "github.com/okian/horary/internal/app"
	"github.com/okian/horary/internal/config"
	"github.com/okian/horary/internal/domain/houses"
	"github.com/okian/horary/internal/domain/location"
	"github.com/okian/horary/internal/domain/model"
	"github.com/okian/horary/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// NewService builds a service configured from cfg. The store is opened
// here; the service closes it on Stop.
func NewService(ctx context.Context, cfg *config.Config, log logger.Logger) (*service.Service, error) {
	sys, err := houses.ParseSystem(cfg.HouseSystem)
	if err != nil {
		return nil, err
	}

	opts := []service.Option{
		service.WithLogger(log),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithCacheSize(cfg.CacheSize),
		service.WithRecastConcurrency(cfg.RecastConcurrency),
		service.WithHouseSystem(sys),
		service.WithPoints(cfg.IncludePoints),
		service.WithQuincunx(cfg.EnableQuincunx),
		service.WithEphemerisRange(cfg.EphemerisMinYear, cfg.EphemerisMaxYear),
		service.WithLocationResolver(location.New(location.WithFallback(model.Location{
			Latitude:  cfg.FallbackLatitude,
			Longitude: cfg.FallbackLongitude,
			Name:      cfg.FallbackLocationName,
			Source:    model.SourceFallback,
		}))),
	}

	if cfg.StoreDriver == config.StoreSQLite {
		store, err := repository.OpenSQLite(ctx, cfg.StorePath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		log.Info(ctx, "using sqlite store", logger.String("path", cfg.StorePath))
		opts = append(opts, service.WithStore(store))
	}

	return service.New(opts...), nil
}

// NewHandler returns the chi router serving the API and its docs.
func NewHandler(ctx context.Context, svc *service.Service, maxListLimit int) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	swagger.Register(ctx, r)
	api.NewServer(svc, svc, maxListLimit).Register(ctx, r)
	return r
}

// Run starts the service and serves HTTP until ctx is cancelled, then shuts
// both down gracefully.
func Run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	svc, err := NewService(ctx, cfg, log.Named("service"))
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewHandler(ctx, svc, cfg.MaxListLimit),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serveErr:
		log.Error(ctx, "HTTP server failed", logger.Error(runErr))
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	if err := svc.Stop(shutdownCtx); err != nil {
		log.Error(ctx, "service shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return runErr
}
