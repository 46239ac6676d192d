package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parts-catalog/internal/config"
	handler "parts-catalog/internal/handler/http"
	"parts-catalog/internal/logger"
	"parts-catalog/internal/metrics"
	"parts-catalog/internal/repository"
	"parts-catalog/internal/service"
	"parts-catalog/internal/tracer"
	"parts-catalog/internal/version"
)

func main() {
	globalCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Instance()
	cfg := config.Instance()

	logger.Info(globalCtx, cfg.AppName,
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
		slog.String("buildTime", version.BuildTime),
		slog.Bool("gracefulShutdown", cfg.IsProduction()),
	)

	// Initialize telemetry (OpenTelemetry + Pyroscope)
	shutdown, err := tracer.Instance(globalCtx)
	if err != nil {
		logger.Warn(globalCtx, "Telemetry disabled", slog.String("error", err.Error()))
	}
	defer shutdown()

	store, closeStore, err := repository.Open(globalCtx, cfg)
	if err != nil {
		logger.Error(globalCtx, "Failed to open catalog store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Wiring
	resolver := service.NewCompatibilityResolver(store, metrics.Resolutions{})
	productService := service.NewProductService(store, resolver)
	searchService := service.NewSearchService(store, resolver, service.SearchOptions{
		DefaultPageSize: cfg.SearchDefaultPageSize,
		MaxPageSize:     cfg.SearchMaxPageSize,
		FacetMode:       cfg.SearchFacetMode,
	})
	healthService := service.NewHealthService(store, cfg.StoreDriver)

	router := handler.NewRouter(handler.RouterConfig{
		AppName:  cfg.AppName,
		Products: handler.NewProductHandler(productService, searchService),
		Health:   handler.NewHealthHandler(healthService),
	})

	server := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info(globalCtx, "HTTP server running", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(globalCtx, "Server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	<-globalCtx.Done()

	// Signal context is done; shutdown work gets its own deadline.
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutMs)*time.Millisecond)
	defer cancel()

	if !cfg.IsProduction() {
		logger.Info(ctx, "Received shutdown signal, exiting immediately")
		_ = server.Close()
	} else {
		logger.Info(ctx, "Shutting down HTTP server")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "Graceful shutdown failed", slog.String("error", err.Error()))
		}
	}

	if err := closeStore(ctx); err != nil {
		logger.Error(ctx, "Failed to close catalog store", slog.String("error", err.Error()))
	}
	logger.Info(ctx, "HTTP server exited")
}
