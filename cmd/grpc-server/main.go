package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"parts-catalog/internal/config"
	grpcHandler "parts-catalog/internal/handler/grpc"
	"parts-catalog/internal/handler/grpc/catalogpb"
	"parts-catalog/internal/logger"
	"parts-catalog/internal/metrics"
	middleware_grpc "parts-catalog/internal/middleware/grpc"
	"parts-catalog/internal/repository"
	"parts-catalog/internal/service"
	"parts-catalog/internal/tracer"
	"parts-catalog/internal/version"
)

func main() {
	// Create cancellable context for graceful shutdown
	bgCtx := context.Background()
	globalCtx, cancel := signal.NotifyContext(bgCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Instance()
	cfg := config.Instance()

	isProduction := cfg.IsProduction()

	logger.Info(globalCtx, cfg.AppName,
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
		slog.String("buildTime", version.BuildTime),
		slog.Bool("gracefulShutdown", isProduction),
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
	catalogHandler := grpcHandler.NewCatalogGRPCHandler(productService, searchService)

	// Start gRPC server
	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(middleware_grpc.UnaryTracingInterceptor()),
	)
	catalogpb.RegisterCatalogServiceServer(grpcServer, catalogHandler)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", ":"+cfg.AppPort)
	if err != nil {
		logger.Error(globalCtx, "failed to listen", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info(globalCtx, "gRPC server running", slog.String("port", cfg.AppPort))

	// Run gRPC server in background
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error(globalCtx, "failed to serve", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	<-globalCtx.Done()

	if !isProduction {
		logger.Info(globalCtx, "Received shutdown signal, exiting immediately")
		grpcServer.Stop()
	} else {
		logger.Info(globalCtx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		logger.Info(globalCtx, "gRPC server exited cleanly")
	}

	ctx, cancelClose := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutMs)*time.Millisecond)
	defer cancelClose()
	if err := closeStore(ctx); err != nil {
		logger.Error(ctx, "Failed to close catalog store", slog.String("error", err.Error()))
	}
}
