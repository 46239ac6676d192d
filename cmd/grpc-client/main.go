package main

import (
	"context"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"parts-catalog/internal/config"
	"parts-catalog/internal/handler/grpc/catalogpb"
	"parts-catalog/internal/logger"
	"parts-catalog/internal/model"
	"parts-catalog/internal/telemetry"
	"parts-catalog/internal/tracer"
	"parts-catalog/internal/version"

	"go.opentelemetry.io/otel"
)

var queries = []string{"", "ya25", "acme", "mount"}

func main() {
	// Create cancellable context for graceful shutdown
	bgCtx := context.Background()
	globalCtx, stop := signal.NotifyContext(bgCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Instance()
	cfg := config.Instance()

	isProduction := cfg.IsProduction()

	logger.Info(
		globalCtx,
		cfg.AppName,
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
		slog.String("buildTime", version.BuildTime),
		slog.Bool("gracefulShutdown", isProduction),
	)

	shutdown, _ := tracer.Instance(globalCtx)
	defer shutdown()
	tr := otel.Tracer("backend-grpc-client")

	conn, err := grpc.NewClient(
		cfg.ExternalGRPC,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultServiceConfig(`{"loadBalancingPolicy":"round_robin"}`),
		grpc.WithUnaryInterceptor(telemetry.UnaryClientInterceptor()),
	)
	if err != nil {
		logger.Error(
			globalCtx,
			"Failed to connect to gRPC server",
			slog.String("error", err.Error()),
			slog.String("target", cfg.ExternalGRPC),
		)
		os.Exit(1)
	}
	defer func() {
		logger.Info(globalCtx, "Closing gRPC connection")
		_ = conn.Close()
	}()

	client := catalogpb.NewCatalogServiceClient(conn)

	logger.Info(
		globalCtx,
		"gRPC client started",
		slog.String("target", cfg.ExternalGRPC),
		slog.Int("max_client_delay", int(cfg.ClientMaxSleepMs)),
	)

	for i := 0; ; i++ {
		select {
		case <-globalCtx.Done():
			logger.Info(globalCtx, "Shutting down gRPC client")
			return
		default:
		}

		ctx, cancel := context.WithTimeout(globalCtx, 3*time.Second)
		ctx, span := tr.Start(ctx, "backend-grpc-request")
		search(ctx, client, queries[i%len(queries)])
		span.End()
		cancel()

		delay := time.Duration(rand.Intn(int(max(cfg.ClientMaxSleepMs, 1)))+1) * time.Millisecond
		time.Sleep(delay)
	}
}

func search(ctx context.Context, client catalogpb.CatalogServiceClient, query string) {
	req, err := catalogpb.ToStruct(model.SearchRequest{Query: query})
	if err != nil {
		logger.Error(ctx, "Failed to encode search request", slog.String("error", err.Error()))
		return
	}

	var header metadata.MD
	resp, err := client.Search(ctx, req, grpc.Header(&header))
	resolver := first(header.Get("x-resolver"))
	if err != nil {
		logger.Error(ctx, "Error calling Search",
			slog.String("error", err.Error()),
			slog.String("request_id", first(header.Get("x-request-id"))),
		)
		return
	}

	var result model.SearchResult
	if err := catalogpb.Decode(resp, &result); err != nil {
		logger.Error(ctx, "Failed to decode search result", slog.String("error", err.Error()))
		return
	}
	logger.Info(ctx, "Received search page",
		slog.String("query", query),
		slog.String("resolver", resolver),
		slog.Int64("total", result.Total),
		slog.Int("products", len(result.Products)),
	)

	if result.MatchedProduct == nil {
		return
	}
	list, err := client.ListCompatibles(ctx, wrapperspb.String(result.MatchedProduct.Code))
	if err != nil {
		logger.Error(ctx, "Error calling ListCompatibles", slog.String("error", err.Error()))
		return
	}
	logger.Info(ctx, "Received compatibles",
		slog.String("code", result.MatchedProduct.Code),
		slog.Int("count", len(list.GetValues())),
	)
}

func first(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}
