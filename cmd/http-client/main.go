package main

import (
	"context"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"parts-catalog/internal/client"
	"parts-catalog/internal/config"
	"parts-catalog/internal/logger"
	"parts-catalog/internal/model"
	"parts-catalog/internal/tracer"
	"parts-catalog/internal/version"

	"go.opentelemetry.io/otel"
)

// queries cycles through free text, exact codes and category-only searches.
var queries = []model.SearchRequest{
	{Query: ""},
	{Query: "ya25"},
	{Query: "acme", Categories: model.StringList{"Mount"}},
	{Categories: model.StringList{model.Uncategorized}},
}

func main() {
	globalCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Instance()
	cfg := config.Instance()

	logger.Info(globalCtx, cfg.AppName,
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
		slog.String("buildTime", version.BuildTime),
	)

	if cfg.ExternalHTTP == "" {
		logger.Error(globalCtx, "EXTERNAL_HTTP environment variable is not set")
		os.Exit(1)
	}

	shutdown, _ := tracer.Instance(globalCtx)
	defer shutdown()
	tr := otel.Tracer("backend-http-client")

	catalog := client.NewCatalogClient(cfg.ExternalHTTP, 2*time.Second)

	logger.Info(globalCtx, "HTTP client started",
		slog.String("target", cfg.ExternalHTTP),
		slog.Int("max_client_delay", int(cfg.ClientMaxSleepMs)),
	)

	for i := 0; ; i++ {
		select {
		case <-globalCtx.Done():
			logger.Info(globalCtx, "Shutting down HTTP client")
			return
		default:
		}

		ctx, cancel := context.WithTimeout(globalCtx, 3*time.Second)
		ctx, span := tr.Start(ctx, "backend-http-request")
		runOnce(ctx, catalog, queries[i%len(queries)])
		span.End()
		cancel()

		time.Sleep(time.Duration(rand.Intn(int(max(cfg.ClientMaxSleepMs, 1)))+1) * time.Millisecond)
	}
}

// runOnce searches, then follows the first hit through the code lookup.
func runOnce(ctx context.Context, catalog *client.CatalogClient, req model.SearchRequest) {
	res, err := catalog.Search(ctx, req)
	if err != nil {
		logger.Error(ctx, "Error calling Search", slog.String("error", err.Error()))
		return
	}
	logger.Info(ctx, "Received search page",
		slog.String("query", req.Query),
		slog.String("categories", strings.Join(req.Categories, ",")),
		slog.Int64("total", res.Total),
		slog.Int("facets", len(res.Filters.Types)),
		slog.Int("compatibles", len(res.CompatibleProducts)),
	)

	if len(res.Products) == 0 {
		return
	}
	lookup, err := catalog.LookupCode(ctx, res.Products[0].Code)
	if err != nil {
		logger.Error(ctx, "Error calling LookupCode", slog.String("error", err.Error()))
		return
	}
	logger.Info(ctx, "Received code lookup",
		slog.String("code", lookup.Product.Code),
		slog.Int("compatibles", len(lookup.Compatibles)),
		slog.Int("compatibleWith", len(lookup.CompatibleWith)),
	)
}
