package main

import (
	"bytes"
	"context"
	_ "embed"
	"flag"
	"io"
	"log/slog"
	"os"
	"time"

	"parts-catalog/internal/config"
	"parts-catalog/internal/logger"
	"parts-catalog/internal/repository"
	"parts-catalog/internal/seed"
	"parts-catalog/internal/service"
	"parts-catalog/internal/version"
)

//go:embed fixtures/catalog.yaml
var defaultFixture []byte

func main() {
	file := flag.String("file", "", "YAML fixture to load (defaults to the bundled catalog)")
	timeout := flag.Duration("timeout", 30*time.Second, "overall seed timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	logger.Instance()
	cfg := config.Instance()

	logger.Info(ctx, cfg.AppName,
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
		slog.String("buildTime", version.BuildTime),
	)

	var src io.Reader = bytes.NewReader(defaultFixture)
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			logger.Error(ctx, "Failed to open fixture", slog.String("file", *file), slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer f.Close()
		src = f
	}

	products, err := seed.Decode(src)
	if err != nil {
		logger.Error(ctx, "Invalid fixture", slog.String("error", err.Error()))
		os.Exit(1)
	}

	store, closeStore, err := repository.Open(ctx, cfg)
	if err != nil {
		logger.Error(ctx, "Failed to open catalog store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = closeStore(context.Background()) }()

	productService := service.NewProductService(store, service.NewCompatibilityResolver(store, nil))
	report, err := seed.Apply(ctx, productService, products)
	if err != nil {
		logger.Error(ctx, "Seed failed",
			slog.String("run_id", report.RunID),
			slog.Int("created", report.Created),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	logger.Info(ctx, "Catalog seeded",
		slog.String("run_id", report.RunID),
		slog.String("driver", cfg.StoreDriver),
		slog.Int("created", report.Created),
		slog.Int("skipped", report.Skipped),
	)
}
