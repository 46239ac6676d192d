package tracer

import (
	"context"
	"log/slog"
	"sync"

	"parts-catalog/internal/config"
	"parts-catalog/internal/logger"

	otelpyroscope "github.com/grafana/otel-profiling-go"
	"github.com/grafana/pyroscope-go"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

var (
	once         sync.Once
	shutdownFunc = func() {}
	initErr      error
)

var pyroLogrus = func() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	return l
}()

// Instance installs the tracer provider and propagators once per process.
// The returned func flushes pending spans and stops the profiler.
func Instance(globalCtx context.Context) (func(), error) {
	once.Do(func() {
		shutdownFunc, initErr = Setup(globalCtx, config.Instance())
		if shutdownFunc == nil {
			shutdownFunc = func() {}
		}
	})

	return shutdownFunc, initErr
}

// Setup exports spans over OTLP gRPC, or to stdout with TRACE_STDOUT. Without
// either, spans are still created so trace ids reach the logs.
func Setup(ctx context.Context, cfg *config.Config) (func(), error) {
	log := logger.Instance()

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.AppName),
			attribute.String("env", cfg.Env),
		),
	)
	if err != nil {
		log.Error("Failed to create resource", slog.String("error", err.Error()))
		return func() {}, err
	}

	opts := []trace.TracerProviderOption{trace.WithResource(res)}
	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		log.Error("Failed to create span exporter", slog.String("error", err.Error()))
		return func() {}, err
	}
	if exporter != nil {
		opts = append(opts, trace.WithBatcher(exporter))
	}
	tp := trace.NewTracerProvider(opts...)

	var profiler *pyroscope.Profiler
	if cfg.RemoteProfilingHttpURI != "" {
		profiler, err = pyroscope.Start(pyroscope.Config{
			ApplicationName: cfg.AppName,
			ServerAddress:   cfg.RemoteProfilingHttpURI,
			Logger:          pyroLogrus,
			Tags:            map[string]string{"env": cfg.Env},
		})
		if err != nil {
			log.Error("Pyroscope failed to start", slog.String("error", err.Error()))
		} else {
			log.Info("Pyroscope started successfully")
		}
	}

	if profiler != nil {
		otel.SetTracerProvider(otelpyroscope.NewTracerProvider(tp))
	} else {
		otel.SetTracerProvider(tp)
	}
	log.Info("OpenTelemetry Tracer initialized", slog.Bool("exporting", exporter != nil))

	return func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", slog.String("error", err.Error()))
		}
		if profiler != nil {
			_ = profiler.Stop()
		}
	}, nil
}

func newExporter(ctx context.Context, cfg *config.Config) (trace.SpanExporter, error) {
	switch {
	case cfg.TraceStdout:
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	case cfg.RemoteTraceRpcURI != "":
		return otlptracegrpc.New(ctx,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithEndpoint(cfg.RemoteTraceRpcURI),
			otlptracegrpc.WithCompressor("gzip"),
		)
	default:
		return nil, nil
	}
}
