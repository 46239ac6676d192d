package middleware_grpc

import (
	"context"
	"log/slog"
	"time"

	"parts-catalog/internal/logger"
	"parts-catalog/internal/metrics"
	"parts-catalog/internal/telemetry"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

const requestIDKey = "x-request-id"

var tracer = otel.Tracer("GrpcMiddleware")

// UnaryTracingInterceptor continues the caller's trace from metadata, tags the
// call with a request id, and logs and counts every call.
func UnaryTracingInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		md = md.Copy()
		ctx = otel.GetTextMapPropagator().Extract(ctx, telemetry.MetadataTextMapCarrier(md))

		ctx, span := tracer.Start(ctx, info.FullMethod)
		defer span.End()

		requestID := telemetry.MetadataTextMapCarrier(md).Get(requestIDKey)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx = logger.WithRequestID(ctx, requestID)
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDKey, requestID))
		span.SetAttributes(attribute.String("rpc.request_id", requestID))

		attrs := logger.LogGRPCRequest(ctx, info.FullMethod, md, req, "incoming::request")
		if p, ok := peer.FromContext(ctx); ok {
			attrs = append(attrs, slog.String("grpc.remote", p.Addr.String()))
		}
		logger.Info(ctx, "GRPC", attrs...)

		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)

		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, code.String())
		} else {
			span.SetStatus(otelcodes.Ok, "")
		}
		metrics.ObserveGRPC(info.FullMethod, code)
		logger.Info(ctx, "GRPC", logger.LogGRPCResponse(ctx, info.FullMethod, code, resp, time.Since(start), "incoming::response")...)

		return resp, err
	}
}
