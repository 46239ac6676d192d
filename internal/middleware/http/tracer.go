package middleware_http

import (
	"bytes"
	"net/http"
	"time"

	"parts-catalog/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
)

// RequestIDHeader is read from the request when present and always echoed back.
const RequestIDHeader = "X-Request-ID"

var tracer = otel.Tracer("HttpMiddleware")

// ResponseWriter captures status, size and up to logger.MaxBodyLogged bytes of body.
type ResponseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int64
	buf        bytes.Buffer
}

func (rw *ResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *ResponseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += int64(n)

	if room := logger.MaxBodyLogged - rw.buf.Len(); room > 0 {
		if len(b) < room {
			room = len(b)
		}
		rw.buf.Write(b[:room])
	}
	return n, err
}

// TraceMiddleware continues or starts a trace per request, tags it with a
// request id and logs the request and the response.
func TraceMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path)
			defer func() {
				if rec := recover(); rec != nil {
					span.RecordError(errFromRecover(rec))
					span.SetStatus(codes.Error, "panic occurred")
					span.End()
					panic(rec)
				}
				span.End()
			}()

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			ctx = logger.WithRequestID(ctx, requestID)
			span.SetAttributes(attribute.String("http.request_id", requestID))

			rw := &ResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			rw.Header().Set("X-Trace-ID", span.SpanContext().TraceID().String())
			rw.Header().Set(RequestIDHeader, requestID)

			r = r.WithContext(ctx)
			logger.Info(ctx, "HTTP", logger.LogHTTPRequest(ctx, r, "incoming::request")...)

			start := time.Now()
			next.ServeHTTP(rw, r)
			duration := time.Since(start)

			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					span.SetName(r.Method + " " + pattern)
					span.SetAttributes(attribute.String("http.route", pattern))
				}
			}
			span.SetAttributes(attribute.Int("http.status_code", rw.statusCode), attribute.Int64("http.response_size", rw.size))

			switch {
			case rw.statusCode >= 500:
				span.SetStatus(codes.Error, "internal server error")
			case rw.statusCode >= 400:
				span.SetStatus(codes.Error, "client error")
			default:
				span.SetStatus(codes.Ok, "")
			}

			attrs := logger.LogHTTPResponse(ctx, r, rw.Header(), rw.statusCode, &rw.buf, duration.Milliseconds(), "incoming::response")
			logger.Info(ctx, "HTTP", attrs...)
		})
	}
}

func errFromRecover(rec interface{}) error {
	if err, ok := rec.(error); ok {
		return err
	}
	return &panicError{rec}
}

type panicError struct {
	value interface{}
}

func (p *panicError) Error() string {
	if s, ok := p.value.(string); ok {
		return "panic: " + s
	}
	return "panic: unknown"
}
