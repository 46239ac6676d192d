package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// MetadataAttrs converts gRPC metadata into grpc.header.* attributes.
func MetadataAttrs(md metadata.MD) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(md))
	for k, vs := range md {
		if v, ok := headerValue(k, vs); ok {
			attrs = append(attrs, slog.String("grpc.header."+strings.ToLower(k), v))
		}
	}
	return attrs
}

// messageAttrs flattens a protobuf message through its canonical JSON form.
func messageAttrs(key string, m any) []slog.Attr {
	if m == nil {
		return nil
	}
	pm, ok := m.(proto.Message)
	if !ok {
		return []slog.Attr{slog.String(key, truncate(fmt.Sprintf("%v", m)))}
	}
	b, err := protojson.Marshal(pm)
	if err != nil {
		return []slog.Attr{slog.String(key+".error", err.Error())}
	}
	return jsonAttrs(key, b)
}

// LogGRPCRequest builds attributes for a call; fullMethod is "/package.Service/Method".
func LogGRPCRequest(ctx context.Context, fullMethod string, md metadata.MD, req any, direction string) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("grpc.direction", direction),
		slog.String("grpc.method", fullMethod),
	}
	attrs = append(attrs, MetadataAttrs(md)...)
	return append(attrs, messageAttrs("grpc.request", req)...)
}

func LogGRPCResponse(ctx context.Context, fullMethod string, code codes.Code, resp any, duration time.Duration, direction string) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("grpc.direction", direction),
		slog.String("grpc.method", fullMethod),
		slog.String("grpc.code", code.String()),
		slog.Int64("grpc.duration_ms", duration.Milliseconds()),
	}
	return append(attrs, messageAttrs("grpc.response", resp)...)
}
