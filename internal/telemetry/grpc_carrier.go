// Package telemetry carries trace context across gRPC calls.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// MetadataTextMapCarrier lets the OpenTelemetry propagator read and write gRPC metadata.
type MetadataTextMapCarrier metadata.MD

func (c MetadataTextMapCarrier) Get(key string) string {
	v := metadata.MD(c).Get(key)
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

func (c MetadataTextMapCarrier) Set(key string, value string) {
	metadata.MD(c).Set(key, value)
}

func (c MetadataTextMapCarrier) Keys() []string {
	out := make([]string, 0, len(c))
	for k := range c {
		out = append(out, k)
	}
	return out
}

// InjectOutgoing copies the span context of ctx into the outgoing metadata.
func InjectOutgoing(ctx context.Context) context.Context {
	md, ok := metadata.FromOutgoingContext(ctx)
	if ok {
		md = md.Copy()
	} else {
		md = metadata.MD{}
	}
	otel.GetTextMapPropagator().Inject(ctx, MetadataTextMapCarrier(md))
	return metadata.NewOutgoingContext(ctx, md)
}

// UnaryClientInterceptor propagates the caller's trace on every unary call.
func UnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		return invoker(InjectOutgoing(ctx), method, req, reply, cc, opts...)
	}
}
