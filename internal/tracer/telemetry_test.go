package tracer

import (
	"context"
	"testing"

	"parts-catalog/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetup_WithoutExporter(t *testing.T) {
	shutdown, err := Setup(context.Background(), &config.Config{AppName: "catalog-test", Env: "test"})
	require.NoError(t, err)
	defer shutdown()

	_, span := otel.Tracer("test").Start(context.Background(), "op")
	defer span.End()
	assert.True(t, span.SpanContext().IsValid(), "spans carry ids even when nothing is exported")
	assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")
}

func TestNewExporter(t *testing.T) {
	exp, err := newExporter(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.Nil(t, exp)

	exp, err = newExporter(context.Background(), &config.Config{TraceStdout: true})
	require.NoError(t, err)
	assert.NotNil(t, exp)
}
