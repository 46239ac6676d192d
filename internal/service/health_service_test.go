package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthService_Check(t *testing.T) {
	up := NewHealthService(pingerFunc(func(context.Context) error { return nil }), "mongodb").Check(context.Background())
	assert.Equal(t, StatusUp, up.Status)
	assert.Equal(t, map[string]string{"mongodb": StatusUp}, up.Components)

	down := NewHealthService(pingerFunc(func(context.Context) error { return errBoom }), "mongodb").Check(context.Background())
	assert.Equal(t, StatusDown, down.Status)
	assert.Equal(t, StatusDown, down.Components["mongodb"])
}

func TestHealthService_PingHasDeadline(t *testing.T) {
	var hasDeadline bool
	NewHealthService(pingerFunc(func(ctx context.Context) error {
		_, hasDeadline = ctx.Deadline()
		return nil
	}), "memory").Check(context.Background())
	assert.True(t, hasDeadline)
}
