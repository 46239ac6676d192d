package service

import (
	"context"
	"time"

	"parts-catalog/internal/logger"

	"go.opentelemetry.io/otel"
)

const (
	StatusUp   = "UP"
	StatusDown = "DOWN"
)

const pingTimeout = 2 * time.Second

type HealthService struct {
	store  Pinger
	driver string
}

type HealthStatus struct {
	Status     string
	Components map[string]string
}

var HealthServiceTracer = otel.Tracer("HealthService")

// NewHealthService reports the store under the component name driver, e.g. "mongodb".
func NewHealthService(store Pinger, driver string) *HealthService {
	return &HealthService{
		store:  store,
		driver: driver,
	}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	ctx, span := HealthServiceTracer.Start(ctx, "HealthService.Check")
	defer span.End()
	logger.Info(ctx, "Service")

	status := HealthStatus{
		Status:     StatusUp,
		Components: map[string]string{s.driver: StatusUp},
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.store.Ping(pingCtx); err != nil {
		span.RecordError(err)
		status.Status = StatusDown
		status.Components[s.driver] = StatusDown
	}

	return status
}
