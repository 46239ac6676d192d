package http

import (
	"net/http"

	"parts-catalog/internal/logger"
	"parts-catalog/internal/service"

	"go.opentelemetry.io/otel"
)

type HealthHandler struct {
	service *service.HealthService
}

var HttpHealthHandlerTracer = otel.Tracer("HttpHealthHandler")

func NewHealthHandler(service *service.HealthService) *HealthHandler {
	return &HealthHandler{
		service: service,
	}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpHealthHandlerTracer.Start(r.Context(), "HttpHealthHandler.Check")
	defer span.End()
	logger.Info(ctx, "Handler")

	health := h.service.Check(ctx)

	status := http.StatusOK
	if health.Status != service.StatusUp {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, map[string]any{
		"status": health.Status,
		"data":   health.Components,
	})
}
