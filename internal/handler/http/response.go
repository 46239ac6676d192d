package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"parts-catalog/internal/logger"
	"parts-catalog/internal/model"
)

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// writeError maps domain errors to status codes. Unknown errors are internal
// and carry their detail in the "error" field.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrDuplicateCode):
		writeMessage(w, http.StatusConflict, err.Error())
	default:
		logger.Error(ctx, "Internal error", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Internal error", Error: err.Error()})
	}
}
