package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/futig/mitr-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		// Headers are already sent, nothing useful can be done on failure.
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error logs err and writes an error response
func Error(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if status >= http.StatusInternalServerError {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Warn(ctx, message, zap.Error(err))
	}

	JSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

// UsecaseError maps domain errors to HTTP status codes
func UsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrSessionNotFound),
		errors.Is(err, entity.ErrWorkspaceNotFound),
		errors.Is(err, entity.ErrConversationNotFound),
		errors.Is(err, entity.ErrTurnNotFound):
		Error(ctx, w, http.StatusNotFound, "resource not found", err)
	case errors.Is(err, entity.ErrNoAudio):
		Error(ctx, w, http.StatusNotFound, "no audio available", err)
	case errors.Is(err, entity.ErrInvalidParameter),
		errors.Is(err, entity.ErrInvalidFormat),
		errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrUnknownAssessment),
		errors.Is(err, entity.ErrInvalidAnswer),
		errors.Is(err, entity.ErrEmptyQuery):
		Error(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	case errors.Is(err, entity.ErrWrongStage),
		errors.Is(err, entity.ErrSessionFailed),
		errors.Is(err, entity.ErrTransitionInFlight),
		errors.Is(err, entity.ErrNoResult):
		Error(ctx, w, http.StatusConflict, err.Error(), err)
	case errors.Is(err, entity.ErrNoAuthSession),
		errors.Is(err, entity.ErrInvalidToken):
		Error(ctx, w, http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, entity.ErrAuthNotConfigured):
		Error(ctx, w, http.StatusServiceUnavailable, entity.AuthMsgNotConfigured, err)
	default:
		Error(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}

// Success writes a success response
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Created writes a 201 Created response
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// NoContent writes a 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Binary writes a raw body. A non-empty filename makes it a download.
func Binary(w http.ResponseWriter, contentType string, data []byte, filename string) {
	w.Header().Set("Content-Type", contentType)
	if filename != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
