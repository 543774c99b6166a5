package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/futig/mitr-backend/internal/api/middleware"
	"github.com/futig/mitr-backend/internal/entity"
	"github.com/futig/mitr-backend/internal/pkg/logger"
	"github.com/futig/mitr-backend/internal/pkg/response"
	"github.com/futig/mitr-backend/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type AuthUsecase interface {
	CompleteCallback(ctx context.Context, code, verifier string) (*entity.CallbackResult, error)
	SessionStatus(ctx context.Context, accessToken string) *entity.CallbackResult
}

type Handler struct {
	usecase   AuthUsecase
	validator *validator.Validator
}

func NewHandler(usecase AuthUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// RegisterRoutes registers auth routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/callback", h.Callback)
		r.Get("/session", h.Session)
	})
}

// Callback handles POST /auth/callback. Failures still carry a user facing message.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "AuthCallback")

	var req entity.CallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateCallback(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	result, err := h.usecase.CompleteCallback(ctx, req.Code, req.CodeVerifier)
	if errors.Is(err, entity.ErrAuthNotConfigured) {
		ctxzap.Warn(ctx, "sign in attempted without identity provider", zap.Error(err))
		response.JSON(w, http.StatusServiceUnavailable, result)
		return
	}
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}
	if result.Session == nil {
		response.JSON(w, http.StatusUnauthorized, result)
		return
	}

	ctxzap.Info(ctx, "user signed in", zap.String("user_id", result.Session.User.ID))

	response.Success(w, result)
}

// Session handles GET /auth/session
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "AuthSession")

	result := h.usecase.SessionStatus(ctx, middleware.BearerToken(r))
	if result.Session == nil {
		response.JSON(w, http.StatusUnauthorized, result)
		return
	}

	response.Success(w, result)
}
