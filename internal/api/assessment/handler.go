package assessment

import (
	"encoding/json"
	"net/http"

	"github.com/futig/mitr-backend/internal/catalog"
	"github.com/futig/mitr-backend/internal/entity"
	"github.com/futig/mitr-backend/internal/pkg/logger"
	"github.com/futig/mitr-backend/internal/pkg/response"
	"github.com/futig/mitr-backend/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   AssessmentUsecase
	validator *validator.Validator
}

func NewHandler(usecase AssessmentUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// ListAssessments handles GET /assessments
func (h *Handler) ListAssessments(w http.ResponseWriter, r *http.Request) {
	response.Success(w, catalog.Assessments())
}

// StartSession handles POST /assessment-sessions
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "StartSession")

	session, err := h.usecase.StartSession(ctx)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "assessment session started", zap.String("session_id", session.ID))

	response.Created(w, toSessionDTO(session))
}

// GetSession handles GET /assessment-sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(logger.WithAction(r.Context(), "GetSession"), sessionID)

	session, err := h.usecase.GetSession(ctx, sessionID)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toSessionDTO(session))
}

// SubmitProfile handles POST /assessment-sessions/{id}/profile
func (h *Handler) SubmitProfile(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(logger.WithAction(r.Context(), "SubmitProfile"), sessionID)

	var req entity.SubmitProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateProfile(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	session, err := h.usecase.SubmitProfile(ctx, sessionID, req.Profile())
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toSessionDTO(session))
}

// SelectAssessment handles POST /assessment-sessions/{id}/assessment
func (h *Handler) SelectAssessment(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(logger.WithAction(r.Context(), "SelectAssessment"), sessionID)

	var req entity.SelectAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateSelectAssessment(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	session, err := h.usecase.SelectAssessment(ctx, sessionID, req.AssessmentID)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toSessionDTO(session))
}

// SubmitAnswer handles POST /assessment-sessions/{id}/answer
func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(logger.WithAction(r.Context(), "SubmitAnswer"), sessionID)

	var req entity.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateSubmitAnswer(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	session, err := h.usecase.SubmitAnswer(ctx, sessionID, *req.Option)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toSessionDTO(session))
}

// Restart handles POST /assessment-sessions/{id}/restart
func (h *Handler) Restart(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(logger.WithAction(r.Context(), "Restart"), sessionID)

	session, err := h.usecase.Restart(ctx, sessionID)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "assessment session restarted")

	response.Success(w, toSessionDTO(session))
}

// TogglePlayback handles POST /assessment-sessions/{id}/playback
func (h *Handler) TogglePlayback(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(logger.WithAction(r.Context(), "TogglePlayback"), sessionID)

	var req entity.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateTurn(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	session, err := h.usecase.TogglePlayback(ctx, sessionID, req.TurnID)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toSessionDTO(session))
}

// GetAudio handles GET /assessment-sessions/{id}/audio
func (h *Handler) GetAudio(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(logger.WithAction(r.Context(), "GetAudio"), sessionID)

	clip, err := h.usecase.CurrentAudio(ctx, sessionID)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	w.Header().Set("X-Turn-ID", clip.Key)
	response.Binary(w, clip.ContentType, clip.Data, "")
}

// AudioEnded handles POST /assessment-sessions/{id}/audio/ended
func (h *Handler) AudioEnded(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(logger.WithAction(r.Context(), "AudioEnded"), sessionID)

	var req entity.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateTurn(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	if err := h.usecase.AudioEnded(ctx, sessionID, req.TurnID); err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.NoContent(w)
}

// SendResults handles POST /assessment-sessions/{id}/notify
func (h *Handler) SendResults(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(logger.WithAction(r.Context(), "SendResults"), sessionID)

	session, err := h.usecase.SendResults(ctx, sessionID)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "results notification processed", zap.String("status", session.Notification))

	response.Success(w, toSessionDTO(session))
}

// GetReport handles GET /assessment-sessions/{id}/report?format=markdown|pdf|docx
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(logger.WithAction(r.Context(), "GetReport"), sessionID)

	format := entity.ResultFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = entity.FormatMarkdown
	}

	data, contentType, filename, err := h.usecase.Report(ctx, sessionID, format)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Binary(w, contentType, data, filename)
}
