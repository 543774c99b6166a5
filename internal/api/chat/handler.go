package chat

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/futig/mitr-backend/internal/entity"
	"github.com/futig/mitr-backend/internal/pkg/logger"
	"github.com/futig/mitr-backend/internal/pkg/response"
	"github.com/futig/mitr-backend/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   ChatUsecase
	validator *validator.Validator
}

func NewHandler(usecase ChatUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

func requestContext(r *http.Request, action string) (context.Context, string) {
	workspaceID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("workspace_id", workspaceID),
		zap.String("action", action),
	)
	return ctx, workspaceID
}

// CreateWorkspace handles POST /chat-workspaces
func (h *Handler) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CreateWorkspace")

	workspace, err := h.usecase.CreateWorkspace(ctx)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Created(w, workspace)
}

// GetWorkspace handles GET /chat-workspaces/{id}
func (h *Handler) GetWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx, workspaceID := requestContext(r, "GetWorkspace")

	workspace, err := h.usecase.GetWorkspace(ctx, workspaceID)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Success(w, workspace)
}

// NewConversation handles POST /chat-workspaces/{id}/conversations
func (h *Handler) NewConversation(w http.ResponseWriter, r *http.Request) {
	ctx, workspaceID := requestContext(r, "NewConversation")

	workspace, err := h.usecase.NewConversation(ctx, workspaceID)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Created(w, workspace)
}

// SelectConversation handles POST /chat-workspaces/{id}/conversations/{conversation_id}/select
func (h *Handler) SelectConversation(w http.ResponseWriter, r *http.Request) {
	ctx, workspaceID := requestContext(r, "SelectConversation")

	workspace, err := h.usecase.SelectConversation(ctx, workspaceID, chi.URLParam(r, "conversation_id"))
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Success(w, workspace)
}

// DeleteConversation handles DELETE /chat-workspaces/{id}/conversations/{conversation_id}
func (h *Handler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	ctx, workspaceID := requestContext(r, "DeleteConversation")

	workspace, err := h.usecase.DeleteConversation(ctx, workspaceID, chi.URLParam(r, "conversation_id"))
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Success(w, workspace)
}

// ClearConversations handles DELETE /chat-workspaces/{id}/conversations
func (h *Handler) ClearConversations(w http.ResponseWriter, r *http.Request) {
	ctx, workspaceID := requestContext(r, "ClearConversations")

	workspace, err := h.usecase.ClearConversations(ctx, workspaceID)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Success(w, workspace)
}

// Ask handles POST /chat-workspaces/{id}/ask
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx, workspaceID := requestContext(r, "Ask")

	var req entity.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateAsk(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	workspace, err := h.usecase.Ask(ctx, workspaceID, req.Query)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Success(w, workspace)
}

// GetAudio handles GET /chat-workspaces/{id}/audio
func (h *Handler) GetAudio(w http.ResponseWriter, r *http.Request) {
	ctx, workspaceID := requestContext(r, "GetAudio")

	clip, err := h.usecase.CurrentAudio(ctx, workspaceID)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	w.Header().Set("X-Message-ID", clip.Key)
	response.Binary(w, clip.ContentType, clip.Data, "")
}

// AudioEnded handles POST /chat-workspaces/{id}/audio/ended
func (h *Handler) AudioEnded(w http.ResponseWriter, r *http.Request) {
	ctx, workspaceID := requestContext(r, "AudioEnded")

	var req entity.MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.usecase.AudioEnded(ctx, workspaceID, req.MessageID); err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.NoContent(w)
}

// StopPlayback handles POST /chat-workspaces/{id}/audio/stop
func (h *Handler) StopPlayback(w http.ResponseWriter, r *http.Request) {
	ctx, workspaceID := requestContext(r, "StopPlayback")

	workspace, err := h.usecase.StopPlayback(ctx, workspaceID)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Success(w, workspace)
}
