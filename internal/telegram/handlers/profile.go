package handlers

import (
	"context"
	"strings"

	"github.com/futig/mitr-backend/internal/telegram/render"
)

// ProfileHandler collects the profile one answer per message
type ProfileHandler struct {
	BaseHandler
	flow *Flow
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(flow *Flow) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler: BaseHandler{
			stateName:     HandlerStateProfile,
			messageSender: flow.sender,
		},
		flow: flow,
	}
}

// Handle implements Handler
func (h *ProfileHandler) Handle(ctx context.Context, msg *Message) error {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		h.sendMessage(msg.ChatID, render.ErrInvalidInput, nil)
		return nil
	}

	if err := h.flow.AnswerProfileField(ctx, msg.ChatID, msg.UserID, text); err != nil {
		h.sendMessage(msg.ChatID, render.ClassifyError(err), nil)
	}
	return nil
}
