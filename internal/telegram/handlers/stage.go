package handlers

import (
	"context"

	"github.com/futig/mitr-backend/internal/telegram/render"
)

// StageHandler answers free text in stages driven by buttons
type StageHandler struct {
	BaseHandler
	flow *Flow
}

// NewStageHandler creates a handler for a button-driven stage
func NewStageHandler(stateName string, flow *Flow) *StageHandler {
	return &StageHandler{
		BaseHandler: BaseHandler{
			stateName:     stateName,
			messageSender: flow.sender,
		},
		flow: flow,
	}
}

// Handle implements Handler
func (h *StageHandler) Handle(ctx context.Context, msg *Message) error {
	if err := h.flow.Remind(ctx, msg.ChatID, msg.UserID); err != nil {
		h.sendMessage(msg.ChatID, render.ClassifyError(err), nil)
	}
	return nil
}
