package handlers

import (
	"context"
	"fmt"

	"github.com/futig/mitr-backend/internal/entity"
	"github.com/futig/mitr-backend/internal/telegram/keyboard"
	"github.com/futig/mitr-backend/internal/telegram/render"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// CallbackHandler handles inline keyboard button clicks
type CallbackHandler struct {
	BaseHandler
	flow *Flow
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(flow *Flow) *CallbackHandler {
	return &CallbackHandler{
		BaseHandler: BaseHandler{
			stateName:     HandlerStateCallback,
			messageSender: flow.sender,
		},
		flow: flow,
	}
}

// Handle implements Handler
func (h *CallbackHandler) Handle(ctx context.Context, msg *Message) error {
	data, err := keyboard.ParseCallback(msg.CallbackData)
	if err != nil {
		return fmt.Errorf("parse callback: %w", err)
	}

	if err := h.dispatch(ctx, msg, data); err != nil {
		ctxzap.Warn(ctx, "callback action failed",
			zap.Error(err),
			zap.String("action", data.Action),
			zap.String("value", data.Value),
		)
		h.sendMessage(msg.ChatID, render.ClassifyError(err), nil)
	}

	return nil
}

func (h *CallbackHandler) dispatch(ctx context.Context, msg *Message, data *keyboard.CallbackData) error {
	switch data.Action {
	case keyboard.ActionControl:
		switch data.Value {
		case keyboard.ValueStart:
			return h.flow.Start(ctx, msg.ChatID, msg.UserID)
		case keyboard.ValueSkip:
			return h.flow.AnswerProfileField(ctx, msg.ChatID, msg.UserID, "")
		case keyboard.ValueEmail:
			return h.flow.EmailResults(ctx, msg.ChatID, msg.UserID)
		case keyboard.ValueRestart:
			return h.flow.RequestRestart(ctx, msg.ChatID, msg.UserID)
		}

	case keyboard.ActionConfirm:
		return h.flow.Confirm(ctx, msg.ChatID, msg.UserID, data.Value)

	case keyboard.ActionAssessment:
		return h.flow.SelectAssessment(ctx, msg.ChatID, msg.UserID, entity.AssessmentID(data.Value))

	case keyboard.ActionAnswer:
		return h.flow.Answer(ctx, msg.ChatID, msg.UserID, data.Value)

	case keyboard.ActionDownload:
		return h.flow.Download(ctx, msg.ChatID, msg.UserID, entity.ResultFormat(data.Value))
	}

	return fmt.Errorf("%w: callback %s:%s", entity.ErrInvalidParameter, data.Action, data.Value)
}
