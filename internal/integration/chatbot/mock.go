package chatbot

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/mitr-backend/internal/entity"
	"github.com/futig/mitr-backend/internal/integration/common"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{logger: logger}
}

func (m *MockConnector) Ask(ctx context.Context, conversationID, query string) (string, error) {
	ctxzap.Info(ctx, "[MOCK] asking chat backend", zap.String("conversation_id", conversationID))

	return fmt.Sprintf("**You asked:** %s\n\nHere are a few ideas:\n\n- Take a slow breath\n- Write down what you feel\n- Reach out to someone you trust",
		strings.TrimSpace(query)), nil
}

func (m *MockConnector) Synthesize(ctx context.Context, text string) (*entity.Audio, error) {
	ctxzap.Debug(ctx, "[MOCK] synthesizing speech", zap.Int("text_length", len(text)))
	return &entity.Audio{Data: common.SilentWAV(), ContentType: "audio/wav"}, nil
}

func (m *MockConnector) Voice() string {
	return "mock"
}
