package middleware

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// LoggingMiddleware logs all incoming updates
type LoggingMiddleware struct {
	logger *zap.Logger
}

func NewLoggingMiddleware(logger *zap.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{
		logger: logger,
	}
}

func (m *LoggingMiddleware) Handle(update tgbotapi.Update, next func(tgbotapi.Update)) {
	start := time.Now()

	userID, chatID, _ := origin(update)
	logger := m.logger.With(
		zap.Int64("user_id", userID),
		zap.Int64("chat_id", chatID),
		zap.Int("update_id", update.UpdateID),
	)

	logger.Info("telegram update received", zap.String("type", kind(update)))

	next(update)

	logger.Info("telegram update processed", zap.Duration("duration", time.Since(start)))
}
