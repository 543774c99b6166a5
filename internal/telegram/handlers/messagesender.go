package handlers

import (
	"time"

	"github.com/avast/retry-go/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	maxSendRetries = 3
	retrySleepBase = time.Second
)

// MessageSender provides centralized message sending functionality
type MessageSender struct {
	bot    Sender
	logger *zap.Logger
	delay  time.Duration
}

// NewMessageSender creates a new MessageSender
func NewMessageSender(bot Sender, logger *zap.Logger) *MessageSender {
	return &MessageSender{
		bot:    bot,
		logger: logger,
		delay:  retrySleepBase,
	}
}

// Send sends a message to the specified chat
func (s *MessageSender) Send(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}

	_, err := s.bot.Send(msg)
	if err != nil {
		s.logger.Error("failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
		return err
	}

	return nil
}

// SendCritical retries delivery of messages the flow cannot continue without
// (keyboards, results).
func (s *MessageSender) SendCritical(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}

	err := retry.Do(
		func() error {
			_, err := s.bot.Send(msg)
			return err
		},
		retry.Attempts(maxSendRetries),
		retry.Delay(s.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Warn("failed to send message, retrying",
				zap.Error(err),
				zap.Uint("attempt", n+1),
				zap.Int("max_retries", maxSendRetries),
				zap.Int64("chat_id", chatID),
			)
		}),
	)
	if err != nil {
		s.logger.Error("failed to send message after all retries",
			zap.Error(err),
			zap.Int("max_retries", maxSendRetries),
			zap.Int64("chat_id", chatID),
		)
	}

	return err
}

// SendDocument sends a file to the chat
func (s *MessageSender) SendDocument(chatID int64, filename string, data []byte) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  filename,
		Bytes: data,
	})
	if _, err := s.bot.Send(doc); err != nil {
		s.logger.Error("failed to send document",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
		return err
	}

	return nil
}
