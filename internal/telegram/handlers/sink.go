package handlers

import (
	"context"
	"fmt"
	"mime"

	"github.com/futig/mitr-backend/internal/playback"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// AudioSink plays a clip by sending it to the chat as an audio message.
// The clip ends as soon as Telegram accepted it.
type AudioSink struct {
	bot     Sender
	chatID  int64
	enabled bool
	logger  *zap.Logger
}

var _ playback.Sink = &AudioSink{}

func NewAudioSink(bot Sender, chatID int64, enabled bool, logger *zap.Logger) *AudioSink {
	return &AudioSink{
		bot:     bot,
		chatID:  chatID,
		enabled: enabled,
		logger:  logger,
	}
}

func (s *AudioSink) Play(ctx context.Context, clip *playback.Clip) error {
	if !s.enabled {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	audio := tgbotapi.NewAudio(s.chatID, tgbotapi.FileBytes{
		Name:  "reply" + extension(clip.ContentType),
		Bytes: clip.Data,
	})
	audio.Title = "MITR"

	if _, err := s.bot.Send(audio); err != nil {
		return fmt.Errorf("send audio: %w", err)
	}

	s.logger.Debug("audio sent",
		zap.Int64("chat_id", s.chatID),
		zap.String("turn_id", clip.Key),
	)
	return nil
}

// Stop is a no-op: a sent message cannot be recalled.
func (s *AudioSink) Stop() {}

func extension(contentType string) string {
	switch contentType {
	case "audio/wave", "audio/wav", "audio/x-wav":
		return ".wav"
	case "audio/mpeg":
		return ".mp3"
	case "application/ogg", "audio/ogg":
		return ".ogg"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}
