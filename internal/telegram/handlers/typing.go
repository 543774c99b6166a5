package handlers

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Telegram shows "typing" for 5 seconds after each action
const typingInterval = 4 * time.Second

// TypingNotifier keeps the "typing" indicator on while a remote call is running
type TypingNotifier struct {
	bot    Sender
	chatID int64
	logger *zap.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
}

func NewTypingNotifier(bot Sender, chatID int64, logger *zap.Logger) *TypingNotifier {
	return &TypingNotifier{
		bot:    bot,
		chatID: chatID,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start sends the first action right away and repeats it until Stop or ctx is done
func (t *TypingNotifier) Start(ctx context.Context) {
	t.startOnce.Do(func() {
		t.send()

		go func() {
			ticker := time.NewTicker(typingInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ticker.C:
					t.send()
				case <-t.done:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
	})
}

func (t *TypingNotifier) Stop() {
	t.stopOnce.Do(func() { close(t.done) })
}

func (t *TypingNotifier) send() {
	action := tgbotapi.NewChatAction(t.chatID, tgbotapi.ChatTyping)
	if _, err := t.bot.Request(action); err != nil {
		t.logger.Warn("failed to send typing action",
			zap.Error(err),
			zap.Int64("chat_id", t.chatID),
		)
	}
}
