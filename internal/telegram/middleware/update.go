package middleware

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// origin identifies who sent an update. ok is false for update kinds the bot ignores.
func origin(update tgbotapi.Update) (userID, chatID int64, ok bool) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID, update.Message.Chat.ID, true
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return update.CallbackQuery.From.ID, update.CallbackQuery.Message.Chat.ID, true
	}
	return 0, 0, false
}

// kind describes an update for logs without leaking free text
func kind(update tgbotapi.Update) string {
	switch {
	case update.CallbackQuery != nil:
		action, _, _ := strings.Cut(update.CallbackQuery.Data, ":")
		return "callback:" + action
	case update.Message == nil:
		return "other"
	case update.Message.IsCommand():
		return "command:" + update.Message.Command()
	case update.Message.Text != "":
		return "text"
	default:
		return "other"
	}
}
