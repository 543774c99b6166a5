package telegram

import (
	"context"
	"fmt"

	"github.com/futig/mitr-backend/internal/config"
	"github.com/futig/mitr-backend/internal/telegram/bot"
	"github.com/futig/mitr-backend/internal/telegram/handlers"
	"github.com/futig/mitr-backend/internal/telegram/state"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

// NewBot authorizes against the Bot API and wires all handlers
func NewBot(
	cfg *config.TelegramConfig,
	storage state.Storage,
	usecase handlers.AssessmentUsecase,
	logger *zap.Logger,
) (Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	return NewBotWithAPI(cfg, api, storage, usecase, logger), nil
}

// NewBotWithAPI wires the bot on top of an existing API client
func NewBotWithAPI(
	cfg *config.TelegramConfig,
	api bot.API,
	storage state.Storage,
	usecase handlers.AssessmentUsecase,
	logger *zap.Logger,
) *bot.Bot {
	b := bot.New(cfg, api, state.NewManager(storage), usecase, logger)
	registerHandlers(b, logger)

	logger.Info("telegram bot initialized successfully")
	return b
}

// registerHandlers registers all handlers with the bot
func registerHandlers(b *bot.Bot, logger *zap.Logger) {
	flow := b.Flow()

	b.RegisterHandler(handlers.NewCallbackHandler(flow))
	b.RegisterHandler(handlers.NewProfileHandler(flow))
	b.RegisterHandler(handlers.NewStageHandler(handlers.HandlerStateTestSelection, flow))
	b.RegisterHandler(handlers.NewStageHandler(handlers.HandlerStateQuestionnaire, flow))
	b.RegisterHandler(handlers.NewStageHandler(handlers.HandlerStateResults, flow))

	logger.Info("telegram handlers registered",
		zap.Int("handler_count", 5),
	)
}
