package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/futig/mitr-backend/internal/config"
	"github.com/futig/mitr-backend/internal/entity"
	"github.com/futig/mitr-backend/internal/telegram/handlers"
	"github.com/futig/mitr-backend/internal/telegram/keyboard"
	"github.com/futig/mitr-backend/internal/telegram/middleware"
	"github.com/futig/mitr-backend/internal/telegram/render"
	"github.com/futig/mitr-backend/internal/telegram/state"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// API is the part of *tgbotapi.BotAPI the bot needs
type API interface {
	handlers.Sender
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot represents the Telegram bot
type Bot struct {
	api          API
	cfg          *config.TelegramConfig
	stateManager *state.Manager
	handlers     map[string]handlers.Handler
	usecase      handlers.AssessmentUsecase
	flow         *handlers.Flow
	keyboard     *keyboard.Builder
	logger       *zap.Logger
	loggingMW    *middleware.LoggingMiddleware
	recoveryMW   *middleware.RecoveryMiddleware
	rateLimitMW  *middleware.RateLimiterMiddleware
	updatesChan  tgbotapi.UpdatesChannel
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

// New creates a new Telegram bot on top of an authorized API client
func New(
	cfg *config.TelegramConfig,
	api API,
	stateManager *state.Manager,
	usecase handlers.AssessmentUsecase,
	logger *zap.Logger,
) *Bot {
	kb := keyboard.NewBuilder()

	bot := &Bot{
		api:          api,
		cfg:          cfg,
		stateManager: stateManager,
		usecase:      usecase,
		flow:         handlers.NewFlow(api, stateManager, usecase, kb, cfg.SendAudio, logger),
		keyboard:     kb,
		logger:       logger,
		handlers:     make(map[string]handlers.Handler),
		stopChan:     make(chan struct{}),
	}

	// Initialize middleware
	bot.loggingMW = middleware.NewLoggingMiddleware(logger)
	bot.recoveryMW = middleware.NewRecoveryMiddleware(logger, api)
	bot.rateLimitMW = middleware.NewRateLimiterMiddleware(
		cfg.RateLimitPerMinute,
		cfg.RateLimitBurst,
		logger,
		api,
	)

	return bot
}

// Start starts the bot
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting telegram bot")

	// Configure updates
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout

	b.updatesChan = b.api.GetUpdatesChan(u)

	// Add logger to context for processUpdates
	ctx = ctxzap.ToContext(ctx, b.logger)

	go b.processUpdates(ctx)

	b.logger.Info("telegram bot started successfully")
	return nil
}

// Stop stops the bot gracefully with timeout
func (b *Bot) Stop() error {
	b.logger.Info("stopping telegram bot")

	// Signal to stop receiving new updates
	close(b.stopChan)
	b.api.StopReceivingUpdates()
	b.rateLimitMW.Close()

	// Wait for all active handlers to complete
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	shutdownTimeout := time.Duration(b.cfg.ShutdownTimeout) * time.Second
	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(shutdownTimeout):
		b.logger.Warn("shutdown timeout exceeded, some handlers may not have completed",
			zap.Duration("timeout", shutdownTimeout),
		)
		return fmt.Errorf("shutdown timeout exceeded")
	}

	b.logger.Info("telegram bot stopped successfully")
	return nil
}

// processUpdates processes incoming updates
func (b *Bot) processUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "context cancelled, stopping update processing")
			return
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update, ok := <-b.updatesChan:
			if !ok {
				return
			}
			b.wg.Add(1)
			go func(u tgbotapi.Update) {
				defer b.wg.Done()
				b.HandleUpdate(u)
			}(update)
		}
	}
}

// HandleUpdate runs one update through the middleware chain
func (b *Bot) HandleUpdate(update tgbotapi.Update) {
	b.rateLimitMW.Handle(update, func(u tgbotapi.Update) {
		b.loggingMW.Handle(u, func(u2 tgbotapi.Update) {
			b.recoveryMW.Handle(u2, func(u3 tgbotapi.Update) {
				b.handleUpdate(u3)
			})
		})
	})
}

// handleUpdate routes update to appropriate handler
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	ctx := ctxzap.ToContext(context.Background(), b.logger)

	if update.CallbackQuery != nil {
		b.handleCallbackQuery(ctx, update.CallbackQuery)
		return
	}

	if update.Message != nil {
		b.handleMessage(ctx, update.Message)
		return
	}
}

// handleMessage routes text by the stage of the user's session
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	userID := message.From.ID
	chatID := message.Chat.ID

	telegramSession, err := b.stateManager.GetSession(ctx, userID)
	if err != nil || telegramSession.SessionID == "" {
		ctxzap.Debug(ctx, "no active session for user", zap.Int64("user_id", userID))
		b.sendError(chatID, render.ErrNoSession)
		return
	}

	session, err := b.usecase.GetSession(ctx, telegramSession.SessionID)
	if err != nil {
		if errors.Is(err, entity.ErrSessionNotFound) {
			if delErr := b.stateManager.DeleteSession(ctx, userID); delErr != nil {
				ctxzap.Warn(ctx, "failed to drop expired binding", zap.Error(delErr))
			}
		} else {
			ctxzap.Error(ctx, "failed to get session",
				zap.Error(err),
				zap.String("session_id", telegramSession.SessionID),
			)
		}
		b.sendError(chatID, render.ClassifyError(err))
		return
	}

	// Load StateData once and attach to context for request-scoped caching
	stateData, err := b.stateManager.GetStateData(ctx, userID)
	if err != nil {
		ctxzap.Error(ctx, "failed to get state data",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		b.sendError(chatID, render.ErrGeneric)
		return
	}
	ctx = state.ContextWithStateData(ctx, stateData)

	stateName := string(session.Stage)
	if session.Failure != nil {
		// Only a restart leaves the overlay; remind the user of it
		stateName = handlers.HandlerStateResults
	}

	handler, exists := b.handlers[stateName]
	if !exists {
		ctxzap.Warn(ctx, "no handler for state",
			zap.String("state", stateName),
			zap.Int64("user_id", userID),
		)
		b.sendError(chatID, render.ErrInvalidState)
		return
	}

	msg := &handlers.Message{
		ChatID:    chatID,
		UserID:    userID,
		MessageID: message.MessageID,
		Text:      message.Text,
	}

	if err := handler.Handle(ctx, msg); err != nil {
		ctxzap.Error(ctx, "handler error",
			zap.Error(err),
			zap.String("state", stateName),
			zap.Int64("user_id", userID),
		)
		b.sendError(chatID, render.ErrGeneric)
	}
}

// handleCommand handles bot commands
func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	command := message.Command()

	ctxzap.Info(ctx, "command received",
		zap.String("command", command),
		zap.Int64("user_id", message.From.ID),
	)

	switch command {
	case "start":
		b.sendMessage(ctx, message.Chat.ID, render.MsgWelcome, b.keyboard.StartKeyboard())
	case "help":
		b.sendMessage(ctx, message.Chat.ID, render.MsgHelp, nil)
	case "restart":
		if err := b.flow.RequestRestart(ctx, message.Chat.ID, message.From.ID); err != nil {
			ctxzap.Warn(ctx, "restart failed", zap.Error(err))
			b.sendError(message.Chat.ID, render.ClassifyError(err))
		}
	default:
		b.sendError(message.Chat.ID, "❌ Unknown command. Use /start")
	}
}

// handleCallbackQuery handles callback button clicks
func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.Message == nil {
		b.answerCallback(query.ID, "")
		return
	}

	callbackData, err := keyboard.ParseCallback(query.Data)
	if err != nil {
		ctxzap.Error(ctx, "invalid callback data",
			zap.Error(err),
			zap.String("data", query.Data),
		)
		b.answerCallback(query.ID, "❌ Invalid data")
		return
	}

	ctxzap.Info(ctx, "callback query received",
		zap.String("action", callbackData.Action),
		zap.String("value", callbackData.Value),
		zap.Int64("user_id", query.From.ID),
	)

	userID := query.From.ID
	chatID := query.Message.Chat.ID

	msg := &handlers.Message{
		ChatID:       chatID,
		UserID:       userID,
		MessageID:    query.Message.MessageID,
		CallbackData: query.Data,
		CallbackID:   query.ID,
	}

	handler, exists := b.handlers[handlers.HandlerStateCallback]
	if !exists {
		ctxzap.Warn(ctx, "callback handler not registered")
		b.answerCallback(query.ID, "❌ Handler not found")
		return
	}

	// Answer right away so Telegram does not consider the query stale
	b.answerCallback(query.ID, "⏳ Working on it...")

	// Remote calls may take a while; results and errors arrive as regular messages
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if err := handler.Handle(ctx, msg); err != nil {
			ctxzap.Error(ctx, "callback handler error",
				zap.Error(err),
				zap.Int64("user_id", userID),
			)
			b.sendError(chatID, render.ErrGeneric)
		}
	}()
}

func (b *Bot) sendMessage(ctx context.Context, chatID int64, text string, replyMarkup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	if replyMarkup != nil {
		msg.ReplyMarkup = replyMarkup
	}
	if _, err := b.api.Send(msg); err != nil {
		ctxzap.Error(ctx, "failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

// sendError sends an error message
func (b *Bot) sendError(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error("failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

// answerCallback answers a callback query
func (b *Bot) answerCallback(callbackID string, text string) {
	callback := tgbotapi.NewCallback(callbackID, text)
	if _, err := b.api.Request(callback); err != nil {
		b.logger.Error("failed to answer callback",
			zap.Error(err),
			zap.String("callback_id", callbackID),
		)
	}
}

// RegisterHandler registers a handler for a state
func (b *Bot) RegisterHandler(handler handlers.Handler) {
	state := handler.GetState()

	if !handlers.IsValidState(state) {
		b.logger.Fatal("invalid handler state",
			zap.String("state", state),
		)
	}

	b.handlers[state] = handler
	b.logger.Info("handler registered",
		zap.String("state", state),
	)
}

// Flow returns the session flow shared by the handlers
func (b *Bot) Flow() *handlers.Flow {
	return b.flow
}

// Wait blocks until every in-flight update has been handled
func (b *Bot) Wait() {
	b.wg.Wait()
}
