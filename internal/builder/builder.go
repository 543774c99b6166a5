package builder

import (
	"fmt"
	"net/http"
	"time"

	"github.com/futig/mitr-backend/internal/api"
	assessmentapi "github.com/futig/mitr-backend/internal/api/assessment"
	authapi "github.com/futig/mitr-backend/internal/api/auth"
	chatapi "github.com/futig/mitr-backend/internal/api/chat"
	resourcesapi "github.com/futig/mitr-backend/internal/api/resources"
	"github.com/futig/mitr-backend/internal/config"
	"github.com/futig/mitr-backend/internal/pkg/validator"
	"github.com/futig/mitr-backend/internal/repository"
	"github.com/futig/mitr-backend/internal/telegram"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	d, err := buildDeps(cfg, logger)
	if err != nil {
		return nil, err
	}

	v := validator.NewValidator(cfg.MaxTextLength)

	router := api.SetupRouter(api.Handlers{
		Assessment: assessmentapi.NewHandler(d.assessments, v),
		Chat:       chatapi.NewHandler(d.chats, v),
		Resources:  resourcesapi.NewHandler(v),
		Auth:       authapi.NewHandler(d.auth, v),
	}, api.RouterConfig{
		AllowedOrigin:  cfg.CORSAllowedOrigin,
		RequestTimeout: cfg.RequestTimeout,
		Users:          d.auth,
		Gatherer:       d.registry,
	}, logger)
	logger.Info("HTTP router configured")

	// Remote calls may use the whole request timeout
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	app := &App{
		server: server,
		logger: logger,
	}

	if cfg.TelegramCfg.Embedded {
		if cfg.TelegramCfg.BotToken == "" {
			return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required when TELEGRAM_EMBEDDED is set")
		}
		app.bot, err = telegram.NewBot(&cfg.TelegramCfg, repository.NewTelegramStateStore(cfg.SessionTTL), d.assessments, logger)
		if err != nil {
			return nil, fmt.Errorf("initialize telegram bot: %w", err)
		}
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
		zap.Bool("telegram_embedded", app.bot != nil),
	)

	return app, nil
}

// BuildTelegramBot creates and initializes the Telegram bot
func BuildTelegramBot() (telegram.Bot, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building Telegram bot",
		zap.String("environment", cfg.Environment),
	)

	if cfg.TelegramCfg.BotToken == "" {
		return nil, nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required to run the bot")
	}

	d, err := buildDeps(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	storage := repository.NewTelegramStateStore(cfg.SessionTTL)

	bot, err := telegram.NewBot(&cfg.TelegramCfg, storage, d.assessments, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	logger.Info("Telegram bot built successfully",
		zap.String("environment", cfg.Environment),
	)

	return bot, logger, nil
}
