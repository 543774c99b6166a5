package builder

import (
	"context"
	"fmt"

	"github.com/futig/mitr-backend/internal/config"
	"github.com/futig/mitr-backend/internal/entity"
	"github.com/futig/mitr-backend/internal/integration/chatbot"
	"github.com/futig/mitr-backend/internal/integration/identity"
	"github.com/futig/mitr-backend/internal/integration/notify"
	"github.com/futig/mitr-backend/internal/integration/screener"
	"github.com/futig/mitr-backend/internal/pkg/metrics"
	"github.com/futig/mitr-backend/internal/playback"
	"github.com/futig/mitr-backend/internal/repository"
	"github.com/futig/mitr-backend/internal/usecase/assessment"
	"github.com/futig/mitr-backend/internal/usecase/auth"
	"github.com/futig/mitr-backend/internal/usecase/chat"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const screenerVoice = "screener"

type screenerBackend interface {
	assessment.Screener
	Synthesize(ctx context.Context, text string) (*entity.Audio, error)
}

type chatBackend interface {
	chat.Chatbot
	Synthesize(ctx context.Context, text string) (*entity.Audio, error)
	Voice() string
}

// deps holds the usecases shared by the HTTP server and the Telegram bot
type deps struct {
	registry    *prometheus.Registry
	assessments *assessment.Usecase
	chats       *chat.Usecase
	auth        *auth.Usecase
}

func buildDeps(cfg *config.Config, logger *zap.Logger) (*deps, error) {
	registry := metrics.NewRegistry()
	m, err := metrics.New(registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	var (
		screenerConn screenerBackend
		chatConn     chatBackend
	)
	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		screenerConn = screener.NewMockConnector(logger)
		chatConn = chatbot.NewMockConnector(logger)
	} else {
		logger.Info("Using real connectors for external services")
		screenerConn = screener.NewConnector(cfg.ScreenerConnectorCfg, m.FetchObserver("screener"), logger)
		chatConn = chatbot.NewConnector(cfg.ChatConnectorCfg, m.FetchObserver("chat"), logger)
	}
	notifier := notify.NewConnector(cfg.NotifyConnectorCfg, m.FetchObserver("notify"), logger)

	screenerSynth, err := playback.NewCachedSynthesizer(screenerConn, screenerVoice, cfg.PlaybackCfg.CacheSize)
	if err != nil {
		return nil, err
	}
	chatSynth, err := playback.NewCachedSynthesizer(chatConn, chatConn.Voice(), cfg.PlaybackCfg.CacheSize)
	if err != nil {
		return nil, err
	}

	playerOpts := []playback.Option{playback.WithSynthesisTimeout(cfg.PlaybackCfg.SynthesisTimeout)}

	assessments := assessment.NewUsecase(
		repository.NewSessionStore(cfg.SessionTTL),
		screenerConn,
		notifier,
		screenerSynth,
		logger,
		assessment.WithMetrics(m),
		assessment.WithPlayerOptions(playerOpts...),
	)

	chats := chat.NewUsecase(
		repository.NewWorkspaceStore(cfg.SessionTTL),
		chatConn,
		chatSynth,
		logger,
		chat.WithMetrics(m),
		chat.WithPlayerOptions(playerOpts...),
	)

	logger.Info("Use cases initialized")

	return &deps{
		registry:    registry,
		assessments: assessments,
		chats:       chats,
		auth:        buildAuth(cfg.IdentityCfg, logger),
	}, nil
}

// buildAuth leaves the provider unset when sign-in is not configured
func buildAuth(cfg config.IdentityConfig, logger *zap.Logger) *auth.Usecase {
	var (
		provider auth.Provider
		verifier auth.TokenVerifier
	)

	if cfg.Configured() {
		provider = identity.NewConnector(cfg, logger)
	} else {
		logger.Info("Identity provider is not configured, sign-in is disabled")
	}
	if cfg.JWTSecret != "" {
		verifier = identity.NewVerifier(cfg.JWTSecret)
	}

	return auth.NewUsecase(provider, verifier, identity.ProviderMessage)
}
