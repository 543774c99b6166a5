package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/mitr-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr        string        `env:"SERVER_ADDR" envDefault:":8080"`
	CORSAllowedOrigin string        `env:"CORS_ALLOWED_ORIGIN" envDefault:"*"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`
	MaxTextLength     int           `env:"MAX_TEXT_LENGTH" envDefault:"4000"`

	// Idle sessions and chat workspaces are dropped after this long
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"2h"`

	// External service configurations
	ScreenerConnectorCfg ScreenerConnectorConfig `envPrefix:"SCREENER_"`
	ChatConnectorCfg     ChatConnectorConfig     `envPrefix:"CHAT_"`
	NotifyConnectorCfg   NotifyConnectorConfig   `envPrefix:"NOTIFY_"`
	IdentityCfg          IdentityConfig          `envPrefix:"SUPABASE_"`

	PlaybackCfg PlaybackConfig `envPrefix:"PLAYBACK_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Telegram bot configuration (optional)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Environment (set from flag, not from env var)
	Environment string
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string `env:"BOT_TOKEN"`
	UpdateTimeout      int    `env:"UPDATE_TIMEOUT" envDefault:"60"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	RateLimitBurst     int    `env:"RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownTimeout    int    `env:"SHUTDOWN_TIMEOUT" envDefault:"30"` // seconds
	SendAudio          bool   `env:"SEND_AUDIO" envDefault:"true"`
	// Embedded runs the bot inside the HTTP server process, sharing its sessions
	Embedded bool `env:"EMBEDDED" envDefault:"false"`
}

// ScreenerConnectorConfig describes the assessment backend (multipart form API).
type ScreenerConnectorConfig struct {
	HTTPClientConfig
	SubmitProfileEndpoint string               `env:"SUBMIT_PROFILE_ENDPOINT" envDefault:"/submit_profile"`
	StartSessionEndpoint  string               `env:"START_SESSION_ENDPOINT" envDefault:"/start_session"`
	SubmitAnswerEndpoint  string               `env:"SUBMIT_ANSWER_ENDPOINT" envDefault:"/submit_answer"`
	TTSEndpoint           string               `env:"TTS_ENDPOINT" envDefault:"/tts"`
	Retry                 pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// ChatConnectorConfig describes the conversational backend (URL-encoded form API).
type ChatConnectorConfig struct {
	HTTPClientConfig
	AskEndpoint string               `env:"ASK_ENDPOINT" envDefault:"/ask"`
	TTSEndpoint string               `env:"TTS_ENDPOINT" envDefault:"/tts"`
	Language    string               `env:"LANGUAGE" envDefault:"en-US"`
	Voice       string               `env:"VOICE" envDefault:"Kore"`
	Retry       pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// NotifyConnectorConfig describes the results webhook. SERVICE_URL is the full webhook URL.
type NotifyConnectorConfig struct {
	HTTPClientConfig
	Retry pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// IdentityConfig holds the hosted identity provider settings. Auth is disabled when URL or ANON_KEY is empty.
type IdentityConfig struct {
	URL       string        `env:"URL"`
	AnonKey   string        `env:"ANON_KEY"`
	JWTSecret string        `env:"JWT_SECRET"`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"15s"`
}

func (c IdentityConfig) Configured() bool {
	return c.URL != "" && c.AnonKey != ""
}

// PlaybackConfig bounds speech synthesis.
type PlaybackConfig struct {
	CacheSize        int           `env:"CACHE_SIZE" envDefault:"128"`
	SynthesisTimeout time.Duration `env:"SYNTHESIS_TIMEOUT" envDefault:"45s"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"60s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"45s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	return cfg, nil
}

// Parse reads and validates the configuration from the process environment.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if !cfg.EnableMocks {
		if cfg.ScreenerConnectorCfg.Url == "" {
			errors = append(errors, "SCREENER_SERVICE_URL is required unless ENABLE_MOCKS is set")
		}
		if cfg.ChatConnectorCfg.Url == "" {
			errors = append(errors, "CHAT_SERVICE_URL is required unless ENABLE_MOCKS is set")
		}
	}

	if cfg.TelegramCfg.RateLimitPerMinute < 1 || cfg.TelegramCfg.RateLimitPerMinute > 60 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", cfg.TelegramCfg.RateLimitPerMinute))
	}

	if cfg.TelegramCfg.RateLimitBurst < 1 || cfg.TelegramCfg.RateLimitBurst > 20 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_BURST must be between 1 and 20, got %d", cfg.TelegramCfg.RateLimitBurst))
	}

	if cfg.TelegramCfg.ShutdownTimeout < 1 || cfg.TelegramCfg.ShutdownTimeout > 300 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_SHUTDOWN_TIMEOUT must be between 1 and 300 seconds, got %d", cfg.TelegramCfg.ShutdownTimeout))
	}

	if cfg.PlaybackCfg.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("PLAYBACK_CACHE_SIZE must be positive, got %d", cfg.PlaybackCfg.CacheSize))
	}

	if cfg.MaxTextLength < 1 {
		errors = append(errors, fmt.Sprintf("MAX_TEXT_LENGTH must be positive, got %d", cfg.MaxTextLength))
	}

	if cfg.SessionTTL <= 0 {
		errors = append(errors, "SESSION_TTL must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
