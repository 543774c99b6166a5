package chatbot

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/futig/mitr-backend/internal/config"
	"github.com/futig/mitr-backend/internal/entity"
	"github.com/futig/mitr-backend/internal/integration/common"
	pkghttp "github.com/futig/mitr-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector talks to the conversational backend using URL-encoded forms.
type Connector struct {
	config    config.ChatConnectorConfig
	connector *pkghttp.Connector
}

func NewConnector(
	cfg config.ChatConnectorConfig,
	observer pkghttp.AttemptObserver,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		config:    cfg,
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, cfg.Retry, observer, logger),
	}
}

type askResponse struct {
	Answer string `json:"answer"`
}

// Ask sends query within the given conversation and returns the raw markdown answer.
func (c *Connector) Ask(ctx context.Context, conversationID, query string) (string, error) {
	ctxzap.Debug(ctx, "asking chat backend", zap.Int("query_length", len(query)))

	var resp askResponse
	err := c.connector.DoFormRequest(ctx, c.config.AskEndpoint, pkghttp.FormBody(url.Values{
		"query":      {query},
		"session_id": {conversationID},
	}), &resp)
	if err != nil {
		return "", fmt.Errorf("ask: %w", err)
	}

	return resp.Answer, nil
}

func (c *Connector) Synthesize(ctx context.Context, text string) (*entity.Audio, error) {
	resp, err := c.connector.Fetch(ctx, http.MethodPost, c.config.TTSEndpoint,
		pkghttp.FormBody(url.Values{
			"text":  {text},
			"lang":  {c.config.Language},
			"voice": {c.config.Voice},
		}),
		pkghttp.WithAccept("audio/*"),
	)
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}

	return &entity.Audio{Data: resp.Body, ContentType: resp.ContentType()}, nil
}

// Voice identifies the configured voice; clip caches key on it.
func (c *Connector) Voice() string {
	return c.config.Language + "/" + c.config.Voice
}
