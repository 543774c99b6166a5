package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/futig/mitr-backend/internal/config"
	"github.com/futig/mitr-backend/internal/entity"
	"github.com/futig/mitr-backend/internal/integration/common"
	pkghttp "github.com/futig/mitr-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

var ErrWebhookNotConfigured = errors.New("results webhook url is not configured")

// Connector posts results notifications to the configured webhook.
type Connector struct {
	config    config.NotifyConnectorConfig
	connector *pkghttp.Connector
}

func NewConnector(
	cfg config.NotifyConnectorConfig,
	observer pkghttp.AttemptObserver,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		config:    cfg,
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, cfg.Retry, observer, logger),
	}
}

func (c *Connector) Send(ctx context.Context, n *entity.ResultsNotification) error {
	if c.config.Url == "" {
		return ErrWebhookNotConfigured
	}

	ctxzap.Info(ctx, "sending results notification", zap.String("subject", n.Subject))

	err := c.connector.DoRequest(ctx, http.MethodPost, "", n, nil, pkghttp.WithURL(c.config.Url))
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}

	return nil
}
