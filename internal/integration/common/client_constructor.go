package common

import (
	"github.com/futig/mitr-backend/internal/config"
	pkgRetry "github.com/futig/mitr-backend/internal/pkg/retry"
	pkgHTTP "github.com/futig/mitr-backend/pkg/http"
	"go.uber.org/zap"
)

func NewBaseConnector(
	cfg config.HTTPClientConfig,
	retry pkgRetry.RetryConfig,
	observer pkgHTTP.AttemptObserver,
	logger *zap.Logger,
	extra ...pkgHTTP.HttpOpts,
) *pkgHTTP.Connector {
	connCfg := &pkgHTTP.ConnectorConfig{
		Logger:   logger,
		BaseURL:  cfg.Url,
		Retry:    retry.Policy(),
		Observer: observer,
	}

	opts := []pkgHTTP.HttpOpts{
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithRequestLogging(),
		pkgHTTP.WithAuthToken(cfg.Token),
	}

	return pkgHTTP.NewConnector(connCfg, append(opts, extra...)...)
}
