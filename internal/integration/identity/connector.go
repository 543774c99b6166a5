package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/futig/mitr-backend/internal/config"
	"github.com/futig/mitr-backend/internal/entity"
	pkghttp "github.com/futig/mitr-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	tokenEndpoint = "/auth/v1/token?grant_type=pkce"
	userEndpoint  = "/auth/v1/user"
)

// Connector talks to the hosted identity provider's auth REST API.
type Connector struct {
	connector *pkghttp.Connector
}

func NewConnector(cfg config.IdentityConfig, logger *zap.Logger) *Connector {
	connCfg := &pkghttp.ConnectorConfig{
		BaseURL: strings.TrimRight(cfg.URL, "/"),
		Logger:  logger,
		Retry:   pkghttp.DefaultRetryPolicy(),
	}

	return &Connector{
		connector: pkghttp.NewConnector(connCfg,
			pkghttp.WithRequestTimeout(cfg.Timeout),
			pkghttp.WithRequestLogging(),
			pkghttp.WithAPIKey(cfg.AnonKey),
		),
	}
}

type pkceRequest struct {
	AuthCode     string `json:"auth_code"`
	CodeVerifier string `json:"code_verifier"`
}

// ExchangeCode trades an authorization code and its PKCE verifier for a session.
func (c *Connector) ExchangeCode(ctx context.Context, code, verifier string) (*entity.AuthSession, error) {
	ctxzap.Debug(ctx, "exchanging auth code")

	var session entity.AuthSession
	err := c.connector.DoRequest(ctx, http.MethodPost, tokenEndpoint, pkceRequest{
		AuthCode:     code,
		CodeVerifier: verifier,
	}, &session)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	return &session, nil
}

// GetUser returns the user the access token belongs to.
func (c *Connector) GetUser(ctx context.Context, accessToken string) (*entity.AuthUser, error) {
	var user entity.AuthUser
	err := c.connector.DoRequest(ctx, http.MethodGet, userEndpoint, nil, &user,
		pkghttp.WithHeader("Authorization", "Bearer "+accessToken),
	)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

type providerError struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
	Error            string `json:"error"`
}

// ProviderMessage extracts the human readable message from a provider error response.
func ProviderMessage(err error) string {
	var httpErr *pkghttp.HTTPError
	if !errors.As(err, &httpErr) {
		return err.Error()
	}

	var body providerError
	if json.Unmarshal([]byte(httpErr.Message), &body) == nil {
		for _, msg := range []string{body.Msg, body.Message, body.ErrorDescription, body.Error} {
			if msg != "" {
				return msg
			}
		}
	}

	if msg := strings.TrimSpace(httpErr.Message); msg != "" {
		return msg
	}
	return http.StatusText(httpErr.StatusCode)
}
