package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/futig/mitr-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const homeRedirect = "/"

// Provider is the hosted identity provider.
type Provider interface {
	ExchangeCode(ctx context.Context, code, verifier string) (*entity.AuthSession, error)
	GetUser(ctx context.Context, accessToken string) (*entity.AuthUser, error)
}

// TokenVerifier checks access tokens locally.
type TokenVerifier interface {
	Verify(token string) (*entity.AuthUser, error)
}

// Usecase completes sign-in callbacks and resolves the current user.
// A nil provider means auth is not configured.
type Usecase struct {
	provider Provider
	verifier TokenVerifier
	describe func(error) string
}

func NewUsecase(provider Provider, verifier TokenVerifier, describe func(error) string) *Usecase {
	if describe == nil {
		describe = func(err error) string { return err.Error() }
	}
	return &Usecase{
		provider: provider,
		verifier: verifier,
		describe: describe,
	}
}

func (uc *Usecase) Configured() bool {
	return uc.provider != nil
}

// CompleteCallback exchanges the redirect code for a session.
// Provider failures are reported in the result message, not as errors.
func (uc *Usecase) CompleteCallback(ctx context.Context, code, verifier string) (*entity.CallbackResult, error) {
	if !uc.Configured() {
		return &entity.CallbackResult{Message: entity.AuthMsgNotConfigured}, entity.ErrAuthNotConfigured
	}

	if strings.TrimSpace(code) == "" || strings.TrimSpace(verifier) == "" {
		return &entity.CallbackResult{Message: entity.AuthMsgNoSession}, nil
	}

	session, err := uc.provider.ExchangeCode(ctx, code, verifier)
	if err != nil {
		ctxzap.Warn(ctx, "sign in failed", zap.Error(err))
		return &entity.CallbackResult{Message: entity.AuthMsgSignInFailed + uc.describe(err)}, nil
	}
	if session == nil || session.AccessToken == "" {
		return &entity.CallbackResult{Message: entity.AuthMsgNoSession}, nil
	}

	return &entity.CallbackResult{
		Message:  entity.AuthMsgSignedIn,
		Redirect: homeRedirect,
		Session:  session,
	}, nil
}

// CurrentUser resolves the user behind an access token.
func (uc *Usecase) CurrentUser(ctx context.Context, accessToken string) (*entity.AuthUser, error) {
	if accessToken == "" {
		return nil, entity.ErrNoAuthSession
	}

	if uc.verifier != nil {
		return uc.verifier.Verify(accessToken)
	}
	if !uc.Configured() {
		return nil, entity.ErrAuthNotConfigured
	}

	user, err := uc.provider.GetUser(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", entity.ErrInvalidToken, uc.describe(err))
	}
	if user.ID == "" {
		return nil, entity.ErrNoAuthSession
	}
	return user, nil
}

// SessionStatus mirrors the callback page: it reports whether the token still maps to a signed in user.
func (uc *Usecase) SessionStatus(ctx context.Context, accessToken string) *entity.CallbackResult {
	if !uc.Configured() && uc.verifier == nil {
		return &entity.CallbackResult{Message: entity.AuthMsgNotConfigured}
	}

	user, err := uc.CurrentUser(ctx, accessToken)
	switch {
	case err == nil:
		return &entity.CallbackResult{
			Message:  entity.AuthMsgSignedIn,
			Redirect: homeRedirect,
			Session:  &entity.AuthSession{AccessToken: accessToken, User: *user},
		}
	case errors.Is(err, entity.ErrNoAuthSession):
		return &entity.CallbackResult{Message: entity.AuthMsgNoSession}
	default:
		return &entity.CallbackResult{Message: entity.AuthMsgSignInFailed + strings.TrimPrefix(err.Error(), entity.ErrInvalidToken.Error()+": ")}
	}
}
