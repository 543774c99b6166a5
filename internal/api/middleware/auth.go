package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/futig/mitr-backend/internal/entity"
	"github.com/futig/mitr-backend/internal/pkg/logger"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type UserResolver interface {
	CurrentUser(ctx context.Context, accessToken string) (*entity.AuthUser, error)
}

type userContextKey struct{}
type tokenContextKey struct{}

// Auth resolves an optional bearer token. Requests without a token, or with one
// that does not resolve, pass through anonymously.
func Auth(resolver UserResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" || resolver == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), tokenContextKey{}, token)
			user, err := resolver.CurrentUser(ctx, token)
			if err != nil {
				ctxzap.Debug(ctx, "access token not accepted", zap.Error(err))
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			ctx = context.WithValue(ctx, userContextKey{}, user)
			ctx = logger.AddFields(ctx, zap.String("user_id", user.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// UserFromContext returns the signed-in user, if any.
func UserFromContext(ctx context.Context) (*entity.AuthUser, bool) {
	user, ok := ctx.Value(userContextKey{}).(*entity.AuthUser)
	return user, ok
}

// TokenFromContext returns the bearer token seen by Auth, even when it was rejected.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey{}).(string)
	return token
}
