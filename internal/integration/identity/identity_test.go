package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/futig/mitr-backend/internal/config"
	"github.com/futig/mitr-backend/internal/entity"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "pkce", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon", r.Header.Get("apikey"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "code-1", body["auth_code"])
		assert.Equal(t, "verifier-1", body["code_verifier"])

		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer","user":{"id":"u-1","email":"a@b.c"}}`))
	}))
	defer srv.Close()

	c := NewConnector(config.IdentityConfig{URL: srv.URL + "/", AnonKey: "anon", Timeout: time.Second}, zap.NewNop())

	session, err := c.ExchangeCode(context.Background(), "code-1", "verifier-1")
	require.NoError(t, err)
	assert.Equal(t, "tok", session.AccessToken)
	assert.Equal(t, "u-1", session.User.ID)
}

func TestGetUserProviderMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer expired", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"msg":"JWT expired"}`))
	}))
	defer srv.Close()

	c := NewConnector(config.IdentityConfig{URL: srv.URL, AnonKey: "anon", Timeout: time.Second}, zap.NewNop())

	_, err := c.GetUser(context.Background(), "expired")
	require.Error(t, err)
	assert.Equal(t, "JWT expired", ProviderMessage(err))
}

func signed(t *testing.T, secret string, method jwt.SigningMethod, c jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, c).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestVerifier(t *testing.T) {
	v := NewVerifier("secret")
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	t.Run("valid", func(t *testing.T) {
		token := signed(t, "secret", jwt.SigningMethodHS256, claims{
			Email:            "a@b.c",
			RegisteredClaims: jwt.RegisteredClaims{Subject: "u-1", ExpiresAt: future},
		})
		user, err := v.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "u-1", user.ID)
		assert.Equal(t, "a@b.c", user.Email)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := signed(t, "other", jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u-1", ExpiresAt: future})
		_, err := v.Verify(token)
		assert.ErrorIs(t, err, entity.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past := jwt.NewNumericDate(time.Now().Add(-time.Hour))
		token := signed(t, "secret", jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u-1", ExpiresAt: past})
		_, err := v.Verify(token)
		assert.ErrorIs(t, err, entity.ErrInvalidToken)
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		token := signed(t, "secret", jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "u-1", ExpiresAt: future})
		_, err := v.Verify(token)
		assert.ErrorIs(t, err, entity.ErrInvalidToken)
	})
}
