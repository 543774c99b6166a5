package identity

import (
	"fmt"

	"github.com/futig/mitr-backend/internal/entity"
	"github.com/golang-jwt/jwt/v5"
)

type claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks access tokens signed with the project's shared secret.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(token string) (*entity.AuthUser, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidToken, err)
	}
	if !parsed.Valid || c.Subject == "" {
		return nil, entity.ErrInvalidToken
	}

	return &entity.AuthUser{ID: c.Subject, Email: c.Email}, nil
}
