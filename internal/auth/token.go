// Package auth adapts the external identity provider: it turns a signed
// session token into the user identifier the encryption pipeline keys on.
// It never validates anything beyond the token itself.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/medvault/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the standard claims plus the owner identifier.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// Provider verifies HS256 tokens signed with a shared secret.
type Provider struct {
	secret []byte
}

// NewProvider returns a Provider for secret. An empty secret is rejected.
func NewProvider(secret string) (*Provider, error) {
	if secret == "" {
		return nil, errors.New("token secret is empty")
	}
	return &Provider{secret: []byte(secret)}, nil
}

// Issue signs a token for userID valid for ttl.
func (p *Provider) Issue(userID string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", common.ErrInvalidIdentifier
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
	})
	return token.SignedString(p.secret)
}

// UserID validates tokenString and returns the identifier it carries.
// Every validation problem wraps common.ErrInvalidToken; a valid token
// without an identifier is common.ErrInvalidIdentifier.
func (p *Provider) UserID(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", common.ErrInvalidToken
	}
	if claims.UserID == "" {
		return "", common.ErrInvalidIdentifier
	}

	return claims.UserID, nil
}
