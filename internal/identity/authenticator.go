// Package identity resolves caller identity from bearer tokens.
//
// Identity management itself (users, organizations, memberships) lives in an
// external provider. This package only verifies the tokens that provider
// issues and extracts the caller's user id, organization id and role.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pulsepage/pulsepage/internal/domain"
)

// ErrInvalidToken is returned when a token fails verification.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the JWT claims carried by provider-issued tokens.
type Claims struct {
	OrganizationID string `json:"org_id"`
	Role           string `json:"role"`
	jwt.RegisteredClaims
}

// Config contains authenticator configuration.
type Config struct {
	// SecretKey is the HMAC key shared with the identity provider.
	SecretKey string
	// TokenDuration is only used when issuing tokens (tests, tooling).
	TokenDuration time.Duration
}

// Authenticator verifies HMAC-signed bearer tokens.
type Authenticator struct {
	secret        []byte
	tokenDuration time.Duration
}

// NewAuthenticator creates a new token authenticator.
func NewAuthenticator(cfg Config) *Authenticator {
	duration := cfg.TokenDuration
	if duration <= 0 {
		duration = 24 * time.Hour
	}
	return &Authenticator{
		secret:        []byte(cfg.SecretKey),
		tokenDuration: duration,
	}
}

// ValidateToken verifies the token signature and returns the caller identity.
// An identity with an empty OrganizationID is valid at this layer; handlers
// map it to an organization-not-found response.
func (a *Authenticator) ValidateToken(_ context.Context, tokenString string) (domain.Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return domain.Identity{}, ErrInvalidToken
	}

	role := domain.Role(claims.Role)
	if role == "" {
		role = domain.RoleMember
	}

	return domain.Identity{
		UserID:         claims.Subject,
		OrganizationID: claims.OrganizationID,
		Role:           role,
	}, nil
}

// IssueToken signs a token for the given identity. The server never issues
// tokens in production (the external provider does); this exists for tests
// and local tooling.
func (a *Authenticator) IssueToken(ident domain.Identity) (string, error) {
	now := time.Now()
	claims := Claims{
		OrganizationID: ident.OrganizationID,
		Role:           string(ident.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ident.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenDuration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
