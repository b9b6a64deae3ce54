// Package auth inspects the JSON Web Tokens issued by the storefront backend
// and guards local routes that need a signed-in session.
// Tokens are signed by the backend, so the storefront only decodes their claims
// to learn the subject and expiry; it never verifies signatures.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrNoExpiry indicates a token without an exp claim.
var ErrNoExpiry = errors.New("auth: token has no expiry")

// Claims represents the claims the backend puts into access and refresh tokens.
// It embeds jwt.RegisteredClaims for standard fields like expiration time.
type Claims struct {
	UserID    int64  `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// ParseToken decodes the claims of tokenStr without verifying its signature.
func ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ExpiresAt returns the expiry of tokenStr.
func ExpiresAt(tokenStr string) (time.Time, error) {
	claims, err := ParseToken(tokenStr)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}
