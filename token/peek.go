package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the part of the API's access token the portal displays. The token is never
// verified here; only the API can say whether it is valid.
type Claims struct {
	Subject   string
	ExpiresAt time.Time // zero when the token has no exp claim
}

// Peek decodes the claims of a JWT access token without checking its signature.
// Opaque (non-JWT) tokens return an error.
func Peek(raw string) (Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return Claims{}, fmt.Errorf("[token Peek] %w", err)
	}

	var c Claims
	sub, err := claims.GetSubject()
	if err != nil {
		return Claims{}, fmt.Errorf("[token Peek] sub: %w", err)
	}
	c.Subject = sub

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return Claims{}, fmt.Errorf("[token Peek] exp: %w", err)
	}
	if exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}

// Expired reports whether the claims carry an exp that is before now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && c.ExpiresAt.Before(now)
}
