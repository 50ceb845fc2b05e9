package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-intern-portal/token"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("api-secret"))
	require.NoError(t, err)
	return raw
}

func TestPeekReadsSubjectAndExpiry(t *testing.T) {
	exp := time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)
	raw := signed(t, jwt.MapClaims{"sub": "a@b.com", "exp": exp.Unix()})

	claims, err := token.Peek(raw)
	require.NoError(t, err)
	require.Equal(t, "a@b.com", claims.Subject)
	require.True(t, claims.ExpiresAt.Equal(exp))
	require.False(t, claims.Expired(exp.Add(-time.Minute)))
	require.True(t, claims.Expired(exp.Add(time.Minute)))
}

func TestPeekWithoutExpiry(t *testing.T) {
	claims, err := token.Peek(signed(t, jwt.MapClaims{"sub": "a@b.com"}))
	require.NoError(t, err)
	require.True(t, claims.ExpiresAt.IsZero())
	require.False(t, claims.Expired(time.Now()))
}

func TestPeekIgnoresSignature(t *testing.T) {
	raw := signed(t, jwt.MapClaims{"sub": "a@b.com"})
	tampered := raw[:len(raw)-4] + "AAAA"

	claims, err := token.Peek(tampered)
	require.NoError(t, err)
	require.Equal(t, "a@b.com", claims.Subject)
}

func TestPeekRejectsOpaqueToken(t *testing.T) {
	_, err := token.Peek("opaque-session-token")
	require.Error(t, err)
}
