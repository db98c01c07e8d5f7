package auth

import (
	"testing"
	"time"

	"walk-booking/pkg/apperr"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyRoundTrip(t *testing.T) {
	v := NewVerifier("secret", "walk-auth")

	tok, err := v.Sign("sub-1", "a@example.com", "Ann", time.Hour)
	require.NoError(t, err)

	claims, err := v.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "sub-1", claims.Subject)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, "Ann", claims.Name)
}

func TestVerifyRejects(t *testing.T) {
	v := NewVerifier("secret", "walk-auth")

	expired, err := v.Sign("sub-1", "a@example.com", "", -time.Minute)
	require.NoError(t, err)

	otherKey, err := NewVerifier("other", "walk-auth").Sign("sub-1", "a@example.com", "", time.Hour)
	require.NoError(t, err)

	otherIssuer, err := NewVerifier("secret", "someone-else").Sign("sub-1", "a@example.com", "", time.Hour)
	require.NoError(t, err)

	noSubject, err := v.Sign("", "a@example.com", "", time.Hour)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-1", Issuer: "walk-auth"},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-1", Issuer: "walk-auth", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]string{
		"expired":      expired,
		"other key":    otherKey,
		"other issuer": otherIssuer,
		"no subject":   noSubject,
		"no expiry":    noExpiry,
		"alg none":     none,
		"garbage":      "not.a.token",
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(tok)
			assert.ErrorIs(t, err, apperr.ErrUnauthorized)
		})
	}
}
