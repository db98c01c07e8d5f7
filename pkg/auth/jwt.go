// Package auth verifies bearer tokens issued by the identity provider.
package auth

import (
	"errors"
	"time"

	"walk-booking/pkg/apperr"

	jwt "github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

// Sign issues an HS256 token. Used by tests and local tooling; production
// tokens come from the identity provider.
func (v *Verifier) Sign(sub, email, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// Verify parses tokenStr and checks signature, expiry and issuer. Every
// failure is reported as apperr.ErrUnauthorized.
func (v *Verifier) Verify(tokenStr string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, "invalid or expired token", err)
	}

	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, apperr.Wrap(apperr.KindUnauthorized, "invalid or expired token", errors.New("invalid token"))
	}
	if c.Subject == "" {
		return nil, apperr.New(apperr.KindUnauthorized, "token has no subject")
	}
	return c, nil
}
