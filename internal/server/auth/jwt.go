// Package auth holds the credential primitives of culturehub: bearer token
// signing and verification, password hashing and reset token generation.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/culturehub/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the bearer token payload: the standard registered claims plus
// the user identifier.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// TokenIssuer signs and verifies HMAC bearer tokens with a fixed secret and
// lifetime. The clock is injectable for tests.
type TokenIssuer struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenIssuer returns an issuer using secret and lifetime. A nil now
// defaults to time.Now.
func NewTokenIssuer(secret []byte, lifetime time.Duration, now func() time.Time) *TokenIssuer {
	if now == nil {
		now = time.Now
	}
	return &TokenIssuer{secret: secret, lifetime: lifetime, now: now}
}

// Issue returns a signed token for userID and the instant it stops being valid.
// NumericDate keeps whole seconds, so the expiry is rounded up: a token is
// never rejected before the full lifetime has passed.
func (i *TokenIssuer) Issue(userID string) (string, time.Time, error) {
	now := i.now()
	issuedAt := jwt.NewNumericDate(now)
	expiresAt := jwt.NewNumericDate(ceilSecond(now.Add(i.lifetime)))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  issuedAt,
			ExpiresAt: expiresAt,
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt.Time, nil
}

func ceilSecond(t time.Time) time.Time {
	whole := t.Truncate(time.Second)
	if whole.Equal(t) {
		return whole
	}
	return whole.Add(time.Second)
}

// Verify checks the signature and expiry of tokenString and returns the user
// identifier it carries. Errors are common.ErrInvalidSignature,
// common.ErrTokenExpired or common.ErrMalformedToken.
func (i *TokenIssuer) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return "", common.ErrMalformedToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", common.ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", common.ErrTokenExpired
		default:
			return "", fmt.Errorf("%w: %v", common.ErrMalformedToken, err)
		}
	}

	if claims.UserID == "" {
		return "", common.ErrMalformedToken
	}
	return claims.UserID, nil
}
