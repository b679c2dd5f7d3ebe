package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/culturehub/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

var epoch = time.Unix(1_700_000_000, 0)

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: epoch}
	issuer := NewTokenIssuer([]byte("super-secret"), time.Hour, clock.Now)

	tok, exp, err := issuer.Issue("user-123")
	require.NoError(t, err)
	assert.Equal(t, epoch.Add(time.Hour), exp)

	got, err := issuer.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", got)
}

func TestVerify_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: epoch}
	issuer := NewTokenIssuer([]byte("secret"), time.Hour, clock.Now)

	tok, _, err := issuer.Issue("u1")
	require.NoError(t, err)

	clock.t = epoch.Add(time.Hour - time.Second)
	_, err = issuer.Verify(tok)
	assert.NoError(t, err, "token must be valid just before expiry")

	clock.t = epoch.Add(time.Hour)
	_, err = issuer.Verify(tok)
	assert.ErrorIs(t, err, common.ErrTokenExpired, "now == exp is expired")

	clock.t = epoch.Add(2 * time.Hour)
	_, err = issuer.Verify(tok)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestVerify_ExpiryBoundary_FractionalIssue(t *testing.T) {
	t.Parallel()

	issuedAt := epoch.Add(900 * time.Millisecond)
	clock := &fakeClock{t: issuedAt}
	issuer := NewTokenIssuer([]byte("secret"), time.Hour, clock.Now)

	tok, exp, err := issuer.Issue("u1")
	require.NoError(t, err)
	assert.Equal(t, epoch.Add(time.Hour+time.Second), exp)
	assert.False(t, exp.Before(issuedAt.Add(time.Hour)))

	clock.t = issuedAt.Add(time.Hour - 500*time.Millisecond)
	_, err = issuer.Verify(tok)
	assert.NoError(t, err, "token must be valid for its full lifetime")

	clock.t = exp
	_, err = issuer.Verify(tok)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, _, err := NewTokenIssuer([]byte("right-secret"), time.Hour, nil).Issue("u2")
	require.NoError(t, err)

	_, err = NewTokenIssuer([]byte("wrong-secret"), time.Hour, nil).Verify(tok)
	assert.ErrorIs(t, err, common.ErrInvalidSignature)
}

func TestVerify_TamperedPayload(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer([]byte("k"), time.Hour, nil)
	tok, _, err := issuer.Issue("u3")
	require.NoError(t, err)

	other, _, err := issuer.Issue("someone-else")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	otherParts := strings.Split(other, ".")
	forged := parts[0] + "." + otherParts[1] + "." + parts[2]

	_, err = issuer.Verify(forged)
	assert.ErrorIs(t, err, common.ErrInvalidSignature)
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	t.Parallel()

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           "admin",
	})
	tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenIssuer([]byte("k"), time.Hour, nil).Verify(tok)
	assert.ErrorIs(t, err, common.ErrInvalidSignature)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer([]byte("k"), time.Hour, nil)
	for _, tok := range []string{"", "not-a-jwt", "not.a.jwt", "a.b"} {
		_, err := issuer.Verify(tok)
		assert.ErrorIs(t, err, common.ErrMalformedToken, tok)
	}
}

func TestVerify_MissingClaims(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	issuer := NewTokenIssuer(secret, time.Hour, nil)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u"}).SignedString(secret)
	require.NoError(t, err)
	_, err = issuer.Verify(noExp)
	assert.ErrorIs(t, err, common.ErrMalformedToken)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(secret)
	require.NoError(t, err)
	_, err = issuer.Verify(noUser)
	assert.ErrorIs(t, err, common.ErrMalformedToken)
}
