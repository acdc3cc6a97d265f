package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_IssueAndParse(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour)

	raw, err := issuer.Issue("user-1", "EMPLOYEE", "sess-1")
	require.NoError(t, err)

	claims, err := issuer.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "EMPLOYEE", claims.Role)
	assert.Equal(t, "sess-1", claims.SessionID)
}

func TestIssuer_ParseRejectsWrongSecret(t *testing.T) {
	raw, err := NewIssuer("secret", time.Hour).Issue("user-1", "EMPLOYEE", "sess-1")
	require.NoError(t, err)

	_, err = NewIssuer("other", time.Hour).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_ParseExpired(t *testing.T) {
	issuer := NewIssuer("secret", time.Minute)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return base }

	raw, err := issuer.Issue("user-1", "EMPLOYEE", "sess-1")
	require.NoError(t, err)

	issuer.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = issuer.Parse(raw)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestIssuer_ParseRejectsOtherAlgorithms(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u", SessionID: "s"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewIssuer("secret", time.Hour).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_ParseRequiresSession(t *testing.T) {
	raw, err := NewIssuer("secret", time.Hour).Issue("user-1", "EMPLOYEE", "")
	require.NoError(t, err)

	_, err = NewIssuer("secret", time.Hour).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
