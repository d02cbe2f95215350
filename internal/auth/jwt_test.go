package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, int64(42), userID)
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("secret-a", time.Hour).Issue(42)
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret-b", time.Hour).Verify(token)
	require.Error(t, err)
}

func TestVerifyExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute)

	token, err := issuer.Issue(42)
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	require.Error(t, err)
}

func TestVerifyGarbage(t *testing.T) {
	_, err := NewTokenIssuer("test-secret", time.Hour).Verify("not.a.token")
	require.Error(t, err)
}
