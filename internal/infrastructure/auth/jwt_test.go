package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	s := NewJWTService("secret", "candlepin", time.Minute)

	token, err := s.Generate("alice")
	require.NoError(t, err)

	claims, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Principal)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "candlepin", claims.Issuer)
}

func TestJWTService_Rejects(t *testing.T) {
	s := NewJWTService("secret", "candlepin", time.Minute)

	_, err := s.Generate("")
	assert.ErrorIs(t, err, ErrPrincipalMissing)

	token, err := s.Generate("alice")
	require.NoError(t, err)

	_, err = NewJWTService("other", "candlepin", time.Minute).Verify(token)
	assert.Error(t, err, "wrong secret")

	_, err = NewJWTService("secret", "someone-else", time.Minute).Verify(token)
	assert.Error(t, err, "wrong issuer")

	later := NewJWTService("secret", "candlepin", time.Minute)
	later.now = func() time.Time { return time.Now().UTC().Add(2 * time.Minute) }
	_, err = later.Verify(token)
	assert.Error(t, err, "expired")

	_, err = s.Verify("not-a-token")
	assert.Error(t, err)
}
