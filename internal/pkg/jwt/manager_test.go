package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, issuer, audience string, ttl time.Duration) *Manager {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return NewManager(key, &key.PublicKey, issuer, audience, "test-kid", ttl)
}

func TestGenerateAndVerify(t *testing.T) {
	m := newTestManager(t, "lumen-service", "lumen-users", time.Hour)

	token, jti, err := m.Generate(42, "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, jti)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, jti, claims.ID)
	assert.True(t, claims.IsAdmin())
}

func TestVerifyRejectsForeignToken(t *testing.T) {
	issuing := newTestManager(t, "lumen-service", "lumen-users", time.Hour)
	verifying := newTestManager(t, "lumen-service", "lumen-users", time.Hour)

	token, _, err := issuing.Generate(1, "user")
	require.NoError(t, err)

	// Different key pair, signature check fails.
	_, err = verifying.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	issuing := NewManager(key, &key.PublicKey, "someone-else", "lumen-users", "", time.Hour)
	verifying := NewManager(key, &key.PublicKey, "lumen-service", "lumen-users", "", time.Hour)

	token, _, err := issuing.Generate(1, "user")
	require.NoError(t, err)

	_, err = verifying.Verify(token)
	assert.ErrorContains(t, err, "invalid issuer")
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := newTestManager(t, "lumen-service", "lumen-users", -time.Minute)

	token, _, err := m.Generate(1, "user")
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.Error(t, err)
}
