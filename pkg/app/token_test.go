package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_GenerateAndParse(t *testing.T) {
	cfg := TokenConfig{
		SecretKey: "user-secret",
		Expiry:    24 * time.Hour,
		Issuer:    "user-issuer",
	}
	tm := NewTokenManager(cfg)

	token, err := tm.Generate(1001, "testuser", "127.0.0.1")
	require.NoError(t, err)

	claims, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(1001), claims.UID)
	assert.Equal(t, "testuser", claims.Nickname)
	assert.Equal(t, "127.0.0.1", claims.IP)

	expectedExp := time.Now().Add(cfg.Expiry)
	assert.InDelta(t, expectedExp.Unix(), claims.ExpiresAt.Unix(), 2)

	assert.NoError(t, tm.Validate(token))
}

func TestTokenManager_RejectsForeignTokens(t *testing.T) {
	tm := NewTokenManager(TokenConfig{SecretKey: "user-secret"})

	other := NewTokenManager(TokenConfig{SecretKey: "wrong-secret"})
	wrongToken, err := other.Generate(1, "", "")
	require.NoError(t, err)
	assert.ErrorIs(t, tm.Validate(wrongToken), ErrInvalidToken)

	token, err := tm.Generate(1, "", "")
	require.NoError(t, err)
	assert.Error(t, tm.Validate(token+"tampered"))

	otherIssuer := NewTokenManager(TokenConfig{SecretKey: "user-secret", Issuer: "someone-else"})
	foreign, err := otherIssuer.Generate(1, "", "")
	require.NoError(t, err)
	assert.Error(t, tm.Validate(foreign))
}

func TestTokenManager_Expired(t *testing.T) {
	tm := NewTokenManager(TokenConfig{SecretKey: "user-secret", Expiry: -time.Minute})

	token, err := tm.Generate(1, "", "")
	require.NoError(t, err)
	assert.Error(t, tm.Validate(token))
}
