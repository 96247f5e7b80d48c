package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	internalApp "github.com/haierkeys/jot-sync-service/internal/app"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefaultConfig_ReplacesTokenKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "config.yaml")
	tpl := "security:\n  auth-token-key: jot-sync-Auth-Token\n"

	require.NoError(t, writeDefaultConfig(path, tpl))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "jot-sync-Auth-Token")
	assert.True(t, strings.HasPrefix(string(b), "security:\n  auth-token-key: "))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestResolveConfigPath(t *testing.T) {
	p, err := resolveConfigPath("custom.yaml")
	require.NoError(t, err)
	assert.Equal(t, "custom.yaml", p)

	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("config.yaml", []byte("server: {}\n"), 0600))

	p, err = resolveConfigPath("")
	require.NoError(t, err)
	assert.Equal(t, "config.yaml", p)
}

func TestResolveConfigPath_GeneratesDefault(t *testing.T) {
	t.Chdir(t.TempDir())
	old := configDefault
	configDefault = "security:\n  auth-token-key: jot-sync-Auth-Token\n"
	t.Cleanup(func() { configDefault = old })

	p, err := resolveConfigPath("")
	require.NoError(t, err)
	assert.Equal(t, generatedConfigPath, p)
	assert.FileExists(t, generatedConfigPath)
}

func TestHasWeakTokenKey(t *testing.T) {
	cfg := &internalApp.AppConfig{}
	for _, key := range []string{"", "6666", "jot-sync-Auth-Token", " 6666 "} {
		cfg.Security.AuthTokenKey = key
		assert.True(t, hasWeakTokenKey(cfg), key)
	}
	cfg.Security.AuthTokenKey = "c2VjcmV0LXNlY3JldC1zZWNyZXQ="
	assert.False(t, hasWeakTokenKey(cfg))
}

func TestNormalizeListen(t *testing.T) {
	assert.Equal(t, ":9000", normalizeListen("9000"))
	assert.Equal(t, "127.0.0.1:9000", normalizeListen("127.0.0.1:9000"))
	assert.Equal(t, ":9000", normalizeListen(":9000"))
}
