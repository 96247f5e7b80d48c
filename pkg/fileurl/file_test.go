package fileurl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePathAndIsExist(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "a", "b", "c.db")

	assert.False(t, IsExist(filepath.Dir(dst)))
	require.NoError(t, CreatePath(dst, 0o755))
	assert.True(t, IsExist(filepath.Dir(dst)))
	assert.False(t, IsExist(dst))
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "", ResolvePath("", "/srv"))
	assert.Equal(t, "/data/x", ResolvePath("/data/x", "/srv"))
	assert.Equal(t, filepath.Join("/srv", "storage", "notes"), ResolvePath("storage/notes", "/srv"))

	home, err := os.UserHomeDir()
	if err == nil {
		assert.Equal(t, filepath.Join(home, ".config/jot"), ResolvePath("~/.config/jot", "/srv"))
	}
}
