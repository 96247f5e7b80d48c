package local_fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS_SendContent(t *testing.T) {
	dir := t.TempDir()
	client, err := NewClient(&Config{SavePath: dir, CustomPath: "jot"})
	require.NoError(t, err)
	ctx := context.Background()

	modTime := time.Date(2023, 10, 1, 12, 0, 0, 0, time.UTC)
	saved, err := client.SendContent(ctx, "backup/1/a.json", []byte(`{"notes":[]}`), modTime)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "jot", "backup", "1", "a.json"), saved)

	raw, err := os.ReadFile(saved)
	require.NoError(t, err)
	assert.Equal(t, `{"notes":[]}`, string(raw))

	info, err := os.Stat(saved)
	require.NoError(t, err)
	assert.WithinDuration(t, modTime, info.ModTime(), time.Second)
}

func TestLocalFS_ListAndDelete(t *testing.T) {
	client, err := NewClient(&Config{SavePath: t.TempDir()})
	require.NoError(t, err)
	ctx := context.Background()

	for _, k := range []string{"backup/1/a.json", "backup/1/b.json", "backup/2/c.json"} {
		_, err := client.SendContent(ctx, k, []byte("x"), time.Time{})
		require.NoError(t, err)
	}

	objs, err := client.List(ctx, "backup/1")
	require.NoError(t, err)
	var keys []string
	for _, o := range objs {
		keys = append(keys, o.Key)
	}
	assert.ElementsMatch(t, []string{"backup/1/a.json", "backup/1/b.json"}, keys)

	require.NoError(t, client.Delete(ctx, "backup/1/a.json"))
	require.NoError(t, client.Delete(ctx, "backup/1/missing.json"))

	objs, err = client.List(ctx, "backup/1")
	require.NoError(t, err)
	assert.Len(t, objs, 1)

	objs, err = client.List(ctx, "nothing/here")
	require.NoError(t, err)
	assert.Empty(t, objs)
}

func TestNewClient_RequiresSavePath(t *testing.T) {
	_, err := NewClient(&Config{})
	assert.Error(t, err)
}
