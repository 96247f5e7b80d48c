package dao

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestStoreRegistry_AcquireSharesHandle(t *testing.T) {
	reg := NewStoreRegistry(t.TempDir(), nil)
	t.Cleanup(func() { _ = reg.CloseAll() })
	ctx := context.Background()

	var wg sync.WaitGroup
	handles := make([]*gorm.DB, 8)
	for i := range handles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			db, release, err := reg.Acquire(ctx, 7)
			if !assert.NoError(t, err) {
				return
			}
			defer release()
			handles[i] = db
		}(i)
	}
	wg.Wait()

	for _, h := range handles {
		assert.Same(t, handles[0], h)
	}
	assert.Equal(t, 1, reg.OpenCount())
	assert.FileExists(t, reg.Path(7))
}

func TestStoreRegistry_ReleaseIdle(t *testing.T) {
	reg := NewStoreRegistry(t.TempDir(), nil)
	t.Cleanup(func() { _ = reg.CloseAll() })
	ctx := context.Background()

	_, release1, err := reg.Acquire(ctx, 1)
	require.NoError(t, err)
	_, release2, err := reg.Acquire(ctx, 2)
	require.NoError(t, err)
	release1()

	// 被占用的连接不会被回收
	assert.Equal(t, 1, reg.ReleaseIdle(0))
	assert.Equal(t, 1, reg.OpenCount())

	release2()
	release2() // 重复释放无副作用
	assert.Equal(t, 0, reg.ReleaseIdle(time.Hour))
	assert.Equal(t, 1, reg.ReleaseIdle(0))
	assert.Equal(t, 0, reg.OpenCount())

	// 回收后可以重新打开
	require.NoError(t, reg.WithStore(ctx, 1, func(db *gorm.DB) error { return nil }))
}

func TestStoreRegistry_UIDs(t *testing.T) {
	dir := t.TempDir()
	reg := NewStoreRegistry(dir, nil)
	t.Cleanup(func() { _ = reg.CloseAll() })

	for _, uid := range []int64{3, 1} {
		require.NoError(t, reg.WithStore(context.Background(), uid, func(db *gorm.DB) error { return nil }))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "abc.db"), []byte("x"), 0o644))

	uids, err := reg.UIDs()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, uids)

	empty := NewStoreRegistry(filepath.Join(dir, "missing"), nil)
	uids, err = empty.UIDs()
	require.NoError(t, err)
	assert.Empty(t, uids)
}
