package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/haierkeys/jot-sync-service/internal/domain"
	"github.com/haierkeys/jot-sync-service/pkg/storage"
	"github.com/haierkeys/jot-sync-service/pkg/workerpool"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestBackupService(t *testing.T, retention time.Duration) (*BackupService, *StoreService, string) {
	t.Helper()
	stores := newTestStoreService(t)
	pool := workerpool.New(workerpool.DefaultConfig(), zap.NewNop())
	t.Cleanup(func() { _ = pool.Shutdown(context.Background()) })

	dir := t.TempDir()
	st, err := storage.NewClient(context.Background(), &storage.Config{Type: storage.LOCAL, SavePath: dir})
	require.NoError(t, err)
	return NewBackupService(stores, pool, st, retention, zap.NewNop()), stores, dir
}

func TestBackupService_SnapshotIncludesTombstones(t *testing.T) {
	svc, stores, dir := newTestBackupService(t, 0)
	ctx := context.Background()
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 3, 0, 0, 0, time.UTC) }

	var keep, gone *domain.Note
	require.NoError(t, stores.Update(ctx, 7, func(ns *NoteService) error {
		var err error
		if keep, err = ns.Create(ctx, "keep", []string{"a"}, nil); err != nil {
			return err
		}
		if gone, err = ns.Create(ctx, "gone", nil, nil); err != nil {
			return err
		}
		_, err = ns.Delete(ctx, gone.ID)
		return err
	}))

	key, err := svc.BackupUser(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "7/20250301T030000Z.json", key)

	raw, err := os.ReadFile(filepath.Join(dir, "7", "20250301T030000Z.json"))
	require.NoError(t, err)

	var snap BackupSnapshot
	require.NoError(t, sonic.Unmarshal(raw, &snap))
	assert.Equal(t, int64(7), snap.UID)
	require.Len(t, snap.Notes, 2)

	byID := map[string]bool{}
	for _, r := range snap.Notes {
		byID[r.ID] = r.DeletedAt != nil
	}
	assert.Equal(t, map[string]bool{keep.ID: false, gone.ID: true}, byID)
}

func TestBackupService_BackupAll(t *testing.T) {
	svc, stores, dir := newTestBackupService(t, 0)
	ctx := context.Background()

	for _, uid := range []int64{1, 2, 3} {
		require.NoError(t, stores.Update(ctx, uid, func(ns *NoteService) error {
			_, err := ns.Create(ctx, "hello", nil, nil)
			return err
		}))
	}

	n, err := svc.BackupAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, uid := range []string{"1", "2", "3"} {
		entries, err := os.ReadDir(filepath.Join(dir, uid))
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	}
}

func TestBackupService_PruneRemovesExpired(t *testing.T) {
	svc, stores, dir := newTestBackupService(t, 24*time.Hour)
	ctx := context.Background()
	require.NoError(t, stores.Update(ctx, 1, func(ns *NoteService) error {
		_, err := ns.Create(ctx, "hello", nil, nil)
		return err
	}))

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	_, err := svc.BackupUser(ctx, 1)
	require.NoError(t, err)

	svc.now = func() time.Time { return base.Add(12 * time.Hour) }
	_, err = svc.BackupUser(ctx, 1)
	require.NoError(t, err)

	// 第三次备份时第一份已过期
	svc.now = func() time.Time { return base.Add(36 * time.Hour) }
	_, err = svc.BackupUser(ctx, 1)
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, "1"))
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"20250301T120000Z.json", "20250302T120000Z.json"}, names)
}
