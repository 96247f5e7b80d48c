package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/haierkeys/jot-sync-service/internal/dao"
	"github.com/haierkeys/jot-sync-service/internal/domain"

	"github.com/stretchr/testify/require"
)

// tickClock 每次调用前进 1 毫秒
type tickClock struct {
	now int64
}

func (c *tickClock) Now() int64 {
	c.now++
	return c.now
}

func newTestRepo(t *testing.T) domain.NoteRepository {
	t.Helper()
	db, _, err := dao.OpenNoteStore(context.Background(), filepath.Join(t.TempDir(), "notes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = dao.CloseNoteStore(db) })
	clock := &tickClock{now: 1000}
	return dao.NewNoteRepository(db, dao.WithClock(clock.Now))
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func ids(notes []*domain.Note) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.ID)
	}
	return out
}
