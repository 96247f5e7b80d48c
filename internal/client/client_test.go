package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/haierkeys/jot-sync-service/internal/dao"
	"github.com/haierkeys/jot-sync-service/internal/domain"
	"github.com/haierkeys/jot-sync-service/internal/dto"
	"github.com/haierkeys/jot-sync-service/internal/service"
	pkgapp "github.com/haierkeys/jot-sync-service/pkg/app"
	"github.com/haierkeys/jot-sync-service/pkg/code"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualClock 测试用可控时钟
type manualClock struct {
	mu  sync.Mutex
	now int64
}

func (c *manualClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Set(v int64) {
	c.mu.Lock()
	c.now = v
	c.mu.Unlock()
}

// newSyncServer 以单个笔记库模拟 /api/sync
func newSyncServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, _, err := dao.OpenNoteStore(context.Background(), filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = dao.CloseNoteStore(db) })
	engine := service.NewSyncService(dao.NewNoteRepository(db))

	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			raw, _ := sonic.Marshal(pkgapp.Res{Code: code.ErrorNotUserAuthToken.Code(), Message: "unauthorized"})
			_, _ = w.Write(raw)
			return
		}
		body, _ := io.ReadAll(r.Body)
		req := &dto.SyncRequest{}
		require.NoError(t, sonic.Unmarshal(body, req))
		notes, err := dto.NoteRecordsToDomain(req.Notes)
		require.NoError(t, err)

		mu.Lock()
		res, err := engine.Sync(r.Context(), &domain.SyncRequest{Notes: notes, LastSync: req.LastSync})
		mu.Unlock()
		require.NoError(t, err)

		records, err := dto.NewNoteRecords(res.Notes)
		require.NoError(t, err)
		raw, _ := sonic.Marshal(pkgapp.Res{Code: 1, Status: true, Data: &dto.SyncResponse{Notes: records}})
		_, _ = w.Write(raw)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func openDevice(t *testing.T, clock *manualClock) *Local {
	t.Helper()
	l, err := OpenLocal(context.Background(), filepath.Join(t.TempDir(), "device.db"), dao.WithClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestSyncer_TwoDevicesConverge(t *testing.T) {
	srv := newSyncServer(t)
	api := NewAPI(srv.URL, "secret", 0)
	ctx := context.Background()

	clock := &manualClock{}
	a := openDevice(t, clock)
	b := openDevice(t, clock)

	clock.Set(100)
	n, err := a.Notes.Create(ctx, "from A", []string{"x"}, nil)
	require.NoError(t, err)

	rep, err := NewSyncer(a, api).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Sent)
	assert.Equal(t, 0, rep.Received)
	assert.Equal(t, int64(100), rep.LastSync)

	rep, err = NewSyncer(b, api).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Received)
	assert.Equal(t, 1, rep.Applied)
	got, err := b.Notes.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "from A", got.Content)

	// B 后修改，A 同步后采用 B 的版本
	clock.Set(200)
	_, err = b.Notes.Update(ctx, n.ID, "edited on B", nil, nil)
	require.NoError(t, err)
	_, err = NewSyncer(b, api).Run(ctx)
	require.NoError(t, err)

	rep, err = NewSyncer(a, api).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Sent)
	assert.Equal(t, int64(200), rep.LastSync)
	got, err = a.Notes.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited on B", got.Content)

	// 再次同步没有任何变化
	rep, err = NewSyncer(a, api).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, &SyncReport{LastSync: 200}, rep)
}

func TestSyncer_DeletePropagates(t *testing.T) {
	srv := newSyncServer(t)
	api := NewAPI(srv.URL, "secret", 0)
	ctx := context.Background()

	clock := &manualClock{}
	a := openDevice(t, clock)
	b := openDevice(t, clock)

	clock.Set(10)
	n, err := a.Notes.Create(ctx, "short lived", nil, nil)
	require.NoError(t, err)
	_, err = NewSyncer(a, api).Run(ctx)
	require.NoError(t, err)
	_, err = NewSyncer(b, api).Run(ctx)
	require.NoError(t, err)

	clock.Set(20)
	_, err = a.Notes.Delete(ctx, n.ID)
	require.NoError(t, err)
	_, err = NewSyncer(a, api).Run(ctx)
	require.NoError(t, err)
	_, err = NewSyncer(b, api).Run(ctx)
	require.NoError(t, err)

	got, err := b.Repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted())

	active, err := b.Notes.Search(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestSyncer_ServerErrorKeepsWatermark(t *testing.T) {
	srv := newSyncServer(t)
	api := NewAPI(srv.URL, "wrong", 0)
	ctx := context.Background()

	clock := &manualClock{now: 5}
	a := openDevice(t, clock)
	_, err := a.Notes.Create(ctx, "pending", nil, nil)
	require.NoError(t, err)

	s := NewSyncer(a, api)
	_, err = s.Run(ctx)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.HTTPStatus)

	last, err := s.LastSync(ctx)
	require.NoError(t, err)
	assert.Zero(t, last)
}

func TestAPI_SyncRequiresToken(t *testing.T) {
	_, err := NewAPI("http://127.0.0.1:1", "", 0).Sync(context.Background(), &dto.SyncRequest{})
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestProfile_LoadSaveAndPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jot", "profile.yaml")

	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000", p.Server)
	assert.Equal(t, filepath.Join(dir, "jot", "notes.db"), p.StorePath())

	p.Token = "tok"
	p.DBPath = "data/mine.db"
	require.NoError(t, p.Save())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "tok", loaded.Token)
	assert.Equal(t, filepath.Join(dir, "jot", "data", "mine.db"), loaded.StorePath())
}

func TestDefaultProfilePath_Env(t *testing.T) {
	t.Setenv(ProfileEnv, "/tmp/custom.yaml")
	assert.Equal(t, "/tmp/custom.yaml", DefaultProfilePath())
}
