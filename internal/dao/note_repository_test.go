package dao

import (
	"context"
	"path/filepath"
	"sort"
	"testing"

	"github.com/haierkeys/jot-sync-service/internal/domain"
	"github.com/haierkeys/jot-sync-service/internal/model"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// tickClock 每次调用前进 1 毫秒
type tickClock struct {
	now int64
}

func (c *tickClock) Now() int64 {
	c.now++
	return c.now
}

func openTestStore(t *testing.T) *gorm.DB {
	t.Helper()
	db, _, err := OpenNoteStore(context.Background(), filepath.Join(t.TempDir(), "notes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseNoteStore(db) })
	return db
}

func newTestRepo(t *testing.T) (domain.NoteRepository, *tickClock, *gorm.DB) {
	t.Helper()
	db := openTestStore(t)
	clock := &tickClock{now: 1000}
	return NewNoteRepository(db, WithClock(clock.Now)), clock, db
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

func sortedSet(tags []string) []string {
	out := domain.NormalizeTags(tags)
	sort.Strings(out)
	return out
}

func TestNoteRepository_CreateThenRead(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("create followed by read_by_id round-trips", prop.ForAll(
		func(content string, tags []string, date string) bool {
			var d *string
			if date != "" {
				d = strPtr(date)
			}
			created, err := repo.Create(ctx, content, tags, d)
			if err != nil {
				t.Logf("create: %v", err)
				return false
			}

			got, err := repo.GetByID(ctx, created.ID)
			if err != nil {
				t.Logf("read: %v", err)
				return false
			}
			if got.Content != content || got.IsDeleted() {
				return false
			}
			if !assert.ObjectsAreEqual(sortedSet(tags), sortedSet(got.Tags)) {
				t.Logf("tags mismatch: %v vs %v", tags, got.Tags)
				return false
			}
			if (d == nil) != (got.SubjectDate == nil) {
				return false
			}
			return d == nil || *d == *got.SubjectDate
		},
		gen.AlphaString(),
		gen.SliceOf(gen.AlphaString()),
		gen.OneConstOf("", "2025-01-01", "1999-12-31"),
	))

	properties.TestingRun(t)
}

func TestNoteRepository_CreateAssignsFields(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()

	n, err := repo.Create(ctx, "hello", []string{"a", "b", "a"}, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, n.ID)
	assert.Equal(t, []string{"a", "b"}, n.Tags)
	assert.Equal(t, n.CreatedAt, n.UpdatedAt)
	assert.Nil(t, n.DeletedAt)

	n2, err := repo.Create(ctx, "world", nil, nil)
	require.NoError(t, err)
	assert.Less(t, n.ID, n2.ID, "ids are time sortable")
	assert.Equal(t, []string{}, n2.Tags)
}

func TestNoteRepository_GetByIDNotFound(t *testing.T) {
	repo, _, _ := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)
}

func TestNoteRepository_GetByIDExactOnly(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()

	n, err := repo.Create(ctx, "x", nil, nil)
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, n.ID[:8])
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)
}

func TestNoteRepository_Update(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()

	n, err := repo.Create(ctx, "draft", []string{"a"}, strPtr("2025-01-01"))
	require.NoError(t, err)

	require.NoError(t, repo.Update(ctx, n.ID, "final", []string{"b"}, nil))

	got, err := repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Content)
	assert.Equal(t, []string{"b"}, got.Tags)
	assert.Nil(t, got.SubjectDate)
	assert.Equal(t, n.CreatedAt, got.CreatedAt)
	assert.Greater(t, got.UpdatedAt, n.UpdatedAt)
	assert.Nil(t, got.DeletedAt)
}

func TestNoteRepository_UpdateKeepsTombstone(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()

	n, err := repo.Create(ctx, "gone", nil, nil)
	require.NoError(t, err)
	require.NoError(t, repo.SoftDelete(ctx, n.ID))
	tomb, err := repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	require.NotNil(t, tomb.DeletedAt)

	require.NoError(t, repo.Update(ctx, n.ID, "edited after delete", []string{"x"}, nil))

	got, err := repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited after delete", got.Content)
	require.NotNil(t, got.DeletedAt)
	assert.Equal(t, *tomb.DeletedAt, *got.DeletedAt)
	assert.Equal(t, n.CreatedAt, got.CreatedAt)
	assert.GreaterOrEqual(t, got.UpdatedAt, tomb.UpdatedAt)
	assert.True(t, got.IsDeleted())
}

func TestNoteRepository_UpdateMissingIsNoop(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()

	assert.NoError(t, repo.Update(ctx, "missing", "x", nil, nil))
	assert.NoError(t, repo.SoftDelete(ctx, "missing"))

	all, err := repo.Search(ctx, &domain.SearchQuery{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestNoteRepository_SoftDeleteIdempotent(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()

	n, err := repo.Create(ctx, "bye", nil, nil)
	require.NoError(t, err)

	require.NoError(t, repo.SoftDelete(ctx, n.ID))
	first, err := repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	require.NotNil(t, first.DeletedAt)
	assert.Equal(t, first.UpdatedAt, *first.DeletedAt)
	assert.GreaterOrEqual(t, *first.DeletedAt, first.CreatedAt)

	require.NoError(t, repo.SoftDelete(ctx, n.ID))
	second, err := repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	require.NotNil(t, second.DeletedAt)
	assert.GreaterOrEqual(t, *second.DeletedAt, *first.DeletedAt)
	assert.Equal(t, second.UpdatedAt, *second.DeletedAt)

	all, err := repo.Search(ctx, &domain.SearchQuery{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Equal(t, []string{n.ID}, ids(all))
}

func TestNoteRepository_UpdatedAtNeverDecreases(t *testing.T) {
	db := openTestStore(t)
	ctx := context.Background()

	now := int64(5000)
	repo := NewNoteRepository(db, WithClock(func() int64 { return now }))

	n, err := repo.Create(ctx, "x", nil, nil)
	require.NoError(t, err)

	now = 100 // 时钟回拨
	require.NoError(t, repo.Update(ctx, n.ID, "y", nil, nil))

	got, err := repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), got.UpdatedAt)
}

func TestNoteRepository_Since(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()

	a, err := repo.Create(ctx, "a", nil, nil)
	require.NoError(t, err)
	b, err := repo.Create(ctx, "b", nil, nil)
	require.NoError(t, err)
	c, err := repo.Create(ctx, "c", nil, nil)
	require.NoError(t, err)
	require.NoError(t, repo.SoftDelete(ctx, a.ID))

	got, err := repo.Since(ctx, b.UpdatedAt)
	require.NoError(t, err)
	// 严格大于，升序，包含墓碑
	assert.Equal(t, []string{c.ID, a.ID}, ids(got))
	assert.True(t, got[1].IsDeleted())

	all, err := repo.Since(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, c.ID, a.ID}, ids(all))

	none, err := repo.Since(ctx, all[len(all)-1].UpdatedAt)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestNoteRepository_UpsertInsertsVerbatim(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()

	in := &domain.Note{
		ID:          "remote-1",
		Content:     "from elsewhere",
		Tags:        []string{"x"},
		SubjectDate: strPtr("2024-02-29"),
		CreatedAt:   10,
		UpdatedAt:   20,
		DeletedAt:   int64Ptr(20),
	}
	written, err := repo.Upsert(ctx, in)
	require.NoError(t, err)
	assert.True(t, written)

	got, err := repo.GetByID(ctx, "remote-1")
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestNoteRepository_UpsertTieKeepsStored(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, &domain.Note{ID: "n", Content: "stored", Tags: []string{}, CreatedAt: 1, UpdatedAt: 50})
	require.NoError(t, err)

	written, err := repo.Upsert(ctx, &domain.Note{ID: "n", Content: "incoming", Tags: []string{}, CreatedAt: 1, UpdatedAt: 50})
	require.NoError(t, err)
	assert.False(t, written)

	got, err := repo.GetByID(ctx, "n")
	require.NoError(t, err)
	assert.Equal(t, "stored", got.Content)
}

func TestNoteRepository_UpsertCommutative(t *testing.T) {
	ctx := context.Background()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30

	properties := gopter.NewProperties(parameters)

	properties.Property("upsert keeps the greater updated_at regardless of order", prop.ForAll(
		func(t1, t2 int64, reversed bool) bool {
			if t1 == t2 {
				return true
			}
			db := openTestStore(t)
			repo := NewNoteRepository(db)

			older := &domain.Note{ID: "same", Content: "older", Tags: []string{}, CreatedAt: 1, UpdatedAt: min(t1, t2)}
			newer := &domain.Note{ID: "same", Content: "newer", Tags: []string{"n"}, CreatedAt: 1, UpdatedAt: max(t1, t2)}
			order := []*domain.Note{older, newer}
			if reversed {
				order = []*domain.Note{newer, older}
			}
			for _, n := range order {
				if _, err := repo.Upsert(ctx, n); err != nil {
					return false
				}
			}
			// 重放保持幂等
			for _, n := range order {
				if _, err := repo.Upsert(ctx, n); err != nil {
					return false
				}
			}

			got, err := repo.GetByID(ctx, "same")
			if err != nil {
				return false
			}
			return got.Content == "newer" && got.UpdatedAt == max(t1, t2)
		},
		gen.Int64Range(1, 1<<40),
		gen.Int64Range(1, 1<<40),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestNoteRepository_CorruptTagsAreFatal(t *testing.T) {
	repo, _, db := newTestRepo(t)
	ctx := context.Background()

	n, err := repo.Create(ctx, "x", []string{"ok"}, nil)
	require.NoError(t, err)

	require.NoError(t, db.Model(&model.Note{}).Where("id = ?", n.ID).Update("tags", "not-json").Error)

	_, err = repo.GetByID(ctx, n.ID)
	assert.ErrorIs(t, err, domain.ErrCorruptRecord)

	_, err = repo.Search(ctx, &domain.SearchQuery{})
	assert.ErrorIs(t, err, domain.ErrCorruptRecord)

	_, err = repo.Since(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrCorruptRecord)
}

func TestNoteRepository_TransactionRollsBack(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()

	boom := assert.AnError
	err := repo.Transaction(ctx, func(tx domain.NoteRepository) error {
		if _, err := tx.Upsert(ctx, &domain.Note{ID: "t", Content: "x", Tags: []string{}, CreatedAt: 1, UpdatedAt: 1}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repo.GetByID(ctx, "t")
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)
}
