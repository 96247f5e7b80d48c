package dto

import (
	"encoding/json"
	"testing"

	"github.com/haierkeys/jot-sync-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteRecord_WireShape(t *testing.T) {
	date := "2025-01-01"
	r, err := NewNoteRecord(&domain.Note{
		ID:          "0190a0b0-0000-7000-8000-000000000001",
		Content:     "Buy milk",
		SubjectDate: &date,
		CreatedAt:   10,
		UpdatedAt:   20,
	})
	require.NoError(t, err)

	raw, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "0190a0b0-0000-7000-8000-000000000001",
		"content": "Buy milk",
		"tags": [],
		"date": "2025-01-01",
		"created_at": 10,
		"updated_at": 20,
		"deleted_at": null
	}`, string(raw))
}

func TestNoteRecord_ToDomain(t *testing.T) {
	var r NoteRecord
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "a", "content": "c", "tags": ["x", "y", "x"],
		"date": null, "created_at": 1, "updated_at": 2, "deleted_at": 2
	}`), &r))

	n, err := r.ToDomain()
	require.NoError(t, err)
	assert.Equal(t, "a", n.ID)
	assert.Equal(t, []string{"x", "y"}, n.Tags)
	assert.Nil(t, n.SubjectDate)
	require.NotNil(t, n.DeletedAt)
	assert.EqualValues(t, 2, *n.DeletedAt)
	assert.True(t, n.IsDeleted())

	// 复制后不共享指针
	*r.DeletedAt = 99
	assert.EqualValues(t, 2, *n.DeletedAt)
}

func TestNewUserDTO_OmitsPassword(t *testing.T) {
	u := &domain.User{UID: 3, Email: "a@b.c", Username: "ann", Password: "hash"}
	out, err := NewUserDTO(u, "tok")
	require.NoError(t, err)

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hash")
	assert.Equal(t, "tok", out.Token)
	assert.EqualValues(t, 3, out.UID)
}

func TestNoteRecord_ToDomainEmptyDateIsNil(t *testing.T) {
	empty := ""
	n, err := (&NoteRecord{ID: "a", Content: "c", Date: &empty, UpdatedAt: 1}).ToDomain()
	require.NoError(t, err)
	assert.Nil(t, n.SubjectDate)

	day := "2025-01-02"
	n, err = (&NoteRecord{ID: "b", Content: "c", Date: &day, UpdatedAt: 1}).ToDomain()
	require.NoError(t, err)
	require.NotNil(t, n.SubjectDate)
	assert.Equal(t, day, *n.SubjectDate)
}
