package client

import (
	"bytes"
	"testing"

	"github.com/haierkeys/jot-sync-service/internal/domain"
	"github.com/haierkeys/jot-sync-service/internal/dto"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleNotes() []*domain.Note {
	date := "2025-01-02"
	return []*domain.Note{
		{ID: "0194f1a2-aaaa-7000-8000-000000000001", Content: "line one\nline two\nline three", Tags: []string{"work"}, SubjectDate: &date, CreatedAt: 1, UpdatedAt: 2},
		{ID: "0194f1a2-bbbb-7000-8000-000000000002", Content: "single", CreatedAt: 1, UpdatedAt: 1},
	}
}

func TestRender_Pretty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleNotes(), RenderOptions{Format: OutputPretty, Lines: 1}))
	assert.Equal(t, "[0194f1a2] 2025-01-02 #work\nline one\n...\n\n[0194f1a2]\nsingle\n", buf.String())
}

func TestRender_Plain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleNotes(), RenderOptions{Format: OutputPlain}))
	assert.Equal(t, "line one\nline two\nline three\nsingle\n", buf.String())
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleNotes(), RenderOptions{Format: OutputJSON}))

	var records []*dto.NoteRecord
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "2025-01-02", *records[0].Date)
	assert.Equal(t, []string{}, records[1].Tags)
}

func TestParseOutputFormat(t *testing.T) {
	f, err := ParseOutputFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, OutputJSON, f)

	_, err = ParseOutputFormat("yaml")
	assert.Error(t, err)
}
