package client

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/haierkeys/jot-sync-service/pkg/timex"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemplate(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		tags    []string
		date    string
		content string
	}{
		{"full", "tags = [\"work\"]\ndate = \"2025-01-02\"\n+++\nhello", []string{"work"}, "2025-01-02", "hello"},
		{"delimiter in content", "tags = [\"a\"]\n+++\nfirst\n+++\nsecond", []string{"a"}, "", "first\n+++\nsecond"},
		{"multiline", "+++\nline one\nline two\n\n", nil, "", "line one\nline two"},
		{"delimiter with whitespace", "date = \"none\"\n  +++  \nbody", nil, "none", "body"},
		{"no delimiter", "tags = [\"a\", \"b\"]", []string{"a", "b"}, "", ""},
		{"comments only head", "# tags = [\"x\"]\n+++\nplain", nil, "", "plain"},
		{"crlf", "date = \"today\"\r\n+++\r\nbody", nil, "today", "body"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTemplate(tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.tags, got.Tags)
			assert.Equal(t, tc.date, got.Date)
			assert.Equal(t, tc.content, got.Content)
		})
	}
}

func TestParseTemplate_Errors(t *testing.T) {
	_, err := ParseTemplate("title = \"x\"\n+++\nbody")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field")

	_, err = ParseTemplate("date = \"someday\"\n+++\nbody")
	assert.ErrorIs(t, err, timex.ErrInvalidDate)

	_, err = ParseTemplate("tags = [\n+++\nbody")
	assert.Error(t, err)
}

func TestRenderTemplate_RoundTrip(t *testing.T) {
	text, err := RenderTemplate(&NoteTemplate{Tags: []string{"work", "idea"}, Date: "2025-01-02", Content: "hello\nworld"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "# tags"))

	got, err := ParseTemplate(text)
	require.NoError(t, err)
	assert.Equal(t, []string{"work", "idea"}, got.Tags)
	assert.Equal(t, "2025-01-02", got.Date)
	assert.Equal(t, "hello\nworld", got.Content)
}

func TestRenderTemplate_Defaults(t *testing.T) {
	text, err := RenderTemplate(&NoteTemplate{})
	require.NoError(t, err)
	assert.Contains(t, text, "tags = []")
	assert.Contains(t, text, `date = "today"`)

	got, err := ParseTemplate(text)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
	assert.Equal(t, "today", got.Date)
	assert.Equal(t, "", got.Content)
}

func TestEditorCommand(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "")
	assert.Equal(t, "vi", EditorCommand())

	t.Setenv("EDITOR", "nano")
	assert.Equal(t, "nano", EditorCommand())

	t.Setenv("VISUAL", "code --wait")
	assert.Equal(t, "code --wait", EditorCommand())
}

// scriptEditor 写一个 sh 脚本充当编辑器，$1 为临时文件路径
func scriptEditor(t *testing.T, body string, in string) (*Editor, *bytes.Buffer) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell editor scripts need a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "editor.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	out := new(bytes.Buffer)
	return &Editor{Command: "/bin/sh " + path, In: strings.NewReader(in), Out: out}, out
}

func TestEditor_Compose(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		e, _ := scriptEditor(t, `printf 'tags = ["x"]\ndate = "none"\n+++\nwritten\n' > "$1"`, "")
		got, err := e.Compose(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, []string{"x"}, got.Tags)
		assert.Equal(t, "none", got.Date)
		assert.Equal(t, "written", got.Content)
	})

	t.Run("keeps initial text", func(t *testing.T) {
		e, _ := scriptEditor(t, `true`, "")
		initial, err := RenderTemplate(&NoteTemplate{Tags: []string{"keep"}, Content: "same"})
		require.NoError(t, err)
		got, err := e.Compose(context.Background(), initial)
		require.NoError(t, err)
		assert.Equal(t, []string{"keep"}, got.Tags)
		assert.Equal(t, "same", got.Content)
	})

	t.Run("abort", func(t *testing.T) {
		e, out := scriptEditor(t, `printf 'bogus = 1\n+++\nbody\n' > "$1"`, "a\n")
		_, err := e.Compose(context.Background(), "")
		assert.ErrorIs(t, err, ErrEditorAborted)
		assert.Contains(t, out.String(), "[R]etry")
	})

	t.Run("eof aborts", func(t *testing.T) {
		e, _ := scriptEditor(t, `printf 'bogus = 1\n' > "$1"`, "")
		_, err := e.Compose(context.Background(), "")
		assert.ErrorIs(t, err, ErrEditorAborted)
	})

	t.Run("save as plain text", func(t *testing.T) {
		e, _ := scriptEditor(t, `printf 'bogus = 1\n+++\nbody\n' > "$1"`, "s\n")
		got, err := e.Compose(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, "bogus = 1\n+++\nbody\n", got.Content)
		assert.Empty(t, got.Tags)
	})

	t.Run("retry shows error", func(t *testing.T) {
		script := `if grep -q 'PARSING ERROR' "$1"; then
  printf 'tags = ["fixed"]\n+++\nsecond try\n' > "$1"
else
  printf 'bogus = 1\n+++\nfirst try\n' > "$1"
fi`
		e, _ := scriptEditor(t, script, "\n")
		got, err := e.Compose(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, []string{"fixed"}, got.Tags)
		assert.Equal(t, "second try", got.Content)
	})

	t.Run("editor failure", func(t *testing.T) {
		e, _ := scriptEditor(t, `exit 3`, "")
		_, err := e.Compose(context.Background(), "")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrEditorAborted)
	})
}
