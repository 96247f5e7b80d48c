package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"testing"

	"github.com/haierkeys/jot-sync-service/internal/dao"
	"github.com/haierkeys/jot-sync-service/internal/dto"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// resetFlags 恢复所有子命令的参数默认值，cobra 在多次 Execute 之间保留参数状态
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		profilePath = ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

var addedID = regexp.MustCompile(`\(([0-9a-f-]{36})\)`)

func TestClientCommands_NoteLifecycle(t *testing.T) {
	profile := filepath.Join(t.TempDir(), "profile.yaml")

	out, err := runCLI(t, "--profile", profile, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "notes.db")

	_, err = runCLI(t, "--profile", profile, "init")
	assert.ErrorContains(t, err, "already exists")

	out, err = runCLI(t, "--profile", profile, "down", "--tag", "work,todo", "--date", "2025-01-02", "write", "report")
	require.NoError(t, err)
	m := addedID.FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	id := m[1]

	out, err = runCLI(t, "--profile", profile, "note", "search", "report", "--output", "json")
	require.NoError(t, err)
	var records []*dto.NoteRecord
	require.NoError(t, sonic.Unmarshal([]byte(out), &records), out)
	require.Len(t, records, 1)
	assert.Equal(t, "write report", records[0].Content)
	assert.Equal(t, []string{"work", "todo"}, records[0].Tags)
	assert.Equal(t, "2025-01-02", *records[0].Date)

	out, err = runCLI(t, "--profile", profile, "note", "edit", id[:12], "--content", "write final report")
	require.NoError(t, err)
	assert.Contains(t, out, id)

	out, err = runCLI(t, "--profile", profile, "note", "show", id[:12], "--output", "plain")
	require.NoError(t, err)
	assert.Equal(t, "write final report\n", out)

	out, err = runCLI(t, "--profile", profile, "note", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Note deleted")

	_, err = runCLI(t, "--profile", profile, "note", "last")
	assert.Error(t, err)

	_, err = runCLI(t, "--profile", profile, "note", "show", "zzzz")
	assert.Error(t, err)
}

func TestClientCommands_Interactive(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell editor scripts need a POSIX shell")
	}
	profile := filepath.Join(t.TempDir(), "profile.yaml")
	_, err := runCLI(t, "--profile", profile, "init")
	require.NoError(t, err)

	script := filepath.Join(t.TempDir(), "editor.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nprintf 'tags = [\"idea\"]\ndate = \"2025-03-04\"\n+++\nfrom editor\n' > \"$1\"\n"), 0o755))
	t.Setenv("VISUAL", "/bin/sh "+script)

	out, err := runCLI(t, "--profile", profile, "note", "add", "-i")
	require.NoError(t, err)
	m := addedID.FindStringSubmatch(out)
	require.Len(t, m, 2, out)

	out, err = runCLI(t, "--profile", profile, "note", "show", m[1], "--output", "json")
	require.NoError(t, err)
	var records []*dto.NoteRecord
	require.NoError(t, sonic.Unmarshal([]byte(out), &records), out)
	require.Len(t, records, 1)
	assert.Equal(t, "from editor", records[0].Content)
	assert.Equal(t, []string{"idea"}, records[0].Tags)
	assert.Equal(t, "2025-03-04", *records[0].Date)

	aborting := filepath.Join(t.TempDir(), "bad.sh")
	require.NoError(t, os.WriteFile(aborting, []byte("#!/bin/sh\nprintf 'bogus = 1\n' > \"$1\"\n"), 0o755))
	t.Setenv("VISUAL", "/bin/sh "+aborting)
	rootCmd.SetIn(bytes.NewBufferString("a\n"))
	_, err = runCLI(t, "--profile", profile, "note", "edit", m[1], "-i")
	assert.ErrorContains(t, err, "edit aborted")
}

func TestClientCommands_ConfigMasksToken(t *testing.T) {
	profile := filepath.Join(t.TempDir(), "profile.yaml")
	_, err := runCLI(t, "--profile", profile, "init")
	require.NoError(t, err)

	out, err := runCLI(t, "--profile", profile, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "server: http://127.0.0.1:9000")
}

func TestUpgradeStores(t *testing.T) {
	dir := t.TempDir()
	registry := dao.NewStoreRegistry(dir, zap.NewNop())
	ctx := context.Background()

	for _, uid := range []int64{3, 9} {
		db, _, err := dao.OpenNoteStore(ctx, registry.Path(uid))
		require.NoError(t, err)
		require.NoError(t, dao.CloseNoteStore(db))
	}

	failed, err := upgradeStores(ctx, registry, []int64{9, 12}, zap.NewNop())
	require.NoError(t, err)
	assert.Zero(t, failed)

	uids, err := registry.UIDs()
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 9, 12}, uids)
}
