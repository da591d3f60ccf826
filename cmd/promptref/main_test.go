package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gubarz/promptref/internal/prompt"
)

func promptDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"root.prompt.md":  "use #file:child.prompt.md and [missing](gone.prompt.md)",
		"child.prompt.md": "child",
	}
	for name, contents := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestResolveCommandJSON(t *testing.T) {
	dir := promptDir(t)
	out, err := execute(t, "resolve", "--format", "json", filepath.Join(dir, "root.prompt.md"))
	require.NoError(t, err)

	var rep prompt.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.Len(t, rep.Children, 2)
	assert.Equal(t, "file-reference", rep.Children[0].Kind)
	assert.Empty(t, rep.Children[0].Condition)
	assert.Equal(t, "file_open_failed", rep.Children[1].Condition)
}

func TestResolveCommandStrict(t *testing.T) {
	dir := promptDir(t)
	_, err := execute(t, "resolve", "--format", "tree", "--strict", filepath.Join(dir, "root.prompt.md"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 unresolved references")
}

func TestLinksCommand(t *testing.T) {
	dir := promptDir(t)
	out, err := execute(t, "links", filepath.Join(dir, "root.prompt.md"))
	require.NoError(t, err)
	assert.Contains(t, out, "child.prompt.md")
	assert.Contains(t, out, "gone.prompt.md")
	assert.Contains(t, out, "markdown-link")
}

func TestTokensCommand(t *testing.T) {
	dir := promptDir(t)
	out, err := execute(t, "tokens", filepath.Join(dir, "root.prompt.md"))
	require.NoError(t, err)
	assert.Contains(t, out, "markdown-link")

	out, err = execute(t, "tokens", "--raw", filepath.Join(dir, "root.prompt.md"))
	require.NoError(t, err)
	assert.NotContains(t, out, "markdown-link")
	assert.Contains(t, out, "left-bracket")
}

func TestWriteRootsUnknownFormat(t *testing.T) {
	err := writeRoots(&bytes.Buffer{}, "xml", []*prompt.Reference{{Path: "/a.prompt.md"}})
	assert.Error(t, err)
}
