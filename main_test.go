package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elliotnunn/dirwalk/internal/config"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv(config.EnvMaxOpen, "")
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func testTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, name := range []string{"a.txt", "d/g.txt", "d/h/i.txt", "vendor/x.go"} {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(name), 0o644))
	}
	return root
}

// relLines strips root from every line of output.
func relLines(root, out string) []string {
	var lines []string
	for _, l := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		l = strings.ReplaceAll(l, root, "")
		lines = append(lines, filepath.ToSlash(l))
	}
	return lines
}

func TestWalk(t *testing.T) {
	root := testTree(t)
	out, _, err := run(t, "--sort", "name", root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"", "/a.txt", "/d", "/d/g.txt", "/d/h", "/d/h/i.txt", "/vendor", "/vendor/x.go",
	}, relLines(root, out))
}

func TestWalkPositions(t *testing.T) {
	root := testTree(t)
	out, _, err := run(t, "--sort", "name", "--positions", "--max-depth", "1", "--filter", "dirs", root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"",
		"> ",
		"  /d",
		"  /vendor",
		"< ",
	}, relLines(root, out))
}

func TestWalkExclude(t *testing.T) {
	root := testTree(t)
	out, _, err := run(t, "--sort", "name", "--exclude", "vendor", "--exclude", "**/h", root)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "/a.txt", "/d", "/d/g.txt"}, relLines(root, out))
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	root := testTree(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, config.FileName),
		[]byte("max_depth: 0\nsort: name\n"), 0o644))

	out, _, err := run(t, root)
	require.NoError(t, err)
	assert.Equal(t, []string{""}, relLines(root, out))

	out, _, err = run(t, "--max-depth", "1", "--filter", "files", root)
	require.NoError(t, err)
	assert.Equal(t, []string{"/" + config.FileName, "/a.txt"}, relLines(root, out))
}

func TestWalkErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	_, errOut, err := run(t, missing)
	assert.Error(t, err)
	assert.Contains(t, errOut, "missing")

	_, _, err = run(t, "--filter", "sideways", t.TempDir())
	assert.ErrorContains(t, err, "sideways")
}

func TestIndexAndList(t *testing.T) {
	root := testTree(t)
	db := filepath.Join(t.TempDir(), "db")

	out, _, err := run(t, "index", "--db", db, "--exclude", "vendor/*.go", root)
	require.NoError(t, err)
	assert.Contains(t, out, "indexed 7 entries")

	out, errOut, err := run(t, "ls-index", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, errOut, "index of "+root)
	assert.Equal(t, []string{
		"", "/a.txt", "/d", "/d/g.txt", "/d/h", "/d/h/i.txt", "/vendor",
	}, relLines(root, out))

	out, _, err = run(t, "ls-index", "--db", db, filepath.Join(root, "d", "h"))
	require.NoError(t, err)
	assert.Equal(t, []string{"/d/h", "/d/h/i.txt"}, relLines(root, out))

	out, _, err = run(t, "ls-index", "--long", "--db", db, filepath.Join(root, "a.txt"))
	require.NoError(t, err)
	assert.Contains(t, out, " 5 ")
}
