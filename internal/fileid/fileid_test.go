package fileid

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFollowsLinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no inode identity on windows")
	}
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	require.NoError(t, os.Mkdir(target, 0o755))
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(target, link))

	a, err := Get(target)
	require.NoError(t, err)
	b, err := Get(link)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.True(t, a.IsOS())

	other := filepath.Join(dir, "other")
	require.NoError(t, os.Mkdir(other, 0o755))
	c, err := Get(other)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestGetMissing(t *testing.T) {
	_, err := Get(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestFromPath(t *testing.T) {
	assert.Equal(t, FromPath("a/b/../c"), FromPath("a/c"))
	assert.NotEqual(t, FromPath("a/c"), FromPath("a/d"))
	assert.False(t, FromPath("a").IsOS())
}

func TestGetFSOnDirFS(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no inode identity on windows")
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f"), nil, 0o644))

	viaFS, err := GetFS(os.DirFS(dir), "f")
	require.NoError(t, err)
	viaOS, err := Get(filepath.Join(dir, "f"))
	require.NoError(t, err)
	assert.Equal(t, viaOS, viaFS)
}

func TestCache(t *testing.T) {
	c := NewCache(4)
	calls := 0
	lookup := func(name string) (ID, error) {
		calls++
		if name == "bad" {
			return ID{}, errors.New("boom")
		}
		return FromPath(name), nil
	}

	for range 3 {
		id, err := c.Get("x", lookup)
		require.NoError(t, err)
		assert.Equal(t, FromPath("x"), id)
	}
	assert.Equal(t, 1, calls)

	_, err := c.Get("bad", lookup)
	require.Error(t, err)
	_, err = c.Get("bad", lookup)
	require.Error(t, err)
	assert.Equal(t, 3, calls)

	hits, misses := c.Stats()
	assert.Equal(t, 2, hits)
	assert.Equal(t, 3, misses)
}
