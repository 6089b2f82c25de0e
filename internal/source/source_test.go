package source

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	"github.com/psanford/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, s DirStream) []string {
	t.Helper()
	var names []string
	for {
		de, err := s.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, de.Name())
	}
	slices.Sort(names)
	return names
}

func TestOSStreamSpansBatches(t *testing.T) {
	dir := t.TempDir()
	var want []string
	for i := range readDirBatch*2 + 3 {
		name := fmt.Sprintf("f%03d", i)
		want = append(want, name)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	b := NewOS()
	s, err := b.ReadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, want, drain(t, s))

	// exhausted stays exhausted, and closing twice is harmless
	_, err = s.Next()
	assert.Equal(t, io.EOF, err)
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}

func TestOSReadDirMissing(t *testing.T) {
	_, err := NewOS().ReadDir(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestOSStatFollow(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "d"), 0o755))
	if err := os.Symlink("d", filepath.Join(dir, "l")); err != nil {
		t.Skip("symlinks unavailable:", err)
	}

	b := NewOS()
	inf, err := b.Stat(filepath.Join(dir, "l"), false)
	require.NoError(t, err)
	assert.Equal(t, os.ModeSymlink, inf.Mode().Type())

	inf, err = b.Stat(filepath.Join(dir, "l"), true)
	require.NoError(t, err)
	assert.True(t, inf.IsDir())

	a, err := b.SameFile(filepath.Join(dir, "l"))
	require.NoError(t, err)
	d, err := b.SameFile(filepath.Join(dir, "d"))
	require.NoError(t, err)
	assert.Equal(t, a, d)
}

func TestOSDeviceNum(t *testing.T) {
	dir := t.TempDir()
	b := NewOS()
	dev, err := b.DeviceNum(dir)
	if runtime.GOOS == "windows" {
		assert.ErrorIs(t, err, ErrUnsupported)
		return
	}
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	sub, err := b.DeviceNum(filepath.Join(dir, "sub"))
	require.NoError(t, err)
	assert.Equal(t, dev, sub)
}

func TestFSBackendOnMemfs(t *testing.T) {
	m := memfs.New()
	require.NoError(t, m.MkdirAll("r/d", 0o755))
	require.NoError(t, m.WriteFile("r/f", []byte("f"), 0o644))
	require.NoError(t, m.WriteFile("r/d/g", []byte("g"), 0o644))

	b := NewFS(m)
	s, err := b.ReadDir("r")
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "f"}, drain(t, s))
	require.NoError(t, s.Close())

	inf, err := b.Stat("r/d", false)
	require.NoError(t, err)
	assert.True(t, inf.IsDir())

	assert.Equal(t, "r/d/g", b.Join("r/d", "g"))
	assert.Equal(t, "g", b.Base("r/d/g"))

	_, err = b.DeviceNum("r")
	assert.ErrorIs(t, err, ErrUnsupported)

	id1, err := b.SameFile("r/d")
	require.NoError(t, err)
	id2, err := b.SameFile("r/d")
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
	id3, err := b.SameFile("r/f")
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3)
	assert.False(t, id1.IsOS())
}

func TestFSBackendOnDirFS(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no device numbers on windows")
	}
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "d"), 0o755))

	b := NewFS(os.DirFS(dir))
	_, err := b.DeviceNum("d")
	require.NoError(t, err)
	id, err := b.SameFile("d")
	require.NoError(t, err)
	assert.True(t, id.IsOS())
}

func TestPathIdentityResolvesLinks(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "d")
	require.NoError(t, os.Mkdir(target, 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "e"), 0o755))
	link := filepath.Join(dir, "l")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	viaDir, err := pathIdentity(target)
	require.NoError(t, err)
	viaLink, err := pathIdentity(link)
	require.NoError(t, err)
	assert.Equal(t, viaDir, viaLink)
	assert.False(t, viaDir.IsOS())

	other, err := pathIdentity(filepath.Join(dir, "e"))
	require.NoError(t, err)
	assert.NotEqual(t, viaDir, other)

	_, err = pathIdentity(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestOSIDStats(t *testing.T) {
	dir := t.TempDir()
	b := NewOS()
	_, err := b.SameFile(dir)
	require.NoError(t, err)
	_, err = b.SameFile(dir)
	require.NoError(t, err)
	hits, misses := b.IDStats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}
