package source

import (
	"errors"
	"io"
	"io/fs"
	"path"

	"github.com/elliotnunn/dirwalk/internal/fileid"
)

// FS reads any io/fs filesystem: an embed.FS, os.DirFS, an in-memory tree.
// Names are slash-separated and unrooted, as io/fs requires.
//
// Filesystems that carry no OS identity get path-derived same-file handles,
// which is correct as long as they contain no links.
type FS struct {
	fsys fs.FS
	ids  *fileid.Cache
}

func NewFS(fsys fs.FS) *FS {
	return &FS{fsys: fsys, ids: fileid.NewCache(256)}
}

func (b *FS) Stat(name string, follow bool) (fs.FileInfo, error) {
	if follow {
		return fs.Stat(b.fsys, name)
	}
	return fs.Lstat(b.fsys, name)
}

func (b *FS) ReadDir(name string) (DirStream, error) {
	f, err := b.fsys.Open(name)
	if err != nil {
		return nil, err
	}
	if dir, ok := f.(fs.ReadDirFile); ok {
		return &batchStream{dir: dir, name: name}, nil
	}
	f.Close()

	// Not a streaming directory, take the whole listing at once
	list, err := fs.ReadDir(b.fsys, name)
	if err != nil {
		return nil, err
	}
	return &listStream{list: list}, nil
}

func (b *FS) DeviceNum(name string) (uint64, error) {
	inf, err := fs.Stat(b.fsys, name)
	if err != nil {
		return 0, err
	}
	dev, ok := devOf(inf)
	if !ok {
		return 0, ErrUnsupported
	}
	return dev, nil
}

func (b *FS) SameFile(name string) (fileid.ID, error) {
	return b.ids.Get(name, func(name string) (fileid.ID, error) {
		id, err := fileid.GetFS(b.fsys, name)
		if errors.Is(err, fileid.ErrNotOS) {
			return fileid.FromPath(name), nil
		}
		return id, err
	})
}

func (*FS) Join(dir, name string) string { return path.Join(dir, name) }
func (*FS) Base(name string) string      { return path.Base(name) }

type listStream struct {
	list []fs.DirEntry
}

func (s *listStream) Next() (fs.DirEntry, error) {
	if len(s.list) == 0 {
		return nil, io.EOF
	}
	de := s.list[0]
	s.list = s.list[1:]
	return de, nil
}

func (s *listStream) Close() error {
	s.list = nil
	return nil
}
