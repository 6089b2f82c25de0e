package source

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/elliotnunn/dirwalk/internal/fileid"
)

const readDirBatch = 64

// OS reads the real filesystem through the os package.
type OS struct {
	ids *fileid.Cache
}

func NewOS() *OS {
	return &OS{ids: fileid.NewCache(256)}
}

func (*OS) Stat(name string, follow bool) (fs.FileInfo, error) {
	if follow {
		return os.Stat(name)
	}
	return os.Lstat(name)
}

func (*OS) ReadDir(name string) (DirStream, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return &batchStream{dir: f, name: name}, nil
}

func (o *OS) SameFile(name string) (fileid.ID, error) {
	return o.ids.Get(name, osIdentity)
}

// IDStats reports how often SameFile was answered from the cache.
func (o *OS) IDStats() (hits, misses int) { return o.ids.Stats() }

func osIdentity(name string) (fileid.ID, error) {
	id, err := fileid.Get(name)
	if errors.Is(err, fileid.ErrNotOS) {
		return pathIdentity(name)
	}
	return id, err
}

// pathIdentity names an object by its absolute path with every link resolved,
// for platforms without device and inode numbers.
func pathIdentity(name string) (fileid.ID, error) {
	resolved, err := filepath.EvalSymlinks(name)
	if err != nil {
		return fileid.ID{}, err
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return fileid.ID{}, err
	}
	return fileid.FromPath(filepath.ToSlash(abs)), nil
}

func (*OS) Join(dir, name string) string { return filepath.Join(dir, name) }
func (*OS) Base(name string) string      { return filepath.Base(name) }

type readDirCloser interface {
	ReadDir(n int) ([]fs.DirEntry, error)
	Close() error
}

// batchStream turns the partial-listing ReadDir semantics into one entry at a time.
type batchStream struct {
	dir     readDirCloser
	name    string
	buf     []fs.DirEntry
	pending error
	closed  bool
}

func (s *batchStream) Next() (fs.DirEntry, error) {
	for len(s.buf) == 0 {
		if s.pending != nil {
			err := s.pending
			s.pending = nil
			return nil, err
		}
		if s.closed {
			return nil, io.EOF
		}
		list, err := s.dir.ReadDir(readDirBatch)
		s.buf = list
		switch {
		case err == io.EOF:
			s.Close()
		case err != nil:
			s.pending = &fs.PathError{Op: "readdir", Path: s.name, Err: err}
			s.Close()
		case len(list) == 0:
			s.Close()
		}
	}
	de := s.buf[0]
	s.buf = s.buf[1:]
	return de, nil
}

func (s *batchStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.dir.Close()
}
