package walk

import (
	"io/fs"

	"github.com/elliotnunn/dirwalk/internal/source"
)

// RawEntry is a filesystem object with its metadata captured at discovery.
// It never asks the backend about itself again.
type RawEntry struct {
	path     string
	name     string
	info     fs.FileInfo
	followed bool
}

func rawFromPath(b source.Backend, name string) (*RawEntry, *Error) {
	inf, err := b.Stat(name, false)
	if err != nil {
		return nil, pathError(StatFailed, name, err)
	}
	return &RawEntry{path: name, name: b.Base(name), info: inf}, nil
}

func rawFromDirEntry(b source.Backend, dir string, de fs.DirEntry) (*RawEntry, *Error) {
	name := b.Join(dir, de.Name())
	inf, err := de.Info()
	if err != nil {
		return nil, pathError(StatFailed, name, err)
	}
	return &RawEntry{path: name, name: de.Name(), info: inf}, nil
}

// follow re-reads the entry with link following forced.
func (r *RawEntry) follow(b source.Backend) (*RawEntry, *Error) {
	inf, err := b.Stat(r.path, true)
	if err != nil {
		return nil, pathError(StatFailed, r.path, err)
	}
	return &RawEntry{path: r.path, name: r.name, info: inf, followed: true}, nil
}

func (r *RawEntry) readDir(b source.Backend) (source.DirStream, *Error) {
	s, err := b.ReadDir(r.path)
	if err != nil {
		return nil, pathError(OpenDirFailed, r.path, err)
	}
	return s, nil
}

func (r *RawEntry) Path() string       { return r.path }
func (r *RawEntry) Name() string       { return r.name }
func (r *RawEntry) Info() fs.FileInfo  { return r.info }
func (r *RawEntry) Type() fs.FileMode  { return r.info.Mode().Type() }
func (r *RawEntry) IsDir() bool        { return r.info.IsDir() }
func (r *RawEntry) IsSymlink() bool    { return r.Type() == fs.ModeSymlink }
func (r *RawEntry) FollowedLink() bool { return r.followed }
