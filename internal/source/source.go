// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package source provides the filesystem backends that a tree walk reads through.
//
// A Backend is a small closed set of capabilities: stat a path, stream a
// directory, and answer identity questions (device number, same-file handle).
// Nothing here recurses, retries or logs; every failure is returned.
package source

import (
	"errors"
	"io/fs"

	"github.com/elliotnunn/dirwalk/internal/fileid"
)

// ErrUnsupported is returned when a backend cannot answer a question on this
// platform, for example the device number of a path on Windows.
var ErrUnsupported = errors.New("unsupported on this platform or filesystem")

type Backend interface {
	// Stat returns metadata for name, following a final symbolic link only if follow is set.
	Stat(name string, follow bool) (fs.FileInfo, error)
	// ReadDir opens name for streaming enumeration.
	ReadDir(name string) (DirStream, error)
	// DeviceNum identifies the filesystem name lives on.
	DeviceNum(name string) (uint64, error)
	// SameFile returns an identity such that two names resolving to the
	// same object compare equal.
	SameFile(name string) (fileid.ID, error)
	Join(dir, name string) string
	Base(name string) string
}

// A DirStream yields the entries of one open directory, excluding "." and "..".
// Next returns io.EOF once the directory is exhausted.
// Close may be called more than once.
type DirStream interface {
	Next() (fs.DirEntry, error)
	Close() error
}

// Default returns the backend for the real filesystem of this build.
func Default() Backend {
	return NewOS()
}
