// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package fileid computes comparable identities for files,
// so that two paths naming the same object can be recognised.
package fileid

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"io/fs"
	"path"

	"github.com/cespare/xxhash/v2"
)

// ID is comparable with ==.
// The first byte records how the identity was obtained,
// so an OS identity never equals a path-derived one.
type ID [17]byte

const (
	kindOS   = 'o'
	kindPath = 'p'
)

var ErrNotOS = errors.New("fileid: not backed by an OS file")

func (id ID) String() string {
	return string(id[0]) + ":" + hex.EncodeToString(id[1:])
}

// IsOS reports whether the identity came from a device and inode number.
func (id ID) IsOS() bool { return id[0] == kindOS }

func fromDevIno(dev, ino uint64) ID {
	var id ID
	id[0] = kindOS
	binary.BigEndian.PutUint64(id[1:], dev)
	binary.BigEndian.PutUint64(id[9:], ino)
	return id
}

// FromPath derives an identity from a cleaned slash path.
// It is only meaningful inside a filesystem that has no links,
// where the path itself is the identity.
func FromPath(name string) ID {
	var id ID
	id[0] = kindPath
	h := xxhash.New()
	h.WriteString(path.Clean(name))
	binary.BigEndian.PutUint64(id[1:], h.Sum64())
	binary.BigEndian.PutUint64(id[9:], xxhash.Sum64String(path.Base(name)))
	return id
}

// GetFS returns the identity of the object name resolves to inside fsys.
// Symbolic links are followed.
func GetFS(fsys fs.FS, name string) (ID, error) {
	inf, err := fs.Stat(fsys, name)
	if err != nil {
		return ID{}, err
	}
	id, ok := FromInfo(inf)
	if !ok {
		return ID{}, ErrNotOS
	}
	return id, nil
}
