//go:build unix

package fileid

import (
	"io/fs"
	"syscall"

	"golang.org/x/sys/unix"
)

// Get returns the identity of the object the OS path resolves to.
// Symbolic links are followed.
func Get(name string) (ID, error) {
	var st unix.Stat_t
	for {
		err := unix.Stat(name, &st)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return ID{}, &fs.PathError{Op: "stat", Path: name, Err: err}
		}
		break
	}
	return fromDevIno(uint64(st.Dev), uint64(st.Ino)), nil
}

// FromInfo extracts an identity from a FileInfo produced by the os package.
func FromInfo(inf fs.FileInfo) (ID, bool) {
	switch t := inf.Sys().(type) {
	case *syscall.Stat_t:
		return fromDevIno(uint64(t.Dev), uint64(t.Ino)), true
	default:
		return ID{}, false
	}
}
