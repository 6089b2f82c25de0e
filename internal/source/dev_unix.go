//go:build unix

package source

import (
	"io/fs"
	"syscall"

	"golang.org/x/sys/unix"
)

func (*OS) DeviceNum(name string) (uint64, error) {
	var st unix.Stat_t
	for {
		err := unix.Stat(name, &st)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, &fs.PathError{Op: "stat", Path: name, Err: err}
		}
		return uint64(st.Dev), nil
	}
}

func devOf(inf fs.FileInfo) (uint64, bool) {
	switch t := inf.Sys().(type) {
	case *syscall.Stat_t:
		return uint64(t.Dev), true
	default:
		return 0, false
	}
}
