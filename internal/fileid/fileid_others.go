//go:build !unix

package fileid

import "io/fs"

func Get(name string) (ID, error) {
	return ID{}, ErrNotOS
}

func FromInfo(inf fs.FileInfo) (ID, bool) {
	return ID{}, false
}
