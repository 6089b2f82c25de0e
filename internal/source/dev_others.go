//go:build !unix

package source

import "io/fs"

func (*OS) DeviceNum(name string) (uint64, error) {
	return 0, ErrUnsupported
}

func devOf(inf fs.FileInfo) (uint64, bool) {
	return 0, false
}
