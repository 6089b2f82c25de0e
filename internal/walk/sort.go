package walk

import (
	"cmp"
	"io/fs"
	"strings"
)

// ByName orders siblings by file name, byte-wise.
func ByName(a, b *FlatEntry) int {
	return strings.Compare(a.Raw.Name(), b.Raw.Name())
}

// ByDiskOrder orders siblings by inode number or archive offset,
// a vague proxy for their order on disk. Entries without a key sort last.
func ByDiskOrder(a, b *FlatEntry) int {
	ka, oka := diskKey(a.Raw.Info())
	kb, okb := diskKey(b.Raw.Info())
	switch {
	case oka && okb:
		return cmp.Compare(ka, kb)
	case oka:
		return -1
	case okb:
		return 1
	}
	return 0
}

func diskKey(i fs.FileInfo) (uint64, bool) {
	if ino, ok := tryInode(i); ok {
		return ino, true
	}

	switch t := i.Sys().(type) {
	case interface{ ByteOffset() int64 }:
		return uint64(t.ByteOffset()), true
	case interface{ Inode() uint64 }:
		return t.Inode(), true
	}
	return 0, false
}

var tryInode = func(i fs.FileInfo) (uint64, bool) { return 0, false }

// SortByName returns the comparator registered under name, for configuration.
func SortByName(name string) (func(a, b *FlatEntry) int, bool) {
	switch name {
	case "", "none":
		return nil, true
	case "name":
		return ByName, true
	case "disk":
		return ByDiskOrder, true
	}
	return nil, false
}
