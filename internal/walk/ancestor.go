package walk

import (
	"github.com/elliotnunn/dirwalk/internal/fileid"
	"github.com/elliotnunn/dirwalk/internal/source"
)

// ancestor is a directory on the current path, remembered by identity so that
// a followed link can be recognised as pointing back at it.
type ancestor struct {
	path string
	id   fileid.ID
}

func newAncestor(b source.Backend, path string) (ancestor, *Error) {
	id, err := b.SameFile(path)
	if err != nil {
		return ancestor{}, pathError(IOFailed, path, err)
	}
	return ancestor{path: path, id: id}, nil
}

type ancestorChain []ancestor

// checkLoop returns the index of the innermost ancestor that path refers to, or -1.
func (c ancestorChain) checkLoop(b source.Backend, path string) (int, *Error) {
	id, err := b.SameFile(path)
	if err != nil {
		return -1, pathError(IOFailed, path, err)
	}
	for i := len(c) - 1; i >= 0; i-- {
		if c[i].id == id {
			return i, nil
		}
	}
	return -1, nil
}
