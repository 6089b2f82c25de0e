// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package walk

type dirPass uint8

const (
	passEntire dirPass = iota
	passFirst
	passSecond
)

type dirPosition uint8

const (
	atBeforeContent dirPosition = iota
	atEntry
	atAfterContent
)

// dirState tracks one directory on the walker's stack.
// Its content holds the children, which all have depth d.
type dirState[T any] struct {
	depth    int
	content  *dirContent[T]
	pass     dirPass
	position dirPosition
}

func newDirState[T any](content *dirContent[T], depth int, opts *Options, classify classifyFunc) *dirState[T] {
	st := &dirState[T]{depth: depth, content: content}
	if opts.Order != OrderNone {
		st.pass = passFirst
	}
	if opts.Sort != nil {
		content.loadAllAndSort(classify, opts.Sort)
	}
	return st
}

// nextPosition advances to the next record that could be yielded in the
// current pass, or to atAfterContent.
func (d *dirState[T]) nextPosition(classify classifyFunc) {
	if d.position == atAfterContent {
		return
	}
	for {
		r, ok := d.content.next(classify)
		if !ok {
			if d.pass == passFirst {
				d.pass = passSecond
				d.content.rewind()
				continue
			}
			d.position = atAfterContent
			return
		}
		if !d.inPass(r) {
			continue
		}
		if r.err == nil && r.flat == nil {
			continue // an error already delivered
		}
		if r.err != nil || !r.hidden || r.flat.IsDir {
			d.position = atEntry
			return
		}
	}
}

func (d *dirState[T]) inPass(r *record[T]) bool {
	switch d.pass {
	case passFirst:
		return r.firstPass
	case passSecond:
		return !r.firstPass
	}
	return true
}

func (d *dirState[T]) current() *record[T] {
	if d.position != atEntry {
		return nil
	}
	return d.content.current()
}

func (d *dirState[T]) skipToEnd() {
	d.position = atAfterContent
}

// cloneAll loads the whole directory and converts every entry matching filter.
// The content filter set in Options does not apply here.
func (d *dirState[T]) cloneAll(filter ContentFilter, classify classifyFunc, p Processor[T]) []T {
	d.content.loadAll(classify)
	var out []T
	for _, r := range d.content.recs {
		if r.flat == nil {
			continue
		}
		switch filter {
		case FilesOnly:
			if r.flat.IsDir {
				continue
			}
		case DirsOnly:
			if !r.flat.IsDir {
				continue
			}
		case SkipAll:
			continue
		}
		if item, ok := r.process(p, d.depth); ok {
			out = append(out, item)
		}
	}
	return out
}
