// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package walk

import (
	"errors"
	"io"
	"slices"

	"github.com/elliotnunn/dirwalk/internal/source"
)

type sourceKind uint8

const (
	srcOnce   sourceKind = iota // a single pending entry, the root
	srcOpen                     // a live directory stream
	srcClosed                   // exhausted, or its handle reclaimed after loading everything
	srcFailed                   // opening failed; the error is delivered once
)

// classifyFunc turns a raw entry into a flat one. keep is false for entries
// that must vanish without trace, such as directories on another device.
type classifyFunc func(raw *RawEntry) (flat *FlatEntry, err *Error, keep bool)

type record[T any] struct {
	flat      *FlatEntry
	err       *Error
	firstPass bool
	hidden    bool

	item      T
	processed bool
	keep      bool
}

func (r *record[T]) process(p Processor[T], depth int) (T, bool) {
	if !r.processed {
		r.item, r.keep = p.Process(r.flat, depth)
		r.processed = true
	}
	return r.item, r.keep
}

// takeErr hands out the record's error exactly once.
func (r *record[T]) takeErr(depth int) *Error {
	err := r.err
	r.err = nil
	if err != nil {
		err.Depth = depth
	}
	return err
}

// dirContent loads one directory lazily and keeps everything it has read,
// so the cursor can be rewound for a second pass.
type dirContent[T any] struct {
	kind    sourceKind
	once    *RawEntry
	stream  source.DirStream
	dir     string
	openErr *Error
	backend source.Backend
	opts    *Options

	recs []*record[T]
	pos  int
}

func newOnceContent[T any](raw *RawEntry, b source.Backend, opts *Options) *dirContent[T] {
	return &dirContent[T]{kind: srcOnce, once: raw, backend: b, opts: opts, pos: -1}
}

func newStreamContent[T any](s source.DirStream, dir string, b source.Backend, opts *Options) *dirContent[T] {
	return &dirContent[T]{kind: srcOpen, stream: s, dir: dir, backend: b, opts: opts, pos: -1}
}

func newFailedContent[T any](err *Error, b source.Backend, opts *Options) *dirContent[T] {
	return &dirContent[T]{kind: srcFailed, openErr: err, backend: b, opts: opts, pos: -1}
}

func (c *dirContent[T]) makeRecord(flat *FlatEntry, err *Error) *record[T] {
	r := &record[T]{flat: flat, err: err}
	if flat == nil {
		return r
	}
	switch c.opts.Order {
	case DirsFirst:
		r.firstPass = flat.IsDir
	case FilesFirst:
		r.firstPass = !flat.IsDir
	}
	switch c.opts.Filter {
	case FilesOnly:
		r.hidden = flat.IsDir
	case DirsOnly:
		r.hidden = !flat.IsDir
	case SkipAll:
		r.hidden = true
	}
	return r
}

// pull reads one more record from the source, or returns nil when it is exhausted.
func (c *dirContent[T]) pull(classify classifyFunc) *record[T] {
	for {
		var raw *RawEntry
		switch c.kind {
		case srcClosed:
			return nil
		case srcFailed:
			c.kind = srcClosed
			err := c.openErr
			c.openErr = nil
			return c.makeRecord(nil, err)
		case srcOnce:
			c.kind = srcClosed
			raw = c.once
			c.once = nil
		case srcOpen:
			de, err := c.stream.Next()
			if errors.Is(err, io.EOF) {
				c.close()
				return nil
			} else if err != nil {
				c.close()
				return c.makeRecord(nil, pathError(IOFailed, c.dir, err))
			}
			var rerr *Error
			raw, rerr = rawFromDirEntry(c.backend, c.dir, de)
			if rerr != nil {
				return c.makeRecord(nil, rerr)
			}
		}

		flat, err, keep := classify(raw)
		if !keep {
			continue
		}
		return c.makeRecord(flat, err)
	}
}

// next moves the cursor forward, reading from the source if needed.
func (c *dirContent[T]) next(classify classifyFunc) (*record[T], bool) {
	if c.pos+1 < len(c.recs) {
		c.pos++
		return c.recs[c.pos], true
	}
	r := c.pull(classify)
	if r == nil {
		c.pos = len(c.recs)
		return nil, false
	}
	c.recs = append(c.recs, r)
	c.pos = len(c.recs) - 1
	return r, true
}

func (c *dirContent[T]) current() *record[T] {
	if c.pos < 0 || c.pos >= len(c.recs) {
		return nil
	}
	return c.recs[c.pos]
}

func (c *dirContent[T]) rewind() { c.pos = -1 }

// loadAll drains the source without moving the cursor.
func (c *dirContent[T]) loadAll(classify classifyFunc) {
	for {
		r := c.pull(classify)
		if r == nil {
			return
		}
		c.recs = append(c.recs, r)
	}
}

// loadAllAndSort drains the source and stably sorts the records, errors last.
func (c *dirContent[T]) loadAllAndSort(classify classifyFunc, cmp func(a, b *FlatEntry) int) {
	c.loadAll(classify)
	slices.SortStableFunc(c.recs, func(a, b *record[T]) int {
		switch {
		case a.flat != nil && b.flat != nil:
			return cmp(a.flat, b.flat)
		case a.flat != nil:
			return -1
		case b.flat != nil:
			return 1
		}
		return 0
	})
	c.rewind()
}

func (c *dirContent[T]) close() {
	if c.kind == srcOpen {
		c.stream.Close()
	}
	c.stream = nil
	if c.kind != srcFailed {
		c.kind = srcClosed
	}
}
