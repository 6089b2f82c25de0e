// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package walk enumerates a directory tree one position at a time.
//
// A Walker is pulled with Next. Besides entries and errors it reports
// BeforeContent and AfterContent around the children of every directory it
// descends into, and keeps at most Options.MaxOpen directory handles open by
// reading the shallowest open directory into memory when the budget runs out.
package walk

import (
	"errors"
	"log/slog"

	"github.com/elliotnunn/dirwalk/internal/source"
)

type transition uint8

const (
	transNone           transition = iota
	transBeforePushDown            // the current directory entry will be entered on the next pull
	transBeforePopUp               // AfterContent was reported, the top state goes next
	transAfterPopUp                // the current directory entry is finished with
)

// Walker is a resumable iterator over a directory tree. It is not safe for
// concurrent use.
type Walker[T any] struct {
	root    string
	opts    Options
	backend source.Backend
	proc    Processor[T]

	started bool
	done    bool
	rootDev uint64

	states       []*dirState[T]
	ancestors    ancestorChain // ancestors[k] is the directory of states[k+1]
	oldestOpened int           // states below this index hold no handle
	trans        transition
	lastWasDir   bool // the last position returned was a directory Entry
}

// New walks root on the operating system's filesystem.
func New(root string, opts Options) *Walker[*Entry] {
	b := source.Default()
	return NewWith[*Entry](root, b, EntryProcessor{Backend: b}, opts)
}

// NewWith walks root through any backend, converting entries with p.
func NewWith[T any](root string, b source.Backend, p Processor[T], opts Options) *Walker[T] {
	return &Walker[T]{
		root:    root,
		opts:    opts.normalize(),
		backend: b,
		proc:    p,
	}
}

// Options returns the options in effect, after out-of-range values were clamped.
func (w *Walker[T]) Options() Options { return w.opts }

func (w *Walker[T]) IsDir(item T) bool { return w.proc.IsDir(item) }

func (w *Walker[T]) init() *Error {
	if w.opts.SameFileSystem {
		dev, err := w.backend.DeviceNum(w.root)
		if err != nil {
			kind := IOFailed
			if errors.Is(err, source.ErrUnsupported) {
				kind = Unsupported
			}
			return pathError(kind, w.root, err)
		}
		w.rootDev = dev
	}
	raw, err := rawFromPath(w.backend, w.root)
	if err != nil {
		return err
	}
	content := newOnceContent[T](raw, w.backend, &w.opts)
	w.states = append(w.states, newDirState(content, 0, &w.opts, w.classifier(0)))
	return nil
}

// classifier returns the classification for children of states[i].
// They are checked against the ancestors down to and including their parent.
func (w *Walker[T]) classifier(i int) classifyFunc {
	return func(raw *RawEntry) (*FlatEntry, *Error, bool) {
		var chain ancestorChain
		if w.opts.FollowLinks {
			chain = w.ancestors[:min(i, len(w.ancestors))]
		}
		depth := 0
		if i < len(w.states) {
			depth = w.states[i].depth
		} else if i > 0 {
			depth = w.states[i-1].depth + 1
		}
		return w.classify(raw, depth, chain)
	}
}

func (w *Walker[T]) classify(raw *RawEntry, depth int, chain ancestorChain) (*FlatEntry, *Error, bool) {
	flat := &FlatEntry{Raw: raw, LoopLink: -1}
	if w.opts.FollowLinks && raw.IsSymlink() {
		target, err := raw.follow(w.backend)
		if err != nil {
			return nil, err, true
		}
		flat.Raw = target
		flat.FollowLink = true
		if target.IsDir() && len(chain) > 0 {
			idx, err := chain.checkLoop(w.backend, target.Path())
			if err != nil {
				return nil, err, true
			}
			if idx >= 0 {
				if !w.opts.YieldLoopLinks {
					return nil, &Error{Kind: LoopDetected, Path: target.Path(), Ancestor: chain[idx].path}, true
				}
				flat.LoopLink = idx
			}
		}
	}
	flat.IsDir = flat.Raw.IsDir()

	if depth == 0 && flat.Raw.IsSymlink() {
		// the root is entered even as an unfollowed link
		inf, err := w.backend.Stat(flat.Raw.Path(), true)
		if err != nil {
			return nil, pathError(StatFailed, flat.Raw.Path(), err), true
		}
		flat.IsDir = inf.IsDir()
	} else if flat.IsDir && depth > 0 && w.opts.SameFileSystem {
		dev, err := w.backend.DeviceNum(flat.Raw.Path())
		if err != nil {
			return nil, pathError(IOFailed, flat.Raw.Path(), err), true
		}
		if dev != w.rootDev {
			return nil, nil, false
		}
	}
	return flat, nil, true
}

func (w *Walker[T]) canDescend(flat *FlatEntry, depth int) bool {
	return flat.LoopLink < 0 && depth < w.opts.MaxDepth
}

// pushDir enters the directory flat, whose own depth is depth.
func (w *Walker[T]) pushDir(flat *FlatEntry, depth int) *Error {
	if w.opts.FollowLinks {
		a, err := newAncestor(w.backend, flat.Raw.Path())
		if err != nil {
			return err
		}
		w.ancestors = append(w.ancestors, a)
	}

	reclaim := len(w.states)-w.oldestOpened >= w.opts.MaxOpen
	if reclaim {
		old := w.states[w.oldestOpened]
		old.content.loadAll(w.classifier(w.oldestOpened))
		slog.Debug("walkReclaimHandle", "depth", old.depth, "loaded", len(old.content.recs))
	}

	var content *dirContent[T]
	if s, err := flat.Raw.readDir(w.backend); err != nil {
		content = newFailedContent[T](err, w.backend, &w.opts)
	} else {
		content = newStreamContent[T](s, flat.Raw.Path(), w.backend, &w.opts)
	}
	i := len(w.states)
	w.states = append(w.states, newDirState(content, depth+1, &w.opts, w.classifier(i)))
	if reclaim {
		w.oldestOpened++
	}
	return nil
}

func (w *Walker[T]) popDir() {
	top := w.states[len(w.states)-1]
	top.content.close()
	w.states = w.states[:len(w.states)-1]
	if w.opts.FollowLinks && len(w.ancestors) > 0 {
		w.ancestors = w.ancestors[:len(w.ancestors)-1]
	}
	w.oldestOpened = min(w.oldestOpened, len(w.states))
	w.trans = transAfterPopUp
}

func (w *Walker[T]) yieldEntry(r *record[T], depth int) (Position[T], bool) {
	if r.hidden || depth < w.opts.MinDepth {
		return Position[T]{}, false
	}
	item, ok := r.process(w.proc, depth)
	if !ok {
		return Position[T]{}, false
	}
	return Position[T]{Kind: PosEntry, Item: item, Depth: depth}, true
}

func errorPosition[T any](err *Error) Position[T] {
	return Position[T]{Kind: PosError, Err: err, Depth: err.Depth}
}

// Next returns the next position, or false once the walk is over.
func (w *Walker[T]) Next() (Position[T], bool) {
	if !w.started {
		w.started = true
		if err := w.init(); err != nil {
			w.done = true
			return errorPosition[T](err), true
		}
	}
	w.lastWasDir = false

	for !w.done {
		top := len(w.states) - 1
		cur := w.states[top]
		classify := w.classifier(top)

		switch cur.position {
		case atBeforeContent:
			cur.nextPosition(classify)
			if top == 0 {
				continue
			}
			parent := w.states[top-1]
			pos := Position[T]{Kind: PosBeforeContent, Depth: parent.depth}
			if r := parent.current(); r != nil && r.flat != nil {
				pos.Item, _ = r.process(w.proc, parent.depth)
			}
			return pos, true

		case atAfterContent:
			if top == 0 {
				w.Close()
				return Position[T]{}, false
			}
			if w.trans == transBeforePopUp {
				w.popDir()
				continue
			}
			w.trans = transBeforePopUp
			return Position[T]{Kind: PosAfterContent, Depth: cur.depth - 1}, true

		case atEntry:
			r := cur.current()
			if r.err != nil {
				err := r.takeErr(cur.depth)
				cur.nextPosition(classify)
				return errorPosition[T](err), true
			}
			if !r.flat.IsDir {
				cur.nextPosition(classify)
				if pos, ok := w.yieldEntry(r, cur.depth); ok {
					return pos, true
				}
				continue
			}

			switch w.trans {
			case transNone:
				if w.canDescend(r.flat, cur.depth) {
					w.trans = transBeforePushDown
				} else {
					w.trans = transAfterPopUp
				}
				if !w.opts.ContentsFirst {
					if pos, ok := w.yieldEntry(r, cur.depth); ok {
						w.lastWasDir = true
						return pos, true
					}
				}
			case transBeforePushDown:
				w.trans = transNone
				if err := w.pushDir(r.flat, cur.depth); err != nil {
					w.trans = transAfterPopUp
					err.Depth = cur.depth
					return errorPosition[T](err), true
				}
			case transAfterPopUp:
				w.trans = transNone
				cur.nextPosition(classify)
				if w.opts.ContentsFirst {
					if pos, ok := w.yieldEntry(r, cur.depth); ok {
						w.lastWasDir = true
						return pos, true
					}
				}
			default:
				panic("walk: bad transition")
			}
		}
	}
	return Position[T]{}, false
}

// SkipCurrentDir stops the walker from yielding any more of a directory.
//
// Called right after a directory Entry in pre-order, that directory is not
// entered. Otherwise the rest of the directory being enumerated is dropped
// and its AfterContent comes next. After a directory Entry in contents-first
// order there is nothing left to skip.
func (w *Walker[T]) SkipCurrentDir() {
	if w.done || len(w.states) == 0 {
		return
	}
	top := w.states[len(w.states)-1]
	if w.lastWasDir {
		w.lastWasDir = false
		if !w.opts.ContentsFirst && top.position == atEntry &&
			(w.trans == transBeforePushDown || w.trans == transAfterPopUp) {
			w.trans = transAfterPopUp
		}
		return
	}
	if top.position == atAfterContent {
		return
	}
	top.skipToEnd()
	w.trans = transNone
}

// CurrentDirContent reads the rest of the directory being enumerated and
// returns all of its children that match filter, already yielded ones included.
func (w *Walker[T]) CurrentDirContent(filter ContentFilter) []T {
	if w.done || len(w.states) == 0 {
		return nil
	}
	top := len(w.states) - 1
	return w.states[top].cloneAll(filter, w.classifier(top), w.proc)
}

// Close releases every open handle. Next reports nothing afterwards.
func (w *Walker[T]) Close() error {
	for _, st := range w.states {
		st.content.close()
	}
	w.states = nil
	w.ancestors = nil
	w.oldestOpened = 0
	w.started = true
	w.done = true
	return nil
}
