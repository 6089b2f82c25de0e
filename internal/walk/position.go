package walk

import (
	"fmt"
	"iter"
)

type PosKind uint8

const (
	PosBeforeContent PosKind = iota + 1
	PosEntry
	PosError
	PosAfterContent
)

func (k PosKind) String() string {
	switch k {
	case PosBeforeContent:
		return "BeforeContent"
	case PosEntry:
		return "Entry"
	case PosError:
		return "Error"
	case PosAfterContent:
		return "AfterContent"
	}
	return fmt.Sprintf("PosKind(%d)", uint8(k))
}

// Position is one step of a walk.
//
// For BeforeContent, Item is the directory about to be enumerated and Depth is
// its depth. AfterContent carries only the depth. Errors carry Err.
type Position[T any] struct {
	Kind  PosKind
	Item  T
	Err   *Error
	Depth int
}

// Iterator is what Filter and the range adapters need from a walker.
type Iterator[T any] interface {
	Next() (Position[T], bool)
	SkipCurrentDir()
	IsDir(item T) bool
}

// FilterIter drops entries rejected by a predicate, pruning rejected directories.
type FilterIter[T any] struct {
	it   Iterator[T]
	keep func(T) bool
}

// Filter wraps it so that only entries satisfying keep are yielded. Errors and
// the BeforeContent and AfterContent positions are passed through unchanged.
// A rejected directory is not descended into.
func Filter[T any](it Iterator[T], keep func(T) bool) *FilterIter[T] {
	return &FilterIter[T]{it: it, keep: keep}
}

func (f *FilterIter[T]) Next() (Position[T], bool) {
	for {
		pos, ok := f.it.Next()
		if !ok {
			return pos, false
		}
		if pos.Kind == PosEntry && !f.keep(pos.Item) {
			if f.it.IsDir(pos.Item) {
				f.it.SkipCurrentDir()
			}
			continue
		}
		return pos, true
	}
}

func (f *FilterIter[T]) SkipCurrentDir() { f.it.SkipCurrentDir() }

func (f *FilterIter[T]) IsDir(item T) bool { return f.it.IsDir(item) }

// Positions ranges over every position it reports.
func Positions[T any](it Iterator[T]) iter.Seq[Position[T]] {
	return func(yield func(Position[T]) bool) {
		for {
			pos, ok := it.Next()
			if !ok || !yield(pos) {
				return
			}
		}
	}
}

// Entries ranges over entries and errors, leaving out the content markers.
func Entries[T any](it Iterator[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		for pos := range Positions(it) {
			switch pos.Kind {
			case PosEntry:
				if !yield(pos.Item, nil) {
					return
				}
			case PosError:
				if !yield(zero, pos.Err) {
					return
				}
			}
		}
	}
}
