package walk

import (
	"fmt"
	"math"
)

// ContentFilter hides entries of one kind. Hidden directories are still
// descended into, so their children are not lost.
type ContentFilter uint8

const (
	FilterNone ContentFilter = iota
	FilesOnly                // everything that is not a directory, symlinks included
	DirsOnly
	SkipAll // only BeforeContent and AfterContent positions
)

var filterNames = [...]string{"none", "files", "dirs", "skip"}

func (f ContentFilter) String() string {
	if int(f) < len(filterNames) {
		return filterNames[f]
	}
	return fmt.Sprintf("ContentFilter(%d)", f)
}

func ParseContentFilter(s string) (ContentFilter, error) {
	for i, n := range filterNames {
		if n == s {
			return ContentFilter(i), nil
		}
	}
	if s == "" {
		return FilterNone, nil
	}
	return 0, fmt.Errorf("unknown content filter %q, want one of %v", s, filterNames)
}

// ContentOrder yields one kind of child before the other within each directory.
type ContentOrder uint8

const (
	OrderNone ContentOrder = iota
	FilesFirst
	DirsFirst
)

var orderNames = [...]string{"none", "files-first", "dirs-first"}

func (o ContentOrder) String() string {
	if int(o) < len(orderNames) {
		return orderNames[o]
	}
	return fmt.Sprintf("ContentOrder(%d)", o)
}

func ParseContentOrder(s string) (ContentOrder, error) {
	for i, n := range orderNames {
		if n == s {
			return ContentOrder(i), nil
		}
	}
	if s == "" {
		return OrderNone, nil
	}
	return 0, fmt.Errorf("unknown content order %q, want one of %v", s, orderNames)
}

// Unlimited is the default MaxDepth.
const Unlimited = math.MaxInt

// Options are fixed once the first position has been pulled.
// Start from DefaultOptions: the zero value has MaxDepth 0, which walks only the root.
type Options struct {
	FollowLinks    bool
	YieldLoopLinks bool // report a looping link as a leaf instead of an error
	SameFileSystem bool // do not enter directories on another device
	MaxOpen        int  // simultaneously open directory handles, at least 1
	MinDepth       int
	MaxDepth       int
	ContentsFirst  bool // yield a directory after its contents
	Filter         ContentFilter
	Order          ContentOrder
	Sort           func(a, b *FlatEntry) int // siblings only
}

func DefaultOptions() Options {
	return Options{
		MaxOpen:  10,
		MaxDepth: Unlimited,
	}
}

func (o Options) normalize() Options {
	o.MaxOpen = max(o.MaxOpen, 1)
	if o.MaxDepth < 0 {
		o.MaxDepth = Unlimited
	}
	o.MinDepth = min(max(o.MinDepth, 0), o.MaxDepth)
	return o
}
