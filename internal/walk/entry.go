package walk

import (
	"fmt"
	"io/fs"

	"github.com/elliotnunn/dirwalk/internal/source"
)

// FlatEntry is a RawEntry classified by the walker.
type FlatEntry struct {
	Raw        *RawEntry
	IsDir      bool // a directory, descended into unless it is a loop link
	FollowLink bool // Raw describes the target of a followed link
	LoopLink   int  // index into the ancestor chain, or -1
}

// A Processor turns classified entries into the items a Walker yields.
// Process is called at most once per entry; returning false suppresses it.
type Processor[T any] interface {
	Process(e *FlatEntry, depth int) (T, bool)
	IsDir(item T) bool
}

// Entry is the item produced by EntryProcessor.
type Entry struct {
	path       string
	name       string
	info       fs.FileInfo
	depth      int
	isDir      bool
	followLink bool
	loopLink   int
	backend    source.Backend
}

var _ fs.DirEntry = (*Entry)(nil)

// EntryProcessor yields every entry as an *Entry.
type EntryProcessor struct {
	Backend source.Backend
}

func (p EntryProcessor) Process(e *FlatEntry, depth int) (*Entry, bool) {
	return &Entry{
		path:       e.Raw.Path(),
		name:       e.Raw.Name(),
		info:       e.Raw.Info(),
		depth:      depth,
		isDir:      e.IsDir,
		followLink: e.FollowLink,
		loopLink:   e.LoopLink,
		backend:    p.Backend,
	}, true
}

func (p EntryProcessor) IsDir(e *Entry) bool { return e.isDir }

func (e *Entry) Path() string { return e.path }
func (e *Entry) Name() string { return e.name }
func (e *Entry) Depth() int   { return e.depth }

// IsDir reports whether the walker treats the entry as a directory.
// A followed link to a directory is one; an unfollowed link never is.
// A yielded loop link is a directory too, but it is never entered.
func (e *Entry) IsDir() bool { return e.isDir }

func (e *Entry) Type() fs.FileMode          { return e.info.Mode().Type() }
func (e *Entry) Info() (fs.FileInfo, error) { return e.info, nil }
func (e *Entry) FollowedLink() bool         { return e.followLink }
func (e *Entry) PathIsSymlink() bool        { return e.followLink || e.Type() == fs.ModeSymlink }

// LoopLink returns the index into the ancestor chain that a followed link
// points back to. It is only ever set when loop links are yielded.
func (e *Entry) LoopLink() (int, bool) {
	return e.loopLink, e.loopLink >= 0
}

// Ino returns the inode number captured at discovery, if the platform has one.
func (e *Entry) Ino() (uint64, bool) { return tryInode(e.info) }

// Metadata reads the entry's metadata again.
func (e *Entry) Metadata() (fs.FileInfo, error) {
	return e.backend.Stat(e.path, e.followLink)
}

func (e *Entry) String() string {
	return fmt.Sprintf("%s (depth %d)", e.path, e.depth)
}
