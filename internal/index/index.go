// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package index keeps a snapshot of a walk in a pebble database,
// one key per entry path, so that it can be listed in path order later.
package index

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"time"

	"github.com/cockroachdb/pebble/v2"
	"github.com/cockroachdb/pebble/v2/vfs"

	"github.com/elliotnunn/dirwalk/internal/walk"
)

var ErrNotFound = errors.New("not in index")

const (
	entryPrefix = "e/"
	metaRoot    = "m/root"
	batchSize   = 1024
)

// Record is what the index remembers about one entry.
type Record struct {
	Path    string
	Depth   int
	Mode    fs.FileMode
	Size    int64
	ModTime time.Time
	Ino     uint64 // 0 when the platform has none
	Link    bool   // reached through a followed link
}

func FromEntry(e *walk.Entry) Record {
	inf, _ := e.Info()
	r := Record{
		Path:    e.Path(),
		Depth:   e.Depth(),
		Mode:    inf.Mode(),
		Size:    inf.Size(),
		ModTime: inf.ModTime(),
		Link:    e.FollowedLink(),
	}
	r.Ino, _ = e.Ino()
	return r
}

func (r Record) IsDir() bool { return r.Mode.IsDir() }

const flagLink = 1

func (r Record) encode() []byte {
	b := make([]byte, 0, 32)
	b = binary.AppendUvarint(b, uint64(r.Depth))
	b = binary.AppendUvarint(b, uint64(r.Mode))
	b = binary.AppendVarint(b, r.Size)
	var mt int64
	if !r.ModTime.IsZero() {
		mt = r.ModTime.UnixNano()
	}
	b = binary.AppendVarint(b, mt)
	b = binary.AppendUvarint(b, r.Ino)
	var flags byte
	if r.Link {
		flags |= flagLink
	}
	return append(b, flags)
}

func decode(path string, b []byte) (Record, error) {
	r := Record{Path: path}
	var bad bool
	uvarint := func() uint64 {
		v, n := binary.Uvarint(b)
		if n <= 0 {
			bad = true
			return 0
		}
		b = b[n:]
		return v
	}
	varint := func() int64 {
		v, n := binary.Varint(b)
		if n <= 0 {
			bad = true
			return 0
		}
		b = b[n:]
		return v
	}

	r.Depth = int(uvarint())
	r.Mode = fs.FileMode(uvarint())
	r.Size = varint()
	if mt := varint(); mt != 0 {
		r.ModTime = time.Unix(0, mt)
	}
	r.Ino = uvarint()
	if bad || len(b) != 1 {
		return Record{}, fmt.Errorf("corrupt index record for %s", path)
	}
	r.Link = b[0]&flagLink != 0
	return r, nil
}

// Index is a pebble database of Records. Puts are batched until Flush or Close.
type Index struct {
	db      *pebble.DB
	batch   *pebble.Batch
	pending int
}

// Open opens or creates the index in dir on the real filesystem.
func Open(dir string) (*Index, error) {
	return OpenFS(dir, vfs.Default)
}

func OpenFS(dir string, fsys vfs.FS) (*Index, error) {
	db, err := pebble.Open(dir, &pebble.Options{FS: fsys})
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", dir, err)
	}
	return &Index{db: db}, nil
}

func (x *Index) Put(r Record) error {
	if x.batch == nil {
		x.batch = x.db.NewBatch()
	}
	if err := x.batch.Set(entryKey(r.Path), r.encode(), nil); err != nil {
		return err
	}
	x.pending++
	if x.pending >= batchSize {
		return x.Flush()
	}
	return nil
}

func (x *Index) Flush() error {
	if x.batch == nil {
		return nil
	}
	b := x.batch
	x.batch, x.pending = nil, 0
	defer b.Close()
	return b.Commit(pebble.Sync)
}

func (x *Index) Get(path string) (Record, error) {
	v, closer, err := x.db.Get(entryKey(path))
	if errors.Is(err, pebble.ErrNotFound) {
		return Record{}, fmt.Errorf("%s: %w", path, ErrNotFound)
	} else if err != nil {
		return Record{}, err
	}
	defer closer.Close()
	return decode(path, v)
}

// Scan yields every record whose path starts with prefix, in byte order.
func (x *Index) Scan(prefix string) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		lower := entryKey(prefix)
		it, err := x.db.NewIter(&pebble.IterOptions{
			LowerBound: lower,
			UpperBound: successor(lower),
		})
		if err != nil {
			yield(Record{}, err)
			return
		}
		defer it.Close()

		for it.First(); it.Valid(); it.Next() {
			path := string(it.Key()[len(entryPrefix):])
			r, err := decode(path, it.Value())
			if !yield(r, err) {
				return
			}
		}
		if err := it.Error(); err != nil {
			yield(Record{}, err)
		}
	}
}

// SetRoot records which directory the snapshot was taken of.
func (x *Index) SetRoot(root string) error {
	return x.db.Set([]byte(metaRoot), []byte(root), pebble.Sync)
}

func (x *Index) Root() (string, error) {
	v, closer, err := x.db.Get([]byte(metaRoot))
	if errors.Is(err, pebble.ErrNotFound) {
		return "", nil
	} else if err != nil {
		return "", err
	}
	defer closer.Close()
	return string(v), nil
}

// Clear removes every entry, keeping the database open.
func (x *Index) Clear() error {
	lower := []byte(entryPrefix)
	return x.db.DeleteRange(lower, successor(lower), pebble.Sync)
}

func (x *Index) Close() error {
	return errors.Join(x.Flush(), x.db.Close())
}

func entryKey(path string) []byte {
	return append([]byte(entryPrefix), path...)
}

// successor returns the smallest key greater than every key starting with k.
func successor(k []byte) []byte {
	end := bytes.Clone(k)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
