package fileid

import (
	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-tinylfu"
)

// A Cache remembers identities by path.
// It assumes the tree does not change while it is in use.
// A Cache is not safe for concurrent use.
type Cache struct {
	lfu          *tinylfu.T[string, ID]
	hits, misses int
}

func NewCache(n int) *Cache {
	n = max(n, 16)
	return &Cache{lfu: tinylfu.New[string, ID](n, n*10, xxhash.Sum64String)}
}

// Get returns the cached identity for name, calling lookup on a miss.
// Failed lookups are not cached.
func (c *Cache) Get(name string, lookup func(string) (ID, error)) (ID, error) {
	if id, ok := c.lfu.Get(name); ok {
		c.hits++
		return id, nil
	}
	c.misses++
	id, err := lookup(name)
	if err != nil {
		return ID{}, err
	}
	c.lfu.Add(name, id)
	return id, nil
}

func (c *Cache) Stats() (hits, misses int) { return c.hits, c.misses }
