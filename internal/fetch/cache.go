package fetch

import (
	"fmt"

	"github.com/cockroachdb/pebble"
)

// Cache is a pebble-backed store of raw fetch payloads keyed by source and
// URL, so repeated renders of the same interval do not hit the upstream
// services again. Quicklook endpoints serve rolling windows, so entries are
// only reused within a process run unless the caller opts into persistence.
type Cache struct {
	db *pebble.DB
}

// OpenCache opens (or creates) a payload cache at dir.
func OpenCache(dir string) (*Cache, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open payload cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying store.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the cached payload for (source, url), if present.
func (c *Cache) Get(source, url string) ([]byte, bool) {
	if c == nil || c.db == nil {
		return nil, false
	}
	value, closer, err := c.db.Get(cacheKey(source, url))
	if err != nil {
		return nil, false
	}
	payload := append([]byte(nil), value...)
	closer.Close()
	return payload, true
}

// Put stores a payload for (source, url).
func (c *Cache) Put(source, url string, payload []byte) error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Set(cacheKey(source, url), payload, pebble.Sync)
}

func cacheKey(source, url string) []byte {
	return []byte(source + "|" + url)
}
