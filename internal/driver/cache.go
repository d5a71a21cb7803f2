package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

const cacheSchemaVersion = 1

// Cache is a content-addressed store of emitted IR text. Entries are keyed
// by the MIR bytes plus the target strings, so a target change never serves
// stale output.
type Cache struct {
	dir string
}

// OpenCache opens (creating if needed) a cache rooted at dir. An empty dir
// resolves to rill's slice of the user cache directory.
func OpenCache(dir string) (*Cache, error) {
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("driver: resolve cache directory: %w", err)
		}
		dir = filepath.Join(base, "rill")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("driver: create cache directory: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string { return c.dir }

// CacheKey derives the lookup key for one input under one target.
func CacheKey(input []byte, triple, layout string) string {
	h := sha256.New()
	fmt.Fprintf(h, "v%d\x00%s\x00%s\x00", cacheSchemaVersion, triple, layout)
	h.Write(input)
	return hex.EncodeToString(h.Sum(nil))
}

type cacheEntry struct {
	Schema int    `msgpack:"schema"`
	Output string `msgpack:"output"`
}

// Get returns the cached IR text for key, if present.
func (c *Cache) Get(key string) (string, bool) {
	data, err := os.ReadFile(c.entryPath(key))
	if err != nil {
		return "", false
	}
	var entry cacheEntry
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		return "", false
	}
	if entry.Schema != cacheSchemaVersion {
		return "", false
	}
	return entry.Output, true
}

// Put stores the IR text under key. The write goes through a temp file and
// a rename so a concurrent reader never sees a torn entry.
func (c *Cache) Put(key, output string) error {
	data, err := msgpack.Marshal(cacheEntry{Schema: cacheSchemaVersion, Output: output})
	if err != nil {
		return fmt.Errorf("driver: encode cache entry: %w", err)
	}
	path := c.entryPath(key)
	tmp, err := os.CreateTemp(c.dir, "entry-*.tmp")
	if err != nil {
		return fmt.Errorf("driver: create cache temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("driver: write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("driver: close cache temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("driver: store cache entry: %w", err)
	}
	return nil
}

// Clear removes every entry.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("driver: list cache: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			return fmt.Errorf("driver: remove cache entry: %w", err)
		}
	}
	return nil
}

func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, key+".llir")
}
