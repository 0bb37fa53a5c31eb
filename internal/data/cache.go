package data

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Cache memoizes parsed competition tables for the lifetime of a process.
// Entries are keyed by file fingerprint, so an edited file is parsed again.
// Callers must treat cached values as read-only.
type Cache struct {
	mu     sync.RWMutex
	store  map[string]any
	hits   int
	misses int
}

func NewCache() *Cache {
	return &Cache{store: make(map[string]any)}
}

var (
	globalCache *Cache
	cacheOnce   sync.Once
)

// GetCache returns the process-wide table cache shared by config-built loaders,
// so a forecast followed by an evaluation parses each file once.
func GetCache() *Cache {
	cacheOnce.Do(func() {
		globalCache = NewCache()
	})
	return globalCache
}

// Get retrieves a cached table.
func (c *Cache) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.store[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

// Set stores a parsed table.
func (c *Cache) Set(key string, v any) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = v
}

// Clear removes all entries.
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]any)
}

// Stats returns hit and miss counts.
func (c *Cache) Stats() (hits, misses int) {
	if c == nil {
		return 0, 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// GenerateCacheKey fingerprints a file by kind, absolute path, size and modification time.
func GenerateCacheKey(kind, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	keyStr := fmt.Sprintf("%s:%s:%d:%d", kind, abs, info.Size(), info.ModTime().UnixNano())
	hash := sha256.Sum256([]byte(keyStr))
	return hex.EncodeToString(hash[:]), nil
}

// cached loads a table through the cache. A nil cache always calls load.
func cached[T any](c *Cache, kind, path string, load func() (T, error)) (T, error) {
	if c == nil {
		return load()
	}
	key, err := GenerateCacheKey(kind, path)
	if err != nil {
		var zero T
		return zero, err
	}
	if v, ok := c.Get(key); ok {
		slog.Debug("cache hit", "kind", kind, "path", path)
		return v.(T), nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.Set(key, v)
	return v, nil
}
