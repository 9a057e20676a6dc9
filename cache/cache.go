// Package cache provides file-backed caching of rendered inspection
// output. Entries are keyed by the binary's content hash plus the
// operation that produced them, so the cache invalidates itself when a
// binary is rebuilt.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry represents one cached rendering.
type Entry struct {
	// Key is the cache key (binary hash + operation)
	Key string `json:"key"`

	// BinaryHash is the SHA256 hash of the inspected binary
	BinaryHash string `json:"binary_hash"`

	// Operation is what produced the output (scopes, types, binding:<name>, ...)
	Operation string `json:"operation"`

	// Output is the cached rendered text
	Output string `json:"output"`

	// CreatedAt is when the entry was created
	CreatedAt time.Time `json:"created_at"`
}

// Stats tracks cache performance.
type Stats struct {
	Hits       int64 `json:"hits"`
	Misses     int64 `json:"misses"`
	Writes     int64 `json:"writes"`
	Evictions  int64 `json:"evictions"`
	TotalBytes int64 `json:"total_bytes"`
}

// Cache is a file-backed cache of rendered output.
type Cache struct {
	dir     string
	ttl     time.Duration
	stats   Stats
	mu      sync.RWMutex
	enabled bool
}

// Options configures the cache.
type Options struct {
	// Dir is the cache directory (default: .scopemap/cache)
	Dir string

	// TTL is the cache entry TTL (0 = no expiry)
	TTL time.Duration

	// Enabled controls whether caching is active
	Enabled bool
}

// DefaultOptions returns default cache options.
func DefaultOptions() Options {
	return Options{
		Dir:     filepath.Join(".scopemap", "cache"),
		TTL:     0,
		Enabled: true,
	}
}

// New creates a new cache.
func New(opts Options) (*Cache, error) {
	if !opts.Enabled {
		return &Cache{enabled: false}, nil
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	return &Cache{
		dir:     opts.Dir,
		ttl:     opts.TTL,
		enabled: true,
	}, nil
}

// MakeKey creates a cache key from a binary hash and operation.
func MakeKey(binaryHash, operation string) string {
	combined := fmt.Sprintf("%s:%s", binaryHash, operation)
	hash := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(hash[:16])
}

// Get retrieves a cached entry.
func (c *Cache) Get(key string) (*Entry, bool) {
	if !c.enabled {
		return nil, false
	}

	c.mu.RLock()
	path := c.keyPath(key)
	data, err := os.ReadFile(path)
	c.mu.RUnlock()

	if err != nil {
		c.recordMiss()
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.recordMiss()
		return nil, false
	}

	if c.ttl > 0 && time.Since(entry.CreatedAt) > c.ttl {
		os.Remove(path)
		c.recordMiss()
		return nil, false
	}

	c.recordHit()
	return &entry, true
}

// GetOutput retrieves cached output by binary hash and operation.
func (c *Cache) GetOutput(binaryHash, operation string) (string, bool) {
	entry, ok := c.Get(MakeKey(binaryHash, operation))
	if !ok {
		return "", false
	}
	return entry.Output, true
}

// SetOutput caches rendered output for a binary hash and operation.
func (c *Cache) SetOutput(binaryHash, operation, output string) error {
	if !c.enabled {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry := Entry{
		Key:        MakeKey(binaryHash, operation),
		BinaryHash: binaryHash,
		Operation:  operation,
		Output:     output,
		CreatedAt:  time.Now(),
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling entry: %w", err)
	}

	if err := os.WriteFile(c.keyPath(entry.Key), data, 0644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}

	c.stats.Writes++
	c.stats.TotalBytes += int64(len(data))

	return nil
}

// Delete removes an entry from the cache.
func (c *Cache) Delete(key string) error {
	if !c.enabled {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(c.keyPath(key)); err != nil && !os.IsNotExist(err) {
		return err
	}

	c.stats.Evictions++
	return nil
}

// Clear removes all entries from the cache.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) == ".json" {
			os.Remove(filepath.Join(c.dir, entry.Name()))
			c.stats.Evictions++
		}
	}

	c.stats.TotalBytes = 0
	return nil
}

// Stats returns cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// HitRate returns the cache hit rate.
func (c *Cache) HitRate() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := c.stats.Hits + c.stats.Misses
	if total == 0 {
		return 0
	}
	return float64(c.stats.Hits) / float64(total)
}

// Size returns the number of cached entries.
func (c *Cache) Size() int {
	if !c.enabled {
		return 0
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0
	}

	count := 0
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			count++
		}
	}
	return count
}

// Enabled returns whether caching is enabled.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// Cleanup removes expired entries.
func (c *Cache) Cleanup() error {
	if !c.enabled || c.ttl == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		path := filepath.Join(c.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var cached Entry
		if err := json.Unmarshal(data, &cached); err != nil {
			continue
		}

		if now.Sub(cached.CreatedAt) > c.ttl {
			os.Remove(path)
			c.stats.Evictions++
		}
	}

	return nil
}

// keyPath returns the file path for a cache key.
func (c *Cache) keyPath(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// recordHit increments the hit counter.
func (c *Cache) recordHit() {
	c.mu.Lock()
	c.stats.Hits++
	c.mu.Unlock()
}

// recordMiss increments the miss counter.
func (c *Cache) recordMiss() {
	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()
}
