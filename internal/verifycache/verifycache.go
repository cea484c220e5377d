// Package verifycache persists verification outcomes across runs.
//
// Entries are keyed by a content hash of the normalized (player name,
// institution) pair, never by anything row-specific, so the same person
// resolves to the same entry no matter which dataset referenced them.
// The cache is loaded once at scheduler start, mutated in memory during a
// run, and flushed to disk at most once at run end.
package verifycache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"meikan/internal/logging"
	"meikan/internal/registry"
)

// StatusNotFound is the outcome status whose caching is policy-controlled.
const StatusNotFound = "not_found"

// Entry is a cached verification outcome: the fields of a prior result that
// are reusable across datasets. Row index and original row data are never
// stored.
type Entry struct {
	Key         string            `json:"key"`
	Status      string            `json:"status"`
	Similarity  float64           `json:"similarity"`
	Member      *registry.Member  `json:"member,omitempty"`
	Corrections map[string]string `json:"corrections,omitempty"`
	Message     string            `json:"message,omitempty"`
	CachedAt    time.Time         `json:"cached_at"`
}

// Key derives the cache key from the normalized player name and normalized
// institution. The hash is fixed-length and carries no row data.
func Key(canonicalName, canonicalInstitution string) string {
	sum := sha256.Sum256([]byte(canonicalName + "\x00" + canonicalInstitution))
	return hex.EncodeToString(sum[:16])
}

// Cache provides thread-safe access to the persistent verification cache.
// If path is empty the cache is a no-op.
type Cache struct {
	path          string
	storeNotFound bool
	logger        *slog.Logger
	lock          *flock.Flock

	mu      sync.RWMutex
	entries map[string]Entry
	dirty   bool
}

// NewCache creates a cache instance and loads existing entries. A corrupt
// or unreadable cache file is discarded with a warning; it never fails the
// run.
func NewCache(path string, storeNotFound bool, logger *slog.Logger) *Cache {
	logger = logging.NewComponentLogger(logger, "verifycache")

	c := &Cache{
		path:          path,
		storeNotFound: storeNotFound,
		logger:        logger,
		entries:       make(map[string]Entry),
	}
	if path == "" {
		return c
	}
	c.lock = flock.New(path + ".lock")

	if err := c.load(); err != nil {
		logger.Warn("failed to load verification cache",
			logging.String(logging.FieldEventType, "verifycache_load_failed"),
			logging.Error(err),
			logging.String(logging.FieldImpact, "cache starts empty; previously verified players will be re-fetched"))
		c.entries = make(map[string]Entry)
	}
	return c
}

// Lookup returns the cached outcome for a key.
func (c *Cache) Lookup(key string) (Entry, bool) {
	if key == "" || c.path == "" {
		return Entry{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, found := c.entries[key]
	return entry, found
}

// Store records an outcome in memory and marks the cache dirty. Not-found
// outcomes are skipped when the cache is configured not to keep them.
// Nothing touches disk until Flush.
func (c *Cache) Store(entry Entry) {
	if entry.Key == "" || c.path == "" {
		return
	}
	if entry.Status == StatusNotFound && !c.storeNotFound {
		return
	}
	if entry.CachedAt.IsZero() {
		entry.CachedAt = time.Now().UTC()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry.Key] = entry
	c.dirty = true
}

// Count returns the number of cached entries.
func (c *Cache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries and deletes the cache file.
func (c *Cache) Clear() error {
	if c.path == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry)
	c.dirty = false
	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove cache file: %w", err)
	}
	return nil
}

// Flush writes the cache to disk if it was mutated since load. Called once
// at run end; a clean cache costs no I/O.
func (c *Cache) Flush() error {
	if c.path == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil
	}
	if err := c.save(); err != nil {
		return fmt.Errorf("persist verification cache: %w", err)
	}
	c.dirty = false
	c.logger.Debug("verification cache flushed",
		logging.Int("entry_count", len(c.entries)),
		logging.String("path", c.path))
	return nil
}

// load reads the cache file into memory. Missing files mean a fresh start.
func (c *Cache) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}

	c.entries = make(map[string]Entry, len(entries))
	for _, entry := range entries {
		if entry.Key != "" {
			c.entries[entry.Key] = entry
		}
	}

	c.logger.Debug("loaded verification cache",
		logging.Int("entry_count", len(c.entries)),
		logging.String("path", c.path))
	return nil
}

// save writes the cache atomically under the cross-process file lock.
func (c *Cache) save() error {
	entries := make([]Entry, 0, len(c.entries))
	for _, entry := range c.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	if c.lock != nil {
		if err := c.lock.Lock(); err != nil {
			return fmt.Errorf("acquire cache lock: %w", err)
		}
		defer func() { _ = c.lock.Unlock() }()
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
