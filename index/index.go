// Package index provides the persisted, queryable store of extraction
// results. It keeps one entry per indexed binary, keyed by path and
// stamped with the binary's content hash so staleness is detected when
// a binary is rebuilt. Queries answer the questions the extractor's
// raw dump leaves implicit: which scopes declare a name, which
// declaration shadows which, and which scopes cover a source line.
package index

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"scopemap/scanner"
)

// Entry is one indexed binary.
type Entry struct {
	Path      string        `json:"path"`
	Hash      string        `json:"hash"`
	ModTime   int64         `json:"mod_time"`
	IndexedAt int64         `json:"indexed_at"` // Unix timestamp
	Dump      *scanner.Dump `json:"dump"`
}

// Index maps binary paths to their extraction results.
type Index struct {
	Entries map[string]*Entry `json:"entries"`
	Version int               `json:"version"`
}

// New creates an empty index.
func New() *Index {
	return &Index{
		Entries: make(map[string]*Entry),
		Version: 1,
	}
}

// HashFile computes the content hash used for staleness checks and
// cache keys.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Add extracts path and stores the result, replacing any older entry.
func (ix *Index) Add(path string) (*Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	dump, err := scanner.Extract(path)
	if err != nil {
		return nil, err
	}

	hash, err := HashFile(path)
	if err != nil {
		return nil, err
	}

	entry := &Entry{
		Path:      path,
		Hash:      hash,
		ModTime:   info.ModTime().Unix(),
		IndexedAt: time.Now().Unix(),
		Dump:      dump,
	}
	ix.Entries[path] = entry
	return entry, nil
}

// Get returns the entry for path, if indexed.
func (ix *Index) Get(path string) (*Entry, bool) {
	e, ok := ix.Entries[path]
	return e, ok
}

// Remove drops the entry for path.
func (ix *Index) Remove(path string) {
	delete(ix.Entries, path)
}

// IsStale reports whether the entry no longer matches the binary on
// disk: the file is missing, its mod time moved, and its content hash
// differs. An unchanged mod time short-circuits the hash.
func (e *Entry) IsStale() bool {
	info, err := os.Stat(e.Path)
	if err != nil {
		return true
	}
	if info.ModTime().Unix() == e.ModTime {
		return false
	}
	hash, err := HashFile(e.Path)
	if err != nil {
		return true
	}
	return hash != e.Hash
}
