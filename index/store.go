package index

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDir is the directory name for scopemap data.
	DefaultDir = ".scopemap"
	// DefaultFile is the default index file name.
	DefaultFile = "index.gob"
)

// Path returns the default index file path for a project root.
func Path(rootPath string) string {
	return filepath.Join(rootPath, DefaultDir, DefaultFile)
}

// EnsureDir creates the .scopemap directory if it doesn't exist.
func EnsureDir(rootPath string) error {
	return os.MkdirAll(filepath.Join(rootPath, DefaultDir), 0755)
}

// SaveBinary writes the index to disk using gob encoding with gzip
// compression.
func (ix *Index) SaveBinary(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	defer gz.Close()

	enc := gob.NewEncoder(gz)
	if err := enc.Encode(ix); err != nil {
		return fmt.Errorf("encode index: %w", err)
	}

	return nil
}

// LoadBinary reads an index from disk.
func LoadBinary(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	defer gz.Close()

	var ix Index
	dec := gob.NewDecoder(gz)
	if err := dec.Decode(&ix); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}

	if ix.Entries == nil {
		ix.Entries = make(map[string]*Entry)
	}
	return &ix, nil
}

// Exists checks if an index file exists at the given path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
