package scanner

import (
	"os"
	"path/filepath"

	ignore "github.com/sabhiram/go-gitignore"
)

// IgnoredDirs are directories to skip while discovering binaries.
var IgnoredDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	".idea":        true,
	".vscode":      true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	".scopemap":    true,
	".cache":       true,
}

// BinaryInfo describes a discovered debuggable binary.
type BinaryInfo struct {
	Path string `json:"path"` // relative to the walked root
	Size int64  `json:"size"`
}

// LoadGitignore loads .gitignore from root if it exists.
func LoadGitignore(root string) *ignore.GitIgnore {
	gitignorePath := filepath.Join(root, ".gitignore")

	if _, err := os.Stat(gitignorePath); err == nil {
		if gitignore, err := ignore.CompileIgnoreFile(gitignorePath); err == nil {
			return gitignore
		}
	}

	return nil
}

// FindBinaries walks the directory tree under root and returns every
// regular file that looks like a debuggable binary (ELF or Mach-O
// magic), honoring .gitignore and the common ignore list.
func FindBinaries(root string, gitignore *ignore.GitIgnore) ([]BinaryInfo, error) {
	var found []BinaryInfo

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if info.IsDir() {
			if IgnoredDirs[info.Name()] {
				return filepath.SkipDir
			}
			if gitignore != nil && gitignore.MatchesPath(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if gitignore != nil && gitignore.MatchesPath(relPath) {
			return nil
		}
		if info.Mode().IsRegular() && IsBinary(path) {
			found = append(found, BinaryInfo{Path: relPath, Size: info.Size()})
		}
		return nil
	})

	return found, err
}
