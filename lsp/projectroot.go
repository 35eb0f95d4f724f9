package lsp

import (
	"os"
	"path/filepath"
)

var projectMarkers = []string{"alire.toml", ".git"}

// FindProjectRoot walks ancestor directories of path (a file or directory)
// toward the filesystem root, returning the first ancestor containing an
// Alire manifest, any *.gpr file, or a VCS root marker. If none is found,
// it returns path's nearest directory. Touches only the local filesystem
// and terminates once it reaches the filesystem root.
func FindProjectRoot(path string) string {
	dir := nearestDir(path)
	start := dir

	for {
		if hasProjectMarker(dir) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return start
}

func nearestDir(path string) string {
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return path
	}
	return filepath.Dir(path)
}

func hasProjectMarker(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, name := range projectMarkers {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".gpr" {
			return true
		}
	}
	return false
}
