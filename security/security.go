// Package security restricts filesystem paths supplied by flags or config
// to an operator-controlled allow-list before they are opened, adapted
// from the bridge's Docker host/container path-containment check
// (generalized here to a single-host allow-list with no container
// remapping, since this bridge never runs split across a host/container
// boundary).
package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// GetConfigAllowedDirectories returns the directories a config or log path
// may legitimately resolve into: the resolved config directory, the
// current working directory, and cwd's immediate parent (covers running
// from a project subdirectory with a repo-root config file).
func GetConfigAllowedDirectories(configDir, cwd string) []string {
	dirs := []string{configDir, cwd}
	if parent := filepath.Dir(cwd); parent != cwd {
		dirs = append(dirs, parent)
	}
	return dedupe(dirs)
}

// ValidateConfigPath resolves path to an absolute, symlink-resolved form
// and rejects it unless it is contained in one of allowed. Returns the
// resolved path on success.
func ValidateConfigPath(path string, allowed []string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}
	resolved := abs
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		resolved = real
	}

	for _, dir := range allowed {
		if dir == "" {
			continue
		}
		absDir, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		if real, err := filepath.EvalSymlinks(absDir); err == nil {
			absDir = real
		}
		if withinDir(resolved, absDir) {
			return resolved, nil
		}
	}
	return "", fmt.Errorf("path %q is outside the allowed directories", path)
}

func withinDir(path, dir string) bool {
	path = filepath.ToSlash(path)
	dir = filepath.ToSlash(dir)
	if path == dir {
		return true
	}
	return strings.HasPrefix(path, dir+"/")
}

func dedupe(dirs []string) []string {
	seen := make(map[string]bool, len(dirs))
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}
