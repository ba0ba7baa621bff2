// Package utils provides utility functions for issue number parsing and path handling.
package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolveForWrite returns the path to write to, resolving symlinks.
// If path is a symlink, returns the resolved target path.
// If path doesn't exist, returns path unchanged (new file).
func ResolveForWrite(path string) (string, error) {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return path, nil
		}
		return "", err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return filepath.EvalSymlinks(path)
	}
	return path, nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
// Paths without the prefix, or when the home directory is unknown, are
// returned unchanged.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// CanonicalizePath converts a path to an absolute path with symlinks resolved.
// If either step fails it falls back to the best available form.
func CanonicalizePath(path string) string {
	absPath, err := filepath.Abs(ExpandHome(path))
	if err != nil {
		return path
	}

	canonical, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		// Directory may not exist yet
		return absPath
	}

	return canonical
}
