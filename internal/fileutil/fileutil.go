package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// WriteScratch writes payload to dir/name with 0o644 permissions, creating
// the directory when missing, and returns the absolute path.
func WriteScratch(dir, name string, payload []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create scratch dir %q: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write scratch file %q: %w", path, err)
	}
	return path, nil
}

// RemoveQuietly deletes the given paths, ignoring files that are already gone.
// The first unexpected removal error is returned after attempting all paths.
func RemoveQuietly(paths ...string) error {
	var firstErr error
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			if firstErr == nil {
				firstErr = fmt.Errorf("remove %q: %w", path, err)
			}
		}
	}
	return firstErr
}
