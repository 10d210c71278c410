package fsops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveTarget computes the destination path for an operation. When dst
// is an existing directory (or is spelled with a trailing separator) the
// source keeps its name inside it; otherwise dst is taken literally.
func ResolveTarget(dst, srcName string) string {
	if strings.HasSuffix(dst, string(os.PathSeparator)) {
		return filepath.Join(dst, srcName)
	}
	if info, err := os.Stat(dst); err == nil && info.IsDir() {
		return filepath.Join(dst, srcName)
	}
	return dst
}

// EnsureParentDir creates the parent directory of path if needed.
func EnsureParentDir(path string) error {
	parent := filepath.Dir(path)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return wrapError(parent, fmt.Errorf("creating parent directory: %w", err))
	}
	return nil
}

// EnsureDir creates path and any missing parents. Safe to call when the
// directory already exists.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return wrapError(path, fmt.Errorf("creating directory: %w", err))
	}
	return nil
}
