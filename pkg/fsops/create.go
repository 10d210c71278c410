package fsops

import (
	"os"
)

// CreateFile creates an empty file at path through the atomic write
// primitive, so a watcher or concurrent reader never sees it half-made.
// Fails if the path already exists.
func CreateFile(path string) error {
	if _, err := os.Lstat(path); err == nil {
		return &Error{Kind: KindAlreadyExists, Path: path, Err: os.ErrExist}
	}
	if err := EnsureParentDir(path); err != nil {
		return err
	}
	return AtomicWriteFile(path, nil)
}

// CreateDir creates a directory (and missing parents) at path.
func CreateDir(path string) error {
	if _, err := os.Lstat(path); err == nil {
		return &Error{Kind: KindAlreadyExists, Path: path, Err: os.ErrExist}
	}
	return EnsureDir(path)
}
