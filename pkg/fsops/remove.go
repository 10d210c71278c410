package fsops

import (
	"fmt"
	"os"
	"path/filepath"
)

// RemovePath removes a file, symlink, or directory tree in one shot.
func RemovePath(path string) error {
	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return wrapError(path, fmt.Errorf("removing: %w", err))
	}
	if info.IsDir() {
		err = os.RemoveAll(path)
	} else {
		err = os.Remove(path)
	}
	if err != nil {
		return wrapError(path, fmt.Errorf("removing: %w", err))
	}
	return nil
}

// RemoveTree removes root entry by entry, post-order, so cancellation and
// per-entry progress behave like the copy planner: files first, each
// directory once its children are gone.
func RemoveTree(root string, opts TreeOptions) error {
	if opts.cancelled() {
		return ErrCancelled
	}
	info, err := os.Lstat(root)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return wrapError(root, fmt.Errorf("removing: %w", err))
	}

	if !info.IsDir() {
		if err := os.Remove(root); err != nil {
			return wrapError(root, fmt.Errorf("removing: %w", err))
		}
		if opts.OnFile != nil {
			opts.OnFile(root, 0)
		}
		return nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return wrapError(root, fmt.Errorf("listing directory: %w", err))
	}
	for _, entry := range entries {
		if opts.cancelled() {
			return ErrCancelled
		}
		child := filepath.Join(root, entry.Name())
		if err := RemoveTree(child, opts); err != nil {
			if err == ErrCancelled {
				return err
			}
			if cont, aborted := opts.entryError(child, err); !cont {
				return aborted
			}
		}
	}
	if err := os.Remove(root); err != nil {
		return wrapError(root, fmt.Errorf("removing directory: %w", err))
	}
	return nil
}
