package fsops

import (
	"fmt"
	"os"
	"path/filepath"
)

// MovePath moves src to dst. It first attempts a plain rename, which is
// cheap and atomic when source and destination share a filesystem. When
// the rename fails with a cross-device error it falls back to a full copy
// followed by removal of the source. The source is only removed after the
// copy has fully succeeded, so a failed fallback never loses data.
//
// Rename failures other than cross-device (permissions, missing source)
// surface directly without attempting the fallback.
func MovePath(src, dst string, opts ...CopyOption) error {
	cfg := newCopyConfig(opts)

	err := cfg.injector.BeforeRename(src, dst)
	if err == nil {
		err = os.Rename(src, dst)
	}
	if err == nil {
		return nil
	}
	if !IsCrossDevice(err) {
		return wrapError(src, fmt.Errorf("renaming: %w", err))
	}

	treeOpts := TreeOptions{
		OnFile:      cfg.fileDone,
		OnFileBytes: cfg.progress,
		Cancel:      cfg.cancel,
		Injector:    cfg.injector,
	}
	stamps, cerr := CopyTree(src, dst, treeOpts)
	if cerr != nil {
		return cerr
	}
	if err := stamps.Apply(); err != nil {
		return err
	}
	if err := os.RemoveAll(src); err != nil {
		return wrapError(src, fmt.Errorf("removing source after copy: %w", err))
	}
	return nil
}

// RenamePath renames a file or directory within its parent directory.
func RenamePath(path, newName string) error {
	parent := filepath.Dir(path)
	dst := filepath.Join(parent, newName)
	if _, err := os.Lstat(dst); err == nil {
		return &Error{Kind: KindAlreadyExists, Path: dst, Err: os.ErrExist}
	}
	if err := os.Rename(path, dst); err != nil {
		return wrapError(path, fmt.Errorf("renaming: %w", err))
	}
	return nil
}
