package fsops

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Totals is the result of the pre-copy scan phase. Knowing file and byte
// counts up front makes percentage progress meaningful from the first
// event.
type Totals struct {
	Files int
	Bytes int64
}

// ConflictAction is the planner-level outcome of a destination conflict.
type ConflictAction int

const (
	ConflictOverwrite ConflictAction = iota
	ConflictSkip
	ConflictRename
	ConflictAbort
)

// ConflictFn decides what to do about an existing destination entry. For
// ConflictRename the returned string is the substitute file name (within
// the same destination directory). Returning ConflictAbort stops the whole
// tree walk with ErrCancelled.
type ConflictFn func(src, dst string) (ConflictAction, string)

// TreeOptions configures CopyTree and RemoveTree. The zero value copies
// with overwrite semantics and no progress reporting.
type TreeOptions struct {
	// Conflict is consulted when the destination of a file or symlink
	// already exists. Nil means overwrite.
	Conflict ConflictFn

	// OnFile runs after an entry has been fully processed (copied,
	// skipped or removed). Skipped entries report bytes = 0.
	OnFile func(path string, bytes int64)

	// OnFileBytes receives cumulative byte progress within the current
	// file, at copy-chunk granularity.
	OnFileBytes func(bytesDone int64)

	// Cancel is polled before each entry and once per copy chunk.
	Cancel func() bool

	// OnEntryError is invoked for a per-entry failure. Returning true
	// continues with the remaining entries; false aborts the walk with
	// that error. Nil aborts on first error.
	OnEntryError func(path string, err error) bool

	// OnWarn receives non-fatal metadata preservation failures.
	OnWarn func(path string, err error)

	Injector FaultInjector
}

func (o *TreeOptions) injector() FaultInjector {
	if o.Injector == nil {
		return NopInjector{}
	}
	return o.Injector
}

func (o *TreeOptions) cancelled() bool {
	return o.Cancel != nil && o.Cancel()
}

func (o *TreeOptions) entryError(path string, err error) (continueWalk bool, out error) {
	if o.OnEntryError != nil && o.OnEntryError(path, err) {
		return true, nil
	}
	return false, err
}

// dirStamp remembers a destination directory whose timestamps must be
// replayed after all children are written, since writing a child updates
// the parent's mtime.
type dirStamp struct {
	path  string
	atime time.Time
	mtime time.Time
	depth int
}

// DirStamps is the deferred finalize work of a tree copy.
type DirStamps struct {
	stamps []dirStamp
}

func (d *DirStamps) add(dst string, info os.FileInfo, depth int) {
	atime, mtime := statTimes(info)
	d.stamps = append(d.stamps, dirStamp{path: dst, atime: atime, mtime: mtime, depth: depth})
}

// Len reports how many directories are pending a timestamp fix-up.
func (d *DirStamps) Len() int { return len(d.stamps) }

// Apply replays directory timestamps deepest-first so that touching a
// parent never dirties an already-fixed child. Best-effort: the first
// error is returned, the rest are still attempted.
func (d *DirStamps) Apply() error {
	sort.SliceStable(d.stamps, func(i, j int) bool {
		return d.stamps[i].depth > d.stamps[j].depth
	})
	var first error
	for _, s := range d.stamps {
		if err := os.Chtimes(s.path, s.atime, s.mtime); err != nil && first == nil {
			first = wrapError(s.path, fmt.Errorf("restoring directory times: %w", err))
		}
	}
	return first
}

// ScanTree walks root (a file, symlink or directory) without following
// symlinks and returns the file and byte totals a subsequent copy will
// process. Directories contribute no bytes; symlinks count as zero-byte
// files.
func ScanTree(root string) (Totals, error) {
	var t Totals
	info, err := os.Lstat(root)
	if err != nil {
		return t, wrapError(root, fmt.Errorf("scanning: %w", err))
	}
	if !info.IsDir() {
		t.Files = 1
		if info.Mode().IsRegular() {
			t.Bytes = info.Size()
		}
		return t, nil
	}
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return wrapError(path, fmt.Errorf("scanning: %w", err))
		}
		if d.IsDir() {
			return nil
		}
		t.Files++
		if d.Type().IsRegular() {
			if info, err := d.Info(); err == nil {
				t.Bytes += info.Size()
			}
		}
		return nil
	})
	return t, err
}

// CopyTree copies src (file, symlink or directory tree) to dst. The walk
// is depth-first pre-order: each directory is created before its children
// are processed. Regular files go through the conflict check and then
// AtomicCopyFile + PreserveMetadata; symlinks are recreated, never
// followed, so cyclic links are copied as links rather than expanded.
//
// The returned DirStamps holds the directory timestamp fix-ups that must
// run after the walk; callers apply them in their finalize phase.
func CopyTree(src, dst string, opts TreeOptions) (*DirStamps, error) {
	stamps := &DirStamps{}
	info, err := os.Lstat(src)
	if err != nil {
		return stamps, wrapError(src, fmt.Errorf("reading source: %w", err))
	}
	if !info.IsDir() {
		return stamps, copyLeaf(src, dst, info.Mode().IsRegular(), &opts)
	}
	err = copyDir(src, dst, info, 0, stamps, &opts)
	return stamps, err
}

func copyDir(src, dst string, info os.FileInfo, depth int, stamps *DirStamps, opts *TreeOptions) error {
	if opts.cancelled() {
		return ErrCancelled
	}
	// Idempotent: an existing destination directory is merged into.
	if err := os.MkdirAll(dst, info.Mode().Perm()|0o700); err != nil {
		return wrapError(dst, fmt.Errorf("creating directory: %w", err))
	}
	stamps.add(dst, info, depth)

	entries, err := os.ReadDir(src)
	if err != nil {
		return wrapError(src, fmt.Errorf("listing directory: %w", err))
	}
	for _, entry := range entries {
		if opts.cancelled() {
			return ErrCancelled
		}
		childSrc := filepath.Join(src, entry.Name())
		childDst := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			childInfo, err := entry.Info()
			if err != nil {
				if cont, aborted := opts.entryError(childSrc, wrapError(childSrc, err)); !cont {
					return aborted
				}
				continue
			}
			if err := copyDir(childSrc, childDst, childInfo, depth+1, stamps, opts); err != nil {
				return err
			}
			continue
		}
		if err := copyLeaf(childSrc, childDst, entry.Type().IsRegular(), opts); err != nil {
			if err == ErrCancelled {
				return err
			}
			if cont, aborted := opts.entryError(childSrc, err); !cont {
				return aborted
			}
		}
	}
	return nil
}

// copyLeaf copies one non-directory entry, running the conflict protocol
// when the destination already exists.
func copyLeaf(src, dst string, regular bool, opts *TreeOptions) error {
	if opts.cancelled() {
		return ErrCancelled
	}

	if _, err := os.Lstat(dst); err == nil {
		action, newName := ConflictOverwrite, ""
		if opts.Conflict != nil {
			action, newName = opts.Conflict(src, dst)
		}
		switch action {
		case ConflictSkip:
			// Skipped entries do not count as processed.
			return nil
		case ConflictAbort:
			return ErrCancelled
		case ConflictRename:
			dst = filepath.Join(filepath.Dir(dst), newName)
			// The substituted name may itself conflict; re-enter.
			return copyLeaf(src, dst, regular, opts)
		case ConflictOverwrite:
			// Clear the destination so the temp-then-rename invariant
			// holds regardless of what occupied the name.
			if err := os.RemoveAll(dst); err != nil {
				return wrapError(dst, fmt.Errorf("clearing destination: %w", err))
			}
		}
	}

	if !regular {
		target, err := os.Readlink(src)
		if err != nil {
			return wrapError(src, fmt.Errorf("reading symlink: %w", err))
		}
		if err := os.Symlink(target, dst); err != nil {
			return wrapError(dst, fmt.Errorf("recreating symlink: %w", err))
		}
		if opts.OnFile != nil {
			opts.OnFile(src, 0)
		}
		return nil
	}

	n, err := AtomicCopyFile(src, dst,
		WithProgress(opts.OnFileBytes),
		WithCancel(opts.Cancel),
		WithInjector(opts.injector()),
	)
	if err != nil {
		return err
	}
	if err := PreserveMetadata(src, dst); err != nil && opts.OnWarn != nil {
		opts.OnWarn(dst, err)
	}
	if opts.OnFile != nil {
		opts.OnFile(src, n)
	}
	return nil
}
