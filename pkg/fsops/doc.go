// Package fsops implements the filesystem operation engine behind duofm:
// atomic single-file writes, recursive copy with conflict hooks, move with
// cross-device fallback, cancellable recursive removal, and best-effort
// metadata preservation (permission bits, timestamps, POSIX ACL xattrs).
//
// # Atomicity
//
// All content writes go through a temp sibling in the destination's own
// directory followed by a rename, so a concurrent reader of the
// destination observes either the old file or the new one, never a
// partial write:
//
//	n, err := fsops.AtomicCopyFile(src, dst)
//	// dst appears fully copied or not at all
//
// # Tree operations
//
// CopyTree walks depth-first pre-order, creating each directory before
// its children, recreating symlinks without following them, and calling
// back into TreeOptions for conflicts, progress, cancellation and
// per-entry errors. Directory timestamps are replayed afterwards via the
// returned DirStamps, because writing children dirties parent mtimes.
//
// # Failure injection
//
// The FaultInjector interface is the test seam for forcing publish and
// rename failures; production callers leave it at NopInjector. There is
// deliberately no package-global failure switch.
//
// The package performs no terminal I/O and knows nothing about jobs or
// channels; see internal/job for the background runner built on top.
package fsops
