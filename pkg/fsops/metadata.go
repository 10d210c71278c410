package fsops

import (
	"fmt"
	"os"
	"time"
)

// statTimes extracts access and modification times from a file, falling
// back to mtime for atime on platforms where atime is unavailable.
func statTimes(info os.FileInfo) (atime, mtime time.Time) {
	mtime = info.ModTime()
	atime = accessTime(info)
	return atime, mtime
}

// PreserveMetadata copies permission bits, access/modification timestamps
// and POSIX ACL extended attributes from src to dst. It runs after the
// file content is fully written; tightening permissions first could make
// the content write itself fail.
//
// Preservation is best-effort: the first error is returned so callers can
// log it, but callers must never fail the surrounding operation on it.
// Ownership (UID/GID) is deliberately left alone.
func PreserveMetadata(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return wrapError(src, fmt.Errorf("reading source metadata: %w", err))
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return wrapError(dst, fmt.Errorf("copying permissions: %w", err))
	}

	atime, mtime := statTimes(info)
	if err := os.Chtimes(dst, atime, mtime); err != nil {
		return wrapError(dst, fmt.Errorf("copying timestamps: %w", err))
	}

	return copyACLXattrs(src, dst)
}
