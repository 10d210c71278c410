//go:build !linux

package fsops

import (
	"os"
	"time"
)

func accessTime(info os.FileInfo) time.Time {
	return info.ModTime()
}

// POSIX ACL xattrs are only handled on Linux; elsewhere preservation of
// permission bits and timestamps is all we do.
func copyACLXattrs(src, dst string) error {
	return nil
}
