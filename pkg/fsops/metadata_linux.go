//go:build linux

package fsops

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// The two well-known xattr names holding POSIX ACLs. The blobs are copied
// verbatim; interpreting the ACL entry structure is neither required nor
// attempted.
const (
	xattrACLAccess  = "system.posix_acl_access"
	xattrACLDefault = "system.posix_acl_default"
)

func accessTime(info os.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Atim.Sec, st.Atim.Nsec)
	}
	return info.ModTime()
}

// copyACLXattrs copies the access and default ACL xattrs from src to dst
// as opaque bytes. Filesystems without xattr support, and sources without
// an ACL set, are silently skipped.
func copyACLXattrs(src, dst string) error {
	for _, name := range []string{xattrACLAccess, xattrACLDefault} {
		if err := copyXattr(src, dst, name); err != nil {
			return err
		}
	}
	return nil
}

func copyXattr(src, dst, name string) error {
	size, err := unix.Getxattr(src, name, nil)
	if err != nil {
		if xattrMissing(err) {
			return nil
		}
		return wrapError(src, fmt.Errorf("reading xattr %s: %w", name, err))
	}
	if size <= 0 {
		return nil
	}

	buf := make([]byte, size)
	n, err := unix.Getxattr(src, name, buf)
	if err != nil {
		if xattrMissing(err) {
			return nil
		}
		return wrapError(src, fmt.Errorf("reading xattr %s: %w", name, err))
	}

	if err := unix.Setxattr(dst, name, buf[:n], 0); err != nil {
		if xattrMissing(err) {
			return nil
		}
		return wrapError(dst, fmt.Errorf("writing xattr %s: %w", name, err))
	}
	return nil
}

// xattrMissing reports the non-fatal conditions: attribute not present, or
// the filesystem does not support xattrs at all.
func xattrMissing(err error) bool {
	return errors.Is(err, unix.ENODATA) ||
		errors.Is(err, unix.ENOTSUP) ||
		errors.Is(err, unix.EOPNOTSUPP)
}
