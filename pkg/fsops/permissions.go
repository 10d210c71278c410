package fsops

import (
	"fmt"
	"io/fs"
	"os"
	"syscall"
)

// PermissionInfo is a best-effort snapshot of what the current user can do
// with a path, used to drive the chmod dialog.
type PermissionInfo struct {
	Path       string
	Mode       fs.FileMode
	ReadOnly   bool
	CanRead    bool
	CanWrite   bool
	CanExecute bool
	IsDir      bool
	UID        int
	GID        int
}

// InspectPermissions stats path and probes readability without mutating
// anything. Write access is inferred from the mode bits only; a definitive
// answer would require a destructive probe.
func InspectPermissions(path string) (PermissionInfo, error) {
	info := PermissionInfo{Path: path, UID: -1, GID: -1}
	meta, err := os.Stat(path)
	if err != nil {
		return info, wrapError(path, fmt.Errorf("inspecting permissions: %w", err))
	}
	info.Mode = meta.Mode()
	info.IsDir = meta.IsDir()
	info.ReadOnly = meta.Mode().Perm()&0o200 == 0
	info.CanWrite = !info.ReadOnly
	info.CanExecute = meta.Mode().Perm()&0o111 != 0
	if st, ok := meta.Sys().(*syscall.Stat_t); ok {
		info.UID = int(st.Uid)
		info.GID = int(st.Gid)
	}

	if info.IsDir {
		_, err := os.ReadDir(path)
		info.CanRead = err == nil
	} else {
		f, err := os.Open(path)
		if err == nil {
			f.Close()
		}
		info.CanRead = err == nil
	}
	return info, nil
}

// Chmod sets the permission bits of path.
func Chmod(path string, mode fs.FileMode) error {
	if err := os.Chmod(path, mode.Perm()); err != nil {
		return wrapError(path, fmt.Errorf("changing permissions: %w", err))
	}
	return nil
}

// Chown changes ownership of path. Only ever invoked for an explicit user
// request; metadata preservation never calls it.
func Chown(path string, uid, gid int) error {
	if err := os.Chown(path, uid, gid); err != nil {
		return wrapError(path, fmt.Errorf("changing ownership: %w", err))
	}
	return nil
}

// FormatMode renders mode bits in the octal form the chmod dialog accepts.
func FormatMode(mode fs.FileMode) string {
	return fmt.Sprintf("%04o", mode.Perm())
}
