package fsops

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// ErrCancelled is returned when a copy is abandoned because the caller's
// cancel check reported true. The destination is left untouched.
var ErrCancelled = errors.New("operation cancelled")

// ErrorKind classifies an operation failure well enough for callers to
// decide whether the condition is recoverable.
type ErrorKind int

const (
	// KindIO is the catch-all for I/O failures that are fatal to the
	// current entry.
	KindIO ErrorKind = iota
	KindNotFound
	KindPermissionDenied
	// KindCrossDevice marks a rename that failed because source and
	// destination live on different filesystems. Recoverable via the
	// copy+remove fallback in MovePath.
	KindCrossDevice
	// KindAlreadyExists marks a pre-existing destination. Recoverable via
	// conflict resolution.
	KindAlreadyExists
	// KindUnsupported marks operations the filesystem cannot perform,
	// for example xattrs on a filesystem without xattr support. Always
	// non-fatal for metadata work.
	KindUnsupported
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindPermissionDenied:
		return "permission denied"
	case KindCrossDevice:
		return "cross-device"
	case KindAlreadyExists:
		return "already exists"
	case KindUnsupported:
		return "unsupported"
	default:
		return "io"
	}
}

// Error is the typed error returned by the operation engine.
type Error struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// wrapError builds an *Error with the kind derived from err.
func wrapError(path string, err error) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return err
	}
	return &Error{Kind: Classify(err), Path: path, Err: err}
}

// Classify maps an error from the os package (or a wrapped one) to an
// ErrorKind.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindIO
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	case errors.Is(err, fs.ErrPermission):
		return KindPermissionDenied
	case errors.Is(err, fs.ErrExist):
		return KindAlreadyExists
	case IsCrossDevice(err):
		return KindCrossDevice
	case errors.Is(err, syscall.ENOTSUP) || errors.Is(err, syscall.EOPNOTSUPP):
		return KindUnsupported
	default:
		return KindIO
	}
}

// IsCrossDevice reports whether err is the rename-across-filesystems
// failure that MovePath recovers from with a copy+remove fallback.
func IsCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}

// IsKind reports whether err carries the given ErrorKind.
func IsKind(err error, kind ErrorKind) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}
	return Classify(err) == kind
}
