package fsops

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// copyChunkSize is the buffer size for file content copies. The cancel
// check in AtomicCopyFile runs once per chunk, so this also bounds the
// worst-case cancellation latency for a single large file.
const copyChunkSize = 1 << 20

// tmpPattern is the name pattern for temp siblings. Keeping the temp file
// in the destination's own directory guarantees the final rename never
// crosses a filesystem boundary and is therefore atomic.
const tmpPattern = ".duofm-*.tmp"

type copyConfig struct {
	progress func(bytesDone int64)
	fileDone func(path string, bytes int64)
	cancel   func() bool
	injector FaultInjector
}

// CopyOption configures AtomicCopyFile, MovePath and CopyTree.
type CopyOption func(*copyConfig)

// WithProgress registers a callback invoked with the cumulative byte count
// after each chunk of a file copy.
func WithProgress(fn func(bytesDone int64)) CopyOption {
	return func(c *copyConfig) { c.progress = fn }
}

// WithFileDone registers a callback invoked after each file completes
// during a tree operation. AtomicCopyFile itself ignores it; MovePath
// forwards it to the fallback copy.
func WithFileDone(fn func(path string, bytes int64)) CopyOption {
	return func(c *copyConfig) { c.fileDone = fn }
}

// WithCancel registers a cooperative cancel check. It is polled once per
// copy chunk; when it reports true the copy stops with ErrCancelled and the
// destination is left untouched.
func WithCancel(fn func() bool) CopyOption {
	return func(c *copyConfig) { c.cancel = fn }
}

// WithInjector substitutes the FaultInjector. Tests use this to force
// publish/rename failures; production code never needs it.
func WithInjector(fi FaultInjector) CopyOption {
	return func(c *copyConfig) { c.injector = fi }
}

func newCopyConfig(opts []CopyOption) copyConfig {
	cfg := copyConfig{injector: NopInjector{}}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// AtomicCopyFile copies the contents of src into dst so that concurrent
// readers of dst observe either the old file or, atomically, the new one,
// never a partial write.
//
// The data is written to a temporary file in dst's directory, synced, and
// renamed into place. On any failure (including cancellation) the temp
// file is removed and dst keeps its previous state. Returns the number of
// bytes copied.
func AtomicCopyFile(src, dst string, opts ...CopyOption) (int64, error) {
	cfg := newCopyConfig(opts)

	in, err := os.Open(src)
	if err != nil {
		return 0, wrapError(src, fmt.Errorf("opening source: %w", err))
	}
	defer in.Close()

	dir := filepath.Dir(dst)
	tmp, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return 0, wrapError(dir, fmt.Errorf("creating temp file: %w", err))
	}
	tmpPath := tmp.Name()

	published := false
	defer func() {
		tmp.Close()
		if !published {
			os.Remove(tmpPath)
		}
	}()

	var done int64
	buf := make([]byte, copyChunkSize)
	for {
		if cfg.cancel != nil && cfg.cancel() {
			return done, ErrCancelled
		}
		n, rerr := in.Read(buf)
		if n > 0 {
			if _, werr := tmp.Write(buf[:n]); werr != nil {
				return done, wrapError(dst, fmt.Errorf("writing temp file: %w", werr))
			}
			done += int64(n)
			if cfg.progress != nil {
				cfg.progress(done)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return done, wrapError(src, fmt.Errorf("reading source: %w", rerr))
		}
	}

	if err := tmp.Sync(); err != nil {
		return done, wrapError(dst, fmt.Errorf("syncing temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return done, wrapError(dst, fmt.Errorf("closing temp file: %w", err))
	}

	if err := cfg.injector.BeforePublish(src, dst); err != nil {
		return done, wrapError(dst, err)
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return done, wrapError(dst, fmt.Errorf("publishing copy: %w", err))
	}
	published = true
	return done, nil
}

// AtomicWriteFile writes data to dst through the same temp-sibling-then-
// rename scheme as AtomicCopyFile. Used for config saves and empty file
// creation.
func AtomicWriteFile(dst string, data []byte) error {
	dir := filepath.Dir(dst)
	tmp, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return wrapError(dir, fmt.Errorf("creating temp file: %w", err))
	}
	tmpPath := tmp.Name()

	published := false
	defer func() {
		tmp.Close()
		if !published {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return wrapError(dst, fmt.Errorf("writing temp file: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return wrapError(dst, fmt.Errorf("syncing temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return wrapError(dst, fmt.Errorf("closing temp file: %w", err))
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return wrapError(dst, fmt.Errorf("publishing write: %w", err))
	}
	published = true
	return nil
}
