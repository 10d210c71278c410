package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duofm/internal/logging"
)

func newTestWatcher(t *testing.T) *Watcher {
	t.Helper()
	logger, _ := logging.NewTestLogger()
	w, err := New(logger)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w
}

// waitFor drains the stream until an event for path with the wanted type
// arrives. Unrelated events (editors and filesystems differ in what they
// emit around a write) are ignored.
func waitFor(t *testing.T, w *Watcher, typ EventType, path string) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev, ok := <-w.Events():
			require.True(t, ok, "event stream closed while waiting for %v %s", typ, path)
			if ev.Type == typ && ev.Path == path {
				return
			}
		case <-deadline:
			t.Fatalf("no %v event for %s", typ, path)
		}
	}
}

func TestWatcherObservesChanges(t *testing.T) {
	w := newTestWatcher(t)
	dir := t.TempDir()
	require.NoError(t, w.Add(dir))

	path := filepath.Join(dir, "new.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))
	waitFor(t, w, Created, path)

	require.NoError(t, os.WriteFile(path, []byte("hello again"), 0o644))
	waitFor(t, w, Modified, path)

	require.NoError(t, os.Remove(path))
	waitFor(t, w, Removed, path)
}

func TestWatcherCloseEndsStream(t *testing.T) {
	logger, _ := logging.NewTestLogger()
	w, err := New(logger)
	require.NoError(t, err)
	require.NoError(t, w.Add(t.TempDir()))

	require.NoError(t, w.Close())
	assert.NoError(t, w.Close(), "double close is a no-op")

	deadline := time.After(3 * time.Second)
	for {
		select {
		case _, ok := <-w.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("event stream not closed after Close")
		}
	}
}

func TestWatcherRemoveUnknownDir(t *testing.T) {
	w := newTestWatcher(t)
	// Must not panic or error the stream.
	w.Remove(filepath.Join(t.TempDir(), "never-watched"))
}
