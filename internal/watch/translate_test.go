package watch

import (
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives the translator deterministically.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTranslator() (*translator, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	tr := newTranslator()
	tr.now = clock.now
	return tr, clock
}

func TestTranslatorSimpleEvents(t *testing.T) {
	tests := []struct {
		name string
		op   fsnotify.Op
		want EventType
	}{
		{"create", fsnotify.Create, Created},
		{"write", fsnotify.Write, Modified},
		{"chmod", fsnotify.Chmod, Modified},
		{"remove", fsnotify.Remove, Removed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _ := newTestTranslator()
			out := tr.feed(fsnotify.Event{Name: "/dir/a.txt", Op: tt.op})
			require.Len(t, out, 1)
			assert.Equal(t, tt.want, out[0].Type)
			assert.Equal(t, "/dir/a.txt", out[0].Path)
			assert.Empty(t, out[0].OldPath)
		})
	}
}

func TestTranslatorRenamePairing(t *testing.T) {
	t.Run("rename followed by create pairs into one event", func(t *testing.T) {
		tr, clock := newTestTranslator()

		out := tr.feed(fsnotify.Event{Name: "/dir/old.txt", Op: fsnotify.Rename})
		assert.Empty(t, out, "rename is held until the new path shows up")

		clock.advance(10 * time.Millisecond)
		out = tr.feed(fsnotify.Event{Name: "/dir/new.txt", Op: fsnotify.Create})
		require.Len(t, out, 1)
		assert.Equal(t, Renamed, out[0].Type)
		assert.Equal(t, "/dir/new.txt", out[0].Path)
		assert.Equal(t, "/dir/old.txt", out[0].OldPath)
	})

	t.Run("unpaired rename degrades to removed after the window", func(t *testing.T) {
		tr, clock := newTestTranslator()

		tr.feed(fsnotify.Event{Name: "/dir/gone.txt", Op: fsnotify.Rename})
		clock.advance(150 * time.Millisecond)

		out := tr.expire(clock.now())
		require.Len(t, out, 1)
		assert.Equal(t, Removed, out[0].Type)
		assert.Equal(t, "/dir/gone.txt", out[0].Path)

		assert.Empty(t, tr.expire(clock.now()), "expiry is one-shot")
	})

	t.Run("create after the window is a plain create", func(t *testing.T) {
		tr, clock := newTestTranslator()

		tr.feed(fsnotify.Event{Name: "/dir/old.txt", Op: fsnotify.Rename})
		clock.advance(200 * time.Millisecond)

		out := tr.feed(fsnotify.Event{Name: "/dir/new.txt", Op: fsnotify.Create})
		require.Len(t, out, 2)
		assert.Equal(t, Removed, out[0].Type)
		assert.Equal(t, "/dir/old.txt", out[0].Path)
		assert.Equal(t, Created, out[1].Type)
		assert.Equal(t, "/dir/new.txt", out[1].Path)
	})

	t.Run("second rename flushes the first as removed", func(t *testing.T) {
		tr, clock := newTestTranslator()

		tr.feed(fsnotify.Event{Name: "/dir/one.txt", Op: fsnotify.Rename})
		clock.advance(5 * time.Millisecond)
		out := tr.feed(fsnotify.Event{Name: "/dir/two.txt", Op: fsnotify.Rename})
		require.Len(t, out, 1)
		assert.Equal(t, Removed, out[0].Type)
		assert.Equal(t, "/dir/one.txt", out[0].Path)

		out = tr.feed(fsnotify.Event{Name: "/dir/three.txt", Op: fsnotify.Create})
		require.Len(t, out, 1)
		assert.Equal(t, Renamed, out[0].Type)
		assert.Equal(t, "/dir/two.txt", out[0].OldPath)
	})
}

func TestTranslatorDeadline(t *testing.T) {
	tr, clock := newTestTranslator()

	_, ok := tr.deadline()
	assert.False(t, ok, "no deadline without a pending rename")

	tr.feed(fsnotify.Event{Name: "/dir/a.txt", Op: fsnotify.Rename})
	dl, ok := tr.deadline()
	require.True(t, ok)
	assert.Equal(t, clock.now().Add(pairingWindow), dl)
}
