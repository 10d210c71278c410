// Package watch turns raw fsnotify notifications into the panel-level
// change events the UI refreshes from. The translation is mostly 1:1;
// the one stateful part is pairing a rename's old-path notification with
// the create that follows on the new path.
package watch

import (
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType classifies a directory change.
type EventType int

const (
	Created EventType = iota
	Modified
	Removed
	Renamed
)

func (t EventType) String() string {
	switch t {
	case Created:
		return "created"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	case Renamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// Event is one observed change. OldPath is only set for Renamed.
type Event struct {
	Type    EventType
	Path    string
	OldPath string
}

// pairingWindow is how long a rename notification waits for the matching
// create on the new path before it degrades to a plain removal.
const pairingWindow = 100 * time.Millisecond

type pendingRename struct {
	path string
	at   time.Time
}

// translator converts fsnotify events to Events. Not safe for concurrent
// use; the watcher loop owns one.
type translator struct {
	window  time.Duration
	now     func() time.Time
	pending *pendingRename
}

func newTranslator() *translator {
	return &translator{window: pairingWindow, now: time.Now}
}

// feed translates one notification. A single input can produce zero, one
// or two outputs: a stale pending rename is flushed as Removed before the
// new notification is handled.
func (tr *translator) feed(ev fsnotify.Event) []Event {
	out := tr.expire(tr.now())

	switch {
	case ev.Op.Has(fsnotify.Create):
		if tr.pending != nil {
			out = append(out, Event{Type: Renamed, Path: ev.Name, OldPath: tr.pending.path})
			tr.pending = nil
			break
		}
		out = append(out, Event{Type: Created, Path: ev.Name})
	case ev.Op.Has(fsnotify.Rename):
		// The notification names the old path. Hold it: the create on
		// the new path usually follows immediately.
		if tr.pending != nil {
			out = append(out, Event{Type: Removed, Path: tr.pending.path})
		}
		tr.pending = &pendingRename{path: ev.Name, at: tr.now()}
	case ev.Op.Has(fsnotify.Remove):
		out = append(out, Event{Type: Removed, Path: ev.Name})
	case ev.Op.Has(fsnotify.Write):
		out = append(out, Event{Type: Modified, Path: ev.Name})
	case ev.Op.Has(fsnotify.Chmod):
		out = append(out, Event{Type: Modified, Path: ev.Name})
	}
	return out
}

// expire flushes a pending rename whose pairing window has passed; a
// rename out of the watched directory looks exactly like a removal.
func (tr *translator) expire(now time.Time) []Event {
	if tr.pending == nil || now.Sub(tr.pending.at) < tr.window {
		return nil
	}
	ev := Event{Type: Removed, Path: tr.pending.path}
	tr.pending = nil
	return []Event{ev}
}

// deadline reports when the pending rename must be flushed, or false when
// nothing is pending.
func (tr *translator) deadline() (time.Time, bool) {
	if tr.pending == nil {
		return time.Time{}, false
	}
	return tr.pending.at.Add(tr.window), true
}
