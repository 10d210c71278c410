package watch

import (
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"duofm/internal/logging"
)

// Watcher observes the directories shown in the panels and delivers
// translated Events. Watch errors are logged, never fatal: a panel on an
// unwatchable filesystem still works, it just does not auto-refresh.
type Watcher struct {
	fw     *fsnotify.Watcher
	logger *logging.AppLogger

	events chan Event

	mu     sync.Mutex
	closed bool
}

// New starts a watcher and its translation loop.
func New(logger *logging.AppLogger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("starting filesystem watcher: %w", err)
	}
	w := &Watcher{
		fw:     fw,
		logger: logger,
		events: make(chan Event, 64),
	}
	go w.loop()
	return w, nil
}

// Events is the stream of translated changes. Closed by Close.
func (w *Watcher) Events() <-chan Event { return w.events }

// Add begins watching dir. Watching the same directory twice is a no-op.
func (w *Watcher) Add(dir string) error {
	if err := w.fw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	return nil
}

// Remove stops watching dir. Unknown directories are ignored so panel
// navigation does not have to track watch state precisely.
func (w *Watcher) Remove(dir string) {
	if err := w.fw.Remove(dir); err != nil {
		w.logger.Debug("unwatch failed", "dir", dir, "error", err)
	}
}

// Close shuts the watcher down and closes the event stream.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()
	return w.fw.Close()
}

func (w *Watcher) loop() {
	defer close(w.events)

	tr := newTranslator()
	var timer *time.Timer
	var timerC <-chan time.Time
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
	}
	armTimer := func() {
		stopTimer()
		if dl, ok := tr.deadline(); ok {
			timer = time.NewTimer(time.Until(dl))
			timerC = timer.C
		}
	}

	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			for _, out := range tr.feed(ev) {
				w.deliver(out)
			}
			armTimer()
		case now := <-timerC:
			for _, out := range tr.expire(now) {
				w.deliver(out)
			}
			armTimer()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// deliver drops events when the UI is not draining fast enough. A missed
// event only delays a refresh until the next change.
func (w *Watcher) deliver(ev Event) {
	select {
	case w.events <- ev:
	default:
		w.logger.Debug("watch event dropped", "path", ev.Path)
	}
}
