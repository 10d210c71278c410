package job

import (
	"errors"
	"sync"
	"sync/atomic"

	"duofm/internal/logging"
	"duofm/pkg/fsops"
)

// ErrJobActive is returned by Submit while another job is still running.
var ErrJobActive = errors.New("a job is already active")

// Handle is the live state shared between the foreground and one job's
// worker. The progress channel is read-only to the foreground, the
// decision channel write-only, and the cancel flag is the single piece of
// state both sides touch.
type Handle struct {
	op Operation

	progress  chan ProgressEvent
	decisions chan ConflictDecision

	cancelFlag atomic.Bool
	cancelCh   chan struct{}
	cancelOnce sync.Once
}

// Progress returns the event stream for this job. The channel is closed
// after the terminal event.
func (h *Handle) Progress() <-chan ProgressEvent { return h.progress }

// Decide answers the outstanding ConflictRequest. Must be called exactly
// once per request received; the worker is blocked until it arrives.
func (h *Handle) Decide(dec ConflictDecision) {
	select {
	case h.decisions <- dec:
	case <-h.cancelCh:
	}
}

// Cancel requests cooperative cancellation. The worker observes it at the
// next entry boundary or copy chunk, and also while parked on a conflict.
func (h *Handle) Cancel() {
	h.cancelOnce.Do(func() {
		h.cancelFlag.Store(true)
		close(h.cancelCh)
	})
}

// Cancelled reports whether cancellation was requested.
func (h *Handle) Cancelled() bool { return h.cancelFlag.Load() }

// Operation returns the request this handle executes.
func (h *Handle) Operation() Operation { return h.op }

// Runner owns background job execution. One job may be active at a time;
// the channel protocol would generalize to a job table, but the UI has no
// way to present two progress dialogs, so the engine keeps the same limit.
type Runner struct {
	logger   *logging.AppLogger
	injector fsops.FaultInjector

	mu     sync.Mutex
	active *Handle
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithInjector installs a FaultInjector for tests.
func WithInjector(fi fsops.FaultInjector) RunnerOption {
	return func(r *Runner) { r.injector = fi }
}

// NewRunner builds a Runner logging through logger.
func NewRunner(logger *logging.AppLogger, opts ...RunnerOption) *Runner {
	r := &Runner{
		logger:   logger,
		injector: fsops.NopInjector{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Submit validates op, spawns its worker goroutine and returns the job's
// Handle. Fails with ErrJobActive while a previous job is running.
func (r *Runner) Submit(op Operation) (*Handle, error) {
	if len(op.Sources) == 0 {
		return nil, errors.New("operation has no sources")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		return nil, ErrJobActive
	}

	h := &Handle{
		op:        op,
		progress:  make(chan ProgressEvent, 64),
		decisions: make(chan ConflictDecision),
		cancelCh:  make(chan struct{}),
	}
	r.active = h

	r.logger.Info("job submitted", "kind", op.Kind.String(), "sources", len(op.Sources), "dest", op.Dest)

	go func() {
		defer r.finish(h)
		newWorker(h, r.logger, r.injector).run()
	}()
	return h, nil
}

// Active returns the running job's handle, or nil.
func (r *Runner) Active() *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

func (r *Runner) finish(h *Handle) {
	close(h.progress)
	r.mu.Lock()
	if r.active == h {
		r.active = nil
	}
	r.mu.Unlock()
}
