package job

import (
	"fmt"
	"os"
	"path/filepath"

	"duofm/internal/logging"
	"duofm/pkg/fsops"
)

// worker executes one Operation on its own goroutine. State machine:
// Scanning -> Copying <-> WaitingForDecision -> Finalizing -> terminal.
// Every transition emits exactly one ProgressEvent; per-item and per-chunk
// events are emitted with the steady-state Copying phase.
type worker struct {
	h        *Handle
	logger   *logging.AppLogger
	injector fsops.FaultInjector

	op     Operation
	policy OverwritePolicy

	totalFiles int
	totalBytes int64
	perSource  []fsops.Totals

	filesDone      int
	completedBytes int64
	fileBytes      int64
	currentPath    string

	failed   []EntryError
	warnings []EntryError
	stamps   []*fsops.DirStamps
}

func newWorker(h *Handle, logger *logging.AppLogger, injector fsops.FaultInjector) *worker {
	return &worker{
		h:        h,
		logger:   logger,
		injector: injector,
		op:       h.op,
		policy:   h.op.Policy,
	}
}

func (w *worker) run() {
	w.emit(PhaseScanning)
	if err := w.scan(); err != nil {
		w.terminateFailed(err)
		return
	}
	w.emit(PhaseCopying)

	var err error
	switch w.op.Kind {
	case OpCopy:
		err = w.runCopy()
	case OpMove:
		err = w.runMove()
	case OpDelete:
		err = w.runDelete()
	case OpRename:
		err = w.runRename()
	case OpChmod:
		err = w.runChmod()
	case OpChown:
		err = w.runChown()
	default:
		err = fmt.Errorf("unknown operation kind %d", w.op.Kind)
	}

	if err == fsops.ErrCancelled || (err == nil && w.h.Cancelled()) {
		w.terminate(PhaseCancelled)
		return
	}
	if err != nil {
		w.terminateFailed(err)
		return
	}

	w.emit(PhaseFinalizing)
	for _, s := range w.stamps {
		if aerr := s.Apply(); aerr != nil {
			w.warnings = append(w.warnings, EntryError{Err: aerr})
		}
	}
	w.terminate(PhaseDone)
}

// scan computes per-source and aggregate totals before any entry is
// touched. A source that cannot even be scanned is a job-level fatal
// condition.
func (w *worker) scan() error {
	switch w.op.Kind {
	case OpCopy, OpMove, OpDelete:
		for _, src := range w.op.Sources {
			t, err := fsops.ScanTree(src)
			if err != nil {
				return err
			}
			w.perSource = append(w.perSource, t)
			w.totalFiles += t.Files
			// Removal emits no byte progress; a zero BytesTotal tells the
			// UI to report file counts instead.
			if w.op.Kind != OpDelete {
				w.totalBytes += t.Bytes
			}
		}
	default:
		w.totalFiles = len(w.op.Sources)
		w.perSource = make([]fsops.Totals, len(w.op.Sources))
		for i := range w.perSource {
			w.perSource[i] = fsops.Totals{Files: 1}
		}
	}
	return nil
}

func (w *worker) treeOptions() fsops.TreeOptions {
	return fsops.TreeOptions{
		Conflict:    w.resolveConflict,
		OnFile:      w.onFileDone,
		OnFileBytes: w.onFileBytes,
		Cancel:      w.h.Cancelled,
		OnEntryError: func(path string, err error) bool {
			w.logger.Warn("entry failed", "path", path, "error", err)
			w.failed = append(w.failed, EntryError{Path: path, Err: err})
			return true
		},
		OnWarn: func(path string, err error) {
			w.logger.Debug("metadata not preserved", "path", path, "error", err)
			w.warnings = append(w.warnings, EntryError{Path: path, Err: err})
		},
		Injector: w.injector,
	}
}

func (w *worker) runCopy() error {
	for _, src := range w.op.Sources {
		if w.h.Cancelled() {
			return fsops.ErrCancelled
		}
		target := fsops.ResolveTarget(w.op.Dest, filepath.Base(src))
		stamps, err := fsops.CopyTree(src, target, w.treeOptions())
		w.stamps = append(w.stamps, stamps)
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *worker) runMove() error {
	for i, src := range w.op.Sources {
		if w.h.Cancelled() {
			return fsops.ErrCancelled
		}
		target := fsops.ResolveTarget(w.op.Dest, filepath.Base(src))

		// Moves resolve conflicts at the source root: the fallback copy
		// overwrites within a tree the user already approved replacing.
		if _, err := os.Lstat(target); err == nil {
			action, newName := w.resolveConflict(src, target)
			switch action {
			case fsops.ConflictAbort:
				return fsops.ErrCancelled
			case fsops.ConflictSkip:
				w.skipSource(src)
				continue
			case fsops.ConflictRename:
				target = filepath.Join(filepath.Dir(target), newName)
			case fsops.ConflictOverwrite:
				if err := fsops.RemovePath(target); err != nil {
					return err
				}
			}
		}

		baseFiles, baseBytes := w.filesDone, w.completedBytes
		err := fsops.MovePath(src, target,
			fsops.WithFileDone(w.onFileDone),
			fsops.WithProgress(w.onFileBytes),
			fsops.WithCancel(w.h.Cancelled),
			fsops.WithInjector(w.injector),
		)
		if err != nil {
			return err
		}
		// A plain rename produced no per-file events; normalize counts
		// either way.
		w.filesDone = baseFiles + w.perSource[i].Files
		w.completedBytes = baseBytes + w.perSource[i].Bytes
		w.fileBytes = 0
		w.currentPath = src
		w.emit(PhaseCopying)
	}
	return nil
}

func (w *worker) runDelete() error {
	opts := w.treeOptions()
	// Deletion has nothing to conflict with.
	opts.Conflict = nil
	for _, src := range w.op.Sources {
		if w.h.Cancelled() {
			return fsops.ErrCancelled
		}
		if err := fsops.RemoveTree(src, opts); err != nil {
			return err
		}
	}
	return nil
}

func (w *worker) runRename() error {
	for _, src := range w.op.Sources {
		if err := fsops.RenamePath(src, w.op.Dest); err != nil {
			return err
		}
		w.onFileDone(src, 0)
	}
	return nil
}

func (w *worker) runChmod() error {
	for _, src := range w.op.Sources {
		if w.h.Cancelled() {
			return fsops.ErrCancelled
		}
		if err := fsops.Chmod(src, w.op.Mode); err != nil {
			w.failed = append(w.failed, EntryError{Path: src, Err: err})
		}
		w.onFileDone(src, 0)
	}
	return nil
}

func (w *worker) runChown() error {
	for _, src := range w.op.Sources {
		if w.h.Cancelled() {
			return fsops.ErrCancelled
		}
		if err := fsops.Chown(src, w.op.UID, w.op.GID); err != nil {
			w.failed = append(w.failed, EntryError{Path: src, Err: err})
		}
		w.onFileDone(src, 0)
	}
	return nil
}

// skipSource notes a whole skipped source. Skipped entries are not
// counted as processed, so a job that skips ends with FilesDone short of
// FilesTotal by the skipped count.
func (w *worker) skipSource(src string) {
	w.currentPath = src
	w.emit(PhaseCopying)
}

// resolveConflict implements the fsops.ConflictFn contract on top of the
// job's policy and, when prompting is still enabled, the decision channel.
func (w *worker) resolveConflict(src, dst string) (fsops.ConflictAction, string) {
	switch w.policy {
	case OverwriteAll:
		return fsops.ConflictOverwrite, ""
	case SkipAll:
		return fsops.ConflictSkip, ""
	case RenameAll:
		return fsops.ConflictRename, availableName(dst)
	}

	req := ConflictRequest{Source: src, Dest: dst, DestKind: destKind(dst)}
	w.emitConflict(&req)

	select {
	case dec := <-w.h.decisions:
		w.policy = UpgradePolicy(w.policy, dec)
		action, name := MapDecision(req, dec)
		w.emit(PhaseCopying)
		switch action {
		case ProceedOverwrite:
			return fsops.ConflictOverwrite, ""
		case Skip:
			return fsops.ConflictSkip, ""
		case ProceedWithRenamedDest:
			return fsops.ConflictRename, name
		default:
			return fsops.ConflictAbort, ""
		}
	case <-w.h.cancelCh:
		return fsops.ConflictAbort, ""
	}
}

func destKind(path string) DestKind {
	info, err := os.Lstat(path)
	switch {
	case err != nil:
		return DestFile
	case info.IsDir():
		return DestDirectory
	case info.Mode()&os.ModeSymlink != 0:
		return DestSymlink
	default:
		return DestFile
	}
}

func (w *worker) onFileDone(path string, bytes int64) {
	w.completedBytes += bytes
	w.fileBytes = 0
	w.filesDone++
	w.currentPath = path
	w.emit(PhaseCopying)
}

func (w *worker) onFileBytes(done int64) {
	w.fileBytes = done
	w.emit(PhaseCopying)
}

func (w *worker) event(phase Phase) ProgressEvent {
	return ProgressEvent{
		Phase:       phase,
		CurrentPath: w.currentPath,
		BytesDone:   w.completedBytes + w.fileBytes,
		BytesTotal:  w.totalBytes,
		FilesDone:   w.filesDone,
		FilesTotal:  w.totalFiles,
	}
}

func (w *worker) emit(phase Phase) {
	w.h.progress <- w.event(phase)
}

func (w *worker) emitConflict(req *ConflictRequest) {
	ev := w.event(PhaseWaitingForDecision)
	ev.Conflict = req
	w.h.progress <- ev
}

// terminate emits the single terminal event, with the aggregate failure
// and warning lists copied so later worker state can never alias them.
func (w *worker) terminate(phase Phase) {
	ev := w.event(phase)
	ev.Failed = append([]EntryError(nil), w.failed...)
	ev.Warnings = append([]EntryError(nil), w.warnings...)
	w.h.progress <- ev
	w.logger.Info("job finished", "kind", w.op.Kind.String(), "phase", phase.String(),
		"files", w.filesDone, "failed", len(w.failed))
}

func (w *worker) terminateFailed(err error) {
	ev := w.event(PhaseFailed)
	ev.Err = err
	ev.Failed = append([]EntryError(nil), w.failed...)
	ev.Warnings = append([]EntryError(nil), w.warnings...)
	w.h.progress <- ev
	w.logger.Error("job failed", "kind", w.op.Kind.String(), "error", err)
}
