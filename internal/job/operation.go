// Package job runs filesystem operations on a background goroutine and
// multiplexes progress, conflict decisions and cancellation between that
// worker and the UI. The UI never blocks on filesystem I/O; the worker
// only ever blocks on file syscalls and, during a conflict, on the
// decision channel.
package job

import (
	"io/fs"
)

// Kind enumerates the operations the runner can execute.
type Kind int

const (
	OpCopy Kind = iota
	OpMove
	OpDelete
	OpRename
	OpChmod
	OpChown
)

func (k Kind) String() string {
	switch k {
	case OpCopy:
		return "copy"
	case OpMove:
		return "move"
	case OpDelete:
		return "delete"
	case OpRename:
		return "rename"
	case OpChmod:
		return "chmod"
	case OpChown:
		return "chown"
	default:
		return "unknown"
	}
}

// OverwritePolicy governs how destination conflicts are handled for the
// remainder of a job. It starts as PromptEachConflict and may be upgraded
// mid-run by a decision tagged apply-to-all.
type OverwritePolicy int

const (
	// PromptEachConflict emits a ConflictRequest and waits for a
	// decision on every conflict.
	PromptEachConflict OverwritePolicy = iota
	// OverwriteAll resolves every remaining conflict by overwriting.
	OverwriteAll
	// SkipAll resolves every remaining conflict by skipping.
	SkipAll
	// RenameAll resolves every remaining conflict by picking a free
	// " (copy)"-suffixed name.
	RenameAll
)

// Operation is an immutable request handed to the runner. It is owned
// exclusively by the worker for the duration of execution.
type Operation struct {
	Kind    Kind
	Sources []string
	// Dest is the destination directory or path for copy/move, the new
	// name for rename.
	Dest   string
	Policy OverwritePolicy

	// Mode is the target permission bits for OpChmod.
	Mode fs.FileMode
	// UID and GID are the target ownership for OpChown.
	UID, GID int
}

// Phase is the job runner state carried on every ProgressEvent.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseScanning
	PhaseCopying
	PhaseWaitingForDecision
	PhaseFinalizing
	PhaseDone
	PhaseCancelled
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseScanning:
		return "scanning"
	case PhaseCopying:
		return "copying"
	case PhaseWaitingForDecision:
		return "waiting for decision"
	case PhaseFinalizing:
		return "finalizing"
	case PhaseDone:
		return "done"
	case PhaseCancelled:
		return "cancelled"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Terminal reports whether the phase ends the job.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseCancelled || p == PhaseFailed
}

// DestKind describes what occupies a conflicting destination path.
type DestKind int

const (
	DestFile DestKind = iota
	DestDirectory
	DestSymlink
)

// ConflictRequest is emitted when the planner finds an existing
// destination entry under PromptEachConflict. Exactly one
// ConflictDecision is consumed for each request sent.
type ConflictRequest struct {
	Source   string
	Dest     string
	DestKind DestKind
}

// Choice is the user's answer to a ConflictRequest.
type Choice int

const (
	ChoiceOverwrite Choice = iota
	ChoiceSkip
	ChoiceRename
	ChoiceCancel
)

// ConflictDecision answers one ConflictRequest. NewName is only read for
// ChoiceRename. ApplyToAll upgrades the job's OverwritePolicy so no
// further requests are emitted.
type ConflictDecision struct {
	Choice     Choice
	NewName    string
	ApplyToAll bool
}

// EntryError records one failed or warned-about entry without aborting
// the batch.
type EntryError struct {
	Path string
	Err  error
}

// ProgressEvent is the worker-to-foreground message. Events for a job are
// delivered in production order; every job ends with exactly one event
// whose Phase is terminal.
type ProgressEvent struct {
	Phase       Phase
	CurrentPath string
	BytesDone   int64
	BytesTotal  int64
	FilesDone   int
	FilesTotal  int

	// Conflict is set on PhaseWaitingForDecision events.
	Conflict *ConflictRequest

	// Err is the job-level fatal error on PhaseFailed.
	Err error

	// Failed and Warnings aggregate per-entry failures and metadata
	// warnings; populated on the terminal event.
	Failed   []EntryError
	Warnings []EntryError
}
