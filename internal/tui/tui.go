// Package tui implements the dual-panel terminal interface on Bubble Tea.
//
// The model is mode-based: Normal drives the two panels, and each dialog
// (text input, delete confirmation, job progress, conflict prompt, message,
// help) is a mode that captures the keyboard until dismissed. Filesystem
// work never happens on the update loop: operations are submitted to the
// job runner and observed through its progress channel, one event per
// Bubble Tea message.
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"duofm/internal/config"
	"duofm/internal/job"
	"duofm/internal/logging"
	"duofm/internal/panel"
	"duofm/internal/tui/styles"
	"duofm/internal/watch"
	"duofm/pkg/fsops"
)

// Mode is the current input mode of the interface.
type Mode int

const (
	ModeNormal Mode = iota
	ModeInput
	ModeConfirm
	ModeProgress
	ModeConflict
	ModeMessage
	ModeHelp
	ModeQuitting
)

// inputPurpose says what the Input-mode text field feeds.
type inputPurpose int

const (
	inputRename inputPurpose = iota
	inputNewFile
	inputNewDir
	inputChmod
	inputConflictName
)

type (
	// progressMsg carries one job progress event into the update loop.
	progressMsg struct {
		ev job.ProgressEvent
	}

	// watchMsg carries one filesystem change event.
	watchMsg struct {
		ev watch.Event
	}

	// watchClosedMsg ends the watch pump when the watcher shuts down.
	watchClosedMsg struct{}
)

// MainModel is the root Bubble Tea model.
type MainModel struct {
	cfg    *config.Config
	logger *logging.AppLogger
	runner *job.Runner
	// watcher may be nil; the panels then refresh only on navigation
	// and after jobs.
	watcher *watch.Watcher

	styles styles.Styles
	keys   keyMap

	panes [2]*panel.State
	focus int

	mode   Mode
	width  int
	height int

	input   textinput.Model
	purpose inputPurpose

	// pendingOp waits for the Confirm dialog's answer.
	pendingOp *job.Operation

	handle     *job.Handle
	progress   job.ProgressEvent
	conflict   *job.ConflictRequest
	applyAll   bool
	cancelling bool

	message    string
	messageErr bool

	watched map[string]bool
}

// NewMainModel builds the model with both panels opened on startDir.
func NewMainModel(cfg *config.Config, logger *logging.AppLogger, runner *job.Runner, watcher *watch.Watcher, startDir string) (*MainModel, error) {
	if startDir == "" {
		var err error
		startDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving working directory: %w", err)
		}
	}

	order := cfg.Sort()
	left, err := panel.NewState(startDir, cfg.ShowHidden, order)
	if err != nil {
		return nil, err
	}
	right, err := panel.NewState(startDir, cfg.ShowHidden, order)
	if err != nil {
		return nil, err
	}

	ti := textinput.New()
	ti.CharLimit = 255

	m := &MainModel{
		cfg:     cfg,
		logger:  logger,
		runner:  runner,
		watcher: watcher,
		styles:  styles.New(styles.ByName(cfg.Theme)),
		keys:    defaultKeyMap(),
		panes:   [2]*panel.State{left, right},
		input:   ti,
		watched: make(map[string]bool),
	}
	m.rewatch()
	return m, nil
}

func (m *MainModel) Init() tea.Cmd {
	m.logger.Info("interface started", "dir", m.panes[0].Dir)
	if m.watcher != nil {
		return waitWatch(m.watcher)
	}
	return nil
}

// waitProgress blocks (off the update loop) for the next job event.
func waitProgress(h *job.Handle) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-h.Progress()
		if !ok {
			// The terminal event has already been delivered; nothing to do.
			return nil
		}
		return progressMsg{ev: ev}
	}
}

// waitWatch blocks for the next filesystem change.
func waitWatch(w *watch.Watcher) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-w.Events()
		if !ok {
			return watchClosedMsg{}
		}
		return watchMsg{ev: ev}
	}
}

func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.logger.LogMessage(msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case progressMsg:
		return m.handleProgress(msg.ev)

	case watchMsg:
		m.handleWatchEvent(msg.ev)
		return m, waitWatch(m.watcher)

	case watchClosedMsg:
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		switch m.mode {
		case ModeNormal:
			return m.handleNormalKey(msg)
		case ModeInput:
			return m.handleInputKey(msg)
		case ModeConfirm:
			return m.handleConfirmKey(msg)
		case ModeProgress:
			return m.handleProgressKey(msg)
		case ModeConflict:
			return m.handleConflictKey(msg)
		case ModeMessage, ModeHelp:
			// Any key dismisses.
			m.mode = ModeNormal
			return m, nil
		}
	}

	if m.mode == ModeInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *MainModel) quit() (tea.Model, tea.Cmd) {
	if m.handle != nil {
		m.handle.Cancel()
	}
	if m.watcher != nil {
		m.watcher.Close()
	}
	m.mode = ModeQuitting
	return m, tea.Quit
}

// --- Normal mode ---------------------------------------------------------

func (m *MainModel) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	pane := m.active()
	k := m.keys

	switch {
	case key.Matches(msg, k.Quit):
		return m.quit()
	case key.Matches(msg, k.Help):
		m.mode = ModeHelp
	case key.Matches(msg, k.SwitchPane):
		m.focus = 1 - m.focus
	case key.Matches(msg, k.Up):
		pane.MoveCursor(-1)
	case key.Matches(msg, k.Down):
		pane.MoveCursor(1)
	case key.Matches(msg, k.Top):
		pane.CursorToStart()
	case key.Matches(msg, k.Bottom):
		pane.CursorToEnd()
	case key.Matches(msg, k.Enter):
		if _, err := pane.Enter(); err != nil {
			m.showError(err)
		}
		m.rewatch()
	case key.Matches(msg, k.Parent):
		if err := pane.Up(); err != nil {
			m.showError(err)
		}
		m.rewatch()
	case key.Matches(msg, k.Select):
		pane.ToggleSelect()
	case key.Matches(msg, k.Reload):
		m.refreshPanes()
	case key.Matches(msg, k.ToggleHidden):
		if err := pane.ToggleHidden(); err != nil {
			m.showError(err)
		}
	case key.Matches(msg, k.CycleSort):
		pane.CycleSort()

	case key.Matches(msg, k.Copy):
		return m.submitTransfer(job.OpCopy)
	case key.Matches(msg, k.Move):
		return m.submitTransfer(job.OpMove)
	case key.Matches(msg, k.Delete):
		return m.requestDelete()
	case key.Matches(msg, k.Rename):
		if e := pane.Current(); e != nil {
			m.openInput(inputRename, "New name", e.Name)
		}
	case key.Matches(msg, k.NewFile):
		m.openInput(inputNewFile, "New file name", "")
	case key.Matches(msg, k.NewDir):
		m.openInput(inputNewDir, "New directory name", "")
	case key.Matches(msg, k.Chmod):
		if e := pane.Current(); e != nil {
			m.openInput(inputChmod, "Mode (octal)", fsops.FormatMode(e.Mode))
		}
	}
	return m, nil
}

func (m *MainModel) active() *panel.State   { return m.panes[m.focus] }
func (m *MainModel) inactive() *panel.State { return m.panes[1-m.focus] }

func (m *MainModel) submitTransfer(kind job.Kind) (tea.Model, tea.Cmd) {
	sources := m.active().TargetPaths()
	if len(sources) == 0 {
		return m, nil
	}
	return m.submit(job.Operation{
		Kind:    kind,
		Sources: sources,
		Dest:    m.inactive().Dir,
	})
}

func (m *MainModel) requestDelete() (tea.Model, tea.Cmd) {
	sources := m.active().TargetPaths()
	if len(sources) == 0 {
		return m, nil
	}
	op := job.Operation{Kind: job.OpDelete, Sources: sources}
	if !m.cfg.ConfirmDelete {
		return m.submit(op)
	}
	m.pendingOp = &op
	m.mode = ModeConfirm
	return m, nil
}

func (m *MainModel) submit(op job.Operation) (tea.Model, tea.Cmd) {
	h, err := m.runner.Submit(op)
	if err != nil {
		m.showError(err)
		return m, nil
	}
	m.handle = h
	m.progress = job.ProgressEvent{Phase: job.PhaseScanning}
	m.conflict = nil
	m.applyAll = false
	m.cancelling = false
	m.mode = ModeProgress
	return m, waitProgress(h)
}

// --- Input mode ----------------------------------------------------------

func (m *MainModel) openInput(purpose inputPurpose, prompt, initial string) {
	m.purpose = purpose
	m.input.Prompt = prompt + ": "
	m.input.SetValue(initial)
	m.input.CursorEnd()
	m.input.Focus()
	m.mode = ModeInput
}

func (m *MainModel) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input.Blur()
		if m.purpose == inputConflictName {
			// Backing out of the rename leaves the conflict prompt open.
			m.mode = ModeConflict
			return m, nil
		}
		m.mode = ModeNormal
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		m.input.Blur()
		return m.submitInput(value)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *MainModel) submitInput(value string) (tea.Model, tea.Cmd) {
	if value == "" {
		if m.purpose == inputConflictName {
			m.mode = ModeConflict
		} else {
			m.mode = ModeNormal
		}
		return m, nil
	}
	pane := m.active()

	switch m.purpose {
	case inputRename:
		e := pane.Current()
		if e == nil {
			m.mode = ModeNormal
			return m, nil
		}
		return m.submit(job.Operation{
			Kind:    job.OpRename,
			Sources: []string{e.Path},
			Dest:    value,
		})

	case inputNewFile:
		if err := fsops.CreateFile(filepath.Join(pane.Dir, value)); err != nil {
			m.showError(err)
			return m, nil
		}
		m.refreshPanes()
		m.mode = ModeNormal

	case inputNewDir:
		if err := fsops.CreateDir(filepath.Join(pane.Dir, value)); err != nil {
			m.showError(err)
			return m, nil
		}
		m.refreshPanes()
		m.mode = ModeNormal

	case inputChmod:
		bits, err := strconv.ParseUint(value, 8, 32)
		if err != nil {
			m.showError(fmt.Errorf("%q is not an octal mode", value))
			return m, nil
		}
		return m.submit(job.Operation{
			Kind:    job.OpChmod,
			Sources: pane.TargetPaths(),
			Mode:    os.FileMode(bits),
		})

	case inputConflictName:
		return m.decide(job.ConflictDecision{
			Choice:     job.ChoiceRename,
			NewName:    value,
			ApplyToAll: m.applyAll,
		})
	}
	return m, nil
}

// --- Confirm mode --------------------------------------------------------

func (m *MainModel) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		op := m.pendingOp
		m.pendingOp = nil
		if op != nil {
			return m.submit(*op)
		}
		m.mode = ModeNormal
	case "n", "N", "esc":
		m.pendingOp = nil
		m.mode = ModeNormal
	}
	return m, nil
}

// --- Progress mode -------------------------------------------------------

func (m *MainModel) handleProgressKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" && m.handle != nil {
		m.handle.Cancel()
		m.cancelling = true
	}
	return m, nil
}

func (m *MainModel) handleProgress(ev job.ProgressEvent) (tea.Model, tea.Cmd) {
	m.progress = ev

	if ev.Conflict != nil {
		m.conflict = ev.Conflict
		m.mode = ModeConflict
		return m, waitProgress(m.handle)
	}

	if ev.Phase.Terminal() {
		m.finishJob(ev)
		return m, nil
	}

	if m.mode == ModeConflict {
		// The decision was consumed; back to the progress dialog.
		m.mode = ModeProgress
		m.conflict = nil
	}
	return m, waitProgress(m.handle)
}

func (m *MainModel) finishJob(ev job.ProgressEvent) {
	kind := m.handle.Operation().Kind
	m.handle = nil
	m.conflict = nil
	m.refreshPanes()
	m.active().ClearSelection()

	switch ev.Phase {
	case job.PhaseDone:
		if len(ev.Failed) > 0 {
			m.showMessage(fmt.Sprintf("%s finished: %d of %d items done, %d failed (first: %v)",
				kind, ev.FilesDone, ev.FilesTotal, len(ev.Failed), ev.Failed[0].Err), true)
			return
		}
		m.showMessage(fmt.Sprintf("%s finished: %d items", kind, ev.FilesDone), false)
	case job.PhaseCancelled:
		m.showMessage(fmt.Sprintf("%s cancelled after %d of %d items", kind, ev.FilesDone, ev.FilesTotal), false)
	case job.PhaseFailed:
		m.showMessage(fmt.Sprintf("%s failed: %v", kind, ev.Err), true)
	}
}

// --- Conflict mode -------------------------------------------------------

func (m *MainModel) handleConflictKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "o":
		return m.decide(job.ConflictDecision{Choice: job.ChoiceOverwrite, ApplyToAll: m.applyAll})
	case "s":
		return m.decide(job.ConflictDecision{Choice: job.ChoiceSkip, ApplyToAll: m.applyAll})
	case "r":
		if m.conflict != nil {
			m.openInput(inputConflictName, "Rename to", filepath.Base(m.conflict.Dest))
		}
	case "a":
		m.applyAll = !m.applyAll
	case "esc":
		return m.decide(job.ConflictDecision{Choice: job.ChoiceCancel})
	}
	return m, nil
}

func (m *MainModel) decide(dec job.ConflictDecision) (tea.Model, tea.Cmd) {
	if m.handle == nil {
		m.mode = ModeNormal
		return m, nil
	}
	m.handle.Decide(dec)
	m.mode = ModeProgress
	m.conflict = nil
	return m, nil
}

// --- Watching and refresh ------------------------------------------------

// handleWatchEvent refreshes only the pane(s) whose directory contains the
// changed path. Refreshing while a job dialog is open is fine; the panes
// are re-listed again when the job finishes.
func (m *MainModel) handleWatchEvent(ev watch.Event) {
	dirs := map[string]bool{filepath.Dir(ev.Path): true}
	if ev.OldPath != "" {
		dirs[filepath.Dir(ev.OldPath)] = true
	}
	for _, p := range m.panes {
		if dirs[p.Dir] {
			if err := p.Reload(); err != nil {
				m.logger.Warn("panel refresh failed", "dir", p.Dir, "error", err)
			}
		}
	}
}

func (m *MainModel) refreshPanes() {
	for _, p := range m.panes {
		if err := p.Reload(); err != nil {
			m.logger.Warn("panel refresh failed", "dir", p.Dir, "error", err)
		}
	}
}

// rewatch syncs the watcher to the two current panel directories.
func (m *MainModel) rewatch() {
	if m.watcher == nil {
		return
	}
	want := map[string]bool{m.panes[0].Dir: true, m.panes[1].Dir: true}
	for dir := range m.watched {
		if !want[dir] {
			m.watcher.Remove(dir)
			delete(m.watched, dir)
		}
	}
	for dir := range want {
		if !m.watched[dir] {
			if err := m.watcher.Add(dir); err != nil {
				m.logger.Warn("cannot watch directory", "dir", dir, "error", err)
				continue
			}
			m.watched[dir] = true
		}
	}
}

// --- Messages ------------------------------------------------------------

func (m *MainModel) showMessage(text string, isErr bool) {
	m.message = text
	m.messageErr = isErr
	m.mode = ModeMessage
}

func (m *MainModel) showError(err error) {
	m.logger.Error("operation failed", "error", err)
	m.showMessage(err.Error(), true)
}
