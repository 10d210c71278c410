package panel

import (
	"fmt"
	"path/filepath"
)

// State is one pane: a directory, its sorted listing, a cursor and the
// multi-selection. All methods are synchronous; the TUI calls them on its
// update goroutine.
type State struct {
	Dir     string
	Entries []Entry

	Cursor     int
	ShowHidden bool
	Order      Sort

	selected map[string]bool
}

// NewState opens a pane on dir.
func NewState(dir string, showHidden bool, order Sort) (*State, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}
	s := &State{
		Dir:        abs,
		ShowHidden: showHidden,
		Order:      order,
		selected:   make(map[string]bool),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the directory. The cursor stays on the same entry name
// when it still exists, otherwise it clamps; selection keeps only names
// that survived.
func (s *State) Reload() error {
	var cursorName string
	if e := s.Current(); e != nil {
		cursorName = e.Name
	}

	entries, err := List(s.Dir, s.ShowHidden, s.Order)
	if err != nil {
		return err
	}
	s.Entries = entries

	alive := make(map[string]bool, len(s.selected))
	s.Cursor = clamp(s.Cursor, len(entries))
	for i, e := range entries {
		if e.Name == cursorName {
			s.Cursor = i
		}
		if s.selected[e.Name] {
			alive[e.Name] = true
		}
	}
	s.selected = alive
	return nil
}

// Current returns the entry under the cursor, or nil for an empty listing.
func (s *State) Current() *Entry {
	if s.Cursor < 0 || s.Cursor >= len(s.Entries) {
		return nil
	}
	return &s.Entries[s.Cursor]
}

// MoveCursor moves the cursor by delta, clamped to the listing.
func (s *State) MoveCursor(delta int) {
	s.Cursor = clamp(s.Cursor+delta, len(s.Entries))
}

// CursorToEnd jumps to the last entry; CursorToStart to the first.
func (s *State) CursorToEnd()   { s.Cursor = clamp(len(s.Entries)-1, len(s.Entries)) }
func (s *State) CursorToStart() { s.Cursor = 0 }

// Enter descends into the directory under the cursor. A cursor on a file
// is a no-op and reports false.
func (s *State) Enter() (bool, error) {
	e := s.Current()
	if e == nil || !e.IsDir {
		return false, nil
	}
	return true, s.changeDir(e.Path)
}

// Up ascends to the parent directory, placing the cursor on the directory
// just left.
func (s *State) Up() error {
	parent := filepath.Dir(s.Dir)
	if parent == s.Dir {
		return nil
	}
	from := filepath.Base(s.Dir)
	if err := s.changeDir(parent); err != nil {
		return err
	}
	for i, e := range s.Entries {
		if e.Name == from {
			s.Cursor = i
			break
		}
	}
	return nil
}

func (s *State) changeDir(dir string) error {
	entries, err := List(dir, s.ShowHidden, s.Order)
	if err != nil {
		return err
	}
	s.Dir = dir
	s.Entries = entries
	s.Cursor = 0
	s.selected = make(map[string]bool)
	return nil
}

// ToggleSelect flips selection of the entry under the cursor and advances,
// the usual two-pane-manager gesture for marking a batch.
func (s *State) ToggleSelect() {
	e := s.Current()
	if e == nil {
		return
	}
	if s.selected[e.Name] {
		delete(s.selected, e.Name)
	} else {
		s.selected[e.Name] = true
	}
	s.MoveCursor(1)
}

// Selected reports whether name is marked.
func (s *State) Selected(name string) bool { return s.selected[name] }

// SelectionCount returns how many entries are marked.
func (s *State) SelectionCount() int { return len(s.selected) }

// ClearSelection unmarks everything.
func (s *State) ClearSelection() {
	s.selected = make(map[string]bool)
}

// TargetPaths is what an operation acts on: the marked entries in listing
// order, or the entry under the cursor when nothing is marked.
func (s *State) TargetPaths() []string {
	if len(s.selected) > 0 {
		paths := make([]string, 0, len(s.selected))
		for _, e := range s.Entries {
			if s.selected[e.Name] {
				paths = append(paths, e.Path)
			}
		}
		return paths
	}
	if e := s.Current(); e != nil {
		return []string{e.Path}
	}
	return nil
}

// CycleSort advances to the next sort order and re-sorts in place.
func (s *State) CycleSort() {
	s.Order = s.Order.Next()
	var cursorName string
	if e := s.Current(); e != nil {
		cursorName = e.Name
	}
	sortEntries(s.Entries, s.Order)
	for i, e := range s.Entries {
		if e.Name == cursorName {
			s.Cursor = i
			break
		}
	}
}

// ToggleHidden flips dot-file visibility and reloads.
func (s *State) ToggleHidden() error {
	s.ShowHidden = !s.ShowHidden
	return s.Reload()
}

func clamp(i, n int) int {
	if n == 0 {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
