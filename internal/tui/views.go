package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"duofm/internal/job"
	"duofm/internal/panel"
)

func (m *MainModel) View() string {
	if m.mode == ModeQuitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}

	switch m.mode {
	case ModeInput:
		return m.overlay(m.viewInput())
	case ModeConfirm:
		return m.overlay(m.viewConfirm())
	case ModeProgress:
		return m.overlay(m.viewProgress())
	case ModeConflict:
		return m.overlay(m.viewConflict())
	case ModeMessage:
		return m.overlay(m.viewMessage())
	case ModeHelp:
		return m.overlay(m.viewHelp())
	default:
		return m.viewNormal()
	}
}

func (m *MainModel) viewNormal() string {
	paneWidth := m.width/2 - 2
	paneHeight := m.height - 4
	if paneWidth < 10 || paneHeight < 3 {
		return "window too small"
	}

	left := m.renderPane(m.panes[0], m.focus == 0, paneWidth, paneHeight)
	right := m.renderPane(m.panes[1], m.focus == 1, paneWidth, paneHeight)
	panes := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	help := m.styles.Help.Render(
		"tab switch • enter open • space mark • F5 copy • F6 move • F8 delete • R rename • ? help • q quit")
	return lipgloss.JoinVertical(lipgloss.Left, panes, m.statusBar(), help)
}

// overlay centers a dialog in the window. The panels behind it are not
// drawn; redundant while a dialog captures all input.
func (m *MainModel) overlay(dialog string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, dialog)
}

func (m *MainModel) renderPane(p *panel.State, focused bool, width, height int) string {
	inner := width - 4
	if inner < 1 {
		inner = 1
	}

	header := m.styles.PaneHeader.Render(truncate.StringWithTail(p.Dir, uint(inner), "…"))
	sub := m.styles.Subtitle.Render(fmt.Sprintf("%d items • %s", len(p.Entries), p.Order))

	rows := height - 3
	if rows < 1 {
		rows = 1
	}
	top := 0
	if p.Cursor >= rows {
		top = p.Cursor - rows + 1
	}

	var b strings.Builder
	b.WriteString(header + "\n" + sub + "\n")
	for i := top; i < len(p.Entries) && i < top+rows; i++ {
		b.WriteString(m.renderEntry(p, i, inner))
		b.WriteString("\n")
	}
	if len(p.Entries) == 0 {
		b.WriteString(m.styles.Subtitle.Render("(empty)"))
	}

	style := m.styles.Pane
	if focused {
		style = m.styles.PaneFocused
	}
	return style.Width(width).Height(height).Render(strings.TrimRight(b.String(), "\n"))
}

func (m *MainModel) renderEntry(p *panel.State, i, width int) string {
	e := p.Entries[i]

	mark := " "
	if p.Selected(e.Name) {
		mark = "*"
	}
	name := e.Name
	if e.IsDir {
		name += "/"
	}
	size := formatSize(e.Size)
	if e.IsDir {
		size = "<dir>"
	}

	nameWidth := width - len(size) - 4
	if nameWidth < 1 {
		nameWidth = 1
	}
	line := fmt.Sprintf("%s %-*s %s", mark,
		nameWidth, truncate.StringWithTail(name, uint(nameWidth), "…"), size)

	switch {
	case i == p.Cursor:
		return m.styles.Cursor.Render(line)
	case p.Selected(e.Name):
		return m.styles.Selected.Render(line)
	case e.IsDir:
		return m.styles.Dir.Render(line)
	case e.IsSymlink:
		return m.styles.Symlink.Render(line)
	default:
		return m.styles.Entry.Render(line)
	}
}

func (m *MainModel) statusBar() string {
	p := m.active()
	parts := []string{fmt.Sprintf("%d items", len(p.Entries))}
	if n := p.SelectionCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d marked", n))
	}
	if e := p.Current(); e != nil {
		parts = append(parts, e.Mode.String())
	}
	return m.styles.StatusBar.Render(strings.Join(parts, " • "))
}

func (m *MainModel) dialogWidth() int {
	w := m.width - 10
	if w > 70 {
		w = 70
	}
	if w < 20 {
		w = 20
	}
	return w
}

func (m *MainModel) viewInput() string {
	w := m.dialogWidth()
	return m.styles.Dialog.Width(w).Render(
		m.styles.DialogTitle.Render(strings.TrimSuffix(m.input.Prompt, ": ")) + "\n\n" +
			m.input.View() + "\n\n" +
			m.styles.Help.Render("enter confirm • esc cancel"))
}

func (m *MainModel) viewConfirm() string {
	w := m.dialogWidth()
	count := 0
	if m.pendingOp != nil {
		count = len(m.pendingOp.Sources)
	}
	text := fmt.Sprintf("Delete %d item(s)? This cannot be undone.", count)
	return m.styles.Dialog.Width(w).Render(
		m.styles.DialogTitle.Render("Confirm delete") + "\n\n" +
			wordwrap.String(text, w-4) + "\n\n" +
			m.styles.Help.Render("y confirm • n/esc cancel"))
}

func (m *MainModel) viewProgress() string {
	w := m.dialogWidth()
	ev := m.progress

	var b strings.Builder
	b.WriteString(m.styles.DialogTitle.Render(capitalize(ev.Phase.String())) + "\n\n")
	if ev.CurrentPath != "" {
		b.WriteString(truncate.StringWithTail(ev.CurrentPath, uint(w-4), "…") + "\n")
	}
	if ev.FilesTotal > 0 {
		b.WriteString(fmt.Sprintf("%d / %d files", ev.FilesDone, ev.FilesTotal))
		if ev.BytesTotal > 0 {
			b.WriteString(fmt.Sprintf("  •  %s / %s", formatSize(ev.BytesDone), formatSize(ev.BytesTotal)))
		}
		b.WriteString("\n")
		b.WriteString(progressBar(w-4, ev.BytesDone, ev.BytesTotal, ev.FilesDone, ev.FilesTotal) + "\n")
	}
	if m.cancelling {
		b.WriteString("\n" + m.styles.Warning.Render("Cancelling…") + "\n")
	}
	b.WriteString("\n" + m.styles.Help.Render("esc cancel"))
	return m.styles.Dialog.Width(w).Render(b.String())
}

// progressBar renders byte progress when totals are known, falling back to
// file counts for jobs without byte totals (delete, chmod).
func progressBar(width int, bytesDone, bytesTotal int64, filesDone, filesTotal int) string {
	if width < 4 {
		return ""
	}
	var frac float64
	if bytesTotal > 0 {
		frac = float64(bytesDone) / float64(bytesTotal)
	} else if filesTotal > 0 {
		frac = float64(filesDone) / float64(filesTotal)
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(frac * float64(width))
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

func (m *MainModel) viewConflict() string {
	w := m.dialogWidth()
	if m.conflict == nil {
		return ""
	}
	kind := "file"
	switch m.conflict.DestKind {
	case job.DestDirectory:
		kind = "directory"
	case job.DestSymlink:
		kind = "symlink"
	}

	applyMark := "[ ]"
	if m.applyAll {
		applyMark = "[x]"
	}

	var b strings.Builder
	b.WriteString(m.styles.DialogTitle.Render("Destination exists") + "\n\n")
	b.WriteString(wordwrap.String(
		fmt.Sprintf("A %s already exists at:\n%s", kind, m.conflict.Dest), w-4) + "\n\n")
	b.WriteString(fmt.Sprintf("%s apply to all remaining conflicts\n\n", applyMark))
	b.WriteString(m.styles.Help.Render("o overwrite • s skip • r rename • a toggle apply-all • esc cancel job"))
	return m.styles.Dialog.Width(w).Render(b.String())
}

func (m *MainModel) viewMessage() string {
	w := m.dialogWidth()
	title := m.styles.Success.Render("Done")
	if m.messageErr {
		title = m.styles.Error.Render("Error")
	}
	return m.styles.Dialog.Width(w).Render(
		title + "\n\n" +
			wordwrap.String(m.message, w-4) + "\n\n" +
			m.styles.Help.Render("press any key"))
}

func (m *MainModel) viewHelp() string {
	w := m.dialogWidth()
	lines := []string{
		"tab          switch pane",
		"enter        open directory",
		"backspace    parent directory",
		"space        mark entry",
		"F5 / c       copy to other pane",
		"F6 / m       move to other pane",
		"F8 / d       delete",
		"R            rename",
		"n / N        new file / directory",
		"M            change permissions",
		"s            cycle sort order",
		".            toggle hidden files",
		"r            reload panes",
		"q / ctrl+c   quit",
	}
	return m.styles.Dialog.Width(w).Render(
		m.styles.DialogTitle.Render("Keys") + "\n\n" +
			strings.Join(lines, "\n") + "\n\n" +
			m.styles.Help.Render("press any key"))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}
