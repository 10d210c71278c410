package styles

import "github.com/charmbracelet/lipgloss"

// Centralized Lip Gloss styles for the TUI.
// All colors are specified using hex codes, grouped into themes.

// Theme is the palette a style set is built from.
type Theme struct {
	Accent      lipgloss.Color
	Border      lipgloss.Color
	BorderFocus lipgloss.Color
	Text        lipgloss.Color
	Muted       lipgloss.Color
	Directory   lipgloss.Color
	Symlink     lipgloss.Color
	Selection   lipgloss.Color
	CursorFg    lipgloss.Color
	CursorBg    lipgloss.Color
	Error       lipgloss.Color
	Success     lipgloss.Color
	Warning     lipgloss.Color
}

func Dark() Theme {
	return Theme{
		Accent:      "#ff5fd2",
		Border:      "#5f5fff",
		BorderFocus: "#ff5faf",
		Text:        "#ffffff",
		Muted:       "#a8a8a8",
		Directory:   "#5fd7ff",
		Symlink:     "#87d787",
		Selection:   "#ffd75f",
		CursorFg:    "#000000",
		CursorBg:    "#5fd7ff",
		Error:       "#ff005f",
		Success:     "#00ff5f",
		Warning:     "#ffaf00",
	}
}

func Light() Theme {
	return Theme{
		Accent:      "#af0087",
		Border:      "#5f5faf",
		BorderFocus: "#d7005f",
		Text:        "#1c1c1c",
		Muted:       "#6c6c6c",
		Directory:   "#005faf",
		Symlink:     "#008700",
		Selection:   "#af8700",
		CursorFg:    "#ffffff",
		CursorBg:    "#005faf",
		Error:       "#d70000",
		Success:     "#008700",
		Warning:     "#af5f00",
	}
}

// ByName maps a config theme name to a Theme, defaulting to dark.
func ByName(name string) Theme {
	if name == "light" {
		return Light()
	}
	return Dark()
}

// Styles is the rendered style set for one theme.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Help     lipgloss.Style

	Pane        lipgloss.Style
	PaneFocused lipgloss.Style
	PaneHeader  lipgloss.Style

	Entry    lipgloss.Style
	Dir      lipgloss.Style
	Symlink  lipgloss.Style
	Cursor   lipgloss.Style
	Selected lipgloss.Style

	StatusBar lipgloss.Style

	Dialog      lipgloss.Style
	DialogTitle lipgloss.Style
	Input       lipgloss.Style

	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
}

func New(t Theme) Styles {
	pane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		PaddingLeft(1).
		PaddingRight(1)

	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Accent).
			PaddingLeft(1),

		Subtitle: lipgloss.NewStyle().
			Foreground(t.Muted).
			PaddingLeft(1),

		Help: lipgloss.NewStyle().
			Faint(true).
			Foreground(t.Muted).
			Padding(0, 1),

		Pane:        pane,
		PaneFocused: pane.BorderForeground(t.BorderFocus),

		PaneHeader: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Accent),

		Entry:   lipgloss.NewStyle().Foreground(t.Text),
		Dir:     lipgloss.NewStyle().Bold(true).Foreground(t.Directory),
		Symlink: lipgloss.NewStyle().Foreground(t.Symlink),

		Cursor: lipgloss.NewStyle().
			Foreground(t.CursorFg).
			Background(t.CursorBg).
			Bold(true),

		Selected: lipgloss.NewStyle().
			Foreground(t.Selection).
			Bold(true),

		StatusBar: lipgloss.NewStyle().
			Foreground(t.Muted).
			PaddingLeft(1),

		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(1, 2),

		DialogTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Accent),

		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Directory).
			Padding(0, 1),

		Error:   lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		Success: lipgloss.NewStyle().Foreground(t.Success).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(t.Warning),
	}
}
