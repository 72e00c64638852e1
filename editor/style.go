package editor

import "github.com/charmbracelet/lipgloss"

// Style controls the editor's rendering.
type Style struct {
	Text   lipgloss.Style
	Cursor lipgloss.Style

	// Ghost renders the inline suggestion after the cursor.
	Ghost lipgloss.Style

	Menu         lipgloss.Style
	MenuSelected lipgloss.Style
	MenuEmpty    lipgloss.Style

	set bool
}

func (s Style) isZero() bool { return !s.set }

func DefaultStyle() Style {
	return Style{
		Text:   lipgloss.NewStyle(),
		Cursor: lipgloss.NewStyle().Reverse(true),

		Ghost: lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true),

		Menu:         lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		MenuSelected: lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("237")).Bold(true),
		MenuEmpty:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true),

		set: true,
	}
}
