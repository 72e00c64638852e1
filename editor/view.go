package editor

import (
	"strings"

	"github.com/iw2rmb/quill/completion"
	"github.com/iw2rmb/quill/internal/grapheme"
)

const maxMenuRows = 8

// renderContent produces the viewport content: the document with the
// cursor block, the ghost suggestion after the cursor, and the completion
// menu below the cursor line.
func (m *Model) renderContent() string {
	buf := m.sur.buf
	cursor := buf.Cursor()
	st := m.cfg.Style

	var sb strings.Builder
	for row := 0; row < buf.LineCount(); row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}

		line := buf.Line(row)
		if row != cursor.Row || !m.sur.focused {
			sb.WriteString(st.Text.Render(line))
			continue
		}

		sb.WriteString(m.renderCursorLine(line, cursor.GraphemeCol))

		if menu := m.menuLines(); menu != "" {
			sb.WriteByte('\n')
			sb.WriteString(menu)
		}
	}
	return sb.String()
}

func (m *Model) renderCursorLine(line string, col int) string {
	st := m.cfg.Style
	clusters := grapheme.Split(line)
	if col > len(clusters) {
		col = len(clusters)
	}

	before := grapheme.Join(clusters[:col])
	after := grapheme.Join(clusters[col:])

	// With a pending suggestion the cursor sits on its first cluster, so
	// the ghost reads as the continuation of the typed text.
	if m.session != nil {
		if sug, ok := m.session.InlineSuggestion(); ok && sug.InsertText != "" {
			gc := grapheme.Split(sug.InsertText)
			rest := grapheme.Join(gc[1:])
			return st.Text.Render(before) +
				st.Cursor.Render(gc[0]) +
				st.Ghost.Render(rest) +
				st.Text.Render(after)
		}
	}

	cursorCell := " "
	if col < len(clusters) {
		cursorCell = clusters[col]
		after = grapheme.Join(clusters[col+1:])
	}

	return st.Text.Render(before) + st.Cursor.Render(cursorCell) + st.Text.Render(after)
}

// menuLines renders the open completion menu as a windowed list that
// keeps the selected item visible.
func (m *Model) menuLines() string {
	if m.session == nil || !m.session.IsOpen() {
		return ""
	}
	menu := m.session.Menu()
	st := m.cfg.Style

	if menu.ShowingEmptyState() {
		return st.MenuEmpty.Render("  no suggestions")
	}

	items := menu.Items()
	if len(items) == 0 {
		return ""
	}

	sel := menu.Selected()
	start := 0
	if sel >= maxMenuRows {
		start = sel - maxMenuRows + 1
	}
	end := start + maxMenuRows
	if end > len(items) {
		end = len(items)
	}

	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		label := "  " + items[i].Label + kindSuffix(items[i].Kind)
		if i == sel {
			rows = append(rows, st.MenuSelected.Render("▸ "+items[i].Label+kindSuffix(items[i].Kind)))
			continue
		}
		rows = append(rows, st.Menu.Render(label))
	}
	return strings.Join(rows, "\n")
}

func kindSuffix(k completion.ItemKind) string {
	switch k {
	case completion.KindFunction:
		return " ƒ"
	case completion.KindKeyword:
		return " k"
	case completion.KindVariable:
		return " v"
	case completion.KindField:
		return " ."
	case completion.KindModule:
		return " m"
	case completion.KindSnippet:
		return " s"
	default:
		return ""
	}
}
