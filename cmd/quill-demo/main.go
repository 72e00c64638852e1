package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/quill/completion"
	"github.com/iw2rmb/quill/editor"
)

var words = []string{
	"package", "import", "func", "return", "range", "println", "printf",
	"string", "struct", "interface", "switch", "select", "continue",
	"context", "channel", "buffer", "builder", "append", "assert",
}

type model struct {
	editor editor.Model
}

func newModel() model {
	cfg := editor.Config{
		Text: "Quill demo.\n\nType a word to open the completion menu.\nEnter accepts, Esc dismisses, Tab accepts the ghost text.\nCtrl+Space triggers manually. Ctrl+C quits.\n\n",
		Provider: &completion.WordProvider{
			Words: words,
		},
	}
	return model{editor: editor.New(cfg)}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m model) View() string { return m.editor.View() }

func main() {
	p := tea.NewProgram(newModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
