package editor

import "github.com/iw2rmb/quill/buffer"

// ChangeEvent is the host-facing notification for buffer mutations.
type ChangeEvent struct {
	Version uint64
	Source  buffer.ChangeSource
	Cursor  buffer.Pos

	Selection struct {
		Range  buffer.Range
		Active bool
	}

	// Simplest payload; hosts can diff if needed.
	Text string
}

func buildChangeEvent(b *buffer.Buffer) ChangeEvent {
	ev := ChangeEvent{
		Version: b.Version(),
		Cursor:  b.Cursor(),
		Text:    b.Text(),
	}
	if change, ok := b.LastChange(); ok {
		ev.Source = change.Source
	}
	if r, ok := b.Selection(); ok {
		ev.Selection.Active = true
		ev.Selection.Range = r
	}
	return ev
}

func (m Model) emitChange() {
	if m.cfg.OnChange == nil {
		return
	}
	m.cfg.OnChange(buildChangeEvent(m.sur.buf))
}
