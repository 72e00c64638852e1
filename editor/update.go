package editor

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/quill/buffer"
	"github.com/iw2rmb/quill/completion"
)

func (m Model) updateKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if !m.sur.focused {
		return m, nil
	}

	// Paste events always insert literal text and never trigger shortcuts.
	if msg.Type == tea.KeyRunes && msg.Paste && len(msg.Runes) > 0 {
		if m.cfg.ReadOnly {
			return m, nil
		}
		s := strings.ReplaceAll(string(msg.Runes), "\r\n", "\n")
		s = strings.ReplaceAll(s, "\r", "\n")
		return m.mutate(func(b *buffer.Buffer) { b.InsertText(s) })
	}

	if m.session != nil {
		if model, cmd, handled := m.updateCompletionKey(msg); handled {
			return model, cmd
		}
	}

	km := m.cfg.KeyMap

	switch {
	case key.Matches(msg, km.Left):
		return m.move(buffer.Move{Unit: buffer.MoveGrapheme, Dir: buffer.DirLeft})
	case key.Matches(msg, km.Right):
		return m.move(buffer.Move{Unit: buffer.MoveGrapheme, Dir: buffer.DirRight})
	case key.Matches(msg, km.Up):
		return m.move(buffer.Move{Unit: buffer.MoveGrapheme, Dir: buffer.DirUp})
	case key.Matches(msg, km.Down):
		return m.move(buffer.Move{Unit: buffer.MoveGrapheme, Dir: buffer.DirDown})

	case key.Matches(msg, km.ShiftLeft):
		return m.move(buffer.Move{Unit: buffer.MoveGrapheme, Dir: buffer.DirLeft, Extend: true})
	case key.Matches(msg, km.ShiftRight):
		return m.move(buffer.Move{Unit: buffer.MoveGrapheme, Dir: buffer.DirRight, Extend: true})
	case key.Matches(msg, km.ShiftUp):
		return m.move(buffer.Move{Unit: buffer.MoveGrapheme, Dir: buffer.DirUp, Extend: true})
	case key.Matches(msg, km.ShiftDown):
		return m.move(buffer.Move{Unit: buffer.MoveGrapheme, Dir: buffer.DirDown, Extend: true})

	case key.Matches(msg, km.WordLeft):
		return m.move(buffer.Move{Unit: buffer.MoveWord, Dir: buffer.DirLeft})
	case key.Matches(msg, km.WordRight):
		return m.move(buffer.Move{Unit: buffer.MoveWord, Dir: buffer.DirRight})

	case key.Matches(msg, km.Home):
		return m.move(buffer.Move{Unit: buffer.MoveLine, Dir: buffer.DirHome})
	case key.Matches(msg, km.End):
		return m.move(buffer.Move{Unit: buffer.MoveLine, Dir: buffer.DirEnd})

	case key.Matches(msg, km.Backspace):
		if m.cfg.ReadOnly {
			return m, nil
		}
		return m.mutate(func(b *buffer.Buffer) { b.DeleteBackward() })
	case key.Matches(msg, km.Delete):
		if m.cfg.ReadOnly {
			return m, nil
		}
		return m.mutate(func(b *buffer.Buffer) { b.DeleteForward() })
	case key.Matches(msg, km.Enter):
		if m.cfg.ReadOnly {
			return m, nil
		}
		return m.mutate(func(b *buffer.Buffer) { b.InsertNewline() })

	case key.Matches(msg, km.Undo):
		if m.cfg.ReadOnly {
			return m, nil
		}
		return m.historyStep(func(b *buffer.Buffer) bool { return b.Undo() })
	case key.Matches(msg, km.Redo):
		if m.cfg.ReadOnly {
			return m, nil
		}
		return m.historyStep(func(b *buffer.Buffer) bool { return b.Redo() })
	}

	if msg.Type == tea.KeyTab {
		if m.cfg.ReadOnly {
			return m, nil
		}
		return m.mutate(func(b *buffer.Buffer) { b.InsertRune('\t') })
	}

	if msg.Type == tea.KeyRunes && len(msg.Runes) > 0 && !msg.Alt {
		if m.cfg.ReadOnly {
			return m, nil
		}
		return m.mutate(func(b *buffer.Buffer) { b.InsertText(string(msg.Runes)) })
	}

	return m, nil
}

// updateCompletionKey handles bindings owned by the completion session.
// It reports whether the key was consumed.
func (m Model) updateCompletionKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	ck := m.cfg.CompletionKeys

	if m.session.IsOpen() {
		menu := m.session.Menu()
		page := m.menuPageSize()
		switch {
		case key.Matches(msg, ck.Next):
			menu.Next()
			m.rebuildContent()
			return m, nil, true
		case key.Matches(msg, ck.Prev):
			menu.Prev()
			m.rebuildContent()
			return m, nil, true
		case key.Matches(msg, ck.PageNext):
			menu.PageNext(page)
			m.rebuildContent()
			return m, nil, true
		case key.Matches(msg, ck.PagePrev):
			menu.PagePrev(page)
			m.rebuildContent()
			return m, nil, true
		case key.Matches(msg, ck.Accept):
			if m.cfg.ReadOnly {
				return m, nil, true
			}
			if m.session.AcceptSelected() {
				cmd := m.afterProgramEdit()
				return m, cmd, true
			}
			return m, nil, true
		case key.Matches(msg, ck.Dismiss):
			m.session.Dismiss()
			m.rebuildContent()
			return m, nil, true
		}
	}

	if key.Matches(msg, ck.Trigger) {
		return m, m.session.TriggerManually(), true
	}

	if key.Matches(msg, ck.AcceptInline) && !m.cfg.ReadOnly {
		if _, ok := m.session.InlineSuggestion(); ok {
			if m.session.AcceptInline() {
				cmd := m.afterProgramEdit()
				return m, cmd, true
			}
		}
	}

	return m, nil, false
}

func (m Model) move(mv buffer.Move) (Model, tea.Cmd) {
	before := m.sur.buf.Cursor()
	m.sur.buf.Move(mv)
	if m.session != nil && m.sur.buf.Cursor() != before {
		m.session.HandleCursorMove()
	}
	if m.syncFromBuffer() {
		m.followCursor()
	}
	return m, nil
}

// mutate runs a buffer mutation and routes the resulting change into the
// completion session and the host change hook.
func (m Model) mutate(fn func(b *buffer.Buffer)) (Model, tea.Cmd) {
	before := m.sur.buf.Version()
	fn(m.sur.buf)
	if m.sur.buf.Version() == before {
		return m, nil
	}

	var cmd tea.Cmd
	if m.session != nil {
		if edit, ok := m.lastChangeEdit(); ok {
			cmd = m.session.HandleEdit(edit)
		}
	}
	m.emitChange()
	if m.syncFromBuffer() {
		m.followCursor()
	}
	return m, cmd
}

// historyStep runs undo or redo. History jumps can move text and cursor
// arbitrarily, so the session is dismissed rather than fed an edit.
func (m Model) historyStep(fn func(b *buffer.Buffer) bool) (Model, tea.Cmd) {
	if !fn(m.sur.buf) {
		return m, nil
	}
	if m.session != nil {
		m.session.Dismiss()
		m.session.HandleCursorMove()
	}
	m.emitChange()
	if m.syncFromBuffer() {
		m.followCursor()
	}
	return m, nil
}

// afterProgramEdit refreshes state after the session mutated the buffer
// on our behalf (menu or inline acceptance).
func (m *Model) afterProgramEdit() tea.Cmd {
	m.emitChange()
	if m.syncFromBuffer() {
		m.followCursor()
	}
	return nil
}

// lastChangeEdit converts the buffer's last recorded change into the byte
// edit shape the session consumes. The edit's start offset is shared by
// the pre- and post-edit documents, so it can be computed against the
// current text.
func (m Model) lastChangeEdit() (edit completion.Edit, ok bool) {
	change, has := m.sur.buf.LastChange()
	if !has || change.Source != buffer.ChangeSourceLocal || len(change.AppliedEdits) == 0 {
		return completion.Edit{}, false
	}
	applied := change.AppliedEdits[len(change.AppliedEdits)-1]

	start, okStart := m.sur.buf.ByteOffsetFromPos(applied.RangeAfter.Start, buffer.ConvertPolicy{ClampMode: buffer.OffsetClamp})
	if !okStart {
		return completion.Edit{}, false
	}
	return completion.Edit{
		Start: start,
		End:   start + buffer.ByteOffset(len(applied.DeletedText)),
		Text:  applied.InsertText,
	}, true
}

func (m Model) menuPageSize() int {
	h := m.viewport.Height - m.viewport.Style.GetVerticalFrameSize()
	if h <= 1 {
		return 1
	}
	if h > 8 {
		return 8
	}
	return h - 1
}
