package editor

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/quill/buffer"
	"github.com/iw2rmb/quill/completion"
)

// Model is a Bubble Tea component that renders and interacts with a
// buffer, with an attached completion session.
//
// The model itself has value semantics; the buffer, the completion
// session, and the focus flag live behind a shared surface so that
// asynchronous completion results reach the current state regardless of
// how many times the model has been copied.
type Model struct {
	cfg Config
	sur *surface

	session *completion.Session

	viewport viewport.Model

	lastBufVersion uint64
	lastCursor     buffer.Pos
}

// surface is the live editor state the completion session operates on.
type surface struct {
	buf     *buffer.Buffer
	focused bool
}

func (s *surface) Snapshot() buffer.Snapshot       { return s.buf.Snapshot() }
func (s *surface) CursorOffset() buffer.ByteOffset { return s.buf.CursorByteOffset() }
func (s *surface) Focused() bool                   { return s.focused }
func (s *surface) Focus()                          { s.focused = true }

func (s *surface) ReplaceRange(start, end buffer.ByteOffset, text string) bool {
	return s.buf.ReplaceByteRange(start, end, text)
}

func New(cfg Config) Model {
	cfg = normalizeConfig(cfg)
	sur := &surface{
		buf:     buffer.New(cfg.Text, buffer.Options{HistoryLimit: cfg.HistoryLimit}),
		focused: true,
	}
	m := Model{
		cfg:      cfg,
		sur:      sur,
		viewport: viewport.New(0, 0),
	}
	if cfg.Provider != nil {
		m.session = completion.NewSession(cfg.Provider, sur, completion.SessionConfig{
			WordRune: cfg.WordRune,
			Tick:     cfg.Tick,
			Logger:   cfg.Logger,
		})
	}
	m.lastBufVersion = sur.buf.Version()
	m.lastCursor = sur.buf.Cursor()
	m.rebuildContent()
	return m
}

func (m Model) Buffer() *buffer.Buffer { return m.sur.buf }

// Session exposes the completion session for hosts that render their own
// menu. It is nil when no provider is configured.
func (m Model) Session() *completion.Session { return m.session }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) SetSize(width, height int) Model {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	m.viewport.Width = width
	m.viewport.Height = height

	m.rebuildContent()
	m.followCursor()
	return m
}

func (m Model) Focus() Model {
	if !m.sur.focused {
		m.sur.focused = true
		m.rebuildContent()
		m.followCursor()
	}
	return m
}

func (m Model) Blur() Model {
	if m.sur.focused {
		m.sur.focused = false
		m.rebuildContent()
	}
	return m
}

func (m Model) Focused() bool { return m.sur.focused }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.SetSize(msg.Width, msg.Height), nil
	case tea.KeyMsg:
		return m.updateKey(msg)
	default:
		var cmds []tea.Cmd
		if m.session != nil {
			if cmd := m.session.Update(msg); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		if m.syncFromBuffer() {
			m.followCursor()
		}
		return m, tea.Batch(cmds...)
	}
}

func (m Model) View() string { return m.viewport.View() }

func (m *Model) syncFromBuffer() (cursorChanged bool) {
	ver := m.sur.buf.Version()
	cur := m.sur.buf.Cursor()
	if ver == m.lastBufVersion && cur == m.lastCursor {
		return false
	}
	cursorChanged = cur != m.lastCursor
	m.lastBufVersion = ver
	m.lastCursor = cur
	m.rebuildContent()
	return cursorChanged
}

func (m *Model) rebuildContent() {
	m.viewport.SetContent(m.renderContent())
}

func (m *Model) followCursor() {
	cur := m.sur.buf.Cursor()
	h := m.viewport.Height - m.viewport.Style.GetVerticalFrameSize()
	if h <= 0 {
		return
	}

	y := m.viewport.YOffset
	if cur.Row < y {
		m.viewport.SetYOffset(cur.Row)
		return
	}
	if cur.Row >= y+h {
		m.viewport.SetYOffset(cur.Row - h + 1)
	}
}
