package completion

import (
	"context"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/iw2rmb/quill/buffer"
)

// Edit describes one buffer mutation in pre-edit byte coordinates:
// [Start, End) was replaced with Text. Deletions carry Text == "".
type Edit struct {
	Start buffer.ByteOffset
	End   buffer.ByteOffset
	Text  string
}

// Surface is the editor-state collaborator the session reads and drives.
// All methods are called from the host's update loop.
type Surface interface {
	Snapshot() buffer.Snapshot
	CursorOffset() buffer.ByteOffset
	Focused() bool
	Focus()

	// ReplaceRange performs a text replacement in byte space. The session
	// wraps calls in its insertion guard, so the resulting change event
	// must be routed back through HandleEdit (where the guard drops it).
	ReplaceRange(start, end buffer.ByteOffset, text string) bool
}

// TickFunc schedules a delayed message. It matches tea.Tick so tests can
// substitute a deterministic implementation.
type TickFunc func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd

// SessionConfig tunes a Session. The zero value picks defaults.
type SessionConfig struct {
	// WordRune decides which runes the manual-trigger backward scan
	// treats as part of the query. Default: letters, digits, and ASCII
	// punctuation, which is deliberately broad; hosts narrow it for
	// textual domains where punctuation should end the query.
	WordRune func(r rune) bool

	Tick   TickFunc
	Logger *zap.Logger
}

func normalizeSessionConfig(cfg SessionConfig) SessionConfig {
	if cfg.WordRune == nil {
		cfg.WordRune = DefaultWordRune
	}
	if cfg.Tick == nil {
		cfg.Tick = tea.Tick
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return cfg
}

// DefaultWordRune treats alphanumerics and ASCII punctuation as query
// characters for the manual-trigger backward scan.
func DefaultWordRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	return r < utf8.RuneSelf && strings.ContainsRune("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", r)
}

// Session is the per-editor completion state machine. One Session belongs
// to exactly one editor instance and must only be used from its update
// loop.
type Session struct {
	provider Provider
	surface  Surface
	cfg      SessionConfig
	log      *zap.Logger

	open         bool
	triggerStart buffer.ByteOffset
	query        string
	menu         Menu

	// inserting guards against re-entry while acceptance replaces text.
	inserting bool

	inline inlineState
}

func NewSession(provider Provider, surface Surface, cfg SessionConfig) *Session {
	cfg = normalizeSessionConfig(cfg)
	return &Session{
		provider: provider,
		surface:  surface,
		cfg:      cfg,
		log:      cfg.Logger,
	}
}

func (s *Session) IsOpen() bool { return s.open }

func (s *Session) Query() string { return s.query }

// TriggerStart returns the recorded trigger offset while the session is
// open.
func (s *Session) TriggerStart() (buffer.ByteOffset, bool) {
	if !s.open {
		return 0, false
	}
	return s.triggerStart, true
}

func (s *Session) Menu() *Menu { return &s.menu }

// HandleEdit runs the trigger pipeline for one buffer mutation and
// returns commands for any scheduled background work.
func (s *Session) HandleEdit(e Edit) tea.Cmd {
	// Programmatic replacement in progress: ignore the echo.
	if s.inserting {
		return nil
	}

	// A literal space always dismisses, regardless of the current query.
	// The inline debounce below is still rearmed: a pause after the space
	// may produce a ghost suggestion.
	if e.Text == " " && s.open {
		s.log.Debug("session dismissed by space")
		s.close()
	}

	var cmds []tea.Cmd
	// Latest edit wins: rearm the inline debounce on every edit.
	cmds = append(cmds, s.scheduleInline())

	manual := e.Text == "" && e.Start == e.End

	if e.Text == "" && !s.open && !manual {
		return batchCmds(cmds)
	}

	snap := s.surface.Snapshot()
	cursor := s.surface.CursorOffset()

	if s.open && cursor <= s.triggerStart && !manual {
		s.log.Debug("session closed by cursor regression",
			zap.Int("cursor", int(cursor)), zap.Int("trigger_start", int(s.triggerStart)))
		s.close()
	}

	if !manual && !s.provider.IsTrigger(snap, cursor, e.Text) {
		return batchCmds(cmds)
	}

	wasOpen := s.open
	s.open = true

	var start buffer.ByteOffset
	switch {
	case wasOpen:
		start = s.triggerStart
	case manual:
		start = scanWordStart(snap, e.Start, s.cfg.WordRune)
	default:
		start = e.Start
	}
	s.triggerStart = start

	query := strings.TrimSpace(snap.Slice(start, cursor))
	if query == "" && !manual {
		s.close()
		return batchCmds(cmds)
	}
	s.query = query

	rc := RequestContext{Offset: cursor}
	if !manual && e.Text != "" {
		rc.TriggerCharacter = e.Text
	}
	cmds = append(cmds, s.fetchCmd(snap, cursor, rc, manual))
	return batchCmds(cmds)
}

// TriggerManually opens or refreshes the session at the cursor without a
// text change (explicit invocation, e.g. ctrl+space).
func (s *Session) TriggerManually() tea.Cmd {
	cursor := s.surface.CursorOffset()
	return s.HandleEdit(Edit{Start: cursor, End: cursor})
}

// HandleCursorMove reacts to cursor motion that is not an edit: it drops
// any stored inline suggestion and closes the session when the cursor
// regresses to or before the trigger offset.
func (s *Session) HandleCursorMove() {
	s.inline.drop()
	if s.open && s.surface.CursorOffset() <= s.triggerStart {
		s.close()
	}
}

// Dismiss closes the session (escape).
func (s *Session) Dismiss() {
	if !s.open {
		return
	}
	s.close()
}

// Update routes background results back into the session. Messages owned
// by other sessions are ignored, so hosts can forward every message.
func (s *Session) Update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case menuResultMsg:
		if m.owner != s {
			return nil
		}
		s.applyMenuResult(m)
		return nil
	case inlineFireMsg:
		if m.owner != s {
			return nil
		}
		return s.handleInlineFire(m)
	case inlineResultMsg:
		if m.owner != s {
			return nil
		}
		s.handleInlineResult(m)
		return nil
	default:
		return nil
	}
}

// AcceptSelected applies the selected menu item, closes the session, and
// returns input focus to the editor. It reports whether an item was
// accepted.
func (s *Session) AcceptSelected() bool {
	if !s.open {
		return false
	}
	item, ok := s.menu.SelectedItem()
	if !ok {
		return false
	}

	snap := s.surface.Snapshot()
	cursor := s.surface.CursorOffset()
	start, end, text := s.resolveAccept(snap, item, cursor)

	s.withInsertionGuard(func() {
		s.surface.ReplaceRange(start, end, text)
	})
	s.close()
	s.surface.Focus()
	return true
}

// resolveAccept picks the edit to apply, in priority order: the item's
// explicit protocol-space range, the trigger-to-cursor span, or a bare
// insertion at the cursor.
func (s *Session) resolveAccept(snap buffer.Snapshot, item Item, cursor buffer.ByteOffset) (start, end buffer.ByteOffset, text string) {
	if item.Edit != nil {
		bs, okS := snap.ByteFromUTF16(item.Edit.Start)
		be, okE := snap.ByteFromUTF16(item.Edit.End)
		if okS && okE {
			return bs, be, item.Edit.NewText
		}
		s.log.Debug("item edit range does not map into the document, falling back",
			zap.Int("utf16_start", int(item.Edit.Start)), zap.Int("utf16_end", int(item.Edit.End)))
	}
	if s.open {
		return s.triggerStart, cursor, item.InsertedText()
	}
	return cursor, cursor, item.InsertedText()
}

func (s *Session) withInsertionGuard(fn func()) {
	s.inserting = true
	defer func() { s.inserting = false }()
	fn()
}

func (s *Session) close() {
	s.open = false
	s.triggerStart = 0
	s.query = ""
	s.menu.clear()
}

func (s *Session) applyMenuResult(m menuResultMsg) {
	// The session closed while the fetch was in flight.
	if !s.open {
		return
	}
	// Results land only while the editor is focused, unless explicitly
	// requested.
	if !s.surface.Focused() && !m.manual {
		s.log.Debug("discarding completion result: editor not focused")
		return
	}

	if len(m.items) == 0 {
		if m.manual {
			s.menu.setItems(nil)
			return
		}
		s.close()
		return
	}
	s.menu.setItems(m.items)
}

// fetchCmd issues the provider request in the background. No generation
// counter: when several fetches are in flight, whichever resolves last
// wins.
func (s *Session) fetchCmd(snap buffer.Snapshot, offset buffer.ByteOffset, rc RequestContext, manual bool) tea.Cmd {
	return func() tea.Msg {
		items, err := s.provider.Completions(context.Background(), snap, offset, rc)
		if err != nil {
			s.log.Debug("completion fetch failed", zap.Error(err))
			items = nil
		}
		if resolver, ok := s.provider.(ItemResolver); ok && len(items) > 0 {
			resolved, rerr := resolver.ResolveItems(context.Background(), items)
			if rerr != nil {
				s.log.Debug("item resolution failed, using unresolved items", zap.Error(rerr))
			} else {
				items = resolved
			}
		}
		return menuResultMsg{owner: s, items: items, manual: manual}
	}
}

type menuResultMsg struct {
	owner  *Session
	items  []Item
	manual bool
}

// scanWordStart walks backward from an offset while the preceding rune
// satisfies isWord, returning the word-boundary offset.
func scanWordStart(snap buffer.Snapshot, from buffer.ByteOffset, isWord func(rune) bool) buffer.ByteOffset {
	off := from
	for {
		r, start, ok := snap.RuneBefore(off)
		if !ok || !isWord(r) {
			return off
		}
		off = start
	}
}

func batchCmds(cmds []tea.Cmd) tea.Cmd {
	out := cmds[:0]
	for _, c := range cmds {
		if c != nil {
			out = append(out, c)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	default:
		return tea.Batch(out...)
	}
}
