package completion

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/iw2rmb/quill/buffer"
)

// inlineState is the per-editor ghost-text pipeline: a debounce timer
// rearmed on every qualifying edit and at most one stored suggestion.
type inlineState struct {
	// seq identifies the latest arm; fire messages from superseded arms
	// are dropped, which models a rearmed (not accumulated) timer.
	seq         uint64
	armedCursor buffer.ByteOffset
	pending     *InlineItem
}

func (in *inlineState) drop() { in.pending = nil }

type inlineFireMsg struct {
	owner       *Session
	seq         uint64
	armedCursor buffer.ByteOffset
}

type inlineResultMsg struct {
	owner       *Session
	armedCursor buffer.ByteOffset
	item        *InlineItem
}

// scheduleInline clears any stored suggestion and (re)arms the debounce
// timer for the provider's quiet period.
func (s *Session) scheduleInline() tea.Cmd {
	s.inline.drop()
	s.inline.seq++
	seq := s.inline.seq
	cursor := s.surface.CursorOffset()
	s.inline.armedCursor = cursor

	return s.cfg.Tick(s.provider.InlineDebounce(), func(time.Time) tea.Msg {
		return inlineFireMsg{owner: s, seq: seq, armedCursor: cursor}
	})
}

// handleInlineFire runs when the debounce timer elapses: verify the
// cursor is where it was at arming and the menu is closed, then issue the
// fetch. Otherwise abandon silently with no retry.
func (s *Session) handleInlineFire(m inlineFireMsg) tea.Cmd {
	if m.seq != s.inline.seq {
		return nil // a later edit rearmed the timer
	}
	if s.open || s.surface.CursorOffset() != m.armedCursor {
		return nil
	}

	snap := s.surface.Snapshot()
	rc := RequestContext{Offset: m.armedCursor}
	return func() tea.Msg {
		item, err := s.provider.InlineCompletion(context.Background(), snap, m.armedCursor, rc)
		if err != nil {
			s.log.Debug("inline completion fetch failed", zap.Error(err))
			item = nil
		}
		return inlineResultMsg{owner: s, armedCursor: m.armedCursor, item: item}
	}
}

// handleInlineResult re-validates the same preconditions after the fetch
// resolves ("check, await, check again") before storing the suggestion.
func (s *Session) handleInlineResult(m inlineResultMsg) {
	if s.open || s.surface.CursorOffset() != m.armedCursor {
		s.log.Debug("discarding stale inline suggestion")
		return
	}
	if m.item == nil || m.item.InsertText == "" {
		return
	}

	item := *m.item
	item.InsertText = firstLine(item.InsertText)
	if item.InsertText == "" {
		return
	}
	s.inline.pending = &item
}

// InlineSuggestion returns the stored ghost suggestion, if any.
func (s *Session) InlineSuggestion() (InlineItem, bool) {
	if s.inline.pending == nil {
		return InlineItem{}, false
	}
	return *s.inline.pending, true
}

// AcceptInline consumes the stored suggestion and inserts its text at the
// current cursor. It reports whether a suggestion existed; with none
// stored it is a no-op returning false.
func (s *Session) AcceptInline() bool {
	item := s.inline.pending
	if item == nil {
		return false
	}
	s.inline.drop()

	cursor := s.surface.CursorOffset()
	start, end := cursor, cursor
	if item.Edit != nil {
		snap := s.surface.Snapshot()
		bs, okS := snap.ByteFromUTF16(item.Edit.Start)
		be, okE := snap.ByteFromUTF16(item.Edit.End)
		if okS && okE {
			start, end = bs, be
		}
	}

	s.withInsertionGuard(func() {
		s.surface.ReplaceRange(start, end, item.InsertText)
	})
	return true
}

func firstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return s[:i]
	}
	return s
}
