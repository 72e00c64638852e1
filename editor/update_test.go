package editor

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/quill/buffer"
	"github.com/iw2rmb/quill/completion"
)

type stubProvider struct {
	mu sync.Mutex

	items  []completion.Item
	inline *completion.InlineItem

	fetches int
}

func (p *stubProvider) Completions(context.Context, buffer.Snapshot, buffer.ByteOffset, completion.RequestContext) ([]completion.Item, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fetches++
	return p.items, nil
}

func (p *stubProvider) InlineCompletion(context.Context, buffer.Snapshot, buffer.ByteOffset, completion.RequestContext) (*completion.InlineItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inline, nil
}

func (p *stubProvider) IsTrigger(_ buffer.Snapshot, _ buffer.ByteOffset, inserted string) bool {
	for _, r := range inserted {
		if r == ' ' || r == '\n' || r == '\t' {
			return false
		}
	}
	return inserted != ""
}

func (p *stubProvider) InlineDebounce() time.Duration { return completion.DefaultInlineDebounce }

type stubTicker struct {
	ticks []func(time.Time) tea.Msg
}

func (st *stubTicker) tick(_ time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
	st.ticks = append(st.ticks, fn)
	return nil
}

// step feeds a message through Update and runs all produced commands to
// completion.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	m, cmd := m.Update(msg)
	return runCmds(t, m, cmd)
}

func runCmds(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	msg := cmd()
	if msg == nil {
		return m
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			m = runCmds(t, m, c)
		}
		return m
	}
	return step(t, m, msg)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeString(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = step(t, m, keyRunes(string(r)))
	}
	return m
}

func newTestModel(p *stubProvider, st *stubTicker, text string) Model {
	return New(Config{
		Text:     text,
		Provider: p,
		Tick:     st.tick,
	})
}

func TestTypingOpensCompletion(t *testing.T) {
	p := &stubProvider{items: []completion.Item{{Label: "fanout", InsertText: "fanout"}}}
	m := newTestModel(p, &stubTicker{}, "")

	m = typeString(t, m, "fa")

	s := m.Session()
	if !s.IsOpen() {
		t.Fatalf("typing identifier runes must open the session")
	}
	if got, want := s.Query(), "fa"; got != want {
		t.Fatalf("query: got %q, want %q", got, want)
	}
	if p.fetches != 2 {
		t.Fatalf("fetches: got %d, want 2", p.fetches)
	}
}

func TestBackspaceAboveTriggerLeavesSessionUntouched(t *testing.T) {
	p := &stubProvider{items: []completion.Item{{Label: "fan"}}}
	m := newTestModel(p, &stubTicker{}, "")

	m = typeString(t, m, "fa")
	fetchesBefore := p.fetches
	m = step(t, m, tea.KeyMsg{Type: tea.KeyBackspace})

	s := m.Session()
	if !s.IsOpen() {
		t.Fatalf("deleting while still past the trigger start keeps the session open")
	}
	if p.fetches != fetchesBefore {
		t.Fatalf("a deletion is not a trigger and must not refetch: got %d", p.fetches)
	}

	// Deleting the remaining query character regresses the cursor to the
	// trigger start, which closes the session.
	m = step(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	if m.Session().IsOpen() {
		t.Fatalf("cursor at the trigger start must close the session")
	}
}

func TestMenuNavigationShadowsCursorKeys(t *testing.T) {
	p := &stubProvider{items: []completion.Item{
		{Label: "aa"}, {Label: "ab"}, {Label: "ac"},
	}}
	m := newTestModel(p, &stubTicker{}, "")
	m = typeString(t, m, "a")

	cursorBefore := m.Buffer().Cursor()
	m = step(t, m, tea.KeyMsg{Type: tea.KeyDown})

	if got := m.Session().Menu().Selected(); got != 1 {
		t.Fatalf("down must move the menu selection: got %d", got)
	}
	if m.Buffer().Cursor() != cursorBefore {
		t.Fatalf("down must not move the text cursor while the menu is open")
	}
}

func TestAcceptReplacesTriggerRange(t *testing.T) {
	p := &stubProvider{items: []completion.Item{{Label: "fanout", InsertText: "fanout"}}}
	m := newTestModel(p, &stubTicker{}, "")
	m = typeString(t, m, "fa")

	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if got, want := m.Buffer().Text(), "fanout"; got != want {
		t.Fatalf("text: got %q, want %q", got, want)
	}
	if m.Session().IsOpen() {
		t.Fatalf("session must close after acceptance")
	}
	fetchesAfterAccept := p.fetches
	if fetchesAfterAccept != 2 {
		t.Fatalf("the acceptance edit must not re-trigger: got %d fetches", fetchesAfterAccept)
	}
}

func TestEscapeDismisses(t *testing.T) {
	p := &stubProvider{items: []completion.Item{{Label: "ax"}}}
	m := newTestModel(p, &stubTicker{}, "")
	m = typeString(t, m, "a")

	m = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Session().IsOpen() {
		t.Fatalf("escape must dismiss the menu")
	}
	if got, want := m.Buffer().Text(), "a"; got != want {
		t.Fatalf("dismissal must not touch the text: got %q", got)
	}
}

func TestCursorMoveClosesSession(t *testing.T) {
	p := &stubProvider{items: []completion.Item{{Label: "ax"}}}
	m := newTestModel(p, &stubTicker{}, "")
	m = typeString(t, m, "a")

	m = step(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if m.Session().IsOpen() {
		t.Fatalf("moving before the trigger start must close the session")
	}
}

func TestManualTriggerBinding(t *testing.T) {
	p := &stubProvider{}
	m := newTestModel(p, &stubTicker{}, "wo")
	m.Buffer().SetCursor(buffer.Pos{Row: 0, GraphemeCol: 2})

	m = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlAt})

	s := m.Session()
	if !s.IsOpen() {
		t.Fatalf("manual trigger must open the session")
	}
	if !s.Menu().ShowingEmptyState() {
		t.Fatalf("manual trigger with no results shows the empty state")
	}
}

func TestTabAcceptsInlineSuggestion(t *testing.T) {
	p := &stubProvider{inline: &completion.InlineItem{InsertText: "tln"}}
	st := &stubTicker{}
	m := newTestModel(p, st, "pri")
	m.Buffer().SetCursor(buffer.Pos{Row: 0, GraphemeCol: 3})

	m = typeString(t, m, "n")
	if len(st.ticks) == 0 {
		t.Fatalf("typing must arm the inline debounce")
	}
	m = step(t, m, st.ticks[len(st.ticks)-1](time.Time{}))

	if _, ok := m.Session().InlineSuggestion(); !ok {
		t.Fatalf("precondition: suggestion stored")
	}

	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if got, want := m.Buffer().Text(), "println"; got != want {
		t.Fatalf("text: got %q, want %q", got, want)
	}
	if _, ok := m.Session().InlineSuggestion(); ok {
		t.Fatalf("acceptance must consume the suggestion")
	}
}

func TestTabInsertsTabWithoutSuggestion(t *testing.T) {
	p := &stubProvider{}
	m := newTestModel(p, &stubTicker{}, "")

	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if got, want := m.Buffer().Text(), "\t"; got != want {
		t.Fatalf("text: got %q, want %q", got, want)
	}
}

func TestReadOnlyBlocksEdits(t *testing.T) {
	m := New(Config{Text: "abc", ReadOnly: true})

	m = step(t, m, keyRunes("x"))
	m = step(t, m, tea.KeyMsg{Type: tea.KeyBackspace})

	if got, want := m.Buffer().Text(), "abc"; got != want {
		t.Fatalf("read-only buffer mutated: got %q", got)
	}
}

func TestUndoRedoKeys(t *testing.T) {
	m := New(Config{})
	m = typeString(t, m, "hi")

	m = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlZ})
	if got, want := m.Buffer().Text(), "h"; got != want {
		t.Fatalf("after undo: got %q, want %q", got, want)
	}
	m = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	if got, want := m.Buffer().Text(), "hi"; got != want {
		t.Fatalf("after redo: got %q, want %q", got, want)
	}
}

func TestOnChangeEmitsEvents(t *testing.T) {
	var events []ChangeEvent
	m := New(Config{OnChange: func(ev ChangeEvent) { events = append(events, ev) }})

	m = typeString(t, m, "ab")
	if len(events) != 2 {
		t.Fatalf("events: got %d, want 2", len(events))
	}
	last := events[len(events)-1]
	if last.Text != "ab" || last.Source != buffer.ChangeSourceLocal {
		t.Fatalf("event payload: got %+v", last)
	}
}

func TestPasteWithSpaceDoesNotTrigger(t *testing.T) {
	p := &stubProvider{items: []completion.Item{{Label: "x"}}}
	m := newTestModel(p, &stubTicker{}, "")

	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hello world"), Paste: true})

	if got, want := m.Buffer().Text(), "hello world"; got != want {
		t.Fatalf("paste text: got %q, want %q", got, want)
	}
	if m.Session().IsOpen() {
		t.Fatalf("a paste containing whitespace must not open the session")
	}
}
