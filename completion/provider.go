package completion

import (
	"context"
	"time"

	"github.com/iw2rmb/quill/buffer"
)

// DefaultInlineDebounce is the quiet period before an inline suggestion is
// fetched, unless the provider overrides it.
const DefaultInlineDebounce = 300 * time.Millisecond

// RequestContext describes why a fetch was issued.
type RequestContext struct {
	Offset buffer.ByteOffset
	// TriggerCharacter is the inserted text that opened or refreshed the
	// session; empty for manual invocation and inline fetches.
	TriggerCharacter string
}

// ItemKind mirrors the protocol's completion item kinds, reduced to the
// set this engine distinguishes.
type ItemKind uint8

const (
	KindUnspecified ItemKind = iota
	KindText
	KindKeyword
	KindFunction
	KindVariable
	KindField
	KindModule
	KindSnippet
)

// DocFormat identifies how Documentation.Value should be interpreted.
type DocFormat uint8

const (
	DocPlainText DocFormat = iota
	DocMarkup
)

type Documentation struct {
	Format DocFormat
	Value  string
}

// ItemEdit is a normalized replace span in protocol (UTF-16) space. Both
// the plain-replace and insert-and-replace wire shapes collapse into one
// replace range.
type ItemEdit struct {
	Start   buffer.UTF16Offset
	End     buffer.UTF16Offset
	NewText string
}

// Item is one completion menu entry.
type Item struct {
	Label         string
	Kind          ItemKind
	InsertText    string
	Edit          *ItemEdit
	Documentation *Documentation
}

// InsertedText returns the text acceptance inserts when no explicit edit
// is present.
func (it Item) InsertedText() string {
	if it.InsertText != "" {
		return it.InsertText
	}
	return it.Label
}

// InlineItem is a single proposed continuation shown at the cursor.
type InlineItem struct {
	InsertText string
	FilterText string
	Edit       *ItemEdit
}

// Provider is the authority queried for completions and inline
// suggestions. Implementations embed ProviderDefaults to pick up the
// default inline behavior.
type Provider interface {
	// Completions returns menu items for the cursor offset. Failures are
	// swallowed at the call site: an error behaves like an empty result.
	Completions(ctx context.Context, snap buffer.Snapshot, offset buffer.ByteOffset, rc RequestContext) ([]Item, error)

	// InlineCompletion returns at most one ghost suggestion, or nil.
	InlineCompletion(ctx context.Context, snap buffer.Snapshot, offset buffer.ByteOffset, rc RequestContext) (*InlineItem, error)

	// IsTrigger is called synchronously on every edit and must not block.
	IsTrigger(snap buffer.Snapshot, offset buffer.ByteOffset, inserted string) bool

	// InlineDebounce is the quiet period before an inline fetch.
	InlineDebounce() time.Duration
}

// ItemResolver lazily enriches fetched items (documentation, edit ranges)
// before they are shown. Providers implement it when enrichment requires a
// second round trip.
type ItemResolver interface {
	ResolveItems(ctx context.Context, items []Item) ([]Item, error)
}

// ProviderDefaults supplies the optional provider operations: no inline
// suggestions and the default debounce.
type ProviderDefaults struct{}

func (ProviderDefaults) InlineCompletion(context.Context, buffer.Snapshot, buffer.ByteOffset, RequestContext) (*InlineItem, error) {
	return nil, nil
}

func (ProviderDefaults) InlineDebounce() time.Duration { return DefaultInlineDebounce }
