package lsp

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jellydator/ttlcache/v3"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"go.uber.org/zap"

	"github.com/iw2rmb/quill/buffer"
	"github.com/iw2rmb/quill/completion"
)

const (
	completionMethod = "textDocument/completion"
	resolveMethod    = "completionItem/resolve"

	defaultResolveTTL = 30 * time.Second
)

// Requester issues a JSON-RPC request and returns the raw result payload.
// Transport concerns (stdio, socket, in-process) live behind it.
type Requester interface {
	Request(ctx context.Context, method string, params any) (json.RawMessage, error)
}

// Config configures a Provider.
type Config struct {
	// URI identifies the document in requests sent to the server.
	URI string

	// TriggerCharacters supplements identifier runes as session triggers.
	// Typically taken from the server's registered completion options.
	TriggerCharacters []string

	// Debounce overrides the inline quiet period when positive.
	Debounce time.Duration

	// ResolveTTL bounds how long resolved items are reused. Zero means
	// defaultResolveTTL.
	ResolveTTL time.Duration

	Logger *zap.Logger
}

// Provider fetches completions from a language server.
type Provider struct {
	completion.ProviderDefaults

	req Requester
	cfg Config
	log *zap.Logger

	resolved *ttlcache.Cache[string, completion.Item]
}

func NewProvider(req Requester, cfg Config) *Provider {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	ttl := cfg.ResolveTTL
	if ttl <= 0 {
		ttl = defaultResolveTTL
	}
	cache := ttlcache.New[string, completion.Item](
		ttlcache.WithTTL[string, completion.Item](ttl),
	)
	go cache.Start()
	return &Provider{
		req:      req,
		cfg:      cfg,
		log:      cfg.Logger,
		resolved: cache,
	}
}

// Close stops the resolve cache janitor.
func (p *Provider) Close() {
	p.resolved.Stop()
}

func (p *Provider) Completions(ctx context.Context, snap buffer.Snapshot, offset buffer.ByteOffset, rc completion.RequestContext) ([]completion.Item, error) {
	pos, err := positionFromByte(snap, offset)
	if err != nil {
		return nil, err
	}

	params := protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentUri(p.cfg.URI)},
			Position:     pos,
		},
		Context: completionContext(rc),
	}

	raw, err := p.req.Request(ctx, completionMethod, params)
	if err != nil {
		return nil, errors.Wrap(err, "completion request")
	}

	wire, err := decodeCompletionResult(raw)
	if err != nil {
		return nil, errors.Wrap(err, "decode completion result")
	}

	items := make([]completion.Item, 0, len(wire))
	for _, wi := range wire {
		item, err := toItem(wi, snap)
		if err != nil {
			// One malformed item does not poison the response.
			p.log.Warn("dropping malformed completion item",
				zap.String("label", wi.Label),
				zap.Error(err))
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// IsTrigger accepts identifier runes and server-declared trigger
// characters.
func (p *Provider) IsTrigger(_ buffer.Snapshot, _ buffer.ByteOffset, inserted string) bool {
	if inserted == "" {
		return false
	}
	for _, tc := range p.cfg.TriggerCharacters {
		if inserted == tc {
			return true
		}
	}
	for _, r := range inserted {
		if !isIdentRune(r) {
			return false
		}
	}
	return true
}

func (p *Provider) InlineDebounce() time.Duration {
	if p.cfg.Debounce > 0 {
		return p.cfg.Debounce
	}
	return completion.DefaultInlineDebounce
}

// ResolveItems enriches items via completionItem/resolve, reusing recent
// resolutions. A failed resolve keeps the unresolved item.
func (p *Provider) ResolveItems(ctx context.Context, items []completion.Item) ([]completion.Item, error) {
	out := make([]completion.Item, len(items))
	for i, item := range items {
		if entry := p.resolved.Get(item.Label); entry != nil {
			out[i] = entry.Value()
			continue
		}
		resolved, err := p.resolveItem(ctx, item)
		if err != nil {
			p.log.Debug("completion item resolve failed",
				zap.String("label", item.Label),
				zap.Error(err))
			out[i] = item
			continue
		}
		p.resolved.Set(resolved.Label, resolved, ttlcache.DefaultTTL)
		out[i] = resolved
	}
	return out, nil
}

func (p *Provider) resolveItem(ctx context.Context, item completion.Item) (completion.Item, error) {
	raw, err := p.req.Request(ctx, resolveMethod, fromItem(item))
	if err != nil {
		return completion.Item{}, errors.Wrap(err, "resolve request")
	}
	var wi protocol.CompletionItem
	if err := json.Unmarshal(raw, &wi); err != nil {
		return completion.Item{}, errors.Wrap(err, "decode resolved item")
	}
	// Resolution happens between fetch and display; the document has not
	// changed, so the fetch-time coordinates still apply and the resolved
	// payload only contributes documentation and text.
	resolved := item
	if doc, err := decodeDocumentation(wi.Documentation); err == nil && doc != nil {
		resolved.Documentation = doc
	}
	if wi.InsertText != nil && *wi.InsertText != "" {
		resolved.InsertText = *wi.InsertText
	}
	return resolved, nil
}

// decodeCompletionResult accepts the two wire shapes the protocol allows:
// a bare item array or a CompletionList.
func decodeCompletionResult(raw json.RawMessage) ([]protocol.CompletionItem, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if raw[0] == '[' {
		var items []protocol.CompletionItem
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, errors.Wrap(err, "item array payload")
		}
		return items, nil
	}
	var list protocol.CompletionList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, errors.Wrap(err, "completion list payload")
	}
	return list.Items, nil
}

func completionContext(rc completion.RequestContext) *protocol.CompletionContext {
	if rc.TriggerCharacter == "" {
		return &protocol.CompletionContext{
			TriggerKind: protocol.CompletionTriggerKindInvoked,
		}
	}
	tc := rc.TriggerCharacter
	return &protocol.CompletionContext{
		TriggerKind:      protocol.CompletionTriggerKindTriggerCharacter,
		TriggerCharacter: &tc,
	}
}

func isIdentRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		return true
	default:
		return r > 127
	}
}
