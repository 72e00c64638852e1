package completion

import (
	"context"
	"time"
	"unicode"

	"github.com/iw2rmb/quill/buffer"
)

// WordProvider is the reference offline provider: it completes identifiers
// from a fixed word list using the package matcher. Other providers should
// emulate its ranking contract.
type WordProvider struct {
	Words []string
	// Debounce overrides the inline quiet period when positive.
	Debounce time.Duration
}

func (p *WordProvider) Completions(_ context.Context, snap buffer.Snapshot, offset buffer.ByteOffset, _ RequestContext) ([]Item, error) {
	prefix := wordPrefix(snap, offset)
	matches := Rank(prefix, p.Words)
	items := make([]Item, 0, len(matches))
	for _, m := range matches {
		items = append(items, Item{Label: m.Text, Kind: KindText, InsertText: m.Text})
	}
	return items, nil
}

func (p *WordProvider) InlineCompletion(_ context.Context, snap buffer.Snapshot, offset buffer.ByteOffset, _ RequestContext) (*InlineItem, error) {
	prefix := wordPrefix(snap, offset)
	rest, ok := InlineCandidate(prefix, p.Words)
	if !ok {
		return nil, nil
	}
	return &InlineItem{InsertText: rest, FilterText: prefix}, nil
}

// IsTrigger fires on identifier characters only; punctuation and
// whitespace leave the session untouched.
func (p *WordProvider) IsTrigger(_ buffer.Snapshot, _ buffer.ByteOffset, inserted string) bool {
	if inserted == "" {
		return false
	}
	for _, r := range inserted {
		if !isIdentRune(r) {
			return false
		}
	}
	return true
}

func (p *WordProvider) InlineDebounce() time.Duration {
	if p.Debounce > 0 {
		return p.Debounce
	}
	return DefaultInlineDebounce
}

// wordPrefix scans back from the offset over identifier runes and returns
// the in-progress word.
func wordPrefix(snap buffer.Snapshot, off buffer.ByteOffset) string {
	start := scanWordStart(snap, off, isIdentRune)
	return snap.Slice(start, off)
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
