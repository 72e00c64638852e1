package lsp

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/iw2rmb/quill/buffer"
	"github.com/iw2rmb/quill/completion"
)

// toItem converts one wire item into engine space. Edit ranges are mapped
// from line/character pairs to document-wide UTF-16 offsets against the
// snapshot the request was issued for.
func toItem(wi protocol.CompletionItem, snap buffer.Snapshot) (completion.Item, error) {
	if wi.Label == "" {
		return completion.Item{}, errors.New("item has no label")
	}

	item := completion.Item{
		Label: wi.Label,
		Kind:  toKind(wi.Kind),
	}
	if wi.InsertText != nil {
		item.InsertText = *wi.InsertText
	}

	doc, err := decodeDocumentation(wi.Documentation)
	if err != nil {
		return completion.Item{}, err
	}
	item.Documentation = doc

	edit, err := decodeEdit(wi.TextEdit, snap)
	if err != nil {
		return completion.Item{}, err
	}
	item.Edit = edit

	return item, nil
}

// fromItem builds the wire payload sent back for completionItem/resolve.
func fromItem(item completion.Item) protocol.CompletionItem {
	wi := protocol.CompletionItem{Label: item.Label}
	if item.InsertText != "" {
		text := item.InsertText
		wi.InsertText = &text
	}
	if k := fromKind(item.Kind); k != nil {
		wi.Kind = k
	}
	return wi
}

func toKind(k *protocol.CompletionItemKind) completion.ItemKind {
	if k == nil {
		return completion.KindUnspecified
	}
	switch *k {
	case protocol.CompletionItemKindText:
		return completion.KindText
	case protocol.CompletionItemKindKeyword:
		return completion.KindKeyword
	case protocol.CompletionItemKindFunction,
		protocol.CompletionItemKindMethod,
		protocol.CompletionItemKindConstructor:
		return completion.KindFunction
	case protocol.CompletionItemKindVariable,
		protocol.CompletionItemKindConstant:
		return completion.KindVariable
	case protocol.CompletionItemKindField,
		protocol.CompletionItemKindProperty:
		return completion.KindField
	case protocol.CompletionItemKindModule,
		protocol.CompletionItemKindClass,
		protocol.CompletionItemKindInterface,
		protocol.CompletionItemKindStruct:
		return completion.KindModule
	case protocol.CompletionItemKindSnippet:
		return completion.KindSnippet
	default:
		return completion.KindUnspecified
	}
}

func fromKind(k completion.ItemKind) *protocol.CompletionItemKind {
	var out protocol.CompletionItemKind
	switch k {
	case completion.KindText:
		out = protocol.CompletionItemKindText
	case completion.KindKeyword:
		out = protocol.CompletionItemKindKeyword
	case completion.KindFunction:
		out = protocol.CompletionItemKindFunction
	case completion.KindVariable:
		out = protocol.CompletionItemKindVariable
	case completion.KindField:
		out = protocol.CompletionItemKindField
	case completion.KindModule:
		out = protocol.CompletionItemKindModule
	case completion.KindSnippet:
		out = protocol.CompletionItemKindSnippet
	default:
		return nil
	}
	return &out
}

// decodeDocumentation handles the union the protocol allows: a bare
// string, a MarkupContent, or their decoded map form.
func decodeDocumentation(raw any) (*completion.Documentation, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return &completion.Documentation{Format: completion.DocPlainText, Value: v}, nil
	case protocol.MarkupContent:
		return markupDocumentation(v)
	case *protocol.MarkupContent:
		if v == nil {
			return nil, nil
		}
		return markupDocumentation(*v)
	case map[string]any:
		var mc protocol.MarkupContent
		if err := remarshal(v, &mc); err != nil {
			return nil, errors.Wrap(err, "documentation payload")
		}
		return markupDocumentation(mc)
	default:
		return nil, errors.Newf("unsupported documentation type %T", raw)
	}
}

func markupDocumentation(mc protocol.MarkupContent) (*completion.Documentation, error) {
	doc := &completion.Documentation{Value: mc.Value}
	switch mc.Kind {
	case protocol.MarkupKindPlainText:
		doc.Format = completion.DocPlainText
	case protocol.MarkupKindMarkdown:
		doc.Format = completion.DocMarkup
	default:
		return nil, errors.Newf("unknown markup kind %q", mc.Kind)
	}
	return doc, nil
}

// decodeEdit handles the TextEdit union: a plain edit, an
// insert-and-replace edit (whose replace range wins), or their decoded map
// forms.
func decodeEdit(raw any, snap buffer.Snapshot) (*completion.ItemEdit, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case protocol.TextEdit:
		return rangeEdit(v.Range, v.NewText, snap)
	case *protocol.TextEdit:
		if v == nil {
			return nil, nil
		}
		return rangeEdit(v.Range, v.NewText, snap)
	case protocol.InsertReplaceEdit:
		return rangeEdit(v.Replace, v.NewText, snap)
	case *protocol.InsertReplaceEdit:
		if v == nil {
			return nil, nil
		}
		return rangeEdit(v.Replace, v.NewText, snap)
	case map[string]any:
		if _, ok := v["range"]; ok {
			var te protocol.TextEdit
			if err := remarshal(v, &te); err != nil {
				return nil, errors.Wrap(err, "text edit payload")
			}
			return rangeEdit(te.Range, te.NewText, snap)
		}
		if _, ok := v["replace"]; ok {
			var ire protocol.InsertReplaceEdit
			if err := remarshal(v, &ire); err != nil {
				return nil, errors.Wrap(err, "insert replace edit payload")
			}
			return rangeEdit(ire.Replace, ire.NewText, snap)
		}
		return nil, errors.New("edit payload has neither range nor replace")
	default:
		return nil, errors.Newf("unsupported edit type %T", raw)
	}
}

func rangeEdit(r protocol.Range, newText string, snap buffer.Snapshot) (*completion.ItemEdit, error) {
	start, err := utf16Offset(snap, r.Start)
	if err != nil {
		return nil, errors.Wrap(err, "edit start")
	}
	end, err := utf16Offset(snap, r.End)
	if err != nil {
		return nil, errors.Wrap(err, "edit end")
	}
	if end < start {
		return nil, errors.Newf("inverted edit range %d..%d", start, end)
	}
	return &completion.ItemEdit{Start: start, End: end, NewText: newText}, nil
}

// utf16Offset flattens a protocol position into a document-wide UTF-16
// offset.
func utf16Offset(snap buffer.Snapshot, pos protocol.Position) (buffer.UTF16Offset, error) {
	b, ok := snap.ByteFromPosition(int(pos.Line), buffer.UTF16Offset(pos.Character))
	if !ok {
		return 0, errors.Newf("position %d:%d outside document", pos.Line, pos.Character)
	}
	u, ok := snap.UTF16FromByte(b)
	if !ok {
		return 0, errors.Newf("position %d:%d not on a code point boundary", pos.Line, pos.Character)
	}
	return u, nil
}

// positionFromByte is the outbound direction: byte offset to protocol
// position.
func positionFromByte(snap buffer.Snapshot, off buffer.ByteOffset) (protocol.Position, error) {
	line, col, ok := snap.PositionFromByte(off)
	if !ok {
		return protocol.Position{}, errors.Newf("offset %d outside document", off)
	}
	return protocol.Position{
		Line:      protocol.UInteger(line),
		Character: protocol.UInteger(col),
	}, nil
}

func remarshal(in any, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
