package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/iw2rmb/quill/buffer"
	"github.com/iw2rmb/quill/completion"
)

func kindPtr(k protocol.CompletionItemKind) *protocol.CompletionItemKind { return &k }

func TestToItemKindMapping(t *testing.T) {
	snap := buffer.SnapshotOf("")
	cases := []struct {
		name string
		kind *protocol.CompletionItemKind
		want completion.ItemKind
	}{
		{name: "missing", kind: nil, want: completion.KindUnspecified},
		{name: "text", kind: kindPtr(protocol.CompletionItemKindText), want: completion.KindText},
		{name: "method folds to function", kind: kindPtr(protocol.CompletionItemKindMethod), want: completion.KindFunction},
		{name: "property folds to field", kind: kindPtr(protocol.CompletionItemKindProperty), want: completion.KindField},
		{name: "class folds to module", kind: kindPtr(protocol.CompletionItemKindClass), want: completion.KindModule},
		{name: "color is unmapped", kind: kindPtr(protocol.CompletionItemKindColor), want: completion.KindUnspecified},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item, err := toItem(protocol.CompletionItem{Label: "x", Kind: tc.kind}, snap)
			require.NoError(t, err)
			assert.Equal(t, tc.want, item.Kind)
		})
	}
}

func TestToItemRejectsEmptyLabel(t *testing.T) {
	_, err := toItem(protocol.CompletionItem{}, buffer.SnapshotOf(""))
	require.Error(t, err)
}

func TestDecodeDocumentation(t *testing.T) {
	doc, err := decodeDocumentation("plain help")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, completion.DocPlainText, doc.Format)
	assert.Equal(t, "plain help", doc.Value)

	doc, err = decodeDocumentation(protocol.MarkupContent{
		Kind:  protocol.MarkupKindMarkdown,
		Value: "# heading",
	})
	require.NoError(t, err)
	assert.Equal(t, completion.DocMarkup, doc.Format)

	doc, err = decodeDocumentation(map[string]any{
		"kind":  "plaintext",
		"value": "from wire",
	})
	require.NoError(t, err)
	assert.Equal(t, completion.DocPlainText, doc.Format)
	assert.Equal(t, "from wire", doc.Value)

	doc, err = decodeDocumentation(nil)
	require.NoError(t, err)
	assert.Nil(t, doc)

	_, err = decodeDocumentation(42)
	require.Error(t, err)
}

func TestDecodeEditPlain(t *testing.T) {
	snap := buffer.SnapshotOf("hello world")
	edit, err := decodeEdit(protocol.TextEdit{
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 6},
			End:   protocol.Position{Line: 0, Character: 11},
		},
		NewText: "moon",
	}, snap)
	require.NoError(t, err)
	require.NotNil(t, edit)
	assert.Equal(t, buffer.UTF16Offset(6), edit.Start)
	assert.Equal(t, buffer.UTF16Offset(11), edit.End)
	assert.Equal(t, "moon", edit.NewText)
}

func TestDecodeEditInsertReplaceUsesReplaceRange(t *testing.T) {
	snap := buffer.SnapshotOf("hello world")
	edit, err := decodeEdit(protocol.InsertReplaceEdit{
		NewText: "moon",
		Insert: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 6},
			End:   protocol.Position{Line: 0, Character: 6},
		},
		Replace: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 6},
			End:   protocol.Position{Line: 0, Character: 11},
		},
	}, snap)
	require.NoError(t, err)
	require.NotNil(t, edit)
	assert.Equal(t, buffer.UTF16Offset(6), edit.Start)
	assert.Equal(t, buffer.UTF16Offset(11), edit.End)
}

func TestDecodeEditMapForms(t *testing.T) {
	snap := buffer.SnapshotOf("ab")

	edit, err := decodeEdit(map[string]any{
		"newText": "x",
		"range": map[string]any{
			"start": map[string]any{"line": float64(0), "character": float64(0)},
			"end":   map[string]any{"line": float64(0), "character": float64(2)},
		},
	}, snap)
	require.NoError(t, err)
	assert.Equal(t, buffer.UTF16Offset(0), edit.Start)
	assert.Equal(t, buffer.UTF16Offset(2), edit.End)

	edit, err = decodeEdit(map[string]any{
		"newText": "x",
		"insert": map[string]any{
			"start": map[string]any{"line": float64(0), "character": float64(0)},
			"end":   map[string]any{"line": float64(0), "character": float64(0)},
		},
		"replace": map[string]any{
			"start": map[string]any{"line": float64(0), "character": float64(1)},
			"end":   map[string]any{"line": float64(0), "character": float64(2)},
		},
	}, snap)
	require.NoError(t, err)
	assert.Equal(t, buffer.UTF16Offset(1), edit.Start)

	_, err = decodeEdit(map[string]any{"newText": "x"}, snap)
	require.Error(t, err)
}

func TestDecodeEditMultilineDocument(t *testing.T) {
	// The flattened UTF-16 offset counts the surrogate pair on line 0.
	snap := buffer.SnapshotOf("a\U0001f30d\nbc")
	edit, err := decodeEdit(protocol.TextEdit{
		Range: protocol.Range{
			Start: protocol.Position{Line: 1, Character: 0},
			End:   protocol.Position{Line: 1, Character: 2},
		},
		NewText: "x",
	}, snap)
	require.NoError(t, err)
	assert.Equal(t, buffer.UTF16Offset(4), edit.Start)
	assert.Equal(t, buffer.UTF16Offset(6), edit.End)
}

func TestDecodeEditOutOfRange(t *testing.T) {
	snap := buffer.SnapshotOf("ab")
	_, err := decodeEdit(protocol.TextEdit{
		Range: protocol.Range{
			Start: protocol.Position{Line: 3, Character: 0},
			End:   protocol.Position{Line: 3, Character: 1},
		},
	}, snap)
	require.Error(t, err)
}

func TestPositionFromByte(t *testing.T) {
	snap := buffer.SnapshotOf("a\U0001f30d\nbc")

	pos, err := positionFromByte(snap, 6)
	require.NoError(t, err)
	assert.Equal(t, protocol.UInteger(1), pos.Line)
	assert.Equal(t, protocol.UInteger(0), pos.Character)

	pos, err = positionFromByte(snap, 5)
	require.NoError(t, err)
	assert.Equal(t, protocol.UInteger(0), pos.Line)
	assert.Equal(t, protocol.UInteger(3), pos.Character)

	_, err = positionFromByte(snap, 99)
	require.Error(t, err)
}
