package buffer

// Apply applies a sequence of text edits in order. Each edit's range is
// interpreted against the buffer state at the time that edit is applied.
//
// - Edit ranges are clamped into current document bounds.
// - Empty range + non-empty text inserts.
// - Cursor moves to the end of the last applied (effective) edit.
// - Selection is cleared if any edit applies.
func (b *Buffer) Apply(edits ...TextEdit) {
	b.applyEdits(ChangeSourceLocal, edits...)
}

// ApplyProgram behaves like Apply but records the change with
// ChangeSourceProgram, so hosts can tell programmatic replacements (for
// example completion acceptance) apart from typing.
func (b *Buffer) ApplyProgram(edits ...TextEdit) {
	b.applyEdits(ChangeSourceProgram, edits...)
}

func (b *Buffer) applyEdits(source ChangeSource, edits ...TextEdit) {
	if len(edits) == 0 {
		return
	}

	prev := b.snapshot()
	change := b.beginChange(source)

	anyChanged := false
	lastCursor := b.cursor

	for _, e := range edits {
		nextCursor, applied, changed := b.replaceRange(e.Range, e.Text)
		if !changed {
			continue
		}
		anyChanged = true
		lastCursor = nextCursor
		change.addAppliedEdit(applied)
	}

	if !anyChanged {
		return
	}

	b.cursor = b.clampPos(lastCursor)
	b.sel = selectionState{}
	b.version++
	b.recordUndo(prev)
	b.commitChange(change)
}

// ReplaceByteRange replaces the byte span [start, end) with text, recorded
// as a programmatic change. It reports whether the buffer changed. Offsets
// that do not land on grapheme boundaries are rejected.
func (b *Buffer) ReplaceByteRange(start, end ByteOffset, text string) bool {
	policy := ConvertPolicy{ClampMode: OffsetClamp}
	startPos, ok := b.PosFromByteOffset(start, policy)
	if !ok {
		return false
	}
	endPos, ok := b.PosFromByteOffset(end, policy)
	if !ok {
		return false
	}

	before := b.version
	b.ApplyProgram(TextEdit{Range: Range{Start: startPos, End: endPos}, Text: text})
	return b.version != before
}
