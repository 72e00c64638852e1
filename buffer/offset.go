package buffer

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// ByteOffset addresses a position in the document's UTF-8 byte stream.
// It is the offset space used by everything inside this module.
type ByteOffset int

// UTF16Offset addresses a position in UTF-16 code units. It is the offset
// space of protocol payloads and must never be mixed with ByteOffset
// without an explicit conversion on a Snapshot.
type UTF16Offset int

// Snapshot is an immutable view of the document text at a version.
// Asynchronous consumers (completion providers) hold a Snapshot across
// suspension points instead of reading the live buffer.
type Snapshot struct {
	text    string
	version uint64
}

// Snapshot captures the current text and version.
func (b *Buffer) Snapshot() Snapshot {
	return Snapshot{text: b.Text(), version: b.version}
}

// SnapshotOf builds a snapshot from raw text, for tests and providers that
// operate without a live buffer.
func SnapshotOf(text string) Snapshot {
	return Snapshot{text: text}
}

func (s Snapshot) Text() string { return s.text }

func (s Snapshot) Version() uint64 { return s.version }

func (s Snapshot) ByteLen() ByteOffset { return ByteOffset(len(s.text)) }

// Slice returns the text in [start, end), clamped to document bounds.
func (s Snapshot) Slice(start, end ByteOffset) string {
	start = clampByteOffset(start, ByteOffset(len(s.text)))
	end = clampByteOffset(end, ByteOffset(len(s.text)))
	if end <= start {
		return ""
	}
	return s.text[start:end]
}

// RuneBefore decodes the rune ending at off and returns it with its start
// offset. It fails at document start or when off is not a rune boundary.
func (s Snapshot) RuneBefore(off ByteOffset) (rune, ByteOffset, bool) {
	if off <= 0 || off > ByteOffset(len(s.text)) {
		return 0, 0, false
	}
	r, size := utf8.DecodeLastRuneInString(s.text[:off])
	if r == utf8.RuneError && size <= 1 {
		return 0, 0, false
	}
	return r, off - ByteOffset(size), true
}

// RuneAt decodes the rune starting at off and returns it with its end
// offset. It fails at document end or when off is not a rune boundary.
func (s Snapshot) RuneAt(off ByteOffset) (rune, ByteOffset, bool) {
	if off < 0 || off >= ByteOffset(len(s.text)) {
		return 0, 0, false
	}
	r, size := utf8.DecodeRuneInString(s.text[off:])
	if r == utf8.RuneError && size <= 1 {
		return 0, 0, false
	}
	return r, off + ByteOffset(size), true
}

// UTF16FromByte converts a byte offset into UTF-16 code units.
func (s Snapshot) UTF16FromByte(off ByteOffset) (UTF16Offset, bool) {
	if off < 0 || off > ByteOffset(len(s.text)) {
		return 0, false
	}
	if !utf8.RuneStart(byteAtOrZero(s.text, off)) && off < ByteOffset(len(s.text)) {
		return 0, false
	}
	units := 0
	for _, r := range s.text[:off] {
		units += utf16.RuneLen(r)
	}
	return UTF16Offset(units), true
}

// ByteFromUTF16 converts a UTF-16 offset into byte space. Offsets that
// land inside a surrogate pair fail.
func (s Snapshot) ByteFromUTF16(off UTF16Offset) (ByteOffset, bool) {
	if off < 0 {
		return 0, false
	}
	units := UTF16Offset(0)
	for i, r := range s.text {
		if units == off {
			return ByteOffset(i), true
		}
		units += UTF16Offset(utf16.RuneLen(r))
		if units > off {
			return 0, false
		}
	}
	if units == off {
		return ByteOffset(len(s.text)), true
	}
	return 0, false
}

// PositionFromByte maps a byte offset to a 0-based line number and a
// UTF-16 column within that line. This is the protocol-facing coordinate
// shape.
func (s Snapshot) PositionFromByte(off ByteOffset) (line int, col UTF16Offset, ok bool) {
	if off < 0 || off > ByteOffset(len(s.text)) {
		return 0, 0, false
	}
	before := s.text[:off]
	line = strings.Count(before, "\n")
	lineStart := 0
	if i := strings.LastIndexByte(before, '\n'); i >= 0 {
		lineStart = i + 1
	}
	for _, r := range before[lineStart:] {
		col += UTF16Offset(utf16.RuneLen(r))
	}
	return line, col, true
}

// ByteFromPosition maps a 0-based line and UTF-16 column back to byte
// space. Columns past the end of the line clamp to the line end.
func (s Snapshot) ByteFromPosition(line int, col UTF16Offset) (ByteOffset, bool) {
	if line < 0 || col < 0 {
		return 0, false
	}
	lineStart := 0
	for n := 0; n < line; n++ {
		i := strings.IndexByte(s.text[lineStart:], '\n')
		if i < 0 {
			return 0, false
		}
		lineStart += i + 1
	}
	lineEnd := len(s.text)
	if i := strings.IndexByte(s.text[lineStart:], '\n'); i >= 0 {
		lineEnd = lineStart + i
	}

	units := UTF16Offset(0)
	for i, r := range s.text[lineStart:lineEnd] {
		if units >= col {
			return ByteOffset(lineStart + i), true
		}
		units += UTF16Offset(utf16.RuneLen(r))
	}
	return ByteOffset(lineEnd), true
}

func clampByteOffset(off, max ByteOffset) ByteOffset {
	if off < 0 {
		return 0
	}
	if off > max {
		return max
	}
	return off
}

func byteAtOrZero(s string, off ByteOffset) byte {
	if off < 0 || off >= ByteOffset(len(s)) {
		return 0
	}
	return s[off]
}
