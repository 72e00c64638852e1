package buffer

type OffsetClampMode uint8

const (
	OffsetError OffsetClampMode = iota
	OffsetClamp
)

type ConvertPolicy struct {
	ClampMode OffsetClampMode
}

// PosFromByteOffset maps a byte offset into document coordinates. Offsets
// inside a grapheme cluster fail in either clamp mode.
func (b *Buffer) PosFromByteOffset(off ByteOffset, p ConvertPolicy) (Pos, bool) {
	off, ok := clampOffset(off, b.docByteLen(), p.ClampMode)
	if !ok {
		return Pos{}, false
	}
	return b.byteOffsetToPos(off)
}

func (b *Buffer) ByteOffsetFromPos(pos Pos, p ConvertPolicy) (ByteOffset, bool) {
	pos, ok := b.normalizePosForMode(pos, p.ClampMode)
	if !ok {
		return 0, false
	}
	return b.posToByteOffset(pos), true
}

// CursorByteOffset returns the cursor position in byte space.
func (b *Buffer) CursorByteOffset() ByteOffset {
	return b.posToByteOffset(b.cursor)
}

func clampOffset(off, max ByteOffset, mode OffsetClampMode) (ByteOffset, bool) {
	switch mode {
	case OffsetError:
		if off < 0 || off > max {
			return 0, false
		}
		return off, true
	case OffsetClamp:
		if off < 0 {
			return 0, true
		}
		if off > max {
			return max, true
		}
		return off, true
	default:
		return 0, false
	}
}

func (b *Buffer) normalizePosForMode(pos Pos, mode OffsetClampMode) (Pos, bool) {
	switch mode {
	case OffsetError:
		clamped := b.clampPos(pos)
		if clamped != pos {
			return Pos{}, false
		}
		return pos, true
	case OffsetClamp:
		return b.clampPos(pos), true
	default:
		return Pos{}, false
	}
}

func (b *Buffer) docByteLen() ByteOffset {
	total := 0
	for row, line := range b.lines {
		for _, cluster := range line {
			total += len(cluster)
		}
		if row < len(b.lines)-1 {
			total++
		}
	}
	return ByteOffset(total)
}

func (b *Buffer) byteOffsetToPos(off ByteOffset) (Pos, bool) {
	cur := ByteOffset(0)

	for row, line := range b.lines {
		col := 0
		if off == cur {
			return Pos{Row: row, GraphemeCol: col}, true
		}

		for _, cluster := range line {
			next := cur + ByteOffset(len(cluster))
			if off > cur && off < next {
				return Pos{}, false
			}
			cur = next
			col++
			if off == cur {
				return Pos{Row: row, GraphemeCol: col}, true
			}
		}

		if row < len(b.lines)-1 {
			cur++
			if off == cur {
				return Pos{Row: row + 1, GraphemeCol: 0}, true
			}
		}
	}

	return Pos{}, false
}

func (b *Buffer) posToByteOffset(pos Pos) ByteOffset {
	off := 0

	for row := 0; row < pos.Row; row++ {
		for _, cluster := range b.lines[row] {
			off += len(cluster)
		}
		off++
	}

	for col := 0; col < pos.GraphemeCol; col++ {
		off += len(b.lines[pos.Row][col])
	}

	return ByteOffset(off)
}
