package completion

// Menu is the ordered item list and selection state of an open session.
// The selected index always satisfies selected < len(items), or 0 when
// the list is empty.
type Menu struct {
	items    []Item
	selected int
	// explicitEmpty marks the empty state shown after a manual trigger
	// returned no items, as opposed to a menu that simply closed.
	explicitEmpty bool
}

func (m *Menu) Items() []Item {
	if len(m.items) == 0 {
		return nil
	}
	out := make([]Item, len(m.items))
	copy(out, m.items)
	return out
}

func (m *Menu) Len() int { return len(m.items) }

func (m *Menu) Selected() int { return m.selected }

func (m *Menu) SelectedItem() (Item, bool) {
	if m.selected < 0 || m.selected >= len(m.items) {
		return Item{}, false
	}
	return m.items[m.selected], true
}

// ShowingEmptyState reports whether a manual trigger produced no items.
func (m *Menu) ShowingEmptyState() bool { return m.explicitEmpty }

func (m *Menu) setItems(items []Item) {
	if len(items) == 0 {
		m.items = nil
	} else {
		m.items = make([]Item, len(items))
		copy(m.items, items)
	}
	m.selected = 0
	m.explicitEmpty = len(items) == 0
}

func (m *Menu) clear() {
	m.items = nil
	m.selected = 0
	m.explicitEmpty = false
}

// Next advances the selection, wrapping at the end.
func (m *Menu) Next() {
	if len(m.items) == 0 {
		m.selected = 0
		return
	}
	m.selected = (m.selected + 1) % len(m.items)
}

// Prev moves the selection back, wrapping at the start.
func (m *Menu) Prev() {
	if len(m.items) == 0 {
		m.selected = 0
		return
	}
	m.selected = (m.selected - 1 + len(m.items)) % len(m.items)
}

// PageNext advances by page rows, clamping at the end.
func (m *Menu) PageNext(page int) {
	if len(m.items) == 0 {
		m.selected = 0
		return
	}
	if page < 1 {
		page = 1
	}
	m.selected = clampSel(m.selected+page, len(m.items))
}

// PagePrev moves back by page rows, clamping at the start.
func (m *Menu) PagePrev(page int) {
	if len(m.items) == 0 {
		m.selected = 0
		return
	}
	if page < 1 {
		page = 1
	}
	m.selected = clampSel(m.selected-page, len(m.items))
}

func clampSel(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}
