package views

// Scroller keeps a cursor inside a fixed-height window over a list.
// Unlike page-wise pagination the window slides one row at a time, so the
// selected node never jumps to the top of the screen.
type Scroller struct {
	height int
	offset int
	cursor int
	total  int
}

// NewScroller creates a scroller showing height rows
func NewScroller(height int) *Scroller {
	s := &Scroller{}
	s.SetHeight(height)
	return s
}

// SetHeight changes the number of visible rows
func (s *Scroller) SetHeight(height int) {
	if height <= 0 {
		height = 10
	}
	s.height = height
	s.follow()
}

// SetTotal sets the number of rows, clamping the cursor
func (s *Scroller) SetTotal(total int) {
	s.total = total
	s.SetCursor(s.cursor)
}

// Cursor returns the absolute cursor position
func (s *Scroller) Cursor() int {
	return s.cursor
}

// SetCursor moves the cursor, clamped to the list
func (s *Scroller) SetCursor(pos int) {
	s.cursor = max(0, min(pos, s.total-1))
	s.follow()
}

// Up moves the cursor up one row
func (s *Scroller) Up() bool {
	if s.cursor == 0 {
		return false
	}
	s.SetCursor(s.cursor - 1)
	return true
}

// Down moves the cursor down one row
func (s *Scroller) Down() bool {
	if s.cursor >= s.total-1 {
		return false
	}
	s.SetCursor(s.cursor + 1)
	return true
}

// PageUp moves the cursor up a full window
func (s *Scroller) PageUp() {
	s.SetCursor(s.cursor - s.height)
}

// PageDown moves the cursor down a full window
func (s *Scroller) PageDown() {
	s.SetCursor(s.cursor + s.height)
}

// VisibleRange returns the half-open range of rows to render
func (s *Scroller) VisibleRange() (start, end int) {
	return s.offset, min(s.offset+s.height, s.total)
}

// Above and Below report how many rows are hidden on each side
func (s *Scroller) Above() int { return s.offset }

func (s *Scroller) Below() int {
	_, end := s.VisibleRange()
	return s.total - end
}

func (s *Scroller) follow() {
	if s.cursor < s.offset {
		s.offset = s.cursor
	}
	if s.cursor >= s.offset+s.height {
		s.offset = s.cursor - s.height + 1
	}
	// Do not leave empty rows at the bottom when the list shrinks
	if s.offset > 0 && s.offset+s.height > s.total {
		s.offset = max(0, s.total-s.height)
	}
}
