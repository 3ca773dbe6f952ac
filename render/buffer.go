package render

import (
	"github.com/gdamore/tcell/v2"
)

// Cell is one composed terminal cell
type Cell struct {
	Rune rune
	Fg   tcell.Color
	Bg   tcell.Color
	Bold bool
}

// Style converts the cell colors to a tcell style
func (c Cell) Style() tcell.Style {
	return tcell.StyleDefault.Foreground(c.Fg).Background(c.Bg).Bold(c.Bold)
}

// Buffer is a compositor the renderer draws into before flushing to a screen or image
// Layers are painted back to front; a later write to a cell replaces the earlier one
type Buffer struct {
	cells  []Cell
	width  int
	height int
}

// NewBuffer creates a buffer cleared to the background color
func NewBuffer(width, height int) *Buffer {
	b := &Buffer{}
	b.Resize(width, height)
	return b
}

// Resize adjusts dimensions, reallocating only if capacity is insufficient
func (b *Buffer) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	size := width * height
	if cap(b.cells) < size {
		b.cells = make([]Cell, size)
	} else {
		b.cells = b.cells[:size]
	}
	b.width = width
	b.height = height
	b.Clear()
}

// Clear resets all cells to blank background using exponential copy
func (b *Buffer) Clear() {
	if len(b.cells) == 0 {
		return
	}
	b.cells[0] = Cell{Rune: ' ', Fg: RgbText, Bg: RgbBackground}
	for filled := 1; filled < len(b.cells); filled *= 2 {
		copy(b.cells[filled:], b.cells[:filled])
	}
}

func (b *Buffer) Width() int  { return b.width }
func (b *Buffer) Height() int { return b.height }

func (b *Buffer) inBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// Get returns the cell at x,y; out of bounds yields a zero cell
func (b *Buffer) Get(x, y int) Cell {
	if !b.inBounds(x, y) {
		return Cell{}
	}
	return b.cells[y*b.width+x]
}

// Set writes a glyph, keeping the existing background
func (b *Buffer) Set(x, y int, r rune, fg tcell.Color) {
	if !b.inBounds(x, y) {
		return
	}
	c := &b.cells[y*b.width+x]
	c.Rune = r
	c.Fg = fg
	c.Bold = false
}

// SetCell replaces the whole cell
func (b *Buffer) SetCell(x, y int, cell Cell) {
	if b.inBounds(x, y) {
		b.cells[y*b.width+x] = cell
	}
}

// Text writes s left to right starting at x and returns the column after it
func (b *Buffer) Text(x, y int, s string, fg tcell.Color, bold bool) int {
	for _, r := range s {
		if b.inBounds(x, y) {
			c := &b.cells[y*b.width+x]
			c.Rune = r
			c.Fg = fg
			c.Bold = bold
		}
		x++
	}
	return x
}

// Fill paints a rectangle with rune r on background bg
func (b *Buffer) Fill(x, y, w, h int, r rune, fg, bg tcell.Color) {
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			b.SetCell(col, row, Cell{Rune: r, Fg: fg, Bg: bg})
		}
	}
}

// Row returns the runes of one line, for tests and logs
func (b *Buffer) Row(y int) string {
	if y < 0 || y >= b.height {
		return ""
	}
	out := make([]rune, b.width)
	for x := 0; x < b.width; x++ {
		out[x] = b.cells[y*b.width+x].Rune
	}
	return string(out)
}

// Flush copies the buffer to the screen; the caller calls Show
func (b *Buffer) Flush(s tcell.Screen) {
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			c := b.cells[y*b.width+x]
			s.SetContent(x, y, c.Rune, nil, c.Style())
		}
	}
}
