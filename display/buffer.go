package display

import (
	"cmp"
	"image/color"
	"slices"
	"strings"
	"sync"
)

// Glyph cell of the built-in 6x8 font at text size 1.
const (
	glyphWidth  = 6
	glyphHeight = 8
)

// Text is one run of characters placed on a Buffer.
type Text struct {
	X, Y int16
	S    string
	FG   color.RGBA
	BG   color.RGBA
	Size uint8
}

// Buffer is a Screen kept in memory as positioned text runs. It backs the
// host simulator and the tests.
type Buffer struct {
	mu       sync.Mutex
	bg       color.RGBA
	rotation Rotation
	fg, tbg  color.RGBA
	size     uint8
	left     int16
	cx, cy   int16
	texts    []Text
	clears   int
}

func NewBuffer() *Buffer { return &Buffer{fg: White, tbg: Black, size: 1} }

func (b *Buffer) FillScreen(c color.RGBA) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bg = c
	b.texts = b.texts[:0]
	b.clears++
}

func (b *Buffer) SetRotation(r Rotation) error {
	b.mu.Lock()
	b.rotation = r
	b.mu.Unlock()
	return nil
}

func (b *Buffer) SetTextColor(fg, bg color.RGBA) {
	b.mu.Lock()
	b.fg, b.tbg = fg, bg
	b.mu.Unlock()
}

func (b *Buffer) SetTextSize(size uint8) {
	if size == 0 {
		size = 1
	}
	b.mu.Lock()
	b.size = size
	b.mu.Unlock()
}

func (b *Buffer) DrawString(s string, x, y int16) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.put(s, x, y)
}

func (b *Buffer) SetCursor(x, y int16) {
	b.mu.Lock()
	b.left, b.cx, b.cy = x, x, y
	b.mu.Unlock()
}

func (b *Buffer) Print(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if i > 0 {
			b.cx = b.left
			b.cy += glyphHeight * int16(b.size)
		}
		if line == "" {
			continue
		}
		b.put(line, b.cx, b.cy)
		b.cx += glyphWidth * int16(b.size) * int16(len(line))
	}
}

func (b *Buffer) put(s string, x, y int16) {
	b.texts = append(b.texts, Text{X: x, Y: y, S: s, FG: b.fg, BG: b.tbg, Size: b.size})
}

// Texts returns what is on screen ordered top to bottom, left to right.
func (b *Buffer) Texts() []Text {
	b.mu.Lock()
	out := slices.Clone(b.texts)
	b.mu.Unlock()

	slices.SortStableFunc(out, func(a, c Text) int {
		if n := cmp.Compare(a.Y, c.Y); n != 0 {
			return n
		}
		return cmp.Compare(a.X, c.X)
	})
	return out
}

// Lines returns the on-screen strings in reading order.
func (b *Buffer) Lines() []string {
	texts := b.Texts()
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = t.S
	}
	return out
}

// Contains reports whether some text run on screen equals s.
func (b *Buffer) Contains(s string) bool {
	return slices.Contains(b.Lines(), s)
}

func (b *Buffer) Rotation() Rotation {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rotation
}

func (b *Buffer) Background() color.RGBA {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bg
}

// Clears counts FillScreen calls.
func (b *Buffer) Clears() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.clears
}

func (b *Buffer) String() string { return strings.Join(b.Lines(), "\n") }
