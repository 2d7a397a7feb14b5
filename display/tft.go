package display

import (
	"image/color"
	"strings"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"
)

// Panel is the pixel device under a TFT; *st7789.Device implements it.
type Panel interface {
	drivers.Displayer
	FillScreen(c color.RGBA)
	SetRotation(r drivers.Rotation) error
}

// TFT is a Screen on a pixel panel. Text size picks a FreeMono face;
// positions are the top-left corner of the text like on Buffer.
type TFT struct {
	dev    Panel
	fg     color.RGBA
	font   *tinyfont.Font
	left   int16
	cx, cy int16
}

func NewTFT(dev Panel) *TFT {
	return &TFT{dev: dev, fg: White, font: &freemono.Regular9pt7b}
}

func (t *TFT) FillScreen(c color.RGBA) { t.dev.FillScreen(c) }

func (t *TFT) SetRotation(r Rotation) error {
	return t.dev.SetRotation(drivers.Rotation(r))
}

// SetTextColor keeps fg only: tinyfont glyphs have no background, so text
// sits on whatever FillScreen left.
func (t *TFT) SetTextColor(fg, _ color.RGBA) { t.fg = fg }

func (t *TFT) SetTextSize(size uint8) {
	switch {
	case size <= 1:
		t.font = &freemono.Regular9pt7b
	case size == 2:
		t.font = &freemono.Regular12pt7b
	default:
		t.font = &freemono.Regular18pt7b
	}
}

func (t *TFT) DrawString(s string, x, y int16) {
	tinyfont.WriteLine(t.dev, t.font, x, y+t.lineHeight(), s, t.fg)
}

func (t *TFT) SetCursor(x, y int16) { t.left, t.cx, t.cy = x, x, y }

func (t *TFT) Print(s string) {
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			t.cx = t.left
			t.cy += t.lineHeight()
		}
		if line == "" {
			continue
		}
		t.DrawString(line, t.cx, t.cy)
		_, w := tinyfont.LineWidth(t.font, line)
		t.cx += int16(w)
	}
}

func (t *TFT) lineHeight() int16 { return int16(t.font.YAdvance) }
