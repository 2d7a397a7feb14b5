package display

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont/freemono"
)

type fakePanel struct {
	w, h     int16
	pixels   map[[2]int16]color.RGBA
	rotation drivers.Rotation
}

func newFakePanel() *fakePanel {
	return &fakePanel{w: 240, h: 135, pixels: map[[2]int16]color.RGBA{}}
}

func (p *fakePanel) Size() (int16, int16) { return p.w, p.h }

func (p *fakePanel) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= p.w || y >= p.h {
		return
	}
	p.pixels[[2]int16{x, y}] = c
}

func (p *fakePanel) Display() error { return nil }

func (p *fakePanel) FillScreen(color.RGBA) { clear(p.pixels) }

func (p *fakePanel) SetRotation(r drivers.Rotation) error {
	p.rotation = r
	return nil
}

// bounds returns the box covering every lit pixel.
func (p *fakePanel) bounds() (minY, maxY int16) {
	minY, maxY = p.h, -1
	for xy := range p.pixels {
		minY = min(minY, xy[1])
		maxY = max(maxY, xy[1])
	}
	return minY, maxY
}

func TestTFTDrawsForegroundOnly(t *testing.T) {
	panel := newFakePanel()
	tft := NewTFT(panel)
	require.NoError(t, NewStatusView(tft).Init())
	assert.Equal(t, drivers.Rotation(Landscape), panel.rotation)

	tft.FillScreen(Black)
	require.Empty(t, panel.pixels)

	red := color.RGBA{R: 0xFF, A: 0xFF}
	tft.SetTextColor(red, White)
	tft.DrawString("Hi", Margin, HeaderY)

	require.NotEmpty(t, panel.pixels)
	for _, c := range panel.pixels {
		assert.NotEqual(t, White, c, "glyphs carry no background")
	}
}

func TestTFTPrintNewlineReturnsToCursorX(t *testing.T) {
	panel := newFakePanel()
	tft := NewTFT(panel)
	tft.SetTextSize(2)

	tft.SetCursor(Margin, ValuesY)
	tft.Print("x\n")
	_, firstMax := panel.bounds()
	require.GreaterOrEqual(t, firstMax, int16(ValuesY))

	panel.FillScreen(Black)
	tft.Print("y")
	secondMin, _ := panel.bounds()
	assert.Greater(t, secondMin, firstMax, "second line sits below the first")
	assert.Greater(t, secondMin, int16(ValuesY)+int16(freemono.Regular12pt7b.YAdvance)/2)

	minX := panel.w
	for xy := range panel.pixels {
		minX = min(minX, xy[0])
	}
	assert.InDelta(t, Margin, minX, 6, "newline returns to the cursor column")
}
