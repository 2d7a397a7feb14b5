// Package display renders joystick status on a small text screen.
package display

import "image/color"

// Rotation is the screen orientation in quarter turns.
type Rotation uint8

const (
	Portrait Rotation = iota
	Landscape
	PortraitFlipped
	LandscapeFlipped
)

var (
	Black = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xFF}
	White = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

// Screen is the subset of a TFT text API the status view needs.
type Screen interface {
	FillScreen(c color.RGBA)
	SetRotation(r Rotation) error
	SetTextColor(fg, bg color.RGBA)
	SetTextSize(size uint8)
	// DrawString draws s with its top-left corner at (x, y).
	DrawString(s string, x, y int16)
	// SetCursor moves the Print cursor; a newline in Print returns to x.
	SetCursor(x, y int16)
	Print(s string)
}
