package display

import (
	"fmt"

	proto "github.com/ystepanoff/joylink/protocol"
)

// Layout of the status screen, in pixels at text size 2.
const (
	Margin    = 10
	HeaderY   = 10
	ValuesY   = 40
	StatusY   = 90
	ErrorY    = 110
	TextSize  = 2
	ReadyText = "Joystick Ready"
)

// StatusView draws the ready screen and the per-send status screen.
type StatusView struct {
	screen Screen
}

func NewStatusView(s Screen) *StatusView { return &StatusView{screen: s} }

// Init clears the screen, selects landscape white-on-black text and shows
// the ready message.
func (v *StatusView) Init() error {
	v.screen.FillScreen(Black)
	if err := v.screen.SetRotation(Landscape); err != nil {
		return fmt.Errorf("set rotation: %w", err)
	}
	v.screen.SetTextColor(White, Black)
	v.screen.SetTextSize(TextSize)
	v.screen.DrawString(ReadyText, Margin, HeaderY)
	return nil
}

// Render redraws everything from a cleared screen. sendErr is the
// immediate result of submitting r; delivery is reported elsewhere.
func (v *StatusView) Render(r proto.TelemetryRecord, sendErr error) {
	v.screen.FillScreen(Black)
	v.screen.DrawString("Joystick Data:", Margin, HeaderY)
	v.screen.SetCursor(Margin, ValuesY)
	v.screen.Print(fmt.Sprintf("carX: %d\ncarY: %d\n", r.AxisX, r.AxisY))

	if sendErr == nil {
		v.screen.DrawString("Data Sent: Success", Margin, StatusY)
		return
	}
	v.screen.DrawString("Data Sent: Fail", Margin, StatusY)
	v.screen.SetCursor(Margin, ErrorY)
	v.screen.Print(fmt.Sprintf("Error code: %d", proto.Code(sendErr)))
}
