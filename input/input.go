// Package input samples the joystick: two analog axes and one active-low
// push button.
package input

import proto "github.com/ystepanoff/joylink/protocol"

// AnalogPin reads an ADC channel at the converter's native resolution
// (0-4095 on a 12-bit converter).
type AnalogPin interface {
	Get() uint16
}

// DigitalPin reads a logic level, true meaning high.
type DigitalPin interface {
	Get() bool
}

// Configurer is implemented by pins that need hardware setup before use.
// Button pins configure themselves as inputs with the internal pull-up.
type Configurer interface {
	Configure() error
}

// Joystick turns raw pin readings into telemetry records.
type Joystick struct {
	X, Y   AnalogPin
	Button DigitalPin
}

// Configure sets up every pin that needs it, the button with its pull-up so
// the released state reads high.
func (j *Joystick) Configure() error {
	for _, p := range []any{j.X, j.Y, j.Button} {
		if c, ok := p.(Configurer); ok {
			if err := c.Configure(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Sample reads all three inputs. Axis values are stored exactly as read;
// the button is pressed when its pin is low.
func (j *Joystick) Sample() proto.TelemetryRecord {
	return proto.TelemetryRecord{
		AxisX:         int16(j.X.Get()),
		AxisY:         int16(j.Y.Get()),
		ButtonPressed: !j.Button.Get(),
	}
}
