package protocol

import "encoding/binary"

// TelemetryRecordSize is the on-air size of a TelemetryRecord. The layout is
// the receiver's native struct {int16 x; int16 y; bool button;} including its
// trailing pad byte, little-endian.
//
//	+--------+--------+--------+-----+
//	| AxisX  | AxisY  | Button | pad |
//	+--------+--------+--------+-----+
//	| 2 (LE) | 2 (LE) |   1    |  1  |
//	+--------+--------+--------+-----+
const TelemetryRecordSize = 6

// TelemetryRecord is one joystick sample.
type TelemetryRecord struct {
	AxisX         int16 // raw ADC reading, horizontal
	AxisY         int16 // raw ADC reading, vertical
	ButtonPressed bool
}

// AppendBinary appends the wire form of r to b. The pad byte is always zero.
func (r TelemetryRecord) AppendBinary(b []byte) []byte {
	b = binary.LittleEndian.AppendUint16(b, uint16(r.AxisX))
	b = binary.LittleEndian.AppendUint16(b, uint16(r.AxisY))
	var button byte
	if r.ButtonPressed {
		button = 1
	}
	return append(b, button, 0)
}

func (r TelemetryRecord) MarshalBinary() ([]byte, error) {
	return r.AppendBinary(make([]byte, 0, TelemetryRecordSize)), nil
}

func (r *TelemetryRecord) UnmarshalBinary(data []byte) error {
	if len(data) != TelemetryRecordSize {
		return ErrInvalidPayload
	}
	r.AxisX = int16(binary.LittleEndian.Uint16(data[0:2]))
	r.AxisY = int16(binary.LittleEndian.Uint16(data[2:4]))
	r.ButtonPressed = data[4] != 0
	return nil
}
