//go:build tinygo || baremetal

package input

import "machine"

// ADC is an AnalogPin on a machine ADC channel.
type ADC struct {
	adc  machine.ADC
	bits uint8
}

// NewADC returns an ADC reading pin at the given native resolution.
func NewADC(pin machine.Pin, bits uint8) *ADC {
	return &ADC{adc: machine.ADC{Pin: pin}, bits: bits}
}

func (a *ADC) Configure() error {
	machine.InitADC()
	a.adc.Configure(machine.ADCConfig{Resolution: uint32(a.bits)})
	return nil
}

// Get undoes TinyGo's left alignment to 16 bits so values come back in the
// converter's own range.
func (a *ADC) Get() uint16 {
	return a.adc.Get() >> (16 - a.bits)
}

// Button is a DigitalPin on a GPIO wired active-low.
type Button struct {
	pin machine.Pin
}

func NewButton(pin machine.Pin) *Button { return &Button{pin: pin} }

func (b *Button) Configure() error {
	b.pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return nil
}

func (b *Button) Get() bool { return b.pin.Get() }
