// Package periph reads the joystick from a Linux single-board computer:
// both axes through an ADS1115 on I²C, the button on a GPIO line.
package periph

import (
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/host/v3"

	"github.com/ystepanoff/joylink/input"
)

// Options selects the bus, converter address and pins.
type Options struct {
	Bus        string // "" opens the default bus, usually /dev/i2c-1
	Address    uint16 // ADS1115 address, 0x48 when zero
	ChannelX   ads1x15.Channel
	ChannelY   ads1x15.Channel
	ButtonGPIO string // e.g. "GPIO17"
}

// Board owns the I²C bus and the pins handed out to the sampler.
type Board struct {
	bus    i2c.BusCloser
	adc    *ads1x15.Dev
	x, y   *Axis
	button *Button
}

func Open(opts Options, logger zerolog.Logger) (*Board, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}

	bus, err := i2creg.Open(opts.Bus)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", opts.Bus, err)
	}

	adcOpts := ads1x15.DefaultOpts
	if opts.Address != 0 {
		adcOpts.I2cAddress = opts.Address
	}
	adc, err := ads1x15.NewADS1115(bus, &adcOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("ads1115: %w", err)
	}

	log := logger.With().Str("component", "periph").Logger()
	x, err := newAxis(adc, opts.ChannelX, "x", log)
	if err != nil {
		bus.Close()
		return nil, err
	}
	y, err := newAxis(adc, opts.ChannelY, "y", log)
	if err != nil {
		bus.Close()
		return nil, err
	}

	pin := gpioreg.ByName(opts.ButtonGPIO)
	if pin == nil {
		bus.Close()
		return nil, fmt.Errorf("gpio %q not found", opts.ButtonGPIO)
	}

	return &Board{bus: bus, adc: adc, x: x, y: y, button: &Button{pin: pin}}, nil
}

// Joystick wires the board's pins into an input.Joystick.
func (b *Board) Joystick() *input.Joystick {
	return &input.Joystick{X: b.x, Y: b.y, Button: b.button}
}

func (b *Board) Close() error {
	if err := b.adc.Halt(); err != nil {
		b.bus.Close()
		return err
	}
	return b.bus.Close()
}

// Axis is an input.AnalogPin on one ADS1115 channel. Read errors keep the
// previous sample so a glitch on the bus does not jerk the record to zero.
type Axis struct {
	pin  ads1x15.PinADC
	name string
	log  zerolog.Logger
	last atomic.Uint32
}

func newAxis(adc *ads1x15.Dev, ch ads1x15.Channel, name string, log zerolog.Logger) (*Axis, error) {
	pin, err := adc.PinForChannel(ch, 5*physic.Volt, 250*physic.Hertz, ads1x15.BestQuality)
	if err != nil {
		return nil, fmt.Errorf("ads1115 channel %s: %w", name, err)
	}
	return &Axis{pin: pin, name: name, log: log}, nil
}

func (a *Axis) Get() uint16 {
	s, err := a.pin.Read()
	if err != nil {
		a.log.Warn().Err(err).Str("axis", a.name).Msg("adc read failed")
		return uint16(a.last.Load())
	}
	// single-ended readings may dip just below zero; keep the sign bits
	v := uint16(int16(s.Raw))
	a.last.Store(uint32(v))
	return v
}

// Button is an input.DigitalPin on a GPIO line with the SoC pull-up enabled.
type Button struct {
	pin gpio.PinIO
}

func (b *Button) Configure() error {
	if err := b.pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return fmt.Errorf("configure %s: %w", b.pin.Name(), err)
	}
	return nil
}

func (b *Button) Get() bool { return b.pin.Read() == gpio.High }
