//go:build tinygo || baremetal

package nrf

import (
	"time"
	"unsafe"

	proto "github.com/ystepanoff/joylink/protocol"
	"github.com/ystepanoff/joylink/transport"

	"device/nrf"
)

// Driver provides a RadioDriver backed by the real NRF peripheral registers.
// It keeps an internal buffer for packet TX/RX operations.
type Driver struct {
	buffer  [proto.MaxFrameSize]byte
	addr    proto.HardwareAddr
	channel uint8
}

func New() *Driver { return &Driver{channel: proto.DefaultChannel} }

func (d *Driver) Init() error {
	StartHFCLK()
	d.addr = DeviceAddr()
	return ConfigureRadio(linkBase, linkPrefix, d.channel)
}

// SetMode accepts station mode only; the radio never hosts a network.
func (d *Driver) SetMode(mode transport.Mode) error {
	if mode != transport.ModeStation {
		return proto.ErrInterface
	}
	return nil
}

func (d *Driver) HardwareAddr() proto.HardwareAddr {
	if d.addr.IsZero() {
		d.addr = DeviceAddr()
	}
	return d.addr
}

func (d *Driver) SetChannel(channel uint8) error {
	if channel > proto.MaxChannel {
		return proto.ErrInvalidChannel
	}
	if channel == proto.CurrentChannel {
		return nil
	}
	d.channel = channel
	nrf.RADIO.FREQUENCY.Set(uint32(channel))
	return nil
}

func (d *Driver) Tx(data []byte) error {
	if len(data) > len(d.buffer) {
		return proto.ErrInvalidPayload
	}
	copy(d.buffer[:], data)
	nrf.RADIO.PACKETPTR.Set(uint32(uintptr(unsafe.Pointer(&d.buffer[0]))))
	nrf.RADIO.EVENTS_READY.Set(0)
	nrf.RADIO.EVENTS_END.Set(0)
	nrf.RADIO.TASKS_TXEN.Set(1)
	for nrf.RADIO.EVENTS_READY.Get() == 0 {
	}
	nrf.RADIO.TASKS_START.Set(1)
	for nrf.RADIO.EVENTS_END.Get() == 0 {
	}
	disable()
	return nil
}

func (d *Driver) Rx(timeout time.Duration) ([]byte, error) {
	nrf.RADIO.PACKETPTR.Set(uint32(uintptr(unsafe.Pointer(&d.buffer[0]))))
	nrf.RADIO.EVENTS_READY.Set(0)
	nrf.RADIO.EVENTS_END.Set(0)
	nrf.RADIO.TASKS_RXEN.Set(1)
	for nrf.RADIO.EVENTS_READY.Get() == 0 {
	}
	nrf.RADIO.TASKS_START.Set(1)
	start := time.Now()
	for nrf.RADIO.EVENTS_END.Get() == 0 {
		if time.Since(start) > timeout {
			disable()
			return nil, proto.ErrTimeout
		}
	}
	disable()

	if nrf.RADIO.CRCSTATUS.Get() == 0 {
		return nil, proto.ErrInvalidPayload
	}
	pktLen := int(d.buffer[0]) + 1
	if pktLen > proto.MaxFrameSize {
		pktLen = proto.MaxFrameSize
	}
	out := make([]byte, pktLen)
	copy(out, d.buffer[:pktLen])
	return out, nil
}

func disable() {
	nrf.RADIO.TASKS_DISABLE.Set(1)
	for nrf.RADIO.STATE.Get() != nrf.RADIO_STATE_STATE_Disabled {
	}
}
