//go:build !tinygo && !baremetal

package stub

import (
	"sync"
	"time"

	proto "github.com/ystepanoff/joylink/protocol"
	"github.com/ystepanoff/joylink/transport"
)

// Driver implements a mock radio driver for host-side testing and simulation.
// Drivers attached to the same Ether hear each other's transmissions.
type Driver struct {
	addr  proto.HardwareAddr
	ether *Ether

	mu      sync.Mutex
	mode    transport.Mode
	channel uint8
	initErr error
	txErr   error
	rxBuf   ringBuffer
	txBuf   ringBuffer
}

// New returns a driver on a private medium: transmissions are logged but
// nothing ever answers.
func New(addr proto.HardwareAddr) *Driver {
	return NewEther().Attach(addr)
}

func (d *Driver) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initErr
}

func (d *Driver) SetMode(mode transport.Mode) error {
	if mode != transport.ModeStation {
		return proto.ErrInterface
	}
	d.mu.Lock()
	d.mode = mode
	d.mu.Unlock()
	return nil
}

func (d *Driver) HardwareAddr() proto.HardwareAddr { return d.addr }

func (d *Driver) SetChannel(channel uint8) error {
	if channel > proto.MaxChannel {
		return proto.ErrInvalidChannel
	}
	d.mu.Lock()
	if channel != proto.CurrentChannel {
		d.channel = channel
	}
	d.mu.Unlock()
	return nil
}

func (d *Driver) Tx(data []byte) error {
	d.mu.Lock()
	if d.txErr != nil {
		err := d.txErr
		d.mu.Unlock()
		return err
	}
	frame := make([]byte, len(data))
	copy(frame, data)
	d.txBuf.push(frame)
	channel := d.channel
	d.mu.Unlock()

	d.ether.broadcast(d, channel, frame)
	return nil
}

func (d *Driver) Rx(timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	for {
		d.mu.Lock()
		frame, ok := d.rxBuf.pop()
		d.mu.Unlock()
		if ok {
			out := make([]byte, len(frame))
			copy(out, frame)
			return out, nil
		}

		if time.Now().After(deadline) {
			return nil, proto.ErrTimeout
		}
		time.Sleep(1 * time.Millisecond)
	}
}

// FailInit makes the next Init calls return err (nil clears it).
func (d *Driver) FailInit(err error) {
	d.mu.Lock()
	d.initErr = err
	d.mu.Unlock()
}

// FailTx makes Tx return err until cleared with nil.
func (d *Driver) FailTx(err error) {
	d.mu.Lock()
	d.txErr = err
	d.mu.Unlock()
}

func (d *Driver) InjectRx(data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	frame := make([]byte, len(data))
	copy(frame, data)
	d.rxBuf.push(frame)
}

func (d *Driver) GetTxLog() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.txBuf.snapshot()
}

func (d *Driver) Channel() uint8 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.channel
}

// Ether is an in-process radio medium shared by attached drivers.
type Ether struct {
	mu      sync.Mutex
	drivers []*Driver
}

func NewEther() *Ether { return &Ether{} }

// Attach creates a driver with addr on this medium, tuned to the default channel.
func (e *Ether) Attach(addr proto.HardwareAddr) *Driver {
	d := &Driver{addr: addr, ether: e, channel: proto.DefaultChannel}
	e.mu.Lock()
	e.drivers = append(e.drivers, d)
	e.mu.Unlock()
	return d
}

func (e *Ether) broadcast(from *Driver, channel uint8, frame []byte) {
	e.mu.Lock()
	targets := make([]*Driver, 0, len(e.drivers))
	for _, d := range e.drivers {
		if d != from {
			targets = append(targets, d)
		}
	}
	e.mu.Unlock()

	for _, d := range targets {
		if d.Channel() == channel {
			d.InjectRx(frame)
		}
	}
}

const ringCapacity = 64

type ringBuffer struct {
	data       [ringCapacity][]byte
	head, tail int // head = next pop, tail = next push
	count      int
}

func (rb *ringBuffer) push(frame []byte) {
	if rb.count == ringCapacity {
		// Overwrite the oldest when buffer is full to keep memory bounded
		rb.data[rb.tail] = nil
		rb.head = (rb.head + 1) % ringCapacity
		rb.count--
	}
	rb.data[rb.tail] = frame
	rb.tail = (rb.tail + 1) % ringCapacity
	rb.count++
}

func (rb *ringBuffer) pop() ([]byte, bool) {
	if rb.count == 0 {
		return nil, false
	}
	frame := rb.data[rb.head]
	rb.data[rb.head] = nil
	rb.head = (rb.head + 1) % ringCapacity
	rb.count--
	return frame, true
}

func (rb *ringBuffer) snapshot() [][]byte {
	out := make([][]byte, rb.count)
	i := rb.head
	for c := 0; c < rb.count; c++ {
		cp := make([]byte, len(rb.data[i]))
		copy(cp, rb.data[i])
		out[c] = cp
		i = (i + 1) % ringCapacity
	}
	return out
}
